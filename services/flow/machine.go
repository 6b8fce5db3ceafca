package flow

import (
	"context"
	"fmt"

	"phonedesk/models"
	"phonedesk/services/catalog"
	"phonedesk/services/validator"
)

// DefaultMaxRetries is the number of extra attempts per field before escalating.
const DefaultMaxRetries = 2

const confirmKey = "confirm"

// Action tells the orchestrator what to do after speaking the response.
type Action int

const (
	ActionNone Action = iota
	// ActionFinalize persists the transaction; follow with Complete or FinalizeFailed.
	ActionFinalize
	// ActionEscalate hands the call to a human or ends it.
	ActionEscalate
)

func (a Action) String() string {
	switch a {
	case ActionFinalize:
		return "finalize"
	case ActionEscalate:
		return "escalate"
	}
	return "none"
}

// Outcome is the result of one turn.
type Outcome struct {
	Response models.Response
	Action   Action
}

// Definition is a slot-filling transaction: the fields in priority order,
// the check run once they are all filled and the codes it speaks.
type Definition struct {
	Kind       models.FlowKind
	Fields     []Field
	Terminal   string
	MaxRetries int
	Checker    validator.Validator

	// CatalogField receives retries for fragments that named nothing in the catalog.
	CatalogField string
	NotFound     models.ResponseCode
	Confirm      models.ResponseCode
	Completed    models.ResponseCode
}

// Appointment books a service: service, date, time, name.
func Appointment(checker validator.Validator, maxRetries int) *Definition {
	return &Definition{
		Kind:         models.FlowAppointment,
		Fields:       []Field{serviceField{}, dateField, timeField, nameField, phoneField},
		Terminal:     models.StateSuccess,
		MaxRetries:   maxRetries,
		Checker:      checker,
		CatalogField: "service",
		NotFound:     models.RespServiceNotFound,
		Confirm:      models.RespConfirmAppointment,
		Completed:    models.RespBooked,
	}
}

// Order takes a food order: items, delivery or pickup, name, address.
func Order(checker validator.Validator, maxRetries int) *Definition {
	return &Definition{
		Kind:         models.FlowOrder,
		Fields:       []Field{itemsField{}, fulfillmentField, nameField, addressField, phoneField},
		Terminal:     models.StateDone,
		MaxRetries:   maxRetries,
		Checker:      checker,
		CatalogField: "items",
		NotFound:     models.RespItemNotFound,
		Confirm:      models.RespConfirmOrder,
		Completed:    models.RespOrderPlaced,
	}
}

// Registry picks the definition for a business's flow.
type Registry map[models.FlowKind]*Definition

// NewRegistry returns both flows sharing a retry limit.
func NewRegistry(calendar, order validator.Validator, maxRetries int) Registry {
	return Registry{
		models.FlowAppointment: Appointment(calendar, maxRetries),
		models.FlowOrder:       Order(order, maxRetries),
	}
}

// For returns the definition for kind.
func (r Registry) For(kind models.FlowKind) (*Definition, error) {
	d, ok := r[kind]
	if !ok {
		return nil, &FlowError{Code: "UNKNOWN_FLOW", Message: fmt.Sprintf("no flow %q", kind)}
	}
	return d, nil
}

// Greeting opens the call.
func (d *Definition) Greeting(s *models.CallSession) models.Response {
	s.Flow = d.Kind
	if s.State == "" {
		s.State = models.StateGreeting
	}
	return models.Response{Code: models.RespGreeting}
}

// Expect returns what the extractor should listen for in the session's state.
func Expect(state string) (field string, yesNo bool) {
	switch {
	case state == models.StateConfirm:
		return "", true
	case models.IsMoreState(state):
		return models.StateField(state), true
	}
	return models.StateField(state), false
}

func (d *Definition) field(name string) Field {
	for _, f := range d.Fields {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

func (d *Definition) maxRetries() int {
	if d.MaxRetries < 0 {
		return 0
	}
	return d.MaxRetries
}

// nextMissing returns the first required field that is not filled yet.
func (d *Definition) nextMissing(s models.Slots) Field {
	for _, f := range d.Fields {
		if f.Applies(s) && !f.Filled(s) {
			return f
		}
	}
	return nil
}

// retry counts a failed attempt on key and reports whether the limit is exceeded.
func (d *Definition) retry(s *models.CallSession, key string) bool {
	if s.RetryCounts == nil {
		s.RetryCounts = map[string]int{}
	}
	s.RetryCounts[key]++
	return s.RetryCounts[key] > d.maxRetries()
}

func escalate(s *models.CallSession, code models.ResponseCode) Outcome {
	s.State = models.StateEscalate
	return Outcome{Response: models.Response{Code: code}, Action: ActionEscalate}
}

// Step applies one utterance's extraction to the session.
func (d *Definition) Step(ctx context.Context, s *models.CallSession, x models.Extraction, snap *catalog.Snapshot) (Outcome, error) {
	s.Flow = d.Kind
	if s.RetryCounts == nil {
		s.RetryCounts = map[string]int{}
	}

	switch {
	case s.State == models.StateSuccess || s.State == models.StateDone:
		return Outcome{Response: models.Response{Code: models.RespAlreadyCompleted}}, nil
	case s.State == models.StateEscalate:
		return Outcome{Response: models.Response{Code: models.RespEscalate}, Action: ActionEscalate}, nil
	case s.State == models.StateError:
		return Outcome{Response: models.Response{Code: models.RespError}}, nil
	case x.Intent == models.IntentCancel || x.Intent == models.IntentReschedule:
		return escalate(s, models.RespEscalateCancel), nil
	case s.State == models.StateConfirm:
		return d.confirm(s, x), nil
	}

	current := models.StateField(s.State)
	inMore := models.IsMoreState(s.State)

	// "yes, something else" keeps the loop open
	if inMore && x.Intent == models.IntentYes {
		if _, ok := d.field(current).(Looper); ok {
			return Outcome{Response: models.Response{Code: models.RespAskMoreItems}}, nil
		}
	}

	var filled []string
	for _, f := range d.Fields {
		if f.Merge(&s.Slots, x) {
			filled = append(filled, f.Name())
		}
	}
	merged := len(filled) > 0

	closed := false
	if x.Intent == models.IntentDone || (inMore && x.Intent == models.IntentNo) {
		for _, f := range d.Fields {
			if lp, ok := f.(Looper); ok && lp.Started(s.Slots) && !lp.Filled(s.Slots) {
				lp.Finish(&s.Slots)
				closed = true
			}
		}
	}

	if len(x.Unmatched) > 0 {
		resetRetries(s, filled, "")
		key := d.CatalogField
		if !merged && d.retry(s, key) {
			return escalate(s, models.RespEscalate), nil
		}
		if !models.IsMoreState(s.State) {
			s.State = models.CollectState(key)
		}
		return Outcome{Response: models.Response{Code: d.NotFound, Items: x.Unmatched, Retry: true}}, nil
	}

	next := d.nextMissing(s.Slots)
	if next == nil {
		return d.check(ctx, s, snap, filled)
	}
	resetRetries(s, filled, "")

	progressed := merged || closed
	if lp, ok := next.(Looper); ok && lp.Started(s.Slots) {
		if !progressed && d.retry(s, next.Name()) {
			return escalate(s, models.RespEscalate), nil
		}
		s.State = models.MoreState(next.Name())
		return Outcome{Response: models.Response{Code: lp.MorePrompt(), Retry: !progressed}}, nil
	}

	if !progressed && d.retry(s, next.Name()) {
		return escalate(s, models.RespEscalate), nil
	}
	s.State = models.CollectState(next.Name())
	return Outcome{Response: models.Response{Code: next.Prompt(), Retry: !progressed && current == next.Name()}}, nil
}

// confirm reads the caller's answer to the summary.
func (d *Definition) confirm(s *models.CallSession, x models.Extraction) Outcome {
	switch x.Intent {
	case models.IntentYes:
		delete(s.RetryCounts, confirmKey)
		return Outcome{Action: ActionFinalize}
	case models.IntentNo:
		delete(s.RetryCounts, confirmKey)
		first := d.Fields[0]
		s.State = models.CollectState(first.Name())
		return Outcome{Response: models.Response{Code: first.Prompt()}}
	}
	if d.retry(s, confirmKey) {
		return escalate(s, models.RespEscalate)
	}
	return Outcome{Response: models.Response{Code: models.RespConfirmUnclear, Retry: true}}
}

// resetRetries forgets failed attempts on fields filled this turn. A value
// the checker then rejects does not count as filled.
func resetRetries(s *models.CallSession, filled []string, except string) {
	for _, name := range filled {
		if name != except {
			delete(s.RetryCounts, name)
		}
	}
}

// check runs the validator once every field is filled.
func (d *Definition) check(ctx context.Context, s *models.CallSession, snap *catalog.Snapshot, filled []string) (Outcome, error) {
	if d.Checker == nil {
		resetRetries(s, filled, "")
		s.State = models.StateConfirm
		return Outcome{Response: models.Response{Code: d.Confirm}}, nil
	}
	r, err := d.Checker.Validate(ctx, s, snap)
	if err != nil {
		return Outcome{}, fmt.Errorf("validate %s session %s: %w", d.Kind, s.CallID, err)
	}
	if d.Kind == models.FlowOrder {
		s.Slots.Items = r.Lines
	}
	if r.OK {
		resetRetries(s, filled, "")
		s.State = models.StateConfirm
		return Outcome{Response: models.Response{Code: d.Confirm}}, nil
	}

	resetRetries(s, filled, r.Field)
	return d.reject(s, r.Field, rejection(r)), nil
}

func rejection(r validator.Result) models.Response {
	resp := models.Response{Code: r.Code, Items: r.Problems, Retry: true}
	if r.Availability != nil {
		resp.Alternatives = r.Availability.Alternatives
		resp.Hours = r.Availability.Hours
	}
	return resp
}

// reject clears field and asks for it again with resp.
func (d *Definition) reject(s *models.CallSession, field string, resp models.Response) Outcome {
	f := d.field(field)
	if f == nil {
		f = d.Fields[0]
	}
	if lp, ok := f.(Looper); ok {
		s.Slots.ItemsDone = false
		if d.retry(s, f.Name()) {
			return escalate(s, models.RespEscalate)
		}
		if lp.Started(s.Slots) {
			s.State = models.MoreState(f.Name())
		} else {
			s.State = models.CollectState(f.Name())
		}
		return Outcome{Response: resp}
	}
	if resp.Rejected == "" {
		resp.Rejected = f.Value(s.Slots)
	}
	f.Clear(&s.Slots)
	if d.retry(s, f.Name()) {
		return escalate(s, models.RespEscalate)
	}
	s.State = models.CollectState(f.Name())
	return Outcome{Response: resp}
}

// Reopen sends a confirmed session back to collect field, used when the
// booking is refused at write time.
func (d *Definition) Reopen(s *models.CallSession, field string, resp models.Response) Outcome {
	return d.reject(s, field, resp)
}

// Refused reopens a session whose booking was refused at write time. The
// checker runs again so the caller hears why and what is still free; when it
// now passes, field is reopened as unavailable.
func (d *Definition) Refused(ctx context.Context, s *models.CallSession, snap *catalog.Snapshot, field string) (Outcome, error) {
	if d.Checker != nil {
		r, err := d.Checker.Validate(ctx, s, snap)
		if err != nil {
			return Outcome{}, fmt.Errorf("recheck %s session %s: %w", d.Kind, s.CallID, err)
		}
		if !r.OK {
			return d.reject(s, r.Field, rejection(r)), nil
		}
	}
	return d.reject(s, field, models.Response{Code: models.RespUnavailable}), nil
}

// Complete moves a finalized session to its terminal state.
func (d *Definition) Complete(s *models.CallSession) models.Response {
	s.State = d.Terminal
	return models.Response{Code: d.Completed}
}

// FinalizeFailed keeps the session in confirm so the caller can try again.
func (d *Definition) FinalizeFailed(s *models.CallSession) models.Response {
	s.State = models.StateConfirm
	return models.Response{Code: models.RespBookingFailed}
}
