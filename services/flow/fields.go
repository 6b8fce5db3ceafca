package flow

import (
	"phonedesk/models"
)

// Field is one slot the machine collects. Implementations merge the entities
// they understand and report whether the slot still needs asking.
type Field interface {
	Name() string
	// Applies reports whether the field is required given what is known so far.
	Applies(s models.Slots) bool
	Filled(s models.Slots) bool
	// Merge copies matching entities into the slots and reports whether anything changed.
	Merge(s *models.Slots, x models.Extraction) bool
	Clear(s *models.Slots)
	// Value is the slot as it would be read back to the caller.
	Value(s models.Slots) string
	Prompt() models.ResponseCode
}

// Looper is a field collected repeatedly, closed by an "anything else?" answer.
type Looper interface {
	Field
	// Started reports whether at least one value is collected.
	Started(s models.Slots) bool
	Finish(s *models.Slots)
	MorePrompt() models.ResponseCode
}

type serviceField struct{}

func (serviceField) Name() string                { return "service" }
func (serviceField) Applies(models.Slots) bool   { return true }
func (serviceField) Filled(s models.Slots) bool  { return s.Service != "" }
func (serviceField) Prompt() models.ResponseCode { return models.RespAskService }
func (serviceField) Clear(s *models.Slots)       { s.Service, s.ServiceID = "", "" }
func (serviceField) Value(s models.Slots) string { return s.Service }
func (serviceField) Merge(s *models.Slots, x models.Extraction) bool {
	e, ok := x.First(models.EntityService)
	if !ok {
		return false
	}
	s.Service, s.ServiceID = e.Value, e.Ref
	return true
}

// scalar covers the single-string slots.
type scalar struct {
	name   string
	kind   models.EntityKind
	prompt models.ResponseCode
	get    func(s *models.Slots) *string
	when   func(s models.Slots) bool
}

func (f scalar) Name() string                { return f.name }
func (f scalar) Prompt() models.ResponseCode { return f.prompt }
func (f scalar) Filled(s models.Slots) bool  { return *f.get(&s) != "" }
func (f scalar) Clear(s *models.Slots)       { *f.get(s) = "" }
func (f scalar) Value(s models.Slots) string { return *f.get(&s) }

func (f scalar) Applies(s models.Slots) bool {
	if f.when == nil {
		return true
	}
	return f.when(s)
}

func (f scalar) Merge(s *models.Slots, x models.Extraction) bool {
	e, ok := x.First(f.kind)
	if !ok || e.Value == "" {
		return false
	}
	*f.get(s) = e.Value
	return true
}

var (
	dateField = scalar{name: "date", kind: models.EntityDate, prompt: models.RespAskDate,
		get: func(s *models.Slots) *string { return &s.Date }}
	timeField = scalar{name: "time", kind: models.EntityTime, prompt: models.RespAskTime,
		get: func(s *models.Slots) *string { return &s.Time }}
	nameField = scalar{name: "name", kind: models.EntityName, prompt: models.RespAskName,
		get: func(s *models.Slots) *string { return &s.Name }}
	fulfillmentField = scalar{name: "fulfillment", kind: models.EntityFulfillment, prompt: models.RespAskFulfillment,
		get: func(s *models.Slots) *string { return &s.Fulfillment }}
	addressField = scalar{name: "address", kind: models.EntityAddress, prompt: models.RespAskAddress,
		get:  func(s *models.Slots) *string { return &s.Address },
		when: func(s models.Slots) bool { return s.Fulfillment == models.FulfillmentDelivery }}
	// phone is kept when offered but never asked for; the caller id covers it
	phoneField = scalar{name: "phone", kind: models.EntityPhone,
		get:  func(s *models.Slots) *string { return &s.Phone },
		when: func(models.Slots) bool { return false }}
)

type itemsField struct{}

func (itemsField) Name() string                    { return "items" }
func (itemsField) Applies(models.Slots) bool       { return true }
func (itemsField) Filled(s models.Slots) bool      { return len(s.Items) > 0 && s.ItemsDone }
func (itemsField) Started(s models.Slots) bool     { return len(s.Items) > 0 }
func (itemsField) Finish(s *models.Slots)          { s.ItemsDone = true }
func (itemsField) Prompt() models.ResponseCode     { return models.RespAskItems }
func (itemsField) MorePrompt() models.ResponseCode { return models.RespAnythingElse }
func (itemsField) Clear(s *models.Slots)           { s.Items, s.ItemsDone = nil, false }
func (itemsField) Value(models.Slots) string       { return "" }

// Merge appends ordered items, folding repeats of the same item and options
// into one line.
func (itemsField) Merge(s *models.Slots, x models.Extraction) bool {
	ents := x.All(models.EntityItem)
	for _, e := range ents {
		line := models.OrderLine{
			ItemID:    e.Ref,
			Name:      e.Value,
			Quantity:  e.Quantity,
			UnitPrice: e.Price,
			Modifiers: e.Modifiers,
		}
		if line.Quantity < 1 {
			line.Quantity = 1
		}
		merged := false
		for i := range s.Items {
			if sameLine(s.Items[i], line) {
				s.Items[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			s.Items = append(s.Items, line)
		}
	}
	return len(ents) > 0
}

func sameLine(a, b models.OrderLine) bool {
	if a.ItemID != b.ItemID || len(a.Modifiers) != len(b.Modifiers) {
		return false
	}
	for i := range a.Modifiers {
		if a.Modifiers[i].ID != b.Modifiers[i].ID || a.Modifiers[i].Name != b.Modifiers[i].Name ||
			a.Modifiers[i].Without != b.Modifiers[i].Without {
			return false
		}
	}
	return true
}
