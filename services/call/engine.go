// File: services/call/engine.go
package call

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingRepo "phonedesk/database/repository/booking"
	"phonedesk/models"
	"phonedesk/services/catalog"
	"phonedesk/services/extractor"
	"phonedesk/services/flow"
	"phonedesk/services/notification"
	"phonedesk/services/responder"
	"phonedesk/services/session"
	"phonedesk/services/speech"
	"phonedesk/services/telephony"
	"phonedesk/services/transaction"
	"phonedesk/services/transcription"
	"phonedesk/services/validator"

	"go.uber.org/zap"
)

// Catalogs resolves the business snapshot a call runs against.
type Catalogs interface {
	Snapshot(ctx context.Context, businessID string) (*catalog.Snapshot, error)
}

// Normalizer cleans raw transcripts.
type Normalizer interface {
	Normalize(raw string) string
}

// Renderer turns a response code into a sentence.
type Renderer interface {
	Render(resp models.Response, slots models.Slots, c responder.Context) string
	Fixed(c responder.Context) []string
}

// Prewarmer synthesizes sentences ahead of time.
type Prewarmer interface {
	Prewarm(ctx context.Context, texts []string) int
}

// Speaker turns a sentence into playable audio.
type Speaker interface {
	Speak(ctx context.Context, text string) (speech.AudioHandle, error)
}

// Finalizer persists a confirmed transaction.
type Finalizer interface {
	Finalize(ctx context.Context, s *models.CallSession, snap *catalog.Snapshot) (transaction.Record, error)
}

// Deps wires an Engine.
type Deps struct {
	Sessions    session.Store
	Catalogs    Catalogs
	Normalizer  Normalizer
	Flows       flow.Registry
	Responder   Renderer
	Speech      Speaker
	Prewarm     Prewarmer
	Transcriber transcription.Transcriber
	Control     telephony.CallControl
	Recorder    Finalizer
	Notifier    notification.NotificationService
	Scheduler   Scheduler
	HangupDelay time.Duration
	Logger      *zap.Logger
}

// Engine runs phone calls one turn at a time.
type Engine struct {
	Deps
	now    func() time.Time
	warmed sync.Map // business id -> struct{}
}

// NewEngine returns an engine; Notifier and Logger may be left nil.
func NewEngine(d Deps) *Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Notifier == nil {
		d.Notifier = notification.NoopNotificationService{}
	}
	return &Engine{Deps: d, now: time.Now}
}

// TurnResult is what one turn produced.
type TurnResult struct {
	CallID     string
	BusinessID string
	State      string
	Response   models.Response
	Text       string
	Record     *transaction.Record
	Escalate   bool
	Finished   bool // a transaction was recorded this turn
}

func (r TurnResult) ends() bool { return r.Escalate || r.Finished }

func (e *Engine) context(snap *catalog.Snapshot) responder.Context {
	return responder.Context{
		Locale:   responder.Locale(snap.Business.Locale),
		Business: snap.Business.Name,
		Flow:     snap.Business.Flow,
	}
}

// Greet opens the session for a new call and returns the greeting. A call
// that already has a session keeps its state.
func (e *Engine) Greet(ctx context.Context, callID, businessID, from string) (TurnResult, error) {
	s, err := e.Sessions.Get(ctx, callID)
	if err != nil {
		return TurnResult{}, err
	}
	if s.BusinessID == "" {
		s.BusinessID = businessID
	}
	if s.BusinessID == "" {
		return TurnResult{}, fmt.Errorf("call %s: no business", callID)
	}
	snap, err := e.Catalogs.Snapshot(ctx, s.BusinessID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load catalog: %w", err)
	}
	def, err := e.Flows.For(snap.Business.Flow)
	if err != nil {
		return TurnResult{}, err
	}
	e.warm(snap)
	if s.Slots.Phone == "" {
		s.Slots.Phone = from
	}
	resp := def.Greeting(s)
	if err := e.Sessions.Save(ctx, s); err != nil {
		return TurnResult{}, err
	}
	return TurnResult{
		CallID:     callID,
		BusinessID: s.BusinessID,
		State:      s.State,
		Response:   resp,
		Text:       e.Responder.Render(resp, s.Slots, e.context(snap)),
	}, nil
}

// warm synthesizes a business's fixed replies once, in the background.
func (e *Engine) warm(snap *catalog.Snapshot) {
	if e.Prewarm == nil {
		return
	}
	if _, loaded := e.warmed.LoadOrStore(snap.Business.ID, struct{}{}); loaded {
		return
	}
	texts := e.Responder.Fixed(e.context(snap))
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n := e.Prewarm.Prewarm(ctx, texts)
		e.Logger.Debug("Fixed replies prewarmed", zap.String("businessID", snap.Business.ID), zap.Int("count", n))
	}()
}

// ProcessUtterance runs one caller utterance through the pipeline and
// persists the session. A turn that lost a concurrent write is re-run once
// against the fresh session.
func (e *Engine) ProcessUtterance(ctx context.Context, callID, raw string) (TurnResult, error) {
	res, err := e.turn(ctx, callID, raw)
	if errors.Is(err, session.ErrVersionConflict) {
		e.Logger.Warn("Session changed during turn, retrying", zap.String("callID", callID))
		res, err = e.turn(ctx, callID, raw)
	}
	return res, err
}

func (e *Engine) turn(ctx context.Context, callID, raw string) (TurnResult, error) {
	s, err := e.Sessions.Get(ctx, callID)
	if err != nil {
		return TurnResult{}, err
	}
	if s.BusinessID == "" {
		return TurnResult{}, fmt.Errorf("call %s: no session", callID)
	}
	snap, err := e.Catalogs.Snapshot(ctx, s.BusinessID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load catalog: %w", err)
	}
	def, err := e.Flows.For(snap.Business.Flow)
	if err != nil {
		return TurnResult{}, err
	}
	rc := e.context(snap)

	clean := e.Normalizer.Normalize(raw)
	expect, yesNo := flow.Expect(s.State)
	x := extractor.Extract(clean, extractor.Context{
		Now:     e.now().In(validator.Location(snap.Business)),
		Flow:    def.Kind,
		Locale:  rc.Locale,
		Expect:  expect,
		YesNo:   yesNo,
		Catalog: snap,
	})
	e.Logger.Debug("Utterance extracted",
		zap.String("callID", callID),
		zap.String("state", s.State),
		zap.String("clean", clean),
		zap.String("intent", string(x.Intent)),
		zap.Int("entities", len(x.Entities)))

	prev := s.State
	out, err := def.Step(ctx, s, x, snap)
	if err != nil {
		// Session untouched; the caller hears an apology and can try again.
		e.Logger.Error("Turn failed", zap.String("callID", callID), zap.Error(err))
		resp := models.Response{Code: models.RespError}
		return TurnResult{CallID: callID, State: s.State, Response: resp, Text: e.Responder.Render(resp, s.Slots, rc)}, nil
	}

	var rec *transaction.Record
	if out.Action == flow.ActionFinalize {
		r, err := e.Recorder.Finalize(ctx, s, snap)
		switch {
		case err == nil:
			rec = &r
			out.Response = def.Complete(s)
		case errors.Is(err, bookingRepo.ErrSlotTaken):
			out, err = def.Refused(ctx, s, snap, "time")
			if err != nil {
				e.Logger.Warn("Failed to recheck refused booking", zap.String("callID", callID), zap.Error(err))
				out = def.Reopen(s, "time", models.Response{Code: models.RespUnavailable})
			}
		default:
			e.Logger.Error("Failed to record transaction", zap.String("callID", callID), zap.Error(err))
			out.Response = def.FinalizeFailed(s)
		}
	}

	if err := e.Sessions.Save(ctx, s); err != nil {
		return TurnResult{}, err
	}
	return TurnResult{
		CallID:     callID,
		BusinessID: s.BusinessID,
		State:      s.State,
		Response:   out.Response,
		Text:       e.Responder.Render(out.Response, s.Slots, rc),
		Record:     rec,
		Escalate:   prev != models.StateEscalate && s.State == models.StateEscalate,
		Finished:   rec != nil,
	}, nil
}

// Conclude runs the side effects of a turn that ended the conversation: the
// business is notified of a new transaction and the call is handed off or
// hung up once the last sentence has played.
func (e *Engine) Conclude(ctx context.Context, res TurnResult) {
	if !res.ends() {
		return
	}
	logger := e.Logger.With(zap.String("callID", res.CallID))
	snap, err := e.Catalogs.Snapshot(ctx, res.BusinessID)
	if err != nil {
		logger.Error("Failed to load catalog", zap.Error(err))
		return
	}
	if res.Record != nil {
		if err := e.Notifier.NotifyTransaction(ctx, snap.Business, *res.Record); err != nil {
			logger.Warn("Failed to notify business", zap.Error(err))
		}
	}
	if res.Escalate && snap.Business.HandoffNumber != "" {
		if err := e.Scheduler.ScheduleTransfer(ctx, res.CallID, snap.Business.HandoffNumber, e.HangupDelay); err != nil {
			logger.Error("Failed to schedule transfer", zap.Error(err))
		}
		return
	}
	if err := e.Scheduler.ScheduleHangup(ctx, res.CallID, e.HangupDelay); err != nil {
		logger.Error("Failed to schedule hangup", zap.Error(err))
	}
}
