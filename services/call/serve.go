// File: services/call/serve.go
package call

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"phonedesk/services/telephony"
	"phonedesk/services/transcription"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Serve owns one call from the stream start until the stream ends.
func (e *Engine) Serve(ctx context.Context, stream telephony.MediaStream) error {
	defer stream.Close()

	info, err := stream.Start(ctx)
	if err != nil {
		return fmt.Errorf("wait for stream start: %w", err)
	}
	logger := e.Logger.With(zap.String("callID", info.CallID), zap.String("businessID", info.BusinessID))
	logger.Info("Call started", zap.String("from", info.From))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	box := newMailbox()
	agg := &aggregator{}
	tstream, err := e.Transcriber.Start(ctx, transcription.HandlerFuncs{
		Transcript: agg.add,
		UtteranceEnd: func() {
			if u := agg.flush(); u != "" {
				box.put(u)
			}
		},
		Error: func(err error) {
			logger.Warn("Transcription error", zap.Error(err))
		},
	})
	if err != nil {
		return fmt.Errorf("start transcription: %w", err)
	}

	var wg conc.WaitGroup
	wg.Go(func() { e.converse(ctx, stream, info, box, logger) })

	e.pump(ctx, stream, tstream, logger)

	cancel()
	tstream.Stop()
	if r := wg.WaitAndRecover(); r != nil {
		logger.Error("Call goroutine panicked", zap.String("panic", r.String()))
	}

	cleanup, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := e.Sessions.Delete(cleanup, info.CallID); err != nil {
		logger.Warn("Failed to drop session", zap.Error(err))
	}
	logger.Info("Call ended")
	return nil
}

// pump feeds caller audio to the transcriber until the stream stops.
func (e *Engine) pump(ctx context.Context, stream telephony.MediaStream, tstream transcription.Stream, logger *zap.Logger) {
	events := stream.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case telephony.EventMedia:
				if err := tstream.Write(ev.Audio); err != nil && !errors.Is(err, transcription.ErrStopped) {
					logger.Warn("Failed to forward audio", zap.Error(err))
				}
			case telephony.EventStop:
				return
			}
		}
	}
}

// converse greets the caller and then answers utterances one at a time.
func (e *Engine) converse(ctx context.Context, stream telephony.MediaStream, info telephony.StartInfo, box *mailbox, logger *zap.Logger) {
	greet, err := e.Greet(ctx, info.CallID, info.BusinessID, info.From)
	if err != nil {
		logger.Error("Failed to open call", zap.Error(err))
		if err := e.Control.Hangup(ctx, info.CallID); err != nil {
			logger.Error("Failed to hang up", zap.Error(err))
		}
		return
	}
	e.say(ctx, stream, greet.Text, logger)

	for {
		text, ok := box.next(ctx)
		if !ok {
			return
		}
		res, err := e.ProcessUtterance(ctx, info.CallID, text)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to process utterance", zap.String("utterance", text), zap.Error(err))
			continue
		}
		logger.Info("Turn processed",
			zap.String("state", res.State),
			zap.String("response", string(res.Response.Code)))
		e.say(ctx, stream, res.Text, logger)
		e.Conclude(ctx, res)
	}
}

func (e *Engine) say(ctx context.Context, stream telephony.MediaStream, text string, logger *zap.Logger) {
	if text == "" {
		return
	}
	audio, err := e.Speech.Speak(ctx, text)
	if err != nil {
		logger.Error("Failed to synthesize reply", zap.Error(err))
		return
	}
	if _, err := stream.Play(ctx, audio.Audio); err != nil && !errors.Is(err, telephony.ErrClosed) {
		logger.Warn("Failed to play reply", zap.Error(err))
	}
}

// aggregator joins transcript fragments into one utterance.
type aggregator struct {
	mu      sync.Mutex
	finals  []string
	interim string
}

func (a *aggregator) add(text string, isFinal bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !isFinal {
		a.interim = text
		return
	}
	if text != "" {
		a.finals = append(a.finals, text)
	}
	a.interim = ""
}

// flush returns the utterance so far and starts a new one. A trailing
// interim fragment that never became final is kept.
func (a *aggregator) flush() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	parts := make([]string, 0, len(a.finals)+1)
	parts = append(parts, a.finals...)
	if a.interim != "" {
		parts = append(parts, a.interim)
	}
	a.finals, a.interim = nil, ""
	return strings.TrimSpace(strings.Join(parts, " "))
}

// mailbox holds at most one waiting utterance; a newer one replaces it.
type mailbox struct {
	mu      sync.Mutex
	pending string
	has     bool
	signal  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

func (m *mailbox) put(u string) {
	m.mu.Lock()
	m.pending, m.has = u, true
	m.mu.Unlock()
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) next(ctx context.Context) (string, bool) {
	for {
		m.mu.Lock()
		if m.has {
			u := m.pending
			m.pending, m.has = "", false
			m.mu.Unlock()
			return u, true
		}
		m.mu.Unlock()
		select {
		case <-ctx.Done():
			return "", false
		case <-m.signal:
		}
	}
}
