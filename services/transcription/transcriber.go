// File: services/transcription/transcriber.go
package transcription

import (
	"context"
	"errors"
)

// ErrStopped is returned by Write after Stop.
var ErrStopped = errors.New("transcription stream stopped")

// Handler receives transcription events. Calls arrive from the provider's
// goroutine, one at a time.
type Handler interface {
	OnTranscript(text string, isFinal bool)
	OnUtteranceEnd()
	OnError(err error)
}

// Stream accepts caller audio until stopped.
type Stream interface {
	Write(chunk []byte) error
	Stop()
}

// Transcriber opens one stream per call.
type Transcriber interface {
	Start(ctx context.Context, h Handler) (Stream, error)
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are ignored.
type HandlerFuncs struct {
	Transcript   func(text string, isFinal bool)
	UtteranceEnd func()
	Error        func(err error)
}

func (h HandlerFuncs) OnTranscript(text string, isFinal bool) {
	if h.Transcript != nil {
		h.Transcript(text, isFinal)
	}
}

func (h HandlerFuncs) OnUtteranceEnd() {
	if h.UtteranceEnd != nil {
		h.UtteranceEnd()
	}
}

func (h HandlerFuncs) OnError(err error) {
	if h.Error != nil {
		h.Error(err)
	}
}
