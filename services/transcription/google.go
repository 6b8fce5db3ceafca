// File: services/transcription/google.go
package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	sampleRate      = 8000
	maxRestarts     = 3
	audioBufferSize = 128
)

// Google streams telephone audio to Cloud Speech-to-Text.
type Google struct {
	client   *speech.Client
	language string
	logger   *zap.Logger
}

func NewGoogle(ctx context.Context, credentialsFile, language string, logger *zap.Logger) (*Google, error) {
	client, err := speech.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &Google{client: client, language: language, logger: logger}, nil
}

func (g *Google) Close() error { return g.client.Close() }

func (g *Google) config() *speechpb.StreamingRecognitionConfig {
	return &speechpb.StreamingRecognitionConfig{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_MULAW,
			SampleRateHertz:            sampleRate,
			LanguageCode:               g.language,
			Model:                      "phone_call",
			UseEnhanced:                true,
			EnableAutomaticPunctuation: false,
		},
		InterimResults: true,
	}
}

// Start opens a recognition stream. Google ends streams after a few minutes;
// they are reopened transparently until Stop.
func (g *Google) Start(ctx context.Context, h Handler) (Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &googleStream{
		g:      g,
		h:      h,
		ctx:    ctx,
		cancel: cancel,
		audio:  make(chan []byte, audioBufferSize),
		done:   make(chan struct{}),
	}
	first, err := s.open()
	if err != nil {
		cancel()
		return nil, err
	}
	go s.run(first)
	return s, nil
}

type googleStream struct {
	g      *Google
	h      Handler
	ctx    context.Context
	cancel context.CancelFunc
	audio  chan []byte
	done   chan struct{}
	once   sync.Once
}

func (s *googleStream) Write(chunk []byte) error {
	select {
	case <-s.ctx.Done():
		return ErrStopped
	case s.audio <- chunk:
		return nil
	}
}

func (s *googleStream) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

func (s *googleStream) open() (speechpb.Speech_StreamingRecognizeClient, error) {
	stream, err := s.g.client.StreamingRecognize(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("open recognize stream: %w", err)
	}
	err = stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{StreamingConfig: s.g.config()},
	})
	if err != nil {
		return nil, fmt.Errorf("send recognize config: %w", err)
	}
	return stream, nil
}

func (s *googleStream) run(stream speechpb.Speech_StreamingRecognizeClient) {
	defer close(s.done)
	failures := 0
	for {
		err := s.session(stream)
		if s.ctx.Err() != nil {
			return
		}
		if err != nil && !restartable(err) {
			failures++
			s.h.OnError(err)
			if failures > maxRestarts {
				return
			}
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(time.Duration(failures) * 250 * time.Millisecond):
			}
		} else {
			failures = 0
		}
		s.g.logger.Debug("Reopening recognition stream", zap.Error(err))
		if stream, err = s.open(); err != nil {
			s.h.OnError(err)
			return
		}
	}
}

// session pumps audio into one stream and dispatches its results until it ends.
func (s *googleStream) session(stream speechpb.Speech_StreamingRecognizeClient) error {
	sessCtx, stop := context.WithCancel(s.ctx)
	defer stop()

	go func() {
		for {
			select {
			case <-sessCtx.Done():
				_ = stream.CloseSend()
				return
			case chunk := <-s.audio:
				err := stream.Send(&speechpb.StreamingRecognizeRequest{
					StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{AudioContent: chunk},
				})
				if err != nil {
					return
				}
			}
		}
	}()

	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if st := resp.GetError(); st != nil && st.GetCode() != 0 {
			return status.ErrorProto(st)
		}
		dispatch(resp, s.h)
	}
}

// restartable reports errors caused by the provider's stream duration limit.
func restartable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch status.Code(err) {
	case codes.OutOfRange, codes.DeadlineExceeded:
		return true
	}
	return strings.Contains(err.Error(), "maximum allowed stream duration")
}

// dispatch forwards one response: interim text as partials, final text as a
// complete fragment followed by the end of the utterance.
func dispatch(resp *speechpb.StreamingRecognizeResponse, h Handler) {
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		text := strings.TrimSpace(alts[0].GetTranscript())
		if text == "" {
			continue
		}
		h.OnTranscript(text, r.GetIsFinal())
		if r.GetIsFinal() {
			h.OnUtteranceEnd()
		}
	}
}
