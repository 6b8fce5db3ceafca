// File: services/telephony/media.go
package telephony

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrClosed is returned once the media stream has ended.
var ErrClosed = errors.New("media stream closed")

// playChunk is 400 ms of 8 kHz mu-law.
const playChunk = 3200

// StartInfo identifies the call a media stream belongs to.
type StartInfo struct {
	CallID     string
	StreamID   string
	BusinessID string
	From       string
	Params     map[string]string
}

// EventType tags a media stream event.
type EventType int

const (
	EventMedia EventType = iota
	EventMark
	EventStop
)

// Event is one inbound message after the stream started.
type Event struct {
	Type  EventType
	Audio []byte
	Mark  string
}

// MediaStream is the bidirectional audio channel of one call.
type MediaStream interface {
	// Start blocks until the provider announces the call.
	Start(ctx context.Context) (StartInfo, error)
	// Events is closed when the stream ends.
	Events() <-chan Event
	// Play queues audio and returns the mark that fires when it has played.
	Play(ctx context.Context, audio []byte) (string, error)
	// Clear drops audio queued for playback.
	Clear() error
	Close() error
}

// Twilio Media Streams message types.
type mediaMessage struct {
	Event     string        `json:"event"`
	StreamSID string        `json:"streamSid,omitempty"`
	Start     *startMessage `json:"start,omitempty"`
	Media     *mediaPayload `json:"media,omitempty"`
	Mark      *markMessage  `json:"mark,omitempty"`
}

type startMessage struct {
	StreamSID    string            `json:"streamSid"`
	CallSID      string            `json:"callSid"`
	CustomParams map[string]string `json:"customParameters"`
}

type mediaPayload struct {
	Track   string `json:"track,omitempty"`
	Payload string `json:"payload"`
}

type markMessage struct {
	Name string `json:"name"`
}

// TwilioStream adapts a Twilio Media Streams websocket.
type TwilioStream struct {
	conn   *websocket.Conn
	logger *zap.Logger

	writeMu   sync.Mutex
	mu        sync.RWMutex
	streamSID string

	started   chan StartInfo
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewTwilioStream starts reading from an upgraded websocket.
func NewTwilioStream(conn *websocket.Conn, logger *zap.Logger) *TwilioStream {
	s := &TwilioStream{
		conn:    conn,
		logger:  logger,
		started: make(chan StartInfo, 1),
		events:  make(chan Event, 256),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *TwilioStream) Start(ctx context.Context) (StartInfo, error) {
	select {
	case info := <-s.started:
		return info, nil
	case <-s.done:
		return StartInfo{}, ErrClosed
	case <-ctx.Done():
		return StartInfo{}, ctx.Err()
	}
}

func (s *TwilioStream) Events() <-chan Event { return s.events }

func (s *TwilioStream) emit(e Event) bool {
	select {
	case s.events <- e:
		return true
	case <-s.done:
		return false
	}
}

func (s *TwilioStream) readLoop() {
	defer close(s.events)
	defer s.Close()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("Media stream read ended", zap.Error(err))
			}
			return
		}
		var msg mediaMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Event {
		case "start":
			if msg.Start == nil {
				continue
			}
			s.mu.Lock()
			s.streamSID = msg.Start.StreamSID
			s.mu.Unlock()
			params := msg.Start.CustomParams
			select {
			case s.started <- StartInfo{
				CallID:     msg.Start.CallSID,
				StreamID:   msg.Start.StreamSID,
				BusinessID: params["businessId"],
				From:       params["from"],
				Params:     params,
			}:
			default:
			}
		case "media":
			if msg.Media == nil || msg.Media.Payload == "" || (msg.Media.Track != "" && msg.Media.Track != "inbound") {
				continue
			}
			audio, err := base64.StdEncoding.DecodeString(msg.Media.Payload)
			if err != nil {
				continue
			}
			if !s.emit(Event{Type: EventMedia, Audio: audio}) {
				return
			}
		case "mark":
			if msg.Mark != nil && !s.emit(Event{Type: EventMark, Mark: msg.Mark.Name}) {
				return
			}
		case "stop":
			s.emit(Event{Type: EventStop})
			return
		}
	}
}

func (s *TwilioStream) write(v any) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *TwilioStream) sid() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streamSID
}

func (s *TwilioStream) Play(ctx context.Context, audio []byte) (string, error) {
	sid := s.sid()
	for off := 0; off < len(audio); off += playChunk {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		end := off + playChunk
		if end > len(audio) {
			end = len(audio)
		}
		err := s.write(mediaMessage{
			Event:     "media",
			StreamSID: sid,
			Media:     &mediaPayload{Payload: base64.StdEncoding.EncodeToString(audio[off:end])},
		})
		if err != nil {
			return "", err
		}
	}
	mark := uuid.NewString()
	if err := s.write(mediaMessage{Event: "mark", StreamSID: sid, Mark: &markMessage{Name: mark}}); err != nil {
		return "", err
	}
	return mark, nil
}

func (s *TwilioStream) Clear() error {
	return s.write(mediaMessage{Event: "clear", StreamSID: s.sid()})
}

func (s *TwilioStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
	return nil
}
