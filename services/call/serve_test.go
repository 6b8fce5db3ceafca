package call

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"phonedesk/services/speech"
	"phonedesk/services/telephony"
	"phonedesk/services/transcription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	info   telephony.StartInfo
	events chan telephony.Event

	mu     sync.Mutex
	played []string
	closed bool
}

func newFakeStream(info telephony.StartInfo) *fakeStream {
	return &fakeStream{info: info, events: make(chan telephony.Event, 16)}
}

func (f *fakeStream) Start(ctx context.Context) (telephony.StartInfo, error) { return f.info, nil }
func (f *fakeStream) Events() <-chan telephony.Event                         { return f.events }
func (f *fakeStream) Clear() error                                           { return nil }

func (f *fakeStream) Play(ctx context.Context, audio []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, string(audio))
	return "mark", nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeStream) plays() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...)
}

type fakeTranscriber struct {
	mu      sync.Mutex
	handler transcription.Handler
	writes  atomic.Int32
	stopped atomic.Bool
}

func (f *fakeTranscriber) Start(ctx context.Context, h transcription.Handler) (transcription.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
	return f, nil
}

func (f *fakeTranscriber) Write(chunk []byte) error {
	f.writes.Add(1)
	return nil
}

func (f *fakeTranscriber) Stop() { f.stopped.Store(true) }

func (f *fakeTranscriber) h() transcription.Handler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler
}

type echoSpeaker struct{}

func (echoSpeaker) Speak(ctx context.Context, text string) (speech.AudioHandle, error) {
	return speech.AudioHandle{Key: text, Audio: []byte(text)}, nil
}

func TestServeRunsACall(t *testing.T) {
	h := newHarness(t, nil)
	tr := &fakeTranscriber{}
	h.engine.Transcriber = tr
	h.engine.Speech = echoSpeaker{}

	stream := newFakeStream(telephony.StartInfo{CallID: "CA1", BusinessID: "snack", From: "+31612345678"})
	done := make(chan error, 1)
	go func() { done <- h.engine.Serve(ctx, stream) }()

	require.Eventually(t, func() bool { return len(stream.plays()) == 1 && tr.h() != nil }, time.Second, 5*time.Millisecond)
	assert.Contains(t, stream.plays()[0], "Snackbar Piet")

	stream.events <- telephony.Event{Type: telephony.EventMedia, Audio: []byte{0xff, 0xff}}
	handler := tr.h()
	handler.OnTranscript("twee grote", false)
	handler.OnTranscript("twee grote friet met mayo", true)
	handler.OnUtteranceEnd()

	require.Eventually(t, func() bool { return len(stream.plays()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, stream.plays()[1], "twee grote friet met mayonaise")

	stream.events <- telephony.Event{Type: telephony.EventStop}
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after stop")
	}

	assert.True(t, tr.stopped.Load())
	assert.EqualValues(t, 1, tr.writes.Load())
	assert.True(t, stream.closed)
	s, err := h.store.Get(ctx, "CA1")
	require.NoError(t, err)
	assert.Zero(t, s.Version, "session dropped when the call ends")
}

func TestServeHangsUpUnknownBusiness(t *testing.T) {
	h := newHarness(t, nil)
	tr := &fakeTranscriber{}
	control := &fakeControl{}
	h.engine.Transcriber = tr
	h.engine.Speech = echoSpeaker{}
	h.engine.Control = control

	stream := newFakeStream(telephony.StartInfo{CallID: "CA9", BusinessID: "nope"})
	done := make(chan error, 1)
	go func() { done <- h.engine.Serve(ctx, stream) }()

	require.Eventually(t, func() bool { return control.hangups.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, stream.plays())
	close(stream.events)
	require.NoError(t, <-done)
}

type fakeControl struct {
	hangups   atomic.Int32
	transfers atomic.Int32
}

func (f *fakeControl) Hangup(ctx context.Context, callID string) error {
	f.hangups.Add(1)
	return nil
}

func (f *fakeControl) Transfer(ctx context.Context, callID, number string) error {
	f.transfers.Add(1)
	return nil
}

func TestAggregatorJoinsFragments(t *testing.T) {
	a := &aggregator{}
	a.add("een cola", true)
	a.add("en een", false)
	a.add("en een burger", true)
	assert.Equal(t, "een cola en een burger", a.flush())
	assert.Empty(t, a.flush())

	a.add("dat was", false)
	assert.Equal(t, "dat was", a.flush(), "unfinished interim text is kept")
}

func TestMailboxKeepsLatest(t *testing.T) {
	m := newMailbox()
	m.put("first")
	m.put("second")

	u, ok := m.next(ctx)
	require.True(t, ok)
	assert.Equal(t, "second", u)

	c, cancel := context.WithCancel(ctx)
	cancel()
	_, ok = m.next(c)
	assert.False(t, ok)
}

func TestTimerSchedulerEndsCall(t *testing.T) {
	h := newHarness(t, nil)
	control := &fakeControl{}
	_, err := h.engine.Greet(ctx, "CA1", "snack", "")
	require.NoError(t, err)

	ts := NewTimerScheduler(control, h.store, h.engine.Logger)
	require.NoError(t, ts.ScheduleTransfer(ctx, "CA1", "+31201234567", 10*time.Millisecond))
	require.NoError(t, ts.ScheduleHangup(ctx, "CA2", time.Hour))

	require.Eventually(t, func() bool { return control.transfers.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		s, err := h.store.Get(ctx, "CA1")
		return err == nil && s.Version == 0
	}, time.Second, 5*time.Millisecond)

	ts.Stop()
	assert.Zero(t, control.hangups.Load())
}
