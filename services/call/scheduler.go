// File: services/call/scheduler.go
package call

import (
	"context"
	"sync"
	"time"

	"phonedesk/services/session"
	"phonedesk/services/telephony"

	"go.uber.org/zap"
)

// Scheduler ends a call after the last sentence has had time to play.
type Scheduler interface {
	ScheduleHangup(ctx context.Context, callID string, after time.Duration) error
	ScheduleTransfer(ctx context.Context, callID, number string, after time.Duration) error
}

// EndCall hangs up or transfers a call and drops its session.
func EndCall(ctx context.Context, control telephony.CallControl, sessions session.Store, callID, number string) error {
	var err error
	if number != "" {
		err = control.Transfer(ctx, callID, number)
	} else {
		err = control.Hangup(ctx, callID)
	}
	if derr := sessions.Delete(ctx, callID); derr != nil && err == nil {
		err = derr
	}
	return err
}

// TimerScheduler runs call endings in-process. Pending timers are lost on
// restart; the queue-backed scheduler survives one.
type TimerScheduler struct {
	control  telephony.CallControl
	sessions session.Store
	logger   *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewTimerScheduler(control telephony.CallControl, sessions session.Store, logger *zap.Logger) *TimerScheduler {
	return &TimerScheduler{control: control, sessions: sessions, logger: logger, timers: map[string]*time.Timer{}}
}

func (t *TimerScheduler) ScheduleHangup(ctx context.Context, callID string, after time.Duration) error {
	t.schedule(callID, "", after)
	return nil
}

func (t *TimerScheduler) ScheduleTransfer(ctx context.Context, callID, number string, after time.Duration) error {
	t.schedule(callID, number, after)
	return nil
}

func (t *TimerScheduler) schedule(callID, number string, after time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.timers[callID]; ok {
		old.Stop()
	}
	t.timers[callID] = time.AfterFunc(after, func() {
		t.mu.Lock()
		delete(t.timers, callID)
		t.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := EndCall(ctx, t.control, t.sessions, callID, number); err != nil {
			t.logger.Error("Failed to end call", zap.String("callID", callID), zap.Error(err))
		}
	})
}

// Stop cancels every pending ending.
func (t *TimerScheduler) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}
