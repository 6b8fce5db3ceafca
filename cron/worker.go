package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"phonedesk/config"
	"phonedesk/services/call"
	"phonedesk/services/session"
	"phonedesk/services/telephony"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeCallHangup   = "call:hangup"
	TypeCallTransfer = "call:transfer"
)

// EndCallPayload names the call to end and, for a transfer, where to.
type EndCallPayload struct {
	CallID string `json:"callId"`
	Number string `json:"number,omitempty"`
}

// RedisOpt is the queue connection from configuration.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// Scheduler enqueues delayed call endings so they survive a restart.
type Scheduler struct {
	client *asynq.Client
}

func NewScheduler(opt asynq.RedisClientOpt) *Scheduler {
	return &Scheduler{client: asynq.NewClient(opt)}
}

func (s *Scheduler) ScheduleHangup(ctx context.Context, callID string, after time.Duration) error {
	return s.enqueue(ctx, TypeCallHangup, EndCallPayload{CallID: callID}, after)
}

func (s *Scheduler) ScheduleTransfer(ctx context.Context, callID, number string, after time.Duration) error {
	return s.enqueue(ctx, TypeCallTransfer, EndCallPayload{CallID: callID, Number: number}, after)
}

func (s *Scheduler) Close() error { return s.client.Close() }

func (s *Scheduler) enqueue(ctx context.Context, typ string, p EndCallPayload, after time.Duration) error {
	task, err := newEndCallTask(typ, p)
	if err != nil {
		return err
	}
	// One ending per call; a second request while the first is pending is a no-op.
	_, err = s.client.EnqueueContext(ctx, task, asynq.ProcessIn(after), asynq.TaskID(p.CallID))
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func newEndCallTask(typ string, p EndCallPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typ, data, asynq.MaxRetry(3), asynq.Timeout(30*time.Second)), nil
}

// InitWorker runs the call-ending worker in background.
func InitWorker(ctx context.Context, opt asynq.RedisClientOpt, control telephony.CallControl, sessions session.Store, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	handler := handleEndCall(control, sessions, logger)
	mux.HandleFunc(TypeCallHangup, handler)
	mux.HandleFunc(TypeCallTransfer, handler)

	go monitorRedisConnection(ctx, opt, logger)

	// Start async worker with retry logic
	go func() {
		logger.Info("Starting call worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("Failed to start call worker",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Call worker not started; calls will not be ended automatically")
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempts*2) * time.Second):
			}
		}
	}()
	return srv
}

func handleEndCall(control telephony.CallControl, sessions session.Store, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p EndCallPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil || p.CallID == "" {
			logger.Error("Invalid call task payload", zap.String("type", task.Type()), zap.Error(err))
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}
		if task.Type() == TypeCallHangup {
			p.Number = ""
		}

		logger.Info("Ending call", zap.String("callID", p.CallID), zap.String("type", task.Type()))
		err := call.EndCall(ctx, control, sessions, p.CallID, p.Number)

		var apiErr *telephony.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			// The caller already hung up.
			return nil
		}
		if err != nil {
			logger.Error("Failed to end call", zap.String("callID", p.CallID), zap.Error(err))
		}
		return err
	}
}

// monitorRedisConnection pings the queue Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context, opt asynq.RedisClientOpt, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     opt.Addr,
		Password: opt.Password,
		DB:       opt.DB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("Queue Redis connection lost", zap.Error(err))
			}
		}
	}
}
