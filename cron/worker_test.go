package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"phonedesk/services/session"
	"phonedesk/services/telephony"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeControl struct {
	hungUp      []string
	transferred map[string]string
	err         error
}

func (f *fakeControl) Hangup(ctx context.Context, callID string) error {
	f.hungUp = append(f.hungUp, callID)
	return f.err
}

func (f *fakeControl) Transfer(ctx context.Context, callID, number string) error {
	if f.transferred == nil {
		f.transferred = map[string]string{}
	}
	f.transferred[callID] = number
	return f.err
}

func seed(t *testing.T, store session.Store, callID string) {
	t.Helper()
	s, err := store.Get(context.Background(), callID)
	require.NoError(t, err)
	s.BusinessID = "snack"
	require.NoError(t, store.Save(context.Background(), s))
}

func TestEndCallTaskPayload(t *testing.T) {
	task, err := newEndCallTask(TypeCallTransfer, EndCallPayload{CallID: "CA1", Number: "+31201234567"})
	require.NoError(t, err)
	assert.Equal(t, TypeCallTransfer, task.Type())

	var p EndCallPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "CA1", p.CallID)
	assert.Equal(t, "+31201234567", p.Number)
}

func TestHandleEndCall(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	control := &fakeControl{}
	handle := handleEndCall(control, store, zap.NewNop())

	seed(t, store, "CA1")
	task, err := newEndCallTask(TypeCallHangup, EndCallPayload{CallID: "CA1", Number: "+31201234567"})
	require.NoError(t, err)
	require.NoError(t, handle(ctx, task))
	assert.Equal(t, []string{"CA1"}, control.hungUp, "hangup tasks never transfer")
	s, err := store.Get(ctx, "CA1")
	require.NoError(t, err)
	assert.Zero(t, s.Version)

	seed(t, store, "CA2")
	task, err = newEndCallTask(TypeCallTransfer, EndCallPayload{CallID: "CA2", Number: "+31201234567"})
	require.NoError(t, err)
	require.NoError(t, handle(ctx, task))
	assert.Equal(t, "+31201234567", control.transferred["CA2"])
}

func TestHandleEndCallErrors(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	err := handleEndCall(&fakeControl{}, store, zap.NewNop())(ctx, asynq.NewTask(TypeCallHangup, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	task, err := newEndCallTask(TypeCallHangup, EndCallPayload{CallID: "CA1"})
	require.NoError(t, err)

	gone := &fakeControl{err: &telephony.APIError{Code: 20404, Message: "not found", Status: 404}}
	assert.NoError(t, handleEndCall(gone, store, zap.NewNop())(ctx, task), "call already over")

	down := &fakeControl{err: errors.New("twilio down")}
	assert.Error(t, handleEndCall(down, store, zap.NewNop())(ctx, task))
}
