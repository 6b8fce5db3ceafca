package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateHelpers(t *testing.T) {
	assert.Equal(t, "collect:date", CollectState("date"))
	assert.Equal(t, "date", StateField(CollectState("date")))
	assert.Equal(t, "items", StateField(MoreState("items")))
	assert.Empty(t, StateField(StateConfirm))
	assert.Empty(t, StateField("collect:"))

	assert.True(t, IsMoreState(MoreState("items")))
	assert.False(t, IsMoreState(CollectState("items")))

	for _, s := range []string{StateSuccess, StateDone, StateEscalate, StateError} {
		assert.True(t, IsTerminal(s), s)
	}
	assert.False(t, IsTerminal(StateConfirm))
	assert.False(t, IsTerminal(CollectState("time")))
}

func TestNewCallSession(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := NewCallSession("CA1", now)
	assert.Equal(t, StateGreeting, s.State)
	assert.NotNil(t, s.RetryCounts)
	assert.Zero(t, s.Version)
	assert.Equal(t, now, s.CreatedAt)
}
