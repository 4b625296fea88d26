package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewDispatchLog(t *testing.T) {
	log := NewDispatchLog("req-1", "openai")

	assert.NotEqual(t, uuid.Nil, log.ID)
	assert.Equal(t, "req-1", log.RequestID)
	assert.Equal(t, "openai", log.Provider)
	assert.WithinDuration(t, time.Now().UTC(), log.Timestamp, time.Second)
	assert.Nil(t, log.ErrorMessage)
}

func TestDispatchLog_Builders(t *testing.T) {
	log := NewDispatchLog("req-2", "groq").
		WithOutcome(false, true, 3, 420).
		WithError("all providers exhausted")

	assert.False(t, log.Success)
	assert.True(t, log.FellBack)
	assert.Equal(t, 3, log.Attempts)
	assert.Equal(t, int64(420), log.LatencyMs)
	if assert.NotNil(t, log.ErrorMessage) {
		assert.Equal(t, "all providers exhausted", *log.ErrorMessage)
	}
}
