package models

import (
	"time"

	"github.com/google/uuid"
)

// DispatchLog records the outcome of one dispatch for the audit trail
type DispatchLog struct {
	ID           uuid.UUID `json:"id" db:"id"`
	RequestID    string    `json:"request_id" db:"request_id"`
	Provider     string    `json:"provider" db:"provider"`
	FellBack     bool      `json:"fell_back" db:"fell_back"`
	Attempts     int       `json:"attempts" db:"attempts"`
	Success      bool      `json:"success" db:"success"`
	LatencyMs    int64     `json:"latency_ms" db:"latency_ms"`
	ErrorMessage *string   `json:"error_message,omitempty" db:"error_message"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
}

// NewDispatchLog creates a dispatch log entry with a fresh ID and timestamp
func NewDispatchLog(requestID, provider string) *DispatchLog {
	return &DispatchLog{
		ID:        uuid.New(),
		RequestID: requestID,
		Provider:  provider,
		Timestamp: time.Now().UTC(),
	}
}

// WithOutcome records the dispatch result
func (l *DispatchLog) WithOutcome(success, fellBack bool, attempts int, latencyMs int64) *DispatchLog {
	l.Success = success
	l.FellBack = fellBack
	l.Attempts = attempts
	l.LatencyMs = latencyMs
	return l
}

// WithError records the terminal error message
func (l *DispatchLog) WithError(message string) *DispatchLog {
	l.ErrorMessage = &message
	return l
}
