// Package repositories defines the persistence interfaces the gateway's
// audit trail is built on. Implementations live in subpackages.
package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/modelmux/modelmux/models"
)

// DispatchLogRepository persists dispatch outcomes
type DispatchLogRepository interface {
	// Insert stores one dispatch log entry
	Insert(ctx context.Context, log *models.DispatchLog) error

	// GetByID retrieves a dispatch log by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.DispatchLog, error)

	// GetByProvider retrieves recent dispatch logs for a provider
	GetByProvider(ctx context.Context, provider string, limit, offset int) ([]*models.DispatchLog, error)

	// GetByDateRange retrieves dispatch logs within a time range
	GetByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*models.DispatchLog, error)
}
