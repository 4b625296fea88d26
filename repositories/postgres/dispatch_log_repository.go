package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modelmux/modelmux/models"
	"github.com/modelmux/modelmux/repositories"
)

// DispatchLogRepository implements repositories.DispatchLogRepository
type DispatchLogRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDispatchLogRepository creates a new dispatch log repository
func NewDispatchLogRepository(db *DB, logger *zap.Logger) repositories.DispatchLogRepository {
	return &DispatchLogRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores one dispatch log entry
func (r *DispatchLogRepository) Insert(ctx context.Context, log *models.DispatchLog) error {
	query := `
		INSERT INTO dispatch_logs (
			id, request_id, provider, fell_back, attempts, success,
			latency_ms, error_message, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.RequestID,
		log.Provider,
		log.FellBack,
		log.Attempts,
		log.Success,
		log.LatencyMs,
		log.ErrorMessage,
		log.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert dispatch log: %w", err)
	}

	r.logger.Debug("dispatch log inserted",
		zap.String("id", log.ID.String()),
		zap.String("provider", log.Provider))
	return nil
}

// GetByID retrieves a dispatch log by ID
func (r *DispatchLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DispatchLog, error) {
	query := `
		SELECT id, request_id, provider, fell_back, attempts, success,
		       latency_ms, error_message, timestamp
		FROM dispatch_logs
		WHERE id = $1
	`

	log := &models.DispatchLog{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&log.ID,
		&log.RequestID,
		&log.Provider,
		&log.FellBack,
		&log.Attempts,
		&log.Success,
		&log.LatencyMs,
		&log.ErrorMessage,
		&log.Timestamp,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("dispatch log not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get dispatch log: %w", err)
	}

	return log, nil
}

// GetByProvider retrieves recent dispatch logs for a provider
func (r *DispatchLogRepository) GetByProvider(ctx context.Context, provider string, limit, offset int) ([]*models.DispatchLog, error) {
	query := `
		SELECT id, request_id, provider, fell_back, attempts, success,
		       latency_ms, error_message, timestamp
		FROM dispatch_logs
		WHERE provider = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryLogs(ctx, query, provider, limit, offset)
}

// GetByDateRange retrieves dispatch logs within a time range
func (r *DispatchLogRepository) GetByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*models.DispatchLog, error) {
	query := `
		SELECT id, request_id, provider, fell_back, attempts, success,
		       latency_ms, error_message, timestamp
		FROM dispatch_logs
		WHERE timestamp >= $1 AND timestamp <= $2
		ORDER BY timestamp DESC
		LIMIT $3 OFFSET $4
	`

	return r.queryLogs(ctx, query, start, end, limit, offset)
}

// queryLogs is a helper method to query multiple dispatch logs
func (r *DispatchLogRepository) queryLogs(ctx context.Context, query string, args ...interface{}) ([]*models.DispatchLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dispatch logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.DispatchLog
	for rows.Next() {
		log := &models.DispatchLog{}
		err := rows.Scan(
			&log.ID,
			&log.RequestID,
			&log.Provider,
			&log.FellBack,
			&log.Attempts,
			&log.Success,
			&log.LatencyMs,
			&log.ErrorMessage,
			&log.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dispatch log rows: %w", err)
	}

	return logs, nil
}
