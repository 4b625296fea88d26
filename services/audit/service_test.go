package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/modelmux/modelmux/models"
	"github.com/modelmux/modelmux/repositories"
)

type memoryRepo struct {
	mu   sync.Mutex
	logs []*models.DispatchLog
	err  error
}

func (r *memoryRepo) Insert(_ context.Context, log *models.DispatchLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.logs = append(r.logs, log)
	return nil
}

func (r *memoryRepo) GetByID(context.Context, uuid.UUID) (*models.DispatchLog, error) {
	return nil, nil
}

func (r *memoryRepo) GetByProvider(context.Context, string, int, int) ([]*models.DispatchLog, error) {
	return nil, nil
}

func (r *memoryRepo) GetByDateRange(context.Context, time.Time, time.Time, int, int) ([]*models.DispatchLog, error) {
	return nil, nil
}

func (r *memoryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.logs)
}

var _ repositories.DispatchLogRepository = (*memoryRepo)(nil)

func TestService_RecordAndDrain(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 2})

	require.NoError(t, svc.Start())

	for i := 0; i < 5; i++ {
		svc.Record(models.NewDispatchLog("req", "openai").WithOutcome(true, false, 1, 10))
	}

	require.NoError(t, svc.Stop(time.Second))
	assert.Equal(t, 5, repo.count())
}

func TestService_DisabledIsNoOp(t *testing.T) {
	svc := NewService(nil, zap.NewNop(), DefaultConfig())

	assert.False(t, svc.Enabled())
	assert.NoError(t, svc.Start())
	svc.Record(models.NewDispatchLog("req", "p"))
	assert.NoError(t, svc.Stop(time.Second))
	assert.Equal(t, Stats{}, svc.GetStats())
}

func TestService_DoubleStart(t *testing.T) {
	svc := NewService(&memoryRepo{}, zap.NewNop(), DefaultConfig())

	require.NoError(t, svc.Start())
	assert.Error(t, svc.Start())
	require.NoError(t, svc.Stop(time.Second))
}

func TestService_StopWithoutStart(t *testing.T) {
	svc := NewService(&memoryRepo{}, zap.NewNop(), DefaultConfig())
	assert.Error(t, svc.Stop(time.Second))
}

func TestService_RecordAfterStopIsDropped(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 1})

	require.NoError(t, svc.Start())
	require.NoError(t, svc.Stop(time.Second))

	// must not panic on the closed channel
	svc.Record(models.NewDispatchLog("req", "p"))
	assert.Equal(t, 0, repo.count())
}

func TestService_InsertFailureDoesNotBlock(t *testing.T) {
	repo := &memoryRepo{err: assert.AnError}
	svc := NewService(repo, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 1})

	require.NoError(t, svc.Start())
	svc.Record(models.NewDispatchLog("req", "p"))
	assert.NoError(t, svc.Stop(time.Second))
}

func TestService_GetStats(t *testing.T) {
	svc := NewService(&memoryRepo{}, zap.NewNop(), Config{BufferSize: 7, WorkerCount: 3})
	require.NoError(t, svc.Start())

	stats := svc.GetStats()
	assert.True(t, stats.Enabled)
	assert.True(t, stats.Started)
	assert.Equal(t, 7, stats.BufferSize)
	assert.Equal(t, 3, stats.WorkerCount)

	require.NoError(t, svc.Stop(time.Second))
	assert.False(t, svc.GetStats().Started)
}
