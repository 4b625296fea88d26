// Package audit persists dispatch outcomes asynchronously. The gateway layers
// it on top of the orchestrator; the orchestrator itself never writes to
// storage. When no repository is configured the service is a no-op.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/modelmux/modelmux/models"
	"github.com/modelmux/modelmux/repositories"
)

// Service handles asynchronous dispatch log persistence
type Service struct {
	repo        repositories.DispatchLogRepository
	logger      *zap.Logger
	eventChan   chan *models.DispatchLog
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	started     bool
	mu          sync.Mutex
}

// Config holds configuration for the audit service
type Config struct {
	BufferSize  int
	WorkerCount int
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1000,
		WorkerCount: 2,
	}
}

// NewService creates an audit service. repo may be nil, which disables
// persistence entirely.
func NewService(repo repositories.DispatchLogRepository, logger *zap.Logger, config Config) *Service {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}
	return &Service{
		repo:        repo,
		logger:      logger,
		eventChan:   make(chan *models.DispatchLog, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
	}
}

// Enabled reports whether persistence is configured
func (s *Service) Enabled() bool {
	return s != nil && s.repo != nil
}

// Start starts the background workers. A disabled service starts as a no-op.
func (s *Service) Start() error {
	if !s.Enabled() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop drains pending events and stops the workers
func (s *Service) Stop(timeout time.Duration) error {
	if !s.Enabled() {
		return nil
	}

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.started = false
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_events", len(s.eventChan)))
	close(s.eventChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// Record queues a dispatch log without blocking. The entry is dropped with a
// warning when the buffer is full; losing an audit row must never fail the
// request that produced it.
func (s *Service) Record(log *models.DispatchLog) {
	if !s.Enabled() {
		return
	}

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}

	select {
	case s.eventChan <- log:
	default:
		s.logger.Warn("audit buffer full, dropping dispatch log",
			zap.String("request_id", log.RequestID),
			zap.String("provider", log.Provider))
	}
}

// worker processes queued entries until the channel closes
func (s *Service) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("audit worker started", zap.Int("worker_id", id))

	for log := range s.eventChan {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Insert(ctx, log); err != nil {
			s.logger.Error("failed to persist dispatch log",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("request_id", log.RequestID))
		}
		cancel()
	}

	s.logger.Debug("audit worker stopped", zap.Int("worker_id", id))
}

// Stats represents audit service statistics
type Stats struct {
	Enabled       bool
	BufferSize    int
	PendingEvents int
	WorkerCount   int
	Started       bool
}

// GetStats returns statistics about the audit service
func (s *Service) GetStats() Stats {
	if !s.Enabled() {
		return Stats{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Enabled:       true,
		BufferSize:    s.bufferSize,
		PendingEvents: len(s.eventChan),
		WorkerCount:   s.workerCount,
		Started:       s.started,
	}
}
