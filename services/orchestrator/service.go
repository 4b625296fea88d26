package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelmux/modelmux/services"
	"github.com/modelmux/modelmux/services/dispatch"
	"github.com/modelmux/modelmux/services/providers"
	"github.com/modelmux/modelmux/services/ratelimit"
	"go.uber.org/zap"
)

// Response is the caller-visible result of one generate call
type Response struct {
	// ID identifies the dispatch for log correlation
	ID string `json:"id"`

	// Provider is the name of the provider that produced the payload
	Provider string `json:"provider"`

	// Payload is the provider's output
	Payload string `json:"payload"`

	// FellBack is true when at least one provider failed before the
	// winning one succeeded
	FellBack bool `json:"fell_back"`

	// Attempted lists every provider tried, in order
	Attempted []string `json:"attempted"`
}

// ProviderStatus is the read-only per-provider view exposed for dashboards
// and logging
type ProviderStatus struct {
	Name              string   `json:"name"`
	Priority          int      `json:"priority"`
	Capabilities      []string `json:"capabilities,omitempty"`
	RequestsPerMinute int      `json:"requests_per_minute"`
	WindowCount       int      `json:"window_count"`
}

// Status is the orchestrator's introspection snapshot
type Status struct {
	CatalogSize  int              `json:"catalog_size"`
	EnabledCount int              `json:"enabled_count"`
	Providers    []ProviderStatus `json:"providers"`
}

// Service is the only externally visible entry point of the orchestrator
// core: it composes the registry, limiter, and dispatcher and returns a
// normalized result or a terminal error.
type Service struct {
	registry   *providers.Registry
	limiter    *ratelimit.Limiter
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
}

// NewService creates the orchestrator facade
func NewService(registry *providers.Registry, limiter *ratelimit.Limiter, dispatcher *dispatch.Dispatcher, logger *zap.Logger) *Service {
	return &Service{
		registry:   registry,
		limiter:    limiter,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Generate routes one inference request. It fails fast with
// ErrNoProviderConfigured when zero providers are enabled; otherwise it
// delegates to the fallback dispatcher and normalizes the outcome. Expected
// exhaustion comes back as a typed domain error, never a panic.
func (s *Service) Generate(ctx context.Context, req providers.Request) (*Response, error) {
	if s.registry.EnabledCount() == 0 {
		return nil, services.ErrNoProviderConfigured
	}

	outcome, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		return nil, s.normalizeError(err)
	}

	return &Response{
		ID:        outcome.ID.String(),
		Provider:  outcome.Provider,
		Payload:   outcome.Payload,
		FellBack:  outcome.FellBack,
		Attempted: outcome.Attempted,
	}, nil
}

// normalizeError maps dispatcher failures onto the domain error taxonomy:
// zero selectable providers stays a rate-limit class error, while a final
// exhausting invocation failure surfaces as an external error carrying the
// attempted list.
func (s *Service) normalizeError(err error) error {
	var exhausted *dispatch.ExhaustedError
	if !errors.As(err, &exhausted) {
		return fmt.Errorf("dispatch failed: %w", err)
	}

	if len(exhausted.Attempted) == 0 {
		return services.ErrNoProviderAvailable
	}

	return services.NewDomainError(services.ErrorTypeExternal, "all providers exhausted", exhausted.LastErr).
		WithDetail("attempted", exhausted.Attempted).
		WithDetail("attempts", len(exhausted.Attempted))
}

// Status returns the read-only introspection snapshot: enabled provider
// count, catalog size, and each enabled provider's priority, capabilities,
// limit, and current window count. Pure reads, no side effects.
func (s *Service) Status() Status {
	now := time.Now()
	enabled := s.registry.ListEnabled()

	status := Status{
		CatalogSize:  s.registry.Count(),
		EnabledCount: len(enabled),
		Providers:    make([]ProviderStatus, 0, len(enabled)),
	}

	for _, desc := range enabled {
		snap, _ := s.limiter.Snapshot(desc.Name, now)
		status.Providers = append(status.Providers, ProviderStatus{
			Name:              desc.Name,
			Priority:          desc.Priority,
			Capabilities:      desc.Capabilities,
			RequestsPerMinute: desc.RequestsPerMinute,
			WindowCount:       snap.Count,
		})
	}
	return status
}

// ListEnabled exposes the enabled provider descriptors for operational
// tooling
func (s *Service) ListEnabled() []providers.Descriptor {
	return s.registry.ListEnabled()
}
