package selector

import (
	"time"

	"github.com/modelmux/modelmux/services"
	"github.com/modelmux/modelmux/services/providers"
	"github.com/modelmux/modelmux/services/ratelimit"
	"go.uber.org/zap"
)

// Selector picks the single best eligible provider for a request. Selection
// rules are an ordered list of predicate+pick functions evaluated in
// sequence; the first rule that yields a provider wins. A successful return
// has already consumed one admission slot on the returned provider, so
// admission and selection are atomic from the caller's point of view.
type Selector struct {
	registry *providers.Registry
	limiter  *ratelimit.Limiter
	logger   *zap.Logger
	rules    []rule

	// now is swapped in tests for deterministic windows
	now func() time.Time
}

// rule attempts to pick a provider for the request. ok is false when the
// rule does not apply or found no admitting candidate.
type rule func(req providers.Request, excluded map[string]bool) (providers.Descriptor, bool)

// New creates a selector over the given registry and limiter
func New(registry *providers.Registry, limiter *ratelimit.Limiter, logger *zap.Logger) *Selector {
	s := &Selector{
		registry: registry,
		limiter:  limiter,
		logger:   logger,
		now:      time.Now,
	}
	s.rules = []rule{
		s.preferredRule,
		s.capabilityRule,
		s.priorityRule,
	}
	return s
}

// Select returns the chosen provider or ErrNoProviderAvailable. The excluded
// set names providers that already failed or were exhausted during the
// current dispatch; they are never returned.
func (s *Selector) Select(req providers.Request, excluded map[string]bool) (providers.Descriptor, error) {
	for _, r := range s.rules {
		if desc, ok := r(req, excluded); ok {
			s.logger.Debug("provider selected",
				zap.String("provider", desc.Name),
				zap.Int("priority", desc.Priority))
			return desc, nil
		}
	}
	return providers.Descriptor{}, services.ErrNoProviderAvailable
}

// preferredRule honors an explicit preferred provider: it must not be
// excluded, must exist and be enabled, and must admit. The preferred name
// wins over priority order and is not filtered by required capabilities —
// the caller asked for it by name.
func (s *Selector) preferredRule(req providers.Request, excluded map[string]bool) (providers.Descriptor, bool) {
	if req.PreferredProvider == "" || excluded[req.PreferredProvider] {
		return providers.Descriptor{}, false
	}

	desc, err := s.registry.Get(req.PreferredProvider)
	if err != nil || !desc.Enabled {
		return providers.Descriptor{}, false
	}

	if !s.limiter.TryAdmit(desc.Name, s.now()) {
		return providers.Descriptor{}, false
	}
	return desc, true
}

// capabilityRule applies only when the request carries required capability
// tags: the first enabled, non-excluded provider (in priority order) whose
// capability set is a superset of the required set and that admits.
func (s *Selector) capabilityRule(req providers.Request, excluded map[string]bool) (providers.Descriptor, bool) {
	if len(req.RequiredCapabilities) == 0 {
		return providers.Descriptor{}, false
	}

	for _, desc := range s.registry.ListEnabled() {
		if excluded[desc.Name] || !desc.HasCapabilities(req.RequiredCapabilities) {
			continue
		}
		if s.limiter.TryAdmit(desc.Name, s.now()) {
			return desc, true
		}
	}
	return providers.Descriptor{}, false
}

// priorityRule picks the first enabled, non-excluded, admitting provider in
// priority order. No secondary tie-break beyond catalog order is applied.
func (s *Selector) priorityRule(req providers.Request, excluded map[string]bool) (providers.Descriptor, bool) {
	if len(req.RequiredCapabilities) > 0 {
		// capabilityRule already scanned; a capability-restricted request
		// must never land on a provider lacking the tags
		return providers.Descriptor{}, false
	}

	for _, desc := range s.registry.ListEnabled() {
		if excluded[desc.Name] {
			continue
		}
		if s.limiter.TryAdmit(desc.Name, s.now()) {
			return desc, true
		}
	}
	return providers.Descriptor{}, false
}
