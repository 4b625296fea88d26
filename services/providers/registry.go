package providers

import (
	"fmt"
	"sort"

	"github.com/modelmux/modelmux/services"
	"go.uber.org/zap"
)

// CredentialSource reports whether a provider's credential is configured.
// It is consulted exactly once, at registry initialization.
type CredentialSource interface {
	IsConfigured(provider string) bool
}

// Registry holds the static provider catalog and the subset that is enabled.
// It is an explicitly constructed, dependency-injected instance: all state is
// resolved in NewRegistry and immutable afterwards, so concurrent reads need
// no locking. Enabling or disabling a provider requires re-initialization
// (restart semantics).
type Registry struct {
	logger  *zap.Logger
	byName  map[string]Descriptor
	enabled []Descriptor
	size    int
}

// NewRegistry builds a registry from the catalog. A provider is enabled when
// its credential is configured or it is marked always-available. The enabled
// slice is sorted ascending by priority; the sort is stable so catalog order
// breaks ties.
func NewRegistry(catalog []Descriptor, creds CredentialSource, logger *zap.Logger) (*Registry, error) {
	r := &Registry{
		logger: logger,
		byName: make(map[string]Descriptor, len(catalog)),
		size:   len(catalog),
	}

	for _, desc := range catalog {
		if desc.Name == "" {
			return nil, services.NewDomainError(services.ErrorTypeValidation, "provider name cannot be empty", nil)
		}
		if _, exists := r.byName[desc.Name]; exists {
			return nil, fmt.Errorf("%w: %s", services.ErrDuplicateProvider, desc.Name)
		}

		desc.Enabled = desc.AlwaysAvailable || (creds != nil && creds.IsConfigured(desc.Name))
		r.byName[desc.Name] = desc

		if desc.Enabled {
			r.enabled = append(r.enabled, desc)
		} else {
			logger.Info("provider disabled, credential not configured",
				zap.String("provider", desc.Name))
		}
	}

	sort.SliceStable(r.enabled, func(i, j int) bool {
		return r.enabled[i].Priority < r.enabled[j].Priority
	})

	logger.Info("provider registry initialized",
		zap.Int("catalog_size", r.size),
		zap.Int("enabled", len(r.enabled)))

	return r, nil
}

// ListEnabled returns the enabled providers sorted ascending by priority.
// The result is deterministic for a fixed catalog and enabled set. Callers
// receive a copy and cannot mutate registry state.
func (r *Registry) ListEnabled() []Descriptor {
	out := make([]Descriptor, len(r.enabled))
	copy(out, r.enabled)
	return out
}

// Get retrieves a provider descriptor by name
func (r *Registry) Get(name string) (Descriptor, error) {
	desc, exists := r.byName[name]
	if !exists {
		return Descriptor{}, fmt.Errorf("%w: %s", services.ErrProviderNotFound, name)
	}
	return desc, nil
}

// Count returns the total catalog size, enabled or not
func (r *Registry) Count() int {
	return r.size
}

// EnabledCount returns the number of enabled providers
func (r *Registry) EnabledCount() int {
	return len(r.enabled)
}
