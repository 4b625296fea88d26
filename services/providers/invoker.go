package providers

import (
	"context"
	"fmt"
	"strings"
)

// Request is the request descriptor carried through one selection/dispatch
// cycle. It is immutable for the duration of the cycle.
type Request struct {
	// Prompt is the inference input forwarded to the chosen provider
	Prompt string

	// PreferredProvider optionally names the provider the caller wants.
	// A set, eligible, admitting preferred provider wins over priority order.
	PreferredProvider string

	// RequiredCapabilities optionally restricts selection to providers
	// whose capability set is a superset of these tags
	RequiredCapabilities []string

	// Metadata is opaque caller context passed through to the invoker
	Metadata map[string]string
}

// Invoker performs the actual call to a provider's backend. It is the
// external collaborator of the orchestrator: one call per attempt, opaque
// from the orchestrator's point of view, with exactly two outcomes (payload
// or error). Timeout policy belongs to the invoker and its caller, not to
// the orchestrator.
type Invoker interface {
	Invoke(ctx context.Context, provider Descriptor, req Request) (string, error)
}

// InvokerFunc adapts a function to the Invoker interface
type InvokerFunc func(ctx context.Context, provider Descriptor, req Request) (string, error)

// Invoke implements Invoker
func (f InvokerFunc) Invoke(ctx context.Context, provider Descriptor, req Request) (string, error) {
	return f(ctx, provider, req)
}

// InvokerMux routes an invocation to a concrete adapter based on the
// descriptor's endpoint scheme (the part before "://", or before ":" for
// forms like "local:echo"). This keeps provider wire protocols out of the
// selection and fallback core.
type InvokerMux struct {
	bySchema map[string]Invoker
}

// NewInvokerMux creates an empty invoker mux
func NewInvokerMux() *InvokerMux {
	return &InvokerMux{bySchema: make(map[string]Invoker)}
}

// Register maps an endpoint scheme (e.g. "https", "local") to an adapter
func (m *InvokerMux) Register(scheme string, inv Invoker) {
	m.bySchema[scheme] = inv
}

// Invoke dispatches to the adapter registered for the provider's endpoint
// scheme
func (m *InvokerMux) Invoke(ctx context.Context, provider Descriptor, req Request) (string, error) {
	scheme := endpointScheme(provider.Endpoint)
	inv, ok := m.bySchema[scheme]
	if !ok {
		return "", fmt.Errorf("no invoker registered for endpoint scheme %q (provider %s)", scheme, provider.Name)
	}
	return inv.Invoke(ctx, provider, req)
}

func endpointScheme(endpoint string) string {
	if idx := strings.Index(endpoint, "://"); idx >= 0 {
		return endpoint[:idx]
	}
	if idx := strings.Index(endpoint, ":"); idx >= 0 {
		return endpoint[:idx]
	}
	return endpoint
}
