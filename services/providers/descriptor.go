package providers

// Descriptor describes one backend provider in the static catalog.
// Descriptors are constructed once at startup and never mutated afterwards;
// the Enabled flag is resolved exactly once during registry initialization.
type Descriptor struct {
	// Name uniquely identifies the provider
	Name string `json:"name"`

	// Endpoint is an opaque endpoint identifier, not interpreted here.
	// The invoker adapters decide what to do with it.
	Endpoint string `json:"endpoint,omitempty"`

	// Priority orders selection; lower values are preferred. Ties are
	// broken by catalog order.
	Priority int `json:"priority"`

	// Capabilities is a set of opaque capability tags (e.g. "vision")
	Capabilities []string `json:"capabilities,omitempty"`

	// RequestsPerMinute is the admission budget per 60s window.
	// Zero or negative means unlimited.
	RequestsPerMinute int `json:"requests_per_minute"`

	// AlwaysAvailable marks providers that need no credential, such as a
	// local offline backend
	AlwaysAvailable bool `json:"always_available,omitempty"`

	// Enabled is set once at registry initialization: the credential is
	// configured or the provider is always available
	Enabled bool `json:"enabled"`
}

// HasCapabilities reports whether the provider's capability set is a
// superset of the required tags.
func (d Descriptor) HasCapabilities(required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		found := false
		for _, have := range d.Capabilities {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
