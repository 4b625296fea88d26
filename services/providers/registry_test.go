package providers

import (
	"errors"
	"testing"

	"github.com/modelmux/modelmux/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mapCredentials is a CredentialSource backed by a fixed set
type mapCredentials map[string]bool

func (m mapCredentials) IsConfigured(provider string) bool {
	return m[provider]
}

func testCatalog() []Descriptor {
	return []Descriptor{
		{Name: "openai", Endpoint: "https://api.openai.com/v1", Priority: 1, RequestsPerMinute: 60, Capabilities: []string{"chat", "vision"}},
		{Name: "anthropic", Endpoint: "https://api.anthropic.com/v1", Priority: 2, RequestsPerMinute: 50, Capabilities: []string{"chat"}},
		{Name: "local", Endpoint: "local:echo", Priority: 9, RequestsPerMinute: 0, AlwaysAvailable: true},
	}
}

func TestNewRegistry_EnabledResolution(t *testing.T) {
	logger := zap.NewNop()

	t.Run("credentialed providers are enabled", func(t *testing.T) {
		reg, err := NewRegistry(testCatalog(), mapCredentials{"openai": true}, logger)
		require.NoError(t, err)

		assert.Equal(t, 3, reg.Count())
		// openai has a credential, local is always available, anthropic is out
		assert.Equal(t, 2, reg.EnabledCount())

		_, err = reg.Get("anthropic")
		require.NoError(t, err)
		desc, err := reg.Get("anthropic")
		require.NoError(t, err)
		assert.False(t, desc.Enabled)
	})

	t.Run("always available needs no credential", func(t *testing.T) {
		reg, err := NewRegistry(testCatalog(), mapCredentials{}, logger)
		require.NoError(t, err)

		enabled := reg.ListEnabled()
		require.Len(t, enabled, 1)
		assert.Equal(t, "local", enabled[0].Name)
		assert.True(t, enabled[0].Enabled)
	})

	t.Run("nil credential source enables only always available", func(t *testing.T) {
		reg, err := NewRegistry(testCatalog(), nil, logger)
		require.NoError(t, err)
		assert.Equal(t, 1, reg.EnabledCount())
	})
}

func TestNewRegistry_Validation(t *testing.T) {
	logger := zap.NewNop()

	t.Run("duplicate names rejected", func(t *testing.T) {
		catalog := []Descriptor{
			{Name: "openai", Priority: 1},
			{Name: "openai", Priority: 2},
		}
		_, err := NewRegistry(catalog, mapCredentials{}, logger)
		require.Error(t, err)
		assert.True(t, errors.Is(err, services.ErrDuplicateProvider))
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := NewRegistry([]Descriptor{{Name: ""}}, mapCredentials{}, logger)
		require.Error(t, err)
		assert.True(t, services.IsValidationError(err))
	})
}

func TestRegistry_ListEnabled_Ordering(t *testing.T) {
	logger := zap.NewNop()

	t.Run("sorted ascending by priority", func(t *testing.T) {
		creds := mapCredentials{"openai": true, "anthropic": true}
		reg, err := NewRegistry(testCatalog(), creds, logger)
		require.NoError(t, err)

		enabled := reg.ListEnabled()
		require.Len(t, enabled, 3)
		assert.Equal(t, "openai", enabled[0].Name)
		assert.Equal(t, "anthropic", enabled[1].Name)
		assert.Equal(t, "local", enabled[2].Name)
	})

	t.Run("catalog order breaks priority ties", func(t *testing.T) {
		catalog := []Descriptor{
			{Name: "beta", Priority: 1, AlwaysAvailable: true},
			{Name: "alpha", Priority: 1, AlwaysAvailable: true},
			{Name: "gamma", Priority: 0, AlwaysAvailable: true},
		}
		reg, err := NewRegistry(catalog, mapCredentials{}, logger)
		require.NoError(t, err)

		enabled := reg.ListEnabled()
		require.Len(t, enabled, 3)
		assert.Equal(t, "gamma", enabled[0].Name)
		assert.Equal(t, "beta", enabled[1].Name)
		assert.Equal(t, "alpha", enabled[2].Name)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		reg, err := NewRegistry(testCatalog(), mapCredentials{}, logger)
		require.NoError(t, err)

		first := reg.ListEnabled()
		first[0].Name = "mutated"

		second := reg.ListEnabled()
		assert.Equal(t, "local", second[0].Name)
	})
}

func TestRegistry_Get(t *testing.T) {
	logger := zap.NewNop()
	reg, err := NewRegistry(testCatalog(), mapCredentials{"openai": true}, logger)
	require.NoError(t, err)

	t.Run("known provider", func(t *testing.T) {
		desc, err := reg.Get("openai")
		require.NoError(t, err)
		assert.Equal(t, 1, desc.Priority)
		assert.True(t, desc.Enabled)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := reg.Get("mistral")
		require.Error(t, err)
		assert.True(t, errors.Is(err, services.ErrProviderNotFound))
	})
}

func TestDescriptor_HasCapabilities(t *testing.T) {
	desc := Descriptor{Capabilities: []string{"chat", "vision"}}

	assert.True(t, desc.HasCapabilities(nil))
	assert.True(t, desc.HasCapabilities([]string{"chat"}))
	assert.True(t, desc.HasCapabilities([]string{"vision", "chat"}))
	assert.False(t, desc.HasCapabilities([]string{"audio"}))
	assert.False(t, desc.HasCapabilities([]string{"chat", "audio"}))
}
