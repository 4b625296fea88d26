package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
providers:
  - name: openai
    endpoint: https://api.openai.com/v1
    priority: 1
    capabilities: [chat, vision]
    requests_per_minute: 60
    api_key_env: OPENAI_API_KEY
  - name: local-echo
    endpoint: local:echo
    priority: 99
    requests_per_minute: 0
    always_available: true
`

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, catalog.Providers, 2)

	openai := catalog.Providers[0]
	assert.Equal(t, "openai", openai.Name)
	assert.Equal(t, "https://api.openai.com/v1", openai.Endpoint)
	assert.Equal(t, 1, openai.Priority)
	assert.Equal(t, []string{"chat", "vision"}, openai.Capabilities)
	assert.Equal(t, 60, openai.RequestsPerMinute)
	assert.Equal(t, "OPENAI_API_KEY", openai.APIKeyEnv)
	assert.False(t, openai.AlwaysAvailable)

	echo := catalog.Providers[1]
	assert.True(t, echo.AlwaysAvailable)
	assert.Zero(t, echo.RequestsPerMinute)
}

func TestParseCatalog_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty providers": `providers: []`,
		"missing name": `
providers:
  - endpoint: https://example.com
`,
		"missing endpoint": `
providers:
  - name: ghost
`,
		"negative priority": `
providers:
  - name: p
    endpoint: https://example.com
    priority: -1
`,
		"negative limit": `
providers:
  - name: p
    endpoint: https://example.com
    requests_per_minute: -5
`,
		"not yaml": `{{nope`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, catalog.Providers, 2)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCatalog_Descriptors(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	descriptors := catalog.Descriptors()
	require.Len(t, descriptors, 2)
	assert.Equal(t, "openai", descriptors[0].Name)
	assert.Equal(t, 1, descriptors[0].Priority)
	assert.False(t, descriptors[0].Enabled)
	assert.True(t, descriptors[1].AlwaysAvailable)
}

func TestCatalog_Limits(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	limits := catalog.Limits()
	assert.Equal(t, map[string]int{"openai": 60, "local-echo": 0}, limits)
}

func TestCatalog_KeyFor(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	t.Setenv("OPENAI_API_KEY", "sk-live")
	assert.Equal(t, "sk-live", catalog.KeyFor("openai"))
	assert.Empty(t, catalog.KeyFor("local-echo"))
	assert.Empty(t, catalog.KeyFor("unknown"))
}

func TestEnvCredentialSource(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	creds := NewEnvCredentialSource(catalog)

	t.Setenv("OPENAI_API_KEY", "")
	assert.False(t, creds.IsConfigured("openai"))

	t.Setenv("OPENAI_API_KEY", "sk-live")
	assert.True(t, creds.IsConfigured("openai"))

	// no api_key_env: credentials never mark it configured
	assert.False(t, creds.IsConfigured("local-echo"))
	assert.False(t, creds.IsConfigured("unknown"))
}
