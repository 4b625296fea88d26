package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/modelmux/modelmux/services/providers"
)

// CatalogEntry is one provider definition in the YAML catalog file
type CatalogEntry struct {
	Name              string   `yaml:"name" validate:"required"`
	Endpoint          string   `yaml:"endpoint" validate:"required"`
	Priority          int      `yaml:"priority" validate:"gte=0"`
	Capabilities      []string `yaml:"capabilities"`
	RequestsPerMinute int      `yaml:"requests_per_minute" validate:"gte=0"`
	APIKeyEnv         string   `yaml:"api_key_env"`
	AlwaysAvailable   bool     `yaml:"always_available"`
}

// Catalog is the parsed provider catalog
type Catalog struct {
	Providers []CatalogEntry `yaml:"providers" validate:"required,min=1,dive"`
}

// LoadCatalog reads and validates the provider catalog from a YAML file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates catalog YAML
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := validator.New().Struct(&catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &catalog, nil
}

// Descriptors converts the catalog entries into provider descriptors.
// Enabled is left unset; the registry resolves it against credentials.
func (c *Catalog) Descriptors() []providers.Descriptor {
	descriptors := make([]providers.Descriptor, 0, len(c.Providers))
	for _, entry := range c.Providers {
		descriptors = append(descriptors, providers.Descriptor{
			Name:              entry.Name,
			Endpoint:          entry.Endpoint,
			Priority:          entry.Priority,
			Capabilities:      entry.Capabilities,
			RequestsPerMinute: entry.RequestsPerMinute,
			AlwaysAvailable:   entry.AlwaysAvailable,
		})
	}
	return descriptors
}

// Limits returns the per-provider request budgets for the rate limiter
func (c *Catalog) Limits() map[string]int {
	limits := make(map[string]int, len(c.Providers))
	for _, entry := range c.Providers {
		limits[entry.Name] = entry.RequestsPerMinute
	}
	return limits
}

// KeyFor resolves a provider's API key from the environment variable the
// catalog names for it. Returns "" for unknown providers or unset variables.
func (c *Catalog) KeyFor(provider string) string {
	for _, entry := range c.Providers {
		if entry.Name == provider && entry.APIKeyEnv != "" {
			return os.Getenv(entry.APIKeyEnv)
		}
	}
	return ""
}

// EnvCredentialSource reports a provider as configured when the environment
// variable its catalog entry names is non-empty. Entries without api_key_env
// are never configured through credentials; mark those always_available
// instead.
type EnvCredentialSource struct {
	keyEnv map[string]string
}

// NewEnvCredentialSource builds a credential source from the catalog
func NewEnvCredentialSource(catalog *Catalog) *EnvCredentialSource {
	keyEnv := make(map[string]string, len(catalog.Providers))
	for _, entry := range catalog.Providers {
		if entry.APIKeyEnv != "" {
			keyEnv[entry.Name] = entry.APIKeyEnv
		}
	}
	return &EnvCredentialSource{keyEnv: keyEnv}
}

// IsConfigured implements providers.CredentialSource
func (s *EnvCredentialSource) IsConfigured(provider string) bool {
	env, ok := s.keyEnv[provider]
	if !ok {
		return false
	}
	return os.Getenv(env) != ""
}
