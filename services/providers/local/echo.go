// Package local implements an offline invoker for providers that need no
// credential or network, such as a last-resort fallback backend. Register it
// on the invoker mux under the "local" endpoint scheme.
package local

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelmux/modelmux/services/providers"
	"go.uber.org/zap"
)

// Echo answers every prompt deterministically. It exists so a deployment
// always has one always-available provider at the bottom of the priority
// order.
type Echo struct {
	logger *zap.Logger
}

// NewEcho creates the offline echo invoker
func NewEcho(logger *zap.Logger) *Echo {
	return &Echo{logger: logger}
}

// Invoke implements providers.Invoker
func (e *Echo) Invoke(ctx context.Context, provider providers.Descriptor, req providers.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", fmt.Errorf("empty prompt")
	}

	e.logger.Debug("local invocation",
		zap.String("provider", provider.Name),
		zap.Int("prompt_len", len(prompt)))

	return fmt.Sprintf("[%s] %s", provider.Name, prompt), nil
}
