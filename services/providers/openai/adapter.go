// Package openai implements the invoker for providers that speak the
// OpenAI-compatible chat completions protocol. The adapter is registered on
// the invoker mux for "http" and "https" endpoints; the descriptor's
// endpoint is the API base URL.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/modelmux/modelmux/services/providers"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// KeyFunc resolves the API key for a provider name. Credential material
// stays outside the adapter; the gateway wires this from its catalog.
type KeyFunc func(provider string) string

// Config holds adapter configuration
type Config struct {
	// Timeout bounds one invocation end to end
	Timeout time.Duration
}

// Adapter performs chat completion calls against OpenAI-compatible APIs
type Adapter struct {
	httpClient *http.Client
	keyFor     KeyFunc
	logger     *zap.Logger
}

// NewAdapter creates an adapter. keyFor may return "" for providers without
// a key (the Authorization header is then omitted).
func NewAdapter(cfg Config, keyFor KeyFunc, logger *zap.Logger) *Adapter {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Adapter{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		keyFor:     keyFor,
		logger:     logger,
	}
}

// chatRequest is the OpenAI-compatible request body
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the response body the adapter reads
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Invoke implements providers.Invoker: one HTTP call per attempt. Retry
// across providers belongs to the dispatcher, not here.
func (a *Adapter) Invoke(ctx context.Context, provider providers.Descriptor, req providers.Request) (string, error) {
	model := req.Metadata["model"]
	if model == "" {
		model = provider.Name
	}

	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(provider.Endpoint, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if key := a.keyFor(provider.Name); key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+key)
	}

	start := time.Now()
	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", a.errorFromResponse(provider.Name, httpResp.StatusCode, respBody)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("provider %s returned no choices", provider.Name)
	}

	a.logger.Debug("chat completion succeeded",
		zap.String("provider", provider.Name),
		zap.String("model", model),
		zap.Int64("latency_ms", time.Since(start).Milliseconds()))

	return parsed.Choices[0].Message.Content, nil
}

// errorFromResponse surfaces the upstream error message when the body
// carries one
func (a *Adapter) errorFromResponse(provider string, status int, body []byte) error {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return fmt.Errorf("provider %s returned %d: %s", provider, status, parsed.Error.Message)
	}
	return fmt.Errorf("provider %s returned %d", provider, status)
}
