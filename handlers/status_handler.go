package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/modelmux/modelmux/services/orchestrator"
	"github.com/modelmux/modelmux/services/providers"
	"github.com/modelmux/modelmux/utils"
)

// StatusService defines the introspection operations the handler needs
type StatusService interface {
	Status() orchestrator.Status
	ListEnabled() []providers.Descriptor
}

// StatusHandler exposes orchestrator state over HTTP
type StatusHandler struct {
	service StatusService
	logger  *zap.Logger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(service StatusService, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		service: service,
		logger:  logger,
	}
}

// HandleStatus handles GET /api/v1/status
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := h.service.Status()

	if err := utils.WriteOK(w, status); err != nil {
		h.logger.Error("failed to write status response", zap.Error(err))
	}
}

// ProviderSummary is one entry of the provider listing
type ProviderSummary struct {
	Name              string   `json:"name"`
	Endpoint          string   `json:"endpoint"`
	Priority          int      `json:"priority"`
	Capabilities      []string `json:"capabilities,omitempty"`
	RequestsPerMinute int      `json:"requests_per_minute"`
	AlwaysAvailable   bool     `json:"always_available"`
}

// HandleListProviders handles GET /api/v1/providers
func (h *StatusHandler) HandleListProviders(w http.ResponseWriter, r *http.Request) {
	enabled := h.service.ListEnabled()

	summaries := make([]ProviderSummary, 0, len(enabled))
	for _, desc := range enabled {
		summaries = append(summaries, ProviderSummary{
			Name:              desc.Name,
			Endpoint:          desc.Endpoint,
			Priority:          desc.Priority,
			Capabilities:      desc.Capabilities,
			RequestsPerMinute: desc.RequestsPerMinute,
			AlwaysAvailable:   desc.AlwaysAvailable,
		})
	}

	if err := utils.WriteOK(w, summaries); err != nil {
		h.logger.Error("failed to write providers response", zap.Error(err))
	}
}
