package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/modelmux/modelmux/middleware"
	"github.com/modelmux/modelmux/models"
	"github.com/modelmux/modelmux/services/audit"
	"github.com/modelmux/modelmux/services/orchestrator"
	"github.com/modelmux/modelmux/services/providers"
	"github.com/modelmux/modelmux/utils"
)

// GenerateRequest is the request body for POST /api/v1/generate
type GenerateRequest struct {
	Prompt       string            `json:"prompt" validate:"required"`
	Provider     string            `json:"provider,omitempty"`
	Capabilities []string          `json:"capabilities,omitempty"`
	Model        string            `json:"model,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// GenerateResponse is the response body for a successful generation
type GenerateResponse struct {
	ID        string   `json:"id"`
	Provider  string   `json:"provider"`
	Payload   string   `json:"payload"`
	FellBack  bool     `json:"fell_back"`
	Attempted []string `json:"attempted"`
}

// GenerateService defines the orchestration operations the handler needs
type GenerateService interface {
	Generate(ctx context.Context, req providers.Request) (*orchestrator.Response, error)
}

// GenerateHandler handles generation HTTP requests
type GenerateHandler struct {
	service GenerateService
	audit   *audit.Service
	logger  *zap.Logger
}

// NewGenerateHandler creates a new GenerateHandler. audit may be nil.
func NewGenerateHandler(service GenerateService, auditSvc *audit.Service, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		service: service,
		audit:   auditSvc,
		logger:  logger,
	}
}

// HandleGenerate handles POST /api/v1/generate
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var genReq GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&genReq); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&genReq); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	metadata := genReq.Metadata
	if genReq.Model != "" {
		if metadata == nil {
			metadata = make(map[string]string, 1)
		}
		metadata["model"] = genReq.Model
	}

	serviceReq := providers.Request{
		Prompt:               genReq.Prompt,
		PreferredProvider:    genReq.Provider,
		RequiredCapabilities: genReq.Capabilities,
		Metadata:             metadata,
	}

	h.logger.Debug("processing generation",
		zap.String("request_id", requestID),
		zap.String("preferred_provider", genReq.Provider),
		zap.Strings("capabilities", genReq.Capabilities))

	start := time.Now()
	result, err := h.service.Generate(ctx, serviceReq)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		h.logger.Error("generation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		h.recordFailure(requestID, latency, err)
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("generation successful",
		zap.String("request_id", requestID),
		zap.String("provider", result.Provider),
		zap.Bool("fell_back", result.FellBack),
		zap.Int("attempts", len(result.Attempted)),
		zap.Int64("latency_ms", latency))

	h.recordSuccess(requestID, latency, result)

	response := GenerateResponse{
		ID:        result.ID,
		Provider:  result.Provider,
		Payload:   result.Payload,
		FellBack:  result.FellBack,
		Attempted: result.Attempted,
	}

	if err := utils.WriteOK(w, response); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

func (h *GenerateHandler) recordSuccess(requestID string, latencyMs int64, result *orchestrator.Response) {
	if !h.audit.Enabled() {
		return
	}
	h.audit.Record(models.NewDispatchLog(requestID, result.Provider).
		WithOutcome(true, result.FellBack, len(result.Attempted), latencyMs))
}

func (h *GenerateHandler) recordFailure(requestID string, latencyMs int64, err error) {
	if !h.audit.Enabled() {
		return
	}
	h.audit.Record(models.NewDispatchLog(requestID, "").
		WithOutcome(false, false, 0, latencyMs).
		WithError(err.Error()))
}
