package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/queue"
)

// Service states reported by /health
const (
	statusHealthy       = "healthy"
	statusUnhealthy     = "unhealthy"
	statusNotConfigured = "not_configured"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	dbCheck     func(ctx context.Context) error
	queueClient queue.Client
	logger      *otelzap.Logger
}

// NewHealthHandler creates a new health handler. A nil dbCheck or
// queueClient is reported as not configured.
func NewHealthHandler(dbCheck func(ctx context.Context) error, queueClient queue.Client, logger *otelzap.Logger) *HealthHandler {
	return &HealthHandler{
		dbCheck:     dbCheck,
		queueClient: queueClient,
		logger:      logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Services   map[string]string `json:"services"`
	QueueDepth *int64            `json:"queueDepth,omitempty"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:   statusHealthy,
		Services: make(map[string]string),
	}

	check := func(name string, fn func(ctx context.Context) error) {
		if fn == nil {
			response.Services[name] = statusNotConfigured
			return
		}
		if err := fn(ctx); err != nil {
			h.logger.Ctx(ctx).Error(name+" health check failed", zap.Error(err))
			response.Status = statusUnhealthy
			response.Services[name] = statusUnhealthy
			return
		}
		response.Services[name] = statusHealthy
	}

	check("database", h.dbCheck)
	if h.queueClient != nil {
		check("queue", h.queueClient.Health)
		if depth, err := h.queueClient.Len(ctx); err == nil {
			response.QueueDepth = &depth
		}
	} else {
		check("queue", nil)
	}

	if response.Status == statusHealthy {
		respondSuccess(w, response)
	} else {
		respondJSON(w, http.StatusServiceUnavailable, response)
	}
}
