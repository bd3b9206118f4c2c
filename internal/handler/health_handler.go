package handler

import (
	"context"
	"net/http"
	"time"

	"product-service/internal/model"

	"github.com/rs/zerolog"
)

// readyTimeout bounds a single readiness probe.
const readyTimeout = 3 * time.Second

// MsgStorageUnavailable is the readiness error sent to clients; the cause
// stays in the log since it can carry host names and driver details.
const MsgStorageUnavailable = "storage unavailable"

// ReadinessChecker reports whether storage can serve requests.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checker ReadinessChecker
	logger  zerolog.Logger
	now     func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(checker ReadinessChecker, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		logger:  logger.With().Str("handler", "health").Logger(),
		now:     time.Now,
	}
}

// Health handles GET /health. It never touches storage.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status: "healthy",
		Time:   float64(now.UnixNano()) / float64(time.Second),
	})
}

// Ready handles GET /ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.checker.Ready(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("readiness check failed")
		writeJSON(w, http.StatusServiceUnavailable, model.ReadinessResponse{
			Status: "degraded",
			Error:  MsgStorageUnavailable,
		})
		return
	}

	writeJSON(w, http.StatusOK, model.ReadinessResponse{Status: "ready"})
}
