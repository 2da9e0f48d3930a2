package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"nodeacademy/internal/logger"
)

// Pinger is satisfied by the database handle
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports whether the server can reach its database
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health returns 200 when the database answers a ping, 503 otherwise
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logger.FromContext(ctx).Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
