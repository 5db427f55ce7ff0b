package handlers

import (
	"context"
	"net/http"
	"time"

	"wotmaps-api/internal/models"

	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// Pinger is any backing service that can report its liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports the state of the database and the cache
type HealthHandler struct {
	db     Pinger
	cache  Pinger
	logger *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db, cache Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, logger: logger}
}

// HandleHealth handles GET /health
// @Summary     Health check endpoint
// @Description Pings the database and the cache
// @Tags        health
// @Produce     application/json
// @Success     200 {object} models.HealthResponse
// @Failure     503 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := models.HealthResponse{
		Status:   "ok",
		Database: h.check(ctx, "database", h.db),
		Cache:    h.check(ctx, "cache", h.cache),
	}

	status := http.StatusOK
	if resp.Database != "ok" || resp.Cache != "ok" {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	sendJSON(w, status, resp)
}

func (h *HealthHandler) check(ctx context.Context, name string, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", zap.String("component", name), zap.Error(err))
		return "unavailable"
	}
	return "ok"
}
