package handlers

import (
	"net/http"
	"time"

	"wotmaps-api/internal/auth"
	"wotmaps-api/internal/database"
	"wotmaps-api/internal/metrics"
	"wotmaps-api/internal/models"
	"wotmaps-api/internal/request"
	"wotmaps-api/pkg/errors"

	"go.uber.org/zap"
)

// MapsHandler records played maps and answers the activity queries
type MapsHandler struct {
	repo    database.Repository
	window  time.Duration
	now     func() time.Time
	metrics metrics.Recorder
	logger  *zap.Logger
}

// NewMapsHandler creates a new maps handler. Only reports younger than window
// count as current.
func NewMapsHandler(repo database.Repository, window time.Duration, recorder metrics.Recorder, logger *zap.Logger) *MapsHandler {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &MapsHandler{
		repo:    repo,
		window:  window,
		now:     time.Now,
		metrics: recorder,
		logger:  logger,
	}
}

// HandlePlayedMap handles POST /api/played-map
// @Summary     Report a played map
// @Description Records the map, mode and tier bracket of a battle the player just entered.
// @Tags        maps
// @Accept      application/json
// @Param       Authorization header string                  true "Bearer session token"
// @Param       request       body   models.PlayedMapPayload true "Battle report"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/played-map [post]
func (h *MapsHandler) HandlePlayedMap(w http.ResponseWriter, r *http.Request, claims auth.TokenClaims) {
	var payload models.PlayedMapPayload
	if err := request.DecodeJSON(r, &payload); err != nil {
		sendDecodeError(w, h.logger, err)
		return
	}

	inserted, err := h.repo.InsertPlayedMap(r.Context(), claims.Subject, payload)
	if err != nil {
		sendError(w, errors.Wrap(err, errors.ErrInternalServer))
		return
	}
	if !inserted {
		sendError(w, errors.WithDetails(errors.ErrUnrecognizedValue, models.UnrecognizedValueDetail{
			Server: payload.Server,
			Map:    payload.Map,
			Mode:   payload.Mode,
		}))
		return
	}

	h.metrics.RecordPlayedMap()
	w.WriteHeader(http.StatusNoContent)
}

// HandleCurrentMaps handles GET /api/current-maps
// @Summary     Maps currently played on a server
// @Description Counts recent reports on a server whose tier bracket overlaps the requested range, grouped by mode and map.
// @Tags        maps
// @Produce     application/json
// @Param       server   query    string true "Server name"
// @Param       min_tier query    int    true "Lowest tier (1-10)"
// @Param       max_tier query    int    true "Highest tier (1-10, not below min_tier)"
// @Success     200      {object} models.CurrentMapsResponse
// @Failure     400      {object} models.ErrorResponse
// @Failure     422      {object} models.ErrorResponse
// @Failure     500      {object} models.ErrorResponse
// @Router      /api/current-maps [get]
func (h *MapsHandler) HandleCurrentMaps(w http.ResponseWriter, r *http.Request) {
	var query models.CurrentMapsQuery
	if err := request.DecodeQuery(r, &query); err != nil {
		sendDecodeError(w, h.logger, err)
		return
	}

	rows, err := h.repo.CurrentMaps(r.Context(), query, h.now().Add(-h.window))
	if err != nil {
		sendError(w, errors.Wrap(err, errors.ErrInternalServer))
		return
	}

	sendJSON(w, http.StatusOK, models.NewCurrentMapsResponse(rows))
}

// HandleCurrentServers handles GET /api/current-servers
// @Summary     Servers with recent activity
// @Description Counts recent reports per server, grouped by region.
// @Tags        maps
// @Produce     application/json
// @Success     200 {object} models.CurrentServersResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/current-servers [get]
func (h *MapsHandler) HandleCurrentServers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.CurrentServers(r.Context(), h.now().Add(-h.window))
	if err != nil {
		sendError(w, errors.Wrap(err, errors.ErrInternalServer))
		return
	}

	sendJSON(w, http.StatusOK, models.NewCurrentServersResponse(rows))
}
