package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/game"
	"github.com/sakif/jagoan-puasa/internal/service"
)

// CampaignHandler serves the public, unauthenticated views.
type CampaignHandler struct {
	calendar    game.Calendar
	leaderboard *service.Leaderboard
	now         func() time.Time
	logger      *slog.Logger
}

func NewCampaignHandler(calendar game.Calendar, leaderboard *service.Leaderboard, now func() time.Time, logger *slog.Logger) *CampaignHandler {
	return &CampaignHandler{
		calendar:    calendar,
		leaderboard: leaderboard,
		now:         now,
		logger:      logger,
	}
}

// HTTP: GET /api/campaign
func (h *CampaignHandler) HandleMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.calendar.Map(h.now()))
}

// HandleLeaderboard lists the top players.
//
// HTTP: GET /api/leaderboard?limit=10
func (h *CampaignHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := service.DefaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperror.ValidationFailed("limit", "limit must be an integer"))
			return
		}
		limit = n
	}

	entries, err := h.leaderboard.Top(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
