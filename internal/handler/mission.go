package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/jagoan-puasa/internal/service"
)

type MissionHandler struct {
	missions *service.MissionService
	now      func() time.Time
	logger   *slog.Logger
}

// NewMissionHandler takes the clock so tests can pin "today".
func NewMissionHandler(missions *service.MissionService, now func() time.Time, logger *slog.Logger) *MissionHandler {
	return &MissionHandler{
		missions: missions,
		now:      now,
		logger:   logger,
	}
}

// HandleList returns today's mission board.
//
// HTTP: GET /api/missions
func (h *MissionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	board, err := h.missions.TodayMissions(r.Context(), userID, h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HandleComplete credits a mission for today.
//
// HTTP: POST /api/missions/{id}/complete
//
// A second completion on the same day answers 409 already_completed and
// leaves the balance alone.
func (h *MissionHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	res, err := h.missions.CompleteMission(r.Context(), userID, chi.URLParam(r, "id"), h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
