package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/jagoan-puasa/internal/auth"
	"github.com/sakif/jagoan-puasa/internal/service"
)

type PlayerHandler struct {
	players    *service.PlayerService
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewPlayerHandler(players *service.PlayerService, sessionTTL time.Duration, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		players:    players,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

type loginRequest struct {
	Name string `json:"name" validate:"required"`
}

type avatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

// HandleLogin logs a player in by name, creating the account on first use.
//
// HTTP: POST /api/login
// Body: {"name": "Aisyah"}
//
// The token is returned in the body and also set as an HttpOnly cookie so
// browser clients need not store it themselves.
func (h *PlayerHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.players.Login(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	status := http.StatusOK
	if res.Fresh {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// HandleLogout clears the session cookie. Bearer-token clients just drop
// their token.
func (h *PlayerHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the caller's profile and tier.
//
// HTTP: GET /api/me
func (h *PlayerHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.players.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HTTP: PUT /api/me/avatar
func (h *PlayerHandler) HandleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req avatarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.players.UpdateAvatar(r.Context(), userID, req.Avatar)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HTTP: PUT /api/me/name
func (h *PlayerHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.players.Rename(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
