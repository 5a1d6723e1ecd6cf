package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/model"
	"github.com/sakif/jagoan-puasa/internal/service"
)

type AdminHandler struct {
	admin  *service.AdminService
	logger *slog.Logger
}

func NewAdminHandler(admin *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		logger: logger,
	}
}

type premiumRequest struct {
	Action   string `json:"action"   validate:"required,oneof=check activate deactivate"`
	Password string `json:"password" validate:"required"`
	UserID   string `json:"userId"   validate:"required"`
}

type premiumResponse struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Points    int    `json:"points"`
	IsPremium bool   `json:"isPremium"`
}

// HandlePremium checks or toggles a player's premium flag.
//
// HTTP: POST /api/admin/premium
// Body: {"action": "check|activate|deactivate", "password": "...", "userId": "..."}
//
// The admin password travels in the body; there is no admin session.
func (h *AdminHandler) HandlePremium(w http.ResponseWriter, r *http.Request) {
	var req premiumRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.apply(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, premiumResponse{
		UserID:    user.ID,
		Name:      user.Name,
		Points:    user.Points,
		IsPremium: user.IsPremium,
	})
}

// apply runs the requested action. Unknown actions are rejected here too,
// independent of the request validation tags.
func (h *AdminHandler) apply(ctx context.Context, req premiumRequest) (*model.User, error) {
	switch req.Action {
	case "check":
		return h.admin.CheckUser(ctx, req.Password, req.UserID)
	case "activate":
		return h.admin.SetPremium(ctx, req.Password, req.UserID, true)
	case "deactivate":
		return h.admin.SetPremium(ctx, req.Password, req.UserID, false)
	default:
		return nil, apperror.ValidationFailed("action", "action must be one of: check activate deactivate")
	}
}
