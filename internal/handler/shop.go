package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/jagoan-puasa/internal/service"
)

type ShopHandler struct {
	shop   *service.ShopService
	now    func() time.Time
	logger *slog.Logger
}

func NewShopHandler(shop *service.ShopService, now func() time.Time, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{
		shop:   shop,
		now:    now,
		logger: logger,
	}
}

// HTTP: GET /api/rewards
func (h *ShopHandler) HandleRewards(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	shelf, err := h.shop.Rewards(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shelf)
}

// HandlePurchase buys a reward.
//
// HTTP: POST /api/rewards/{id}/purchase
//
// Rejections: 404 unknown_reward, 409 already_purchased,
// 422 insufficient_points. None of them touch the balance.
func (h *ShopHandler) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	res, err := h.shop.Purchase(r.Context(), userID, chi.URLParam(r, "id"), h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HTTP: GET /api/purchases
func (h *ShopHandler) HandlePurchases(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	list, err := h.shop.Purchases(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
