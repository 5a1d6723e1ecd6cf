package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON and writeError so the API has one
// success shape and one error shape:
//
//   writeJSON(w, http.StatusOK, data)
//   writeError(w, err)
//
// Every error body looks like
//   {"error": "insufficient_points", "message": "insufficient points: have 250, need 300"}
// so the frontend can branch on "error" without caring about the status.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/jagoan-puasa/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Offending input field, if any
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent, all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorKinds maps each business sentinel to its HTTP status and wire name.
// Order matters only for readability; the sentinels are disjoint.
var errorKinds = []struct {
	target error
	status int
	kind   string
}{
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{apperror.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrUnknownReward, http.StatusNotFound, "unknown_reward"},
	{apperror.ErrAlreadyCompleted, http.StatusConflict, "already_completed"},
	{apperror.ErrAlreadyPurchased, http.StatusConflict, "already_purchased"},
	{apperror.ErrConflict, http.StatusConflict, "conflict"},
	{apperror.ErrInsufficientPoints, http.StatusUnprocessableEntity, "insufficient_points"},
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// The service layer never knows about HTTP. It returns *apperror.AppError
// values wrapping a sentinel, possibly under several fmt.Errorf layers, and
// errors.Is walks that chain to find the sentinel.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, k := range errorKinds {
			if errors.Is(err, k.target) {
				writeJSON(w, k.status, ErrorResponse{
					Error:   k.kind,
					Message: appErr.Message,
					Field:   appErr.Field,
				})
				return
			}
		}
	}

	// Anything else is a store or programming fault. NEVER expose its text:
	// it can contain SQL or file paths.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
