// Package apperror defines the domain errors returned by the service and
// repository layers.
//
// Every business-rule rejection is an *AppError wrapping one of the sentinel
// errors below, so callers can branch with errors.Is. Anything that is NOT an
// *AppError (a failed query, a closed database) is an infrastructure fault and
// must be reported as such, never folded into a business outcome.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")

	ErrUnauthorized       = errors.New("unauthorized")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrAlreadyCompleted   = errors.New("mission already completed today")
	ErrUnknownReward      = errors.New("unknown reward")
	ErrAlreadyPurchased   = errors.New("reward already purchased")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when a credential (session token or admin
// password) is missing or wrong.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// InsufficientPoints reports a rejected debit. The balance is unchanged.
func InsufficientPoints(balance, cost int) *AppError {
	return &AppError{
		Err:     ErrInsufficientPoints,
		Message: fmt.Sprintf("insufficient points: have %d, need %d", balance, cost),
	}
}

// AlreadyCompleted reports a mission that was already credited on day.
func AlreadyCompleted(missionID, day string) *AppError {
	return &AppError{
		Err:     ErrAlreadyCompleted,
		Message: fmt.Sprintf("mission %s already completed on %s", missionID, day),
	}
}

func UnknownReward(id string) *AppError {
	return &AppError{
		Err:     ErrUnknownReward,
		Message: fmt.Sprintf("reward %s does not exist", id),
		Field:   "rewardId",
	}
}

func AlreadyPurchased(rewardID string) *AppError {
	return &AppError{
		Err:     ErrAlreadyPurchased,
		Message: fmt.Sprintf("reward %s already purchased", rewardID),
	}
}

// IsBusinessRule reports whether err is an expected, recoverable rejection
// rather than an infrastructure fault.
func IsBusinessRule(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}
