// Package service holds the business rules of the campaign:
//
//	Handler (HTTP) → Service (rules, orchestration) → Repository (SQLite)
//
// Services never speak HTTP and never build SQL. They validate input, look
// things up in the static catalog, and hand balance-changing work to the
// repository methods that perform it atomically. Every business rejection
// comes back as an *apperror.AppError; anything else is a store fault.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/jagoan-puasa/internal/apperror"
)

// BalanceListener is told after a committed change that can alter the
// public ranking: a balance, a name, an avatar, premium status or a new
// player.
type BalanceListener interface {
	Invalidate()
}

type noopListener struct{}

func (noopListener) Invalidate() {}

func listenerOrNoop(l BalanceListener) BalanceListener {
	if l == nil {
		return noopListener{}
	}
	return l
}

// requireUserID rejects blank identities before any store round trip.
func requireUserID(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", apperror.ValidationFailed("userId", "user ID is required")
	}
	return userID, nil
}

// logFailure logs store faults at Error and business rejections at Debug,
// so expected outcomes do not read as incidents.
func logFailure(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	level := slog.LevelError
	if apperror.IsBusinessRule(err) {
		level = slog.LevelDebug
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	logger.LogAttrs(ctx, level, msg, attrs...)
}
