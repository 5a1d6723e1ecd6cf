package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/repository"
)

// LedgerService is the entry point for direct balance changes. Mission
// credits and purchases go through their own services, which use the same
// repository statements inside their transactions.
type LedgerService struct {
	repo     repository.LedgerRepository
	listener BalanceListener
	logger   *slog.Logger
}

func NewLedgerService(repo repository.LedgerRepository, listener BalanceListener, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		repo:     repo,
		listener: listenerOrNoop(listener),
		logger:   logger,
	}
}

func (s *LedgerService) Balance(ctx context.Context, userID string) (int, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return 0, err
	}
	return s.repo.Balance(ctx, userID)
}

// Credit adds a positive amount and returns the new balance.
func (s *LedgerService) Credit(ctx context.Context, userID string, amount int) (int, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, apperror.ValidationFailed("amount", "amount must be a positive integer")
	}

	balance, err := s.repo.Credit(ctx, userID, amount)
	if err != nil {
		logFailure(ctx, s.logger, "credit failed", err,
			slog.String("userID", userID), slog.Int("amount", amount))
		return 0, fmt.Errorf("crediting points: %w", err)
	}
	s.listener.Invalidate()

	s.logger.Info("points credited",
		slog.String("userID", userID),
		slog.Int("amount", amount),
		slog.Int("balance", balance),
	)
	return balance, nil
}

// Debit removes a positive amount if the balance covers it. Otherwise it
// returns apperror.ErrInsufficientPoints and the balance is untouched.
func (s *LedgerService) Debit(ctx context.Context, userID string, amount int) (int, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, apperror.ValidationFailed("amount", "amount must be a positive integer")
	}

	balance, err := s.repo.Debit(ctx, userID, amount)
	if err != nil {
		logFailure(ctx, s.logger, "debit failed", err,
			slog.String("userID", userID), slog.Int("amount", amount))
		return 0, fmt.Errorf("debiting points: %w", err)
	}
	s.listener.Invalidate()

	s.logger.Info("points debited",
		slog.String("userID", userID),
		slog.Int("amount", amount),
		slog.Int("balance", balance),
	)
	return balance, nil
}
