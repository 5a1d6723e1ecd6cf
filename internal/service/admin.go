package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/auth"
	"github.com/sakif/jagoan-puasa/internal/model"
	"github.com/sakif/jagoan-puasa/internal/repository"
)

// AdminService toggles the premium flag behind a shared admin password.
type AdminService struct {
	users        repository.UserRepository
	passwords    *auth.PasswordService
	passwordHash string
	listener     BalanceListener
	logger       *slog.Logger
}

// NewAdminService takes the bcrypt hash of the admin password. An empty hash
// disables every admin operation.
func NewAdminService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	passwordHash string,
	listener BalanceListener,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		users:        users,
		passwords:    passwords,
		passwordHash: passwordHash,
		listener:     listenerOrNoop(listener),
		logger:       logger,
	}
}

func (s *AdminService) authorize(password string) error {
	if s.passwordHash == "" {
		return apperror.Forbidden("admin access is not configured")
	}
	if err := s.passwords.Verify(s.passwordHash, password); err != nil {
		s.logger.Warn("admin password rejected")
		return apperror.Unauthorized("invalid admin password")
	}
	return nil
}

// CheckUser returns the account so an operator can confirm who they are
// about to change.
func (s *AdminService) CheckUser(ctx context.Context, password, userID string) (*model.User, error) {
	if err := s.authorize(password); err != nil {
		return nil, err
	}
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/admin: checking user: %w", err)
	}
	return user, nil
}

// SetPremium activates or deactivates premium. Repeating the current value
// succeeds without change.
func (s *AdminService) SetPremium(ctx context.Context, password, userID string, premium bool) (*model.User, error) {
	if err := s.authorize(password); err != nil {
		return nil, err
	}
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetPremium(ctx, userID, premium); err != nil {
		return nil, fmt.Errorf("service/admin: setting premium: %w", err)
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/admin: setting premium: %w", err)
	}
	// The leaderboard shows the premium badge.
	s.listener.Invalidate()

	s.logger.Info("premium status changed",
		slog.String("userID", userID),
		slog.Bool("premium", premium),
	)
	return user, nil
}
