package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/auth"
	"github.com/sakif/jagoan-puasa/internal/game"
	"github.com/sakif/jagoan-puasa/internal/model"
	"github.com/sakif/jagoan-puasa/internal/repository"
)

const maxNameLength = 40

// PlayerService handles name-based login and profile edits. There are no
// passwords for players: a name identifies an account and the issued JWT is
// the session.
type PlayerService struct {
	users    repository.UserRepository
	tokens   *auth.TokenService
	catalog  game.Catalog
	levels   game.Levels
	listener BalanceListener
	logger   *slog.Logger
}

func NewPlayerService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	catalog game.Catalog,
	levels game.Levels,
	listener BalanceListener,
	logger *slog.Logger,
) *PlayerService {
	return &PlayerService{
		users:    users,
		tokens:   tokens,
		catalog:  catalog,
		levels:   levels,
		listener: listenerOrNoop(listener),
		logger:   logger,
	}
}

// Profile is a user together with the tier their balance maps to.
type Profile struct {
	User model.User `json:"user"`
	Tier game.Tier  `json:"tier"`
}

// LoginResult carries the profile and a signed session token.
type LoginResult struct {
	Profile
	Token string `json:"token"`
	Fresh bool   `json:"fresh"`
}

// Login finds the account whose name matches case-insensitively, creating
// it with zero points and the default avatar when none exists.
func (s *PlayerService) Login(ctx context.Context, name string) (*LoginResult, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	fresh := false
	user, err := s.users.GetByName(ctx, name)
	if errors.Is(err, apperror.ErrNotFound) {
		user, err = s.create(ctx, name)
		fresh = err == nil
	}
	if err != nil {
		return nil, fmt.Errorf("service/player: login %q: %w", name, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/player: generating token: %w", err)
	}

	s.logger.Info("player logged in",
		slog.String("userID", user.ID),
		slog.String("name", user.Name),
		slog.Bool("fresh", fresh),
	)

	return &LoginResult{
		Profile: s.profile(user),
		Token:   token,
		Fresh:   fresh,
	}, nil
}

// create inserts a new player. Two concurrent logins with the same new name
// race on the unique name key; the loser reads the winner's row.
func (s *PlayerService) create(ctx context.Context, name string) (*model.User, error) {
	user := &model.User{Name: name, Avatar: game.DefaultAvatar}
	err := s.users.Create(ctx, user)
	if errors.Is(err, apperror.ErrConflict) {
		return s.users.GetByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	// New players appear on the leaderboard with zero points.
	s.listener.Invalidate()
	return user, nil
}

func (s *PlayerService) Profile(ctx context.Context, userID string) (*Profile, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/player: profile: %w", err)
	}
	p := s.profile(user)
	return &p, nil
}

// UpdateAvatar sets one of the preset avatars.
func (s *PlayerService) UpdateAvatar(ctx context.Context, userID, avatar string) (*Profile, error) {
	if !s.catalog.HasAvatar(avatar) {
		return nil, apperror.ValidationFailed("avatar", "avatar must be one of the presets")
	}
	return s.updateProfile(ctx, userID, func(u *model.User) { u.Avatar = avatar })
}

// Rename changes the display name. A name held by another player (ignoring
// case) is a conflict.
func (s *PlayerService) Rename(ctx context.Context, userID, name string) (*Profile, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return s.updateProfile(ctx, userID, func(u *model.User) { u.Name = name })
}

func (s *PlayerService) updateProfile(ctx context.Context, userID string, edit func(*model.User)) (*Profile, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/player: updating profile: %w", err)
	}

	edit(user)
	if err := s.users.UpdateProfile(ctx, user.ID, user.Name, user.Avatar); err != nil {
		return nil, fmt.Errorf("service/player: updating profile: %w", err)
	}
	// The leaderboard shows names and avatars.
	s.listener.Invalidate()

	s.logger.Info("profile updated",
		slog.String("userID", user.ID),
		slog.String("name", user.Name),
		slog.String("avatar", user.Avatar),
	)
	p := s.profile(user)
	return &p, nil
}

func (s *PlayerService) profile(u *model.User) Profile {
	return Profile{User: *u, Tier: s.levels.Classify(u.Points)}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.ValidationFailed("name", "name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", apperror.ValidationFailed("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	return name, nil
}
