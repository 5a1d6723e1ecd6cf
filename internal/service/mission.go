package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/game"
	"github.com/sakif/jagoan-puasa/internal/model"
	"github.com/sakif/jagoan-puasa/internal/repository"
)

// MissionService tracks daily completions and credits mission rewards.
// "Today" is always the calendar date of now in the campaign timezone.
type MissionService struct {
	repo     repository.CompletionRepository
	catalog  game.Catalog
	calendar game.Calendar
	listener BalanceListener
	logger   *slog.Logger
}

func NewMissionService(
	repo repository.CompletionRepository,
	catalog game.Catalog,
	calendar game.Calendar,
	listener BalanceListener,
	logger *slog.Logger,
) *MissionService {
	return &MissionService{
		repo:     repo,
		catalog:  catalog,
		calendar: calendar,
		listener: listenerOrNoop(listener),
		logger:   logger,
	}
}

// MissionResult is the outcome of a successful completion.
type MissionResult struct {
	MissionID     string `json:"missionId"`
	Title         string `json:"title"`
	Day           string `json:"day"`
	PointsAwarded int    `json:"pointsAwarded"`
	Balance       int    `json:"balance"`
}

// MissionStatus is one row of the daily mission board.
type MissionStatus struct {
	model.Mission
	Completed bool `json:"completed"`
}

// IsCompletedToday reports whether missionID was already credited to userID
// on the calendar day containing now.
func (s *MissionService) IsCompletedToday(ctx context.Context, userID, missionID string, now time.Time) (bool, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return false, err
	}
	done, err := s.repo.IsCompleted(ctx, userID, missionID, s.calendar.Date(now))
	if err != nil {
		return false, fmt.Errorf("checking mission completion: %w", err)
	}
	return done, nil
}

// RecordCompletion stores the completion key without crediting anything and
// is a no-op when the key exists. Crediting callers use CompleteMission.
func (s *MissionService) RecordCompletion(ctx context.Context, userID, missionID string, now time.Time) error {
	userID, err := requireUserID(userID)
	if err != nil {
		return err
	}
	mission, ok := s.catalog.Mission(missionID)
	if !ok {
		return apperror.NotFound("mission", missionID)
	}

	_, err = s.repo.RecordCompletion(ctx, &model.MissionCompletion{
		UserID:        userID,
		MissionID:     mission.ID,
		Day:           s.calendar.Date(now),
		PointsAwarded: mission.PointReward,
		CompletedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("recording mission completion: %w", err)
	}
	return nil
}

// CompleteMission credits the mission reward once per calendar day. A repeat
// on the same day returns apperror.ErrAlreadyCompleted and credits nothing.
func (s *MissionService) CompleteMission(ctx context.Context, userID, missionID string, now time.Time) (*MissionResult, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	mission, ok := s.catalog.Mission(missionID)
	if !ok {
		return nil, apperror.NotFound("mission", missionID)
	}
	day := s.calendar.Date(now)

	// Fast path for the common double tap. The transaction below is what
	// actually guarantees a single credit.
	done, err := s.repo.IsCompleted(ctx, userID, mission.ID, day)
	if err != nil {
		return nil, fmt.Errorf("checking mission completion: %w", err)
	}
	if done {
		return nil, apperror.AlreadyCompleted(mission.ID, day)
	}

	balance, err := s.repo.CompleteMission(ctx, &model.MissionCompletion{
		UserID:        userID,
		MissionID:     mission.ID,
		Day:           day,
		PointsAwarded: mission.PointReward,
		CompletedAt:   now,
	})
	if err != nil {
		logFailure(ctx, s.logger, "mission completion failed", err,
			slog.String("userID", userID), slog.String("missionID", mission.ID), slog.String("day", day))
		return nil, fmt.Errorf("completing mission: %w", err)
	}
	s.listener.Invalidate()

	s.logger.Info("mission completed",
		slog.String("userID", userID),
		slog.String("missionID", mission.ID),
		slog.String("day", day),
		slog.Int("points", mission.PointReward),
		slog.Int("balance", balance),
	)

	return &MissionResult{
		MissionID:     mission.ID,
		Title:         mission.Title,
		Day:           day,
		PointsAwarded: mission.PointReward,
		Balance:       balance,
	}, nil
}

// TodayMissions lists the catalog with today's completion state.
func (s *MissionService) TodayMissions(ctx context.Context, userID string, now time.Time) ([]MissionStatus, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}

	ids, err := s.repo.CompletedMissionIDs(ctx, userID, s.calendar.Date(now))
	if err != nil {
		return nil, fmt.Errorf("listing today's missions: %w", err)
	}
	done := make(map[string]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}

	board := make([]MissionStatus, 0, len(s.catalog.Missions))
	for _, m := range s.catalog.Missions {
		board = append(board, MissionStatus{Mission: m, Completed: done[m.ID]})
	}
	return board, nil
}
