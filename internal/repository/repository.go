// Package repository declares the storage contracts used by the service
// layer. Implementations own the per-user atomicity guarantees: every method
// that changes a balance does its check and its write as one step.
package repository

import (
	"context"

	"github.com/sakif/jagoan-puasa/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetByName matches case-insensitively.
	GetByName(ctx context.Context, name string) (*model.User, error)
	UpdateProfile(ctx context.Context, id, name, avatar string) error
	// SetPremium is idempotent.
	SetPremium(ctx context.Context, id string, premium bool) error
	// TopByPoints orders by points descending, then name.
	TopByPoints(ctx context.Context, opts ListOptions) ([]model.User, error)
}

// LedgerRepository is the only writer of User.Points.
type LedgerRepository interface {
	Balance(ctx context.Context, userID string) (int, error)
	// Credit adds amount and returns the new balance.
	Credit(ctx context.Context, userID string, amount int) (int, error)
	// Debit subtracts amount only if the balance covers it, otherwise it
	// returns apperror.ErrInsufficientPoints and changes nothing.
	Debit(ctx context.Context, userID string, amount int) (int, error)
}

type CompletionRepository interface {
	IsCompleted(ctx context.Context, userID, missionID, day string) (bool, error)
	// RecordCompletion inserts the record if its key is absent and reports
	// whether a row was created. It never credits points.
	RecordCompletion(ctx context.Context, c *model.MissionCompletion) (bool, error)
	// CompleteMission records the completion and credits c.PointsAwarded in
	// one transaction. An existing key returns apperror.ErrAlreadyCompleted
	// and leaves the balance alone.
	CompleteMission(ctx context.Context, c *model.MissionCompletion) (int, error)
	CompletedMissionIDs(ctx context.Context, userID, day string) ([]string, error)
}

type PurchaseRepository interface {
	HasPurchased(ctx context.Context, userID, rewardID string) (bool, error)
	// PurchaseReward checks for an existing record, debits p.CostPaid and
	// inserts p in one transaction, returning the new balance. It fails
	// with apperror.ErrAlreadyPurchased or apperror.ErrInsufficientPoints
	// without side effects.
	PurchaseReward(ctx context.Context, p *model.Purchase) (int, error)
	ListPurchases(ctx context.Context, userID string) ([]model.Purchase, error)
}
