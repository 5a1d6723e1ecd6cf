package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/game"
	"github.com/sakif/jagoan-puasa/internal/model"
	"github.com/sakif/jagoan-puasa/internal/repository"
)

// BalanceReader reports a player's current balance. LedgerService and the
// ledger repository both satisfy it.
type BalanceReader interface {
	Balance(ctx context.Context, userID string) (int, error)
}

// ShopService sells one-time rewards for points.
type ShopService struct {
	purchases repository.PurchaseRepository
	ledger    BalanceReader
	catalog   game.Catalog
	listener  BalanceListener
	logger    *slog.Logger
}

func NewShopService(
	purchases repository.PurchaseRepository,
	ledger BalanceReader,
	catalog game.Catalog,
	listener BalanceListener,
	logger *slog.Logger,
) *ShopService {
	return &ShopService{
		purchases: purchases,
		ledger:    ledger,
		catalog:   catalog,
		listener:  listenerOrNoop(listener),
		logger:    logger,
	}
}

type PurchaseResult struct {
	Purchase    model.Purchase `json:"purchase"`
	RewardTitle string         `json:"rewardTitle"`
	Balance     int            `json:"balance"`
}

// RewardStatus is one shop shelf entry as seen by a specific player.
type RewardStatus struct {
	model.Reward
	Purchased  bool `json:"purchased"`
	Affordable bool `json:"affordable"`
}

// Purchase buys rewardID for userID. The reward must exist, must not be owned
// yet, and must be covered by the balance. On any rejection the balance and
// the owned set are unchanged.
func (s *ShopService) Purchase(ctx context.Context, userID, rewardID string, now time.Time) (*PurchaseResult, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	reward, ok := s.catalog.Reward(rewardID)
	if !ok {
		return nil, apperror.UnknownReward(rewardID)
	}

	p := &model.Purchase{
		UserID:      userID,
		RewardID:    reward.ID,
		CostPaid:    reward.Cost,
		PurchasedAt: now,
	}
	balance, err := s.purchases.PurchaseReward(ctx, p)
	if err != nil {
		logFailure(ctx, s.logger, "purchase failed", err,
			slog.String("userID", userID), slog.String("rewardID", reward.ID), slog.Int("cost", reward.Cost))
		return nil, fmt.Errorf("purchasing reward: %w", err)
	}
	s.listener.Invalidate()

	s.logger.Info("reward purchased",
		slog.String("userID", userID),
		slog.String("rewardID", reward.ID),
		slog.Int("cost", reward.Cost),
		slog.Int("balance", balance),
		slog.Bool("grandPrize", reward.GrandPrize),
	)

	return &PurchaseResult{
		Purchase:    *p,
		RewardTitle: reward.Title,
		Balance:     balance,
	}, nil
}

// Rewards lists the catalog annotated with ownership and affordability.
func (s *ShopService) Rewards(ctx context.Context, userID string) ([]RewardStatus, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}

	var (
		balance int
		owned   []model.Purchase
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = s.ledger.Balance(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		owned, err = s.purchases.ListPurchases(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("listing rewards: %w", err)
	}
	bought := make(map[string]bool, len(owned))
	for _, p := range owned {
		bought[p.RewardID] = true
	}

	shelf := make([]RewardStatus, 0, len(s.catalog.Rewards))
	for _, r := range s.catalog.Rewards {
		shelf = append(shelf, RewardStatus{
			Reward:     r,
			Purchased:  bought[r.ID],
			Affordable: !bought[r.ID] && balance >= r.Cost,
		})
	}
	return shelf, nil
}

// Purchases returns the player's purchase history, newest first.
func (s *ShopService) Purchases(ctx context.Context, userID string) ([]model.Purchase, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	list, err := s.purchases.ListPurchases(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	return list, nil
}
