package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/model"
	"github.com/sakif/jagoan-puasa/internal/repository"
)

var _ repository.PurchaseRepository = (*DB)(nil)

func (db *DB) HasPurchased(ctx context.Context, userID, rewardID string) (bool, error) {
	return hasPurchased(ctx, db.conn, userID, rewardID)
}

// PurchaseReward runs the duplicate check, the debit and the insert in one
// transaction. On any rejection nothing is written.
func (db *DB) PurchaseReward(ctx context.Context, p *model.Purchase) (int, error) {
	p.ID = xid.New().String()
	if p.PurchasedAt.IsZero() {
		p.PurchasedAt = time.Now()
	}

	var newBalance int
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		owned, err := hasPurchased(ctx, tx, p.UserID, p.RewardID)
		if err != nil {
			return err
		}
		if owned {
			return apperror.AlreadyPurchased(p.RewardID)
		}

		points, err := debit(ctx, tx, p.UserID, p.CostPaid)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO purchases (id, user_id, reward_id, cost_paid, purchased_at)
			 VALUES (?, ?, ?, ?, ?)`,
			p.ID,
			p.UserID,
			p.RewardID,
			p.CostPaid,
			p.PurchasedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.AlreadyPurchased(p.RewardID)
			}
			return fmt.Errorf("sqlite: inserting purchase of %s by %s: %w", p.RewardID, p.UserID, err)
		}

		newBalance = points
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// ListPurchases returns the user's purchases, newest first.
func (db *DB) ListPurchases(ctx context.Context, userID string) ([]model.Purchase, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, reward_id, cost_paid, purchased_at
		 FROM purchases
		 WHERE user_id = ?
		 ORDER BY purchased_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing purchases of %s: %w", userID, err)
	}
	defer rows.Close()

	purchases := []model.Purchase{}
	for rows.Next() {
		var p model.Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.RewardID, &p.CostPaid, &p.PurchasedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning purchase row: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating purchases: %w", err)
	}
	return purchases, nil
}

func hasPurchased(ctx context.Context, q querier, userID, rewardID string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM purchases WHERE user_id = ? AND reward_id = ?`,
		userID, rewardID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking purchase of %s by %s: %w", rewardID, userID, err)
	}
	return count > 0, nil
}
