package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/repository"
)

var _ repository.LedgerRepository = (*DB)(nil)

// querier is the subset of *sql.DB and *sql.Tx the ledger statements need,
// so the same statement runs standalone or inside a purchase transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (db *DB) Balance(ctx context.Context, userID string) (int, error) {
	return balance(ctx, db.conn, userID)
}

// Credit adds amount to the balance. There is no upper bound.
func (db *DB) Credit(ctx context.Context, userID string, amount int) (int, error) {
	return credit(ctx, db.conn, userID, amount)
}

// Debit subtracts amount with a single conditional UPDATE, so the balance
// check and the write cannot be split by another request.
func (db *DB) Debit(ctx context.Context, userID string, amount int) (int, error) {
	return debit(ctx, db.conn, userID, amount)
}

func balance(ctx context.Context, q querier, userID string) (int, error) {
	var points int
	err := q.QueryRowContext(ctx,
		`SELECT points FROM users WHERE id = ?`, userID,
	).Scan(&points)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, apperror.NotFound("user", userID)
		}
		return 0, fmt.Errorf("sqlite: reading balance of %s: %w", userID, err)
	}
	return points, nil
}

func credit(ctx context.Context, q querier, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, apperror.ValidationFailed("amount", "credit amount must be positive")
	}

	var points int
	err := q.QueryRowContext(ctx,
		`UPDATE users SET points = points + ?, updated_at = ?
		 WHERE id = ?
		 RETURNING points`,
		amount, time.Now(), userID,
	).Scan(&points)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, apperror.NotFound("user", userID)
		}
		return 0, fmt.Errorf("sqlite: crediting %d to %s: %w", amount, userID, err)
	}
	return points, nil
}

func debit(ctx context.Context, q querier, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, apperror.ValidationFailed("amount", "debit amount must be positive")
	}

	var points int
	err := q.QueryRowContext(ctx,
		`UPDATE users SET points = points - ?, updated_at = ?
		 WHERE id = ? AND points >= ?
		 RETURNING points`,
		amount, time.Now(), userID, amount,
	).Scan(&points)
	if err == nil {
		return points, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("sqlite: debiting %d from %s: %w", amount, userID, err)
	}

	// No row matched: either the user is missing or the balance is short.
	current, err := balance(ctx, q, userID)
	if err != nil {
		return 0, err
	}
	return 0, apperror.InsufficientPoints(current, amount)
}
