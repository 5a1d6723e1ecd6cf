package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/model"
	"github.com/sakif/jagoan-puasa/internal/repository"
)

var _ repository.CompletionRepository = (*DB)(nil)

func (db *DB) IsCompleted(ctx context.Context, userID, missionID, day string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mission_completions
		 WHERE user_id = ? AND mission_id = ? AND day = ?`,
		userID, missionID, day,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking completion %s/%s/%s: %w", userID, missionID, day, err)
	}
	return count > 0, nil
}

// RecordCompletion inserts the completion unless its key already exists.
func (db *DB) RecordCompletion(ctx context.Context, c *model.MissionCompletion) (bool, error) {
	return recordCompletion(ctx, db.conn, c)
}

// CompleteMission credits the mission reward and records the completion in
// one transaction. If the key already exists the credit is rolled back.
func (db *DB) CompleteMission(ctx context.Context, c *model.MissionCompletion) (int, error) {
	var newBalance int
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		points, err := credit(ctx, tx, c.UserID, c.PointsAwarded)
		if err != nil {
			return err
		}

		created, err := recordCompletion(ctx, tx, c)
		if err != nil {
			return err
		}
		if !created {
			return apperror.AlreadyCompleted(c.MissionID, c.Day)
		}

		newBalance = points
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (db *DB) CompletedMissionIDs(ctx context.Context, userID, day string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT mission_id FROM mission_completions
		 WHERE user_id = ? AND day = ?
		 ORDER BY completed_at`,
		userID, day,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing completions for %s on %s: %w", userID, day, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning completion row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating completions: %w", err)
	}
	return ids, nil
}

func recordCompletion(ctx context.Context, q querier, c *model.MissionCompletion) (bool, error) {
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now()
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO mission_completions (user_id, mission_id, day, points_awarded, completed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, mission_id, day) DO NOTHING`,
		c.UserID,
		c.MissionID,
		c.Day,
		c.PointsAwarded,
		c.CompletedAt,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: recording completion %s/%s/%s: %w", c.UserID, c.MissionID, c.Day, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n == 1, nil
}
