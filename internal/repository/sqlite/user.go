package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/model"
	"github.com/sakif/jagoan-puasa/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, name, points, avatar, is_premium, created_at, updated_at`

// nameKey is the case-folded form used for uniqueness and lookup.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Create inserts a new user with a generated ID. A name that differs from an
// existing one only by case is a conflict.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, name_key, points, avatar, is_premium, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		nameKey(user.Name),
		user.Points,
		user.Avatar,
		user.IsPremium,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user name", user.Name)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Name, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

func (db *DB) GetByName(ctx context.Context, name string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE name_key = ?`, nameKey(name))

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", name)
		}
		return nil, fmt.Errorf("sqlite: getting user by name %q: %w", name, err)
	}
	return u, nil
}

// UpdateProfile changes the user-editable fields. Points and premium status
// are deliberately not touched here.
func (db *DB) UpdateProfile(ctx context.Context, id, name, avatar string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, name_key = ?, avatar = ?, updated_at = ?
		 WHERE id = ?`,
		name, nameKey(name), avatar, time.Now(), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user name", name)
		}
		return fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

func (db *DB) SetPremium(ctx context.Context, id string, premium bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET is_premium = ?, updated_at = ? WHERE id = ?`,
		premium, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting premium for user %s: %w", id, err)
	}

	// SQLite counts matched rows, so re-applying the same value still
	// reports one row and the call stays idempotent.
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

func (db *DB) TopByPoints(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY points DESC, name ASC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing top users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	err := s.Scan(
		&u.ID,
		&u.Name,
		&u.Points,
		&u.Avatar,
		&u.IsPremium,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
