// Package sqlite implements the repository interfaces on SQLite through
// database/sql and the pure-Go modernc.org/sqlite driver.
//
// The pool is capped at a single connection. SQLite only ever has one writer
// anyway, and with one connection every balance-changing transaction runs
// start to finish before the next begins, which is what keeps credits and
// debits atomic per user. It also lets ":memory:" databases work, since each
// new connection to ":memory:" would otherwise open an empty database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (or ":memory:") and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the schema. Every statement is idempotent.
func (db *DB) migrate() error {
	// points can never go negative, even if a caller bypasses Debit.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			name_key   TEXT NOT NULL UNIQUE,
			points     INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
			avatar     TEXT NOT NULL DEFAULT '',
			is_premium INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_points ON users(points DESC, name);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS mission_completions (
			user_id        TEXT NOT NULL REFERENCES users(id),
			mission_id     TEXT NOT NULL,
			day            TEXT NOT NULL,
			points_awarded INTEGER NOT NULL CHECK (points_awarded > 0),
			completed_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, mission_id, day)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating mission_completions table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS purchases (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL REFERENCES users(id),
			reward_id    TEXT NOT NULL,
			cost_paid    INTEGER NOT NULL CHECK (cost_paid > 0),
			purchased_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, reward_id)
		);
		CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases(user_id, purchased_at);
	`)
	if err != nil {
		return fmt.Errorf("creating purchases table: %w", err)
	}

	return nil
}

// withTx runs fn inside a transaction, committing on nil and rolling back
// otherwise. fn must only use tx; touching db.conn would wait forever on the
// single pooled connection.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}
