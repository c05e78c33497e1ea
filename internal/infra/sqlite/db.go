// Package sqlite provides SQLite-based persistent storage for questd.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/aimastery/questd/internal/domain"
)

// FileName is the database file created inside the data directory.
const FileName = "questd.db"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements domain.Repository on top of a querier.
type queries struct {
	q querier
}

var _ domain.Repository = (*queries)(nil)

// DB wraps a SQLite connection with WAL mode and migrations.
// It implements domain.Store.
type DB struct {
	*queries
	db *sql.DB
}

var _ domain.Store = (*DB)(nil)

// Open creates or opens the SQLite database at dir/questd.db.
// Enables WAL mode, foreign keys, a 5-second busy timeout and
// BEGIN IMMEDIATE transactions so writers serialize up front.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, FileName)
	dsn := "file:" + dbPath +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer; one connection also serializes transactions.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{queries: &queries{q: db}, db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// WithTx runs fn in a single transaction. Any error from fn, or a panic,
// rolls the transaction back.
func (d *DB) WithTx(ctx context.Context, fn func(domain.Repository) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&queries{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Learner profiles: public handle plus gamification fields.
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id            TEXT PRIMARY KEY,
			username           TEXT NOT NULL DEFAULT '',
			display_name       TEXT NOT NULL DEFAULT '',
			xp                 INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
			level              INTEGER NOT NULL DEFAULT 1 CHECK (level >= 1),
			current_streak     INTEGER NOT NULL DEFAULT 0 CHECK (current_streak >= 0),
			longest_streak     INTEGER NOT NULL DEFAULT 0,
			last_activity_date TEXT,
			updated_at         INTEGER NOT NULL,
			CHECK (longest_streak >= current_streak)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_xp ON profiles(xp DESC)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_username ON profiles(username) WHERE username != ''`,

		// Quest catalog
		`CREATE TABLE IF NOT EXISTS quests (
			id           TEXT PRIMARY KEY,
			slug         TEXT NOT NULL UNIQUE,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			difficulty   TEXT NOT NULL DEFAULT 'beginner',
			xp_reward    INTEGER NOT NULL DEFAULT 0,
			order_index  INTEGER NOT NULL DEFAULT 0,
			is_published BOOLEAN NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quests_order ON quests(order_index, id)`,

		// One row per user×quest, created on first interaction
		`CREATE TABLE IF NOT EXISTS quest_progress (
			user_id      TEXT NOT NULL,
			quest_id     TEXT NOT NULL,
			status       TEXT NOT NULL,
			started_at   INTEGER,
			completed_at INTEGER,
			xp_earned    INTEGER,
			submission   TEXT,
			ai_feedback  TEXT,
			PRIMARY KEY (user_id, quest_id),
			CHECK ((status = 'completed') = (completed_at IS NOT NULL)),
			CHECK ((status = 'completed') = (xp_earned IS NOT NULL))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_status ON quest_progress(user_id, status)`,

		// One row per user×calendar day
		`CREATE TABLE IF NOT EXISTS daily_activity (
			user_id          TEXT NOT NULL,
			activity_date    TEXT NOT NULL,
			xp_earned        INTEGER NOT NULL DEFAULT 0,
			quests_completed INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, activity_date)
		)`,

		// Badge catalog: requirement stored as (kind, threshold)
		`CREATE TABLE IF NOT EXISTS badges (
			id            TEXT PRIMARY KEY,
			title         TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			icon          TEXT NOT NULL DEFAULT '',
			category      TEXT NOT NULL DEFAULT '',
			req_kind      TEXT NOT NULL,
			req_threshold INTEGER NOT NULL
		)`,

		// Earned badges, append-only
		`CREATE TABLE IF NOT EXISTS user_badges (
			user_id   TEXT NOT NULL,
			badge_id  TEXT NOT NULL REFERENCES badges(id),
			earned_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, badge_id)
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
