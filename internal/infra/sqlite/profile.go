package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aimastery/questd/internal/domain"
)

// ─── Profiles ───────────────────────────────────────────────────────────────

const profileColumns = `user_id, username, display_name, xp, level,
	current_streak, longest_streak, last_activity_date, updated_at`

// GetProfile returns the profile for userID, or nil if none exists.
func (s *queries) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID,
	)
	return scanProfile(row)
}

// UpdateProfile writes every gamification field of p, creating the row
// on first use.
func (s *queries) UpdateProfile(ctx context.Context, p domain.UserProfile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO profiles (`+profileColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			username=CASE WHEN excluded.username != '' THEN excluded.username ELSE profiles.username END,
			display_name=CASE WHEN excluded.display_name != '' THEN excluded.display_name ELSE profiles.display_name END,
			xp=excluded.xp,
			level=excluded.level,
			current_streak=excluded.current_streak,
			longest_streak=excluded.longest_streak,
			last_activity_date=excluded.last_activity_date,
			updated_at=excluded.updated_at`,
		p.UserID, p.Username, p.DisplayName, p.XP, p.Level,
		p.CurrentStreak, p.LongestStreak, nullableDate(p.LastActivity), p.UpdatedAt.Unix(),
	)
	return err
}

// GetProfileByUsername returns the profile owning username, or nil.
func (s *queries) GetProfileByUsername(ctx context.Context, username string) (*domain.UserProfile, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE username = ? AND username != ''`, username,
	)
	return scanProfile(row)
}

// SetIdentity sets username and display name, creating a level 1 row if
// the user has no profile yet.
func (s *queries) SetIdentity(ctx context.Context, userID, username, displayName string, at time.Time) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO profiles (user_id, username, display_name, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			username=excluded.username,
			display_name=excluded.display_name,
			updated_at=excluded.updated_at`,
		userID, username, displayName, at.Unix(),
	)
	return err
}

// Leaderboard returns the top profiles by XP. Ties break on user id so the
// ranking is stable.
func (s *queries) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT user_id, username, display_name, xp, level, current_streak
		 FROM profiles ORDER BY xp DESC, user_id ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.DisplayName, &e.XP, &e.Level, &e.CurrentStreak); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanProfile(s scanner) (*domain.UserProfile, error) {
	var p domain.UserProfile
	var lastActivity sql.NullString
	var updatedAt int64

	err := s.Scan(&p.UserID, &p.Username, &p.DisplayName, &p.XP, &p.Level,
		&p.CurrentStreak, &p.LongestStreak, &lastActivity, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}

	if lastActivity.Valid {
		d, err := domain.ParseDate(lastActivity.String)
		if err != nil {
			return nil, err
		}
		p.LastActivity = &d
	}
	p.UpdatedAt = time.Unix(updatedAt, 0)
	return &p, nil
}

func nullableDate(d *domain.Date) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
