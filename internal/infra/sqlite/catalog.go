package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aimastery/questd/internal/domain"
)

// ─── Badges ─────────────────────────────────────────────────────────────────

// ListBadges returns the whole badge catalog ordered by id.
// Unrecognized requirement kinds come back as domain.ReqUnknown.
func (s *queries) ListBadges(ctx context.Context) ([]domain.Badge, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, title, description, icon, category, req_kind, req_threshold
		 FROM badges ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.Badge
	for rows.Next() {
		var b domain.Badge
		var kind string
		if err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.Icon, &b.Category,
			&kind, &b.Requirement.Threshold); err != nil {
			return nil, err
		}
		b.Requirement.Kind = domain.ParseRequirementKind(kind)
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// UpsertBadge inserts or updates a catalog entry.
func (s *queries) UpsertBadge(ctx context.Context, b domain.Badge) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO badges (id, title, description, icon, category, req_kind, req_threshold)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			description=excluded.description,
			icon=excluded.icon,
			category=excluded.category,
			req_kind=excluded.req_kind,
			req_threshold=excluded.req_threshold`,
		b.ID, b.Title, b.Description, b.Icon, b.Category,
		string(b.Requirement.Kind), b.Requirement.Threshold,
	)
	return err
}

// ListEarnedBadges returns the badges a user has earned, oldest first.
func (s *queries) ListEarnedBadges(ctx context.Context, userID string) ([]domain.UserBadge, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT user_id, badge_id, earned_at FROM user_badges
		 WHERE user_id = ? ORDER BY earned_at ASC, badge_id ASC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earned []domain.UserBadge
	for rows.Next() {
		var ub domain.UserBadge
		var earnedAt int64
		if err := rows.Scan(&ub.UserID, &ub.BadgeID, &earnedAt); err != nil {
			return nil, err
		}
		ub.EarnedAt = time.Unix(earnedAt, 0)
		earned = append(earned, ub)
	}
	return earned, rows.Err()
}

// InsertUserBadge records a badge as earned.
// Returns false if the user already had it (idempotent).
func (s *queries) InsertUserBadge(ctx context.Context, userID, badgeID string, at time.Time) (bool, error) {
	result, err := s.q.ExecContext(ctx,
		`INSERT INTO user_badges (user_id, badge_id, earned_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, badge_id) DO NOTHING`,
		userID, badgeID, at.Unix(),
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly earned
}

// ─── Quests ─────────────────────────────────────────────────────────────────

const questColumns = `id, slug, title, description, difficulty, xp_reward, order_index, is_published`

// GetQuest retrieves a quest by id, or nil if it does not exist.
func (s *queries) GetQuest(ctx context.Context, id string) (*domain.Quest, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+questColumns+` FROM quests WHERE id = ?`, id)
	return scanQuest(row)
}

// UpsertQuest inserts or updates a quest catalog entry.
func (s *queries) UpsertQuest(ctx context.Context, q domain.Quest) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO quests (`+questColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			slug=excluded.slug,
			title=excluded.title,
			description=excluded.description,
			difficulty=excluded.difficulty,
			xp_reward=excluded.xp_reward,
			order_index=excluded.order_index,
			is_published=excluded.is_published`,
		q.ID, q.Slug, q.Title, q.Description, q.Difficulty,
		q.XPReward, q.OrderIndex, q.Published,
	)
	return err
}

// ListPublishedQuests returns published quests in catalog order.
func (s *queries) ListPublishedQuests(ctx context.Context) ([]domain.Quest, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+questColumns+` FROM quests WHERE is_published = 1 ORDER BY order_index ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quests []domain.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		quests = append(quests, *q)
	}
	return quests, rows.Err()
}

func scanQuest(s scanner) (*domain.Quest, error) {
	var q domain.Quest
	err := s.Scan(&q.ID, &q.Slug, &q.Title, &q.Description, &q.Difficulty,
		&q.XPReward, &q.OrderIndex, &q.Published)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}
