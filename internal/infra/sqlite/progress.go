package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aimastery/questd/internal/domain"
)

// ─── Quest Progress ─────────────────────────────────────────────────────────

// GetProgress returns the progress row for a user×quest pair, or nil when
// the quest has not been started.
func (s *queries) GetProgress(ctx context.Context, userID, questID string) (*domain.QuestProgress, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT user_id, quest_id, status, started_at, completed_at, xp_earned, submission, ai_feedback
		 FROM quest_progress WHERE user_id = ? AND quest_id = ?`, userID, questID,
	)
	return scanProgress(row)
}

// UpsertProgress inserts or replaces the progress row keyed on
// (user_id, quest_id) in one statement. started_at is kept from the first
// write. Completion fields are written as NULL unless p is completed.
func (s *queries) UpsertProgress(ctx context.Context, p domain.QuestProgress) error {
	submission, err := nullableJSON(p.Submission)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	feedback, err := nullableJSON(p.AIFeedback)
	if err != nil {
		return fmt.Errorf("encode ai feedback: %w", err)
	}

	var completedAt, xpEarned sql.NullInt64
	if p.Status == domain.StatusCompleted {
		at := p.CompletedAt
		if at.IsZero() {
			at = time.Now()
		}
		completedAt = sql.NullInt64{Int64: at.Unix(), Valid: true}
		xpEarned = sql.NullInt64{Int64: p.XPEarned, Valid: true}
	}

	_, err = s.q.ExecContext(ctx,
		`INSERT INTO quest_progress (user_id, quest_id, status, started_at, completed_at, xp_earned, submission, ai_feedback)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, quest_id) DO UPDATE SET
			status=excluded.status,
			started_at=COALESCE(quest_progress.started_at, excluded.started_at),
			completed_at=excluded.completed_at,
			xp_earned=excluded.xp_earned,
			submission=COALESCE(excluded.submission, quest_progress.submission),
			ai_feedback=COALESCE(excluded.ai_feedback, quest_progress.ai_feedback)`,
		p.UserID, p.QuestID, string(p.Status), nullableUnix(p.StartedAt),
		completedAt, xpEarned, submission, feedback,
	)
	return err
}

// CountCompletedQuests returns how many quests the user has completed.
func (s *queries) CountCompletedQuests(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quest_progress WHERE user_id = ? AND status = ?`,
		userID, string(domain.StatusCompleted),
	).Scan(&count)
	return count, err
}

// ListCompletedQuestIDs returns the ids of every quest the user completed.
func (s *queries) ListCompletedQuestIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT quest_id FROM quest_progress WHERE user_id = ? AND status = ? ORDER BY quest_id`,
		userID, string(domain.StatusCompleted),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ─── Daily Activity ─────────────────────────────────────────────────────────

// UpsertDailyActivity adds to the user's counters for day, creating the row
// on the first activity of the day.
func (s *queries) UpsertDailyActivity(ctx context.Context, userID string, day domain.Date, xp int64, quests int) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO daily_activity (user_id, activity_date, xp_earned, quests_completed)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, activity_date) DO UPDATE SET
			xp_earned=daily_activity.xp_earned + excluded.xp_earned,
			quests_completed=daily_activity.quests_completed + excluded.quests_completed`,
		userID, day.String(), xp, quests,
	)
	return err
}

// GetDailyActivity returns the user's activity for day, or nil if none.
func (s *queries) GetDailyActivity(ctx context.Context, userID string, day domain.Date) (*domain.DailyActivity, error) {
	a := domain.DailyActivity{UserID: userID, Date: day}
	err := s.q.QueryRowContext(ctx,
		`SELECT xp_earned, quests_completed FROM daily_activity WHERE user_id = ? AND activity_date = ?`,
		userID, day.String(),
	).Scan(&a.XPEarned, &a.QuestsCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ─── Progress Scanners ──────────────────────────────────────────────────────

func scanProgress(s scanner) (*domain.QuestProgress, error) {
	var p domain.QuestProgress
	var status string
	var startedAt, completedAt, xpEarned sql.NullInt64
	var submission, feedback sql.NullString

	err := s.Scan(&p.UserID, &p.QuestID, &status, &startedAt, &completedAt,
		&xpEarned, &submission, &feedback)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Status = domain.ProgressStatus(status)
	if startedAt.Valid {
		p.StartedAt = time.Unix(startedAt.Int64, 0)
	}
	if completedAt.Valid {
		p.CompletedAt = time.Unix(completedAt.Int64, 0)
	}
	p.XPEarned = xpEarned.Int64

	if submission.Valid {
		p.Submission = &domain.Submission{}
		if err := json.Unmarshal([]byte(submission.String), p.Submission); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
	}
	if feedback.Valid {
		p.AIFeedback = &domain.AIFeedback{}
		if err := json.Unmarshal([]byte(feedback.String), p.AIFeedback); err != nil {
			return nil, fmt.Errorf("decode ai feedback: %w", err)
		}
	}
	return &p, nil
}

// nullableJSON encodes v, mapping a nil pointer to SQL NULL.
func nullableJSON[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
