// Package domain holds the gamification types shared by the engine, the
// store and the HTTP API. The progression engine drives learner retention
// through XP, levels, streaks, badges and a daily challenge.
package domain

import (
	"encoding/json"
	"time"
)

// ─── Profile ────────────────────────────────────────────────────────────────

// UserProfile holds the gamification fields of a learner's profile.
// Invariants: LongestStreak >= CurrentStreak, Level == LevelOf(XP).
type UserProfile struct {
	UserID        string    `json:"user_id"`
	Username      string    `json:"username,omitempty"`
	DisplayName   string    `json:"display_name,omitempty"`
	XP            int64     `json:"xp"`
	Level         int       `json:"level"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	LastActivity  *Date     `json:"last_activity_date,omitempty"` // nil before first activity
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewProfile returns the zero-state profile for a user with no activity.
func NewProfile(userID string) UserProfile {
	return UserProfile{UserID: userID, Level: 1}
}

// ─── Quests & Progress ──────────────────────────────────────────────────────

// Quest is a unit of learning content that can be started and completed.
type Quest struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	XPReward    int64  `json:"xp_reward"`
	OrderIndex  int    `json:"order_index"`
	Published   bool   `json:"is_published"`
}

// ProgressStatus is the lifecycle state of a user×quest pair.
// A missing progress record means StatusNotStarted.
type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

// AIFeedback is the opaque evaluation payload passed through to storage.
type AIFeedback struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Submission is the learner's answer. Data is opaque to the engine.
type Submission struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// QuestProgress records one user's progress on one quest.
// CompletedAt and XPEarned are set iff Status == StatusCompleted.
type QuestProgress struct {
	UserID      string         `json:"user_id"`
	QuestID     string         `json:"quest_id"`
	Status      ProgressStatus `json:"status"`
	StartedAt   time.Time      `json:"started_at,omitempty"`
	CompletedAt time.Time      `json:"completed_at,omitempty"`
	XPEarned    int64          `json:"xp_earned,omitempty"`
	Submission  *Submission    `json:"submission,omitempty"`
	AIFeedback  *AIFeedback    `json:"ai_feedback,omitempty"`
}

// IsCompleted reports whether the quest has been completed.
func (p *QuestProgress) IsCompleted() bool {
	return p != nil && p.Status == StatusCompleted
}

// ─── Daily Activity ─────────────────────────────────────────────────────────

// DailyActivity accumulates a user's XP and completions for one UTC day.
type DailyActivity struct {
	UserID          string `json:"user_id"`
	Date            Date   `json:"activity_date"`
	XPEarned        int64  `json:"xp_earned"`
	QuestsCompleted int    `json:"quests_completed"`
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// RequirementKind names the stat a badge requirement is tested against.
type RequirementKind string

const (
	ReqQuestsCompleted RequirementKind = "quests_completed"
	ReqStreak          RequirementKind = "streak"
	ReqLevel           RequirementKind = "level"
	ReqXP              RequirementKind = "xp"
	ReqUnknown         RequirementKind = "unknown"
)

// ParseRequirementKind maps a stored kind to a known kind.
// Anything unrecognized becomes ReqUnknown and never qualifies.
func ParseRequirementKind(s string) RequirementKind {
	switch k := RequirementKind(s); k {
	case ReqQuestsCompleted, ReqStreak, ReqLevel, ReqXP:
		return k
	default:
		return ReqUnknown
	}
}

// Requirement is a (kind, threshold) pair: the badge is earned once the
// stat named by Kind is >= Threshold.
type Requirement struct {
	Kind      RequirementKind `json:"type"`
	Threshold int64           `json:"value"`
}

// Badge is a catalog entry. The catalog is global and read-only to the engine.
type Badge struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Icon        string      `json:"icon,omitempty"`
	Category    string      `json:"category,omitempty"`
	Requirement Requirement `json:"requirements"`
}

// UserBadge records that a user permanently earned a badge.
type UserBadge struct {
	UserID   string    `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// UserStats is the snapshot badge requirements are evaluated against.
type UserStats struct {
	QuestsCompleted int   `json:"quests_completed"`
	Streak          int   `json:"streak"`
	Level           int   `json:"level"`
	TotalXP         int64 `json:"total_xp"`
}

// Value returns the stat a requirement kind refers to.
// ok is false for ReqUnknown.
func (s UserStats) Value(kind RequirementKind) (v int64, ok bool) {
	switch kind {
	case ReqQuestsCompleted:
		return int64(s.QuestsCompleted), true
	case ReqStreak:
		return int64(s.Streak), true
	case ReqLevel:
		return int64(s.Level), true
	case ReqXP:
		return s.TotalXP, true
	default:
		return 0, false
	}
}

// ─── Results ────────────────────────────────────────────────────────────────

// CompletionResult summarizes one quest completion for the caller.
type CompletionResult struct {
	XPEarned         int64    `json:"xp_earned"`
	XPBonus          int64    `json:"xp_bonus"`
	StreakMultiplier float64  `json:"streak_multiplier"`
	NewStreak        int      `json:"new_streak"`
	StreakLost       bool     `json:"streak_lost"`
	NewLevel         int      `json:"new_level"`
	LeveledUp        bool     `json:"leveled_up"`
	NewBadges        []string `json:"new_badges"`
	AlreadyCompleted bool     `json:"already_completed,omitempty"`
}

// DailyChallenge is the quest highlighted for one calendar date.
type DailyChallenge struct {
	Quest            Quest `json:"quest"`
	IsReplay         bool  `json:"is_completed"`
	HasActivityToday bool  `json:"has_activity_today"`
	BonusXP          int64 `json:"bonus_xp"`
	Date             Date  `json:"date"`
}

// LeaderboardEntry is one ranked row of the XP leaderboard.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	Username      string `json:"username,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
	XP            int64  `json:"xp"`
	Level         int    `json:"level"`
	CurrentStreak int    `json:"current_streak"`
}
