package domain

import (
	"context"
	"time"
)

// ─── Storage Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the engagement engine depends on them.

// Repository is read/write access to the gamification records.
// Implementations must make every Upsert a single atomic statement keyed on
// the record's natural unique key.
type Repository interface {
	// GetProfile returns the profile, or (nil, nil) if the user has none yet.
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	UpdateProfile(ctx context.Context, p UserProfile) error
	// GetProfileByUsername returns (nil, nil) if no profile has username.
	GetProfileByUsername(ctx context.Context, username string) (*UserProfile, error)
	// SetIdentity writes username and display name, creating a zero-state
	// profile if the user has none. Gamification fields are untouched.
	SetIdentity(ctx context.Context, userID, username, displayName string, at time.Time) error

	GetProgress(ctx context.Context, userID, questID string) (*QuestProgress, error)
	UpsertProgress(ctx context.Context, p QuestProgress) error
	CountCompletedQuests(ctx context.Context, userID string) (int, error)
	ListCompletedQuestIDs(ctx context.Context, userID string) ([]string, error)

	// UpsertDailyActivity adds xp and quests to the user's row for day,
	// creating it if absent.
	UpsertDailyActivity(ctx context.Context, userID string, day Date, xp int64, quests int) error
	GetDailyActivity(ctx context.Context, userID string, day Date) (*DailyActivity, error)

	ListBadges(ctx context.Context) ([]Badge, error)
	UpsertBadge(ctx context.Context, b Badge) error
	ListEarnedBadges(ctx context.Context, userID string) ([]UserBadge, error)
	// InsertUserBadge returns false if the badge was already earned.
	InsertUserBadge(ctx context.Context, userID, badgeID string, at time.Time) (bool, error)

	GetQuest(ctx context.Context, id string) (*Quest, error)
	UpsertQuest(ctx context.Context, q Quest) error
	ListPublishedQuests(ctx context.Context) ([]Quest, error)

	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// Store is a Repository that can run a group of operations atomically.
type Store interface {
	Repository

	// WithTx runs fn inside one transaction. Returning an error from fn
	// rolls back every write made through the Repository it was given.
	WithTx(ctx context.Context, fn func(Repository) error) error
}
