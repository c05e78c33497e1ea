package engagement

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aimastery/questd/internal/domain"
)

// ProfileView is a profile plus derived level progress, for display.
type ProfileView struct {
	domain.UserProfile
	QuestsCompleted int     `json:"quests_completed"`
	NextLevelXP     int64   `json:"next_level_xp"`
	XPToNextLevel   int64   `json:"xp_to_next_level"`
	LevelProgress   float64 `json:"level_progress_pct"`
}

// Profile returns the user's profile with level progress.
// Users with no activity yet get the zero-state profile.
func (s *Service) Profile(ctx context.Context, userID string) (*ProfileView, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		fresh := domain.NewProfile(userID)
		p = &fresh
	}

	completed, err := s.store.CountCompletedQuests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count completed quests: %w", err)
	}

	return &ProfileView{
		UserProfile:     *p,
		QuestsCompleted: completed,
		NextLevelXP:     XPForLevel(min(LevelOf(p.XP)+1, MaxLevel)),
		XPToNextLevel:   XPToNextLevel(p.XP),
		LevelProgress:   LevelProgressPct(p.XP),
	}, nil
}

// BadgeStatus is a catalog badge with the user's earned state.
type BadgeStatus struct {
	domain.Badge
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

// Badges returns the full catalog annotated with what the user has earned.
func (s *Service) Badges(ctx context.Context, userID string) ([]BadgeStatus, error) {
	catalog, err := s.store.ListBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	earned, err := s.store.ListEarnedBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list earned badges: %w", err)
	}

	earnedAt := make(map[string]time.Time, len(earned))
	for _, ub := range earned {
		earnedAt[ub.BadgeID] = ub.EarnedAt
	}

	out := make([]BadgeStatus, 0, len(catalog))
	for _, b := range catalog {
		status := BadgeStatus{Badge: b}
		if at, ok := earnedAt[b.ID]; ok {
			status.Earned = true
			status.EarnedAt = &at
		}
		out = append(out, status)
	}
	return out, nil
}

// DailyChallenge returns today's challenge for a user.
func (s *Service) DailyChallenge(ctx context.Context, userID string) (*domain.DailyChallenge, error) {
	return s.DailyChallengeAt(ctx, userID, domain.Today())
}

// DailyChallengeAt returns the challenge for userID on day.
// Returns domain.ErrNoQuestsAvailable if nothing is published.
func (s *Service) DailyChallengeAt(ctx context.Context, userID string, day domain.Date) (*domain.DailyChallenge, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	pool, err := s.store.ListPublishedQuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}
	ids, err := s.store.ListCompletedQuestIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed quests: %w", err)
	}
	completed := make(map[string]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}

	quest, isReplay, ok := SelectDailyChallenge(day, pool, completed)
	if !ok {
		return nil, domain.ErrNoQuestsAvailable
	}

	activity, err := s.store.GetDailyActivity(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("get daily activity: %w", err)
	}

	return &domain.DailyChallenge{
		Quest:            quest,
		IsReplay:         isReplay,
		HasActivityToday: activity != nil,
		BonusXP:          DailyBonus(isReplay),
		Date:             day,
	}, nil
}

// Leaderboard returns the top users by XP. limit is clamped to 1..100.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	limit = max(1, min(limit, 100))
	entries, err := s.store.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return entries, nil
}

// IsCompleted reports whether the user has already completed the quest.
// Callers use it to skip work, such as evaluation, that a resubmission
// would discard.
func (s *Service) IsCompleted(ctx context.Context, userID, questID string) (bool, error) {
	p, err := s.store.GetProgress(ctx, userID, questID)
	if err != nil {
		return false, fmt.Errorf("get progress: %w", err)
	}
	return p.IsCompleted(), nil
}

// Quest returns a quest from the catalog.
func (s *Service) Quest(ctx context.Context, id string) (*domain.Quest, error) {
	q, err := s.store.GetQuest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quest: %w", err)
	}
	if q == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuestNotFound, id)
	}
	return q, nil
}

// SeedBadges installs badges into the catalog, updating existing ids.
func (s *Service) SeedBadges(ctx context.Context, badges []domain.Badge) error {
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		for _, b := range badges {
			if err := repo.UpsertBadge(ctx, b); err != nil {
				return fmt.Errorf("upsert badge %s: %w", b.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("badge catalog seeded", zap.Int("count", len(badges)))
	return nil
}

// SeedQuests installs quests into the catalog, updating existing ids.
func (s *Service) SeedQuests(ctx context.Context, quests []domain.Quest) error {
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		for _, q := range quests {
			if err := repo.UpsertQuest(ctx, q); err != nil {
				return fmt.Errorf("upsert quest %s: %w", q.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("quest catalog seeded", zap.Int("count", len(quests)))
	return nil
}
