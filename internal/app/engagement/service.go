package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aimastery/questd/internal/domain"
	"github.com/aimastery/questd/internal/infra/metrics"
)

// Service runs the progression engine against a domain.Store.
// All reads hit the store directly; nothing is cached.
type Service struct {
	store    domain.Store
	log      *zap.Logger
	locks    *userLocks
	validate *validator.Validate
}

// NewService creates the engagement service.
func NewService(store domain.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	registerValidations(v)
	return &Service{
		store:    store,
		log:      logger.Named("engagement"),
		locks:    newUserLocks(),
		validate: v,
	}
}

// CompletionRequest is the input to CompleteQuest.
type CompletionRequest struct {
	UserID     string             `json:"user_id" validate:"required,max=128"`
	QuestID    string             `json:"quest_id" validate:"required,max=128"`
	BaseXP     int64              `json:"base_xp" validate:"gte=0,lte=1000000"`
	Submission domain.Submission  `json:"submission"`
	AIFeedback *domain.AIFeedback `json:"ai_feedback,omitempty"`
}

// CompleteQuest completes a quest for a user at the current time.
func (s *Service) CompleteQuest(ctx context.Context, req CompletionRequest) (*domain.CompletionResult, error) {
	return s.CompleteQuestAt(ctx, req, time.Now())
}

// CompleteQuestAt completes a quest with "today" taken from now.
// Accepts a time parameter for testability.
//
// The steps run in order inside one transaction, under a per-user lock:
//
//  1. update the streak from persisted state and save it
//  2. award XP with the new streak's multiplier
//  3. compute the new XP total and level
//  4. mark the quest completed
//  5. save XP and level on the profile
//  6. add to today's daily activity
//  7. count completed quests, evaluate and insert new badges
//
// Any storage error rolls back every step, so a failed call can be retried
// with the same input. Completing an already completed quest changes
// nothing and reports AlreadyCompleted.
func (s *Service) CompleteQuestAt(ctx context.Context, req CompletionRequest, now time.Time) (*domain.CompletionResult, error) {
	if err := s.validate.Struct(req); err != nil {
		metrics.QuestCompletions.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	log := s.log.With(zap.String("user_id", req.UserID), zap.String("quest_id", req.QuestID))

	unlock := s.locks.lock(req.UserID)
	defer unlock()

	started := time.Now()
	var result *domain.CompletionResult
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		var err error
		result, err = completeInTx(ctx, repo, req, now)
		return err
	})
	metrics.CompletionDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		metrics.QuestCompletions.WithLabelValues(metrics.OutcomeFailed).Inc()
		log.Error("quest completion failed", zap.Error(err))
		return nil, fmt.Errorf("complete quest: %w", err)
	}

	if result.AlreadyCompleted {
		metrics.QuestCompletions.WithLabelValues(metrics.OutcomeAlreadyCompleted).Inc()
		log.Info("quest already completed, nothing awarded")
		return result, nil
	}

	metrics.QuestCompletions.WithLabelValues(metrics.OutcomeCompleted).Inc()
	metrics.XPAwarded.Add(float64(result.XPEarned))
	metrics.XPBonusAwarded.Add(float64(result.XPBonus))
	if result.LeveledUp {
		metrics.LevelUps.Inc()
	}
	if result.StreakLost {
		metrics.StreaksLost.Inc()
	}
	for _, id := range result.NewBadges {
		metrics.BadgesAwarded.WithLabelValues(id).Inc()
	}

	log.Info("quest completed",
		zap.Int64("xp_earned", result.XPEarned),
		zap.Int64("xp_bonus", result.XPBonus),
		zap.Int("streak", result.NewStreak),
		zap.Bool("streak_lost", result.StreakLost),
		zap.Int("level", result.NewLevel),
		zap.Bool("leveled_up", result.LeveledUp),
		zap.Strings("new_badges", result.NewBadges),
	)
	return result, nil
}

func completeInTx(ctx context.Context, repo domain.Repository, req CompletionRequest, now time.Time) (*domain.CompletionResult, error) {
	today := domain.DateOf(now)

	existing, err := repo.GetProgress(ctx, req.UserID, req.QuestID)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	profile, err := repo.GetProfile(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		p := domain.NewProfile(req.UserID)
		profile = &p
	}

	if existing.IsCompleted() {
		return &domain.CompletionResult{
			StreakMultiplier: StreakMultiplier(profile.CurrentStreak),
			NewStreak:        profile.CurrentStreak,
			NewLevel:         max(profile.Level, 1),
			NewBadges:        []string{},
			AlreadyCompleted: true,
		}, nil
	}

	// 1. Streak first, so the multiplier sees today's activity.
	streak := UpdateStreak(profile.CurrentStreak, profile.LongestStreak, profile.LastActivity, today)
	profile.CurrentStreak = streak.NewStreak
	profile.LongestStreak = streak.NewLongest
	profile.LastActivity = &today
	profile.UpdatedAt = now
	if err := repo.UpdateProfile(ctx, *profile); err != nil {
		return nil, fmt.Errorf("save streak: %w", err)
	}

	// 2. XP with streak bonus.
	award := AwardXP(req.BaseXP, streak.NewStreak)

	// 3. New totals.
	currentLevel := max(profile.Level, 1)
	newXP := profile.XP + award.Total
	newLevel := LevelOf(newXP)

	// 4. Progress record.
	progress := domain.QuestProgress{
		UserID:      req.UserID,
		QuestID:     req.QuestID,
		Status:      domain.StatusCompleted,
		StartedAt:   now,
		CompletedAt: now,
		XPEarned:    award.Total,
		Submission:  &req.Submission,
		AIFeedback:  req.AIFeedback,
	}
	if existing != nil && !existing.StartedAt.IsZero() {
		progress.StartedAt = existing.StartedAt
	}
	if err := repo.UpsertProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	// 5. Profile totals.
	profile.XP = newXP
	profile.Level = newLevel
	if err := repo.UpdateProfile(ctx, *profile); err != nil {
		return nil, fmt.Errorf("save xp: %w", err)
	}

	// 6. Daily activity.
	if err := repo.UpsertDailyActivity(ctx, req.UserID, today, award.Total, 1); err != nil {
		return nil, fmt.Errorf("record daily activity: %w", err)
	}

	// 7. Badges.
	completed, err := repo.CountCompletedQuests(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("count completed quests: %w", err)
	}
	stats := domain.UserStats{
		QuestsCompleted: completed,
		Streak:          streak.NewStreak,
		Level:           newLevel,
		TotalXP:         newXP,
	}
	newBadges, err := awardBadges(ctx, repo, req.UserID, stats, now)
	if err != nil {
		return nil, err
	}

	return &domain.CompletionResult{
		XPEarned:         award.Total,
		XPBonus:          award.Bonus,
		StreakMultiplier: award.Multiplier,
		NewStreak:        streak.NewStreak,
		StreakLost:       streak.StreakLost,
		NewLevel:         newLevel,
		LeveledUp:        newLevel > currentLevel,
		NewBadges:        newBadges,
	}, nil
}

// awardBadges evaluates the catalog and inserts newly qualified badges.
// An insert that finds the badge already earned is dropped silently.
func awardBadges(ctx context.Context, repo domain.Repository, userID string, stats domain.UserStats, now time.Time) ([]string, error) {
	catalog, err := repo.ListBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	earned, err := earnedSet(ctx, repo, userID)
	if err != nil {
		return nil, err
	}

	awarded := []string{}
	for _, id := range EvaluateBadges(stats, catalog, earned) {
		isNew, err := repo.InsertUserBadge(ctx, userID, id, now)
		if err != nil {
			return nil, fmt.Errorf("insert badge %s: %w", id, err)
		}
		if isNew {
			awarded = append(awarded, id)
		}
	}
	return awarded, nil
}

func earnedSet(ctx context.Context, repo domain.Repository, userID string) (map[string]bool, error) {
	earned, err := repo.ListEarnedBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list earned badges: %w", err)
	}
	set := make(map[string]bool, len(earned))
	for _, ub := range earned {
		set[ub.BadgeID] = true
	}
	return set, nil
}

// StartQuest moves a quest from not_started to in_progress.
func (s *Service) StartQuest(ctx context.Context, userID, questID string) (*domain.QuestProgress, error) {
	return s.StartQuestAt(ctx, userID, questID, time.Now())
}

// StartQuestAt is StartQuest with an explicit time.
// Starting a quest that is in progress or completed returns it unchanged.
func (s *Service) StartQuestAt(ctx context.Context, userID, questID string, now time.Time) (*domain.QuestProgress, error) {
	if userID == "" || questID == "" {
		return nil, fmt.Errorf("%w: user id and quest id are required", domain.ErrInvalidInput)
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	var progress *domain.QuestProgress
	created := false
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		existing, err := repo.GetProgress(ctx, userID, questID)
		if err != nil {
			return fmt.Errorf("get progress: %w", err)
		}
		if existing != nil {
			progress = existing
			return nil
		}

		p := domain.QuestProgress{
			UserID:    userID,
			QuestID:   questID,
			Status:    domain.StatusInProgress,
			StartedAt: now,
		}
		if err := repo.UpsertProgress(ctx, p); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		progress = &p
		created = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("start quest: %w", err)
	}
	if created {
		metrics.QuestStarts.Inc()
		s.log.Info("quest started", zap.String("user_id", userID), zap.String("quest_id", questID))
	}
	return progress, nil
}
