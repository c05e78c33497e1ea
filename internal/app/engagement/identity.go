package engagement

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aimastery/questd/internal/domain"
)

// usernamePattern is the public handle format: lowercase letters, digits
// and underscores.
var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,32}$`)

func registerValidations(v *validator.Validate) {
	// Only fails if the tag is registered twice.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}

// IdentityRequest is the input to SetIdentity.
type IdentityRequest struct {
	UserID      string `json:"-" validate:"required,max=128"`
	Username    string `json:"username" validate:"required,username"`
	DisplayName string `json:"display_name" validate:"max=64"`
}

// NormalizeUsername lowercases and trims a username for storage and lookup.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SetIdentity sets the user's public username and display name.
func (s *Service) SetIdentity(ctx context.Context, req IdentityRequest) (*ProfileView, error) {
	return s.SetIdentityAt(ctx, req, time.Now())
}

// SetIdentityAt is SetIdentity with an explicit time.
// Returns domain.ErrUsernameTaken if another user owns the username.
func (s *Service) SetIdentityAt(ctx context.Context, req IdentityRequest, now time.Time) (*ProfileView, error) {
	req.Username = NormalizeUsername(req.Username)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	unlock := s.locks.lock(req.UserID)
	defer unlock()

	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		owner, err := repo.GetProfileByUsername(ctx, req.Username)
		if err != nil {
			return fmt.Errorf("get profile by username: %w", err)
		}
		if owner != nil && owner.UserID != req.UserID {
			return fmt.Errorf("%w: %s", domain.ErrUsernameTaken, req.Username)
		}
		if err := repo.SetIdentity(ctx, req.UserID, req.Username, req.DisplayName, now); err != nil {
			return fmt.Errorf("set identity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("identity updated",
		zap.String("user_id", req.UserID),
		zap.String("username", req.Username),
	)
	return s.Profile(ctx, req.UserID)
}

// PublicProfile is what anyone can see about a user by username.
type PublicProfile struct {
	Username        string   `json:"username"`
	DisplayName     string   `json:"display_name,omitempty"`
	XP              int64    `json:"xp"`
	Level           int      `json:"level"`
	CurrentStreak   int      `json:"current_streak"`
	LongestStreak   int      `json:"longest_streak"`
	QuestsCompleted int      `json:"quests_completed"`
	Badges          []string `json:"badges"`
}

// PublicProfileByUsername looks a user up by public handle.
// Returns domain.ErrProfileNotFound if nobody has claimed it.
func (s *Service) PublicProfileByUsername(ctx context.Context, username string) (*PublicProfile, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	p, err := s.store.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get profile by username: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, username)
	}

	completed, err := s.store.CountCompletedQuests(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("count completed quests: %w", err)
	}
	earned, err := s.store.ListEarnedBadges(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list earned badges: %w", err)
	}
	badges := make([]string, 0, len(earned))
	for _, ub := range earned {
		badges = append(badges, ub.BadgeID)
	}

	return &PublicProfile{
		Username:        p.Username,
		DisplayName:     p.DisplayName,
		XP:              p.XP,
		Level:           max(p.Level, 1),
		CurrentStreak:   p.CurrentStreak,
		LongestStreak:   p.LongestStreak,
		QuestsCompleted: completed,
		Badges:          badges,
	}, nil
}
