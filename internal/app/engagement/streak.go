// Package engagement implements the questd progression engine: levels,
// streaks, streak-scaled XP, badges, the daily challenge and the quest
// completion transaction that ties them together.
package engagement

import "github.com/aimastery/questd/internal/domain"

// StreakUpdate is the streak state after counting activity on a given day.
type StreakUpdate struct {
	NewStreak  int  `json:"new_streak"`
	NewLongest int  `json:"new_longest"`
	StreakLost bool `json:"streak_lost"` // an existing streak was broken
	IsNewDay   bool `json:"is_new_day"`  // first activity of the day
}

// UpdateStreak computes the streak after activity on today.
//
//   - last == today: unchanged, IsNewDay false. Calling twice a day is a no-op.
//   - last == today-1: streak + 1.
//   - gap of 2+ days, or no prior activity: streak restarts at 1, and
//     StreakLost is set only if current > 0.
//
// A last date after today (clock skew) is treated like same-day activity so
// a skewed clock can never break a streak.
func UpdateStreak(current, longest int, last *domain.Date, today domain.Date) StreakUpdate {
	if last != nil && !last.IsZero() {
		switch gap := last.DaysUntil(today); {
		case gap <= 0:
			return StreakUpdate{NewStreak: current, NewLongest: max(current, longest)}
		case gap == 1:
			return streakResult(current+1, longest, false)
		}
	}
	return streakResult(1, longest, current > 0)
}

func streakResult(streak, longest int, lost bool) StreakUpdate {
	return StreakUpdate{
		NewStreak:  streak,
		NewLongest: max(streak, longest),
		StreakLost: lost,
		IsNewDay:   true,
	}
}
