package engagement

import "github.com/aimastery/questd/internal/domain"

// EvaluateBadges returns the ids of catalog badges that are not yet earned
// and whose requirement the stats now meet (stat >= threshold).
// Badges are independent, so the result does not depend on catalog order;
// ids come back in catalog order, each at most once. Unknown requirement
// kinds never qualify.
func EvaluateBadges(stats domain.UserStats, catalog []domain.Badge, earned map[string]bool) []string {
	var qualified []string
	seen := make(map[string]bool, len(catalog))

	for _, b := range catalog {
		if earned[b.ID] || seen[b.ID] {
			continue
		}
		v, ok := stats.Value(b.Requirement.Kind)
		if !ok {
			continue
		}
		if v >= b.Requirement.Threshold {
			seen[b.ID] = true
			qualified = append(qualified, b.ID)
		}
	}
	return qualified
}

// DefaultBadges returns the starter badge catalog.
func DefaultBadges() []domain.Badge {
	return []domain.Badge{
		// ── Getting started ────────────────────────────────────────────
		{
			ID: "first-quest", Title: "First Steps", Category: "milestone", Icon: "🎯",
			Description: "Complete your first quest",
			Requirement: domain.Requirement{Kind: domain.ReqQuestsCompleted, Threshold: 1},
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "streak-7", Title: "Week Warrior", Category: "streak", Icon: "🔥",
			Description: "Keep a 7-day learning streak",
			Requirement: domain.Requirement{Kind: domain.ReqStreak, Threshold: 7},
		},
		{
			ID: "streak-30", Title: "Monthly Master", Category: "streak", Icon: "💪",
			Description: "Keep a 30-day learning streak",
			Requirement: domain.Requirement{Kind: domain.ReqStreak, Threshold: 30},
		},

		// ── Levels ─────────────────────────────────────────────────────
		{
			ID: "level-5", Title: "Rising Star", Category: "level", Icon: "🌅",
			Description: "Reach level 5",
			Requirement: domain.Requirement{Kind: domain.ReqLevel, Threshold: 5},
		},
		{
			ID: "level-10", Title: "Grandmaster", Category: "level", Icon: "👑",
			Description: "Reach level 10",
			Requirement: domain.Requirement{Kind: domain.ReqLevel, Threshold: 10},
		},

		// ── XP ─────────────────────────────────────────────────────────
		{
			ID: "xp-1000", Title: "XP Hunter", Category: "xp", Icon: "⭐",
			Description: "Earn 1,000 XP",
			Requirement: domain.Requirement{Kind: domain.ReqXP, Threshold: 1000},
		},
		{
			ID: "xp-5000", Title: "XP Legend", Category: "xp", Icon: "🌟",
			Description: "Earn 5,000 XP",
			Requirement: domain.Requirement{Kind: domain.ReqXP, Threshold: 5000},
		},
	}
}
