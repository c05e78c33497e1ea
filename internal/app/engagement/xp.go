package engagement

// XPAward is the XP granted for one completion.
type XPAward struct {
	Total      int64   `json:"total"`
	Bonus      int64   `json:"bonus"` // Total - base
	Multiplier float64 `json:"multiplier"`
}

// streakTier maps a minimum streak length to a multiplier expressed in
// quarters, so 5 means ×1.25. Quarters keep rounding exact.
type streakTier struct {
	minStreak int
	quarters  int64
}

// streakTiers is ascending by minStreak. Below the first tier there is no bonus.
var streakTiers = []streakTier{
	{minStreak: 3, quarters: 5},  // ×1.25
	{minStreak: 7, quarters: 6},  // ×1.50
	{minStreak: 14, quarters: 7}, // ×1.75
	{minStreak: 30, quarters: 8}, // ×2.00
}

func multiplierQuarters(streak int) int64 {
	q := int64(4)
	for _, tier := range streakTiers {
		if streak >= tier.minStreak {
			q = tier.quarters
		}
	}
	return q
}

// StreakMultiplier returns the XP multiplier for a streak length.
func StreakMultiplier(streak int) float64 {
	return float64(multiplierQuarters(streak)) / 4
}

// AwardXP applies the streak multiplier to base and rounds half up:
// total = round(base * multiplier), bonus = total - base.
// Integer arithmetic only, so identical inputs always give identical output.
func AwardXP(base int64, streak int) XPAward {
	if base < 0 {
		base = 0
	}
	q := multiplierQuarters(streak)
	// round(base*q/4) == floor((2*base*q + 4) / 8) for base >= 0
	total := (2*base*q + 4) / 8
	return XPAward{
		Total:      total,
		Bonus:      total - base,
		Multiplier: float64(q) / 4,
	}
}
