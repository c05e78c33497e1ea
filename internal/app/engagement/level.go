package engagement

// levelThresholds[i] is the cumulative XP floor of level i+1.
// Leveling stops at the last tier.
var levelThresholds = [...]int64{0, 100, 250, 500, 1000, 2000, 4000, 8000, 16000, 32000}

// MaxLevel is the highest reachable level.
const MaxLevel = len(levelThresholds)

// LevelOf returns the level for a cumulative XP amount: the largest i+1
// such that xp >= levelThresholds[i], clamped at MaxLevel.
// Negative XP is treated as zero.
func LevelOf(xp int64) int {
	for i := len(levelThresholds) - 1; i > 0; i-- {
		if xp >= levelThresholds[i] {
			return i + 1
		}
	}
	return 1
}

// XPForLevel returns the cumulative XP required to reach a given level.
// Levels below 1 map to 0; levels above MaxLevel map to the top floor.
func XPForLevel(level int) int64 {
	switch {
	case level <= 1:
		return 0
	case level >= MaxLevel:
		return levelThresholds[MaxLevel-1]
	default:
		return levelThresholds[level-1]
	}
}

// XPToNextLevel returns XP remaining until the next level, 0 at MaxLevel.
func XPToNextLevel(xp int64) int64 {
	level := LevelOf(xp)
	if level >= MaxLevel {
		return 0
	}
	return XPForLevel(level+1) - xp
}

// LevelProgressPct returns progress toward the next level (0.0–100.0).
func LevelProgressPct(xp int64) float64 {
	level := LevelOf(xp)
	if level >= MaxLevel {
		return 100.0
	}
	floor := XPForLevel(level)
	span := XPForLevel(level+1) - floor
	progress := float64(xp-floor) / float64(span) * 100.0
	if progress < 0 {
		progress = 0
	}
	return progress
}
