// Package metrics provides Prometheus metrics for questd: quest completions,
// XP awarded, level-ups, streak breaks and badges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Completion outcomes used as the "outcome" label.
const (
	OutcomeCompleted        = "completed"
	OutcomeAlreadyCompleted = "already_completed"
	OutcomeInvalid          = "invalid"
	OutcomeFailed           = "failed"
)

// ─── Completions ────────────────────────────────────────────────────────────

// QuestCompletions counts CompleteQuest calls by outcome.
var QuestCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "questd",
	Name:      "quest_completions_total",
	Help:      "Quest completion attempts by outcome.",
}, []string{"outcome"})

// CompletionDuration tracks how long a completion transaction takes.
var CompletionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "questd",
	Name:      "completion_duration_seconds",
	Help:      "Duration of the quest completion transaction.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
})

// QuestStarts counts quests moved to in_progress.
var QuestStarts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questd",
	Name:      "quest_starts_total",
	Help:      "Quests moved from not_started to in_progress.",
})

// ─── Progression ────────────────────────────────────────────────────────────

// XPAwarded tracks total XP awarded, including streak bonus.
var XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questd",
	Name:      "xp_awarded_total",
	Help:      "Total XP awarded across all users.",
})

// XPBonusAwarded tracks the streak-bonus share of XPAwarded.
var XPBonusAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questd",
	Name:      "xp_bonus_awarded_total",
	Help:      "Total streak bonus XP awarded.",
})

// LevelUps counts completions that crossed a level threshold.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questd",
	Name:      "level_ups_total",
	Help:      "Completions that raised a user's level.",
})

// StreaksLost counts streaks broken by a gap of two or more days.
var StreaksLost = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questd",
	Name:      "streaks_lost_total",
	Help:      "Streaks reset after a missed day.",
})

// BadgesAwarded counts badges earned, per badge.
var BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "questd",
	Name:      "badges_awarded_total",
	Help:      "Badges earned by badge id.",
}, []string{"badge"})

// ─── Evaluation ─────────────────────────────────────────────────────────────

// Evaluations counts submission evaluations by strategy and result.
var Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "questd",
	Name:      "evaluations_total",
	Help:      "Submission evaluations by evaluator and result.",
}, []string{"evaluator", "result"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "questd",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
