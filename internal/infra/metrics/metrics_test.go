package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestCompletionCounters(t *testing.T) {
	before := testutil.ToFloat64(QuestCompletions.WithLabelValues(OutcomeCompleted))
	QuestCompletions.WithLabelValues(OutcomeCompleted).Inc()
	QuestCompletions.WithLabelValues(OutcomeAlreadyCompleted).Inc()
	CompletionDuration.Observe(0.004)
	QuestStarts.Inc()

	if got := testutil.ToFloat64(QuestCompletions.WithLabelValues(OutcomeCompleted)); got != before+1 {
		t.Errorf("completed = %v, want %v", got, before+1)
	}

	names := gatheredNames(t)
	for _, name := range []string{
		"questd_quest_completions_total",
		"questd_completion_duration_seconds",
		"questd_quest_starts_total",
	} {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestProgressionCounters(t *testing.T) {
	xp := testutil.ToFloat64(XPAwarded)
	XPAwarded.Add(63)
	XPBonusAwarded.Add(13)
	LevelUps.Inc()
	StreaksLost.Inc()
	BadgesAwarded.WithLabelValues("first-quest").Inc()

	if got := testutil.ToFloat64(XPAwarded); got != xp+63 {
		t.Errorf("xp awarded = %v, want %v", got, xp+63)
	}
	if got := testutil.ToFloat64(BadgesAwarded.WithLabelValues("first-quest")); got < 1 {
		t.Errorf("badges awarded = %v", got)
	}
}

func TestHealthMetrics(t *testing.T) {
	HealthCheckStatus.WithLabelValues("sqlite").Set(1)
	HealthCheckStatus.WithLabelValues("data_dir").Set(0)

	if got := testutil.ToFloat64(HealthCheckStatus.WithLabelValues("data_dir")); got != 0 {
		t.Errorf("data_dir = %v, want 0", got)
	}
	if !gatheredNames(t)["questd_health_check_status"] {
		t.Error("questd_health_check_status not found")
	}
}

func TestAllMetricsGatherable(t *testing.T) {
	Evaluations.WithLabelValues("stub", "ok").Inc()

	count := 0
	for name := range gatheredNames(t) {
		if strings.HasPrefix(name, "questd_") {
			count++
		}
	}
	if count < 6 {
		t.Errorf("expected at least 6 questd_ metrics, got %d", count)
	}
}
