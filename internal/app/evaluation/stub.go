package evaluation

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/aimastery/questd/internal/domain"
	"github.com/aimastery/questd/internal/infra/metrics"
)

// Stub score bounds and feedback tiers.
const (
	stubBaseScore = 70
	stubMinScore  = 65
	stubMaxScore  = 95

	excellentScore = 85
	goodScore      = 75
)

const (
	feedbackExcellent = "Excellent work! You've demonstrated a strong understanding of the concepts. " +
		"Your response is well-structured and shows careful thought. " +
		"To go further, consider how these ideas apply in real-world scenarios."
	feedbackGood = "Good job! You've shown a solid grasp of the key concepts and addressed the main points of the exercise. " +
		"To improve, add more specific examples or explain the reasoning behind your approach."
	feedbackDeveloping = "Nice start! You're on the right track. " +
		"Be more specific with your examples and walk through your thought process; " +
		"the more detail you give, the better you can show what you learned."
)

// Stub scores a submission from its shape alone. It never fails and gives
// the same verdict for the same text.
type Stub struct{}

// Name implements Evaluator.
func (Stub) Name() string { return ModeStub }

// Evaluate implements Evaluator.
func (Stub) Evaluate(_ context.Context, req Request) (domain.AIFeedback, error) {
	score := StubScore(req.Submission)
	metrics.Evaluations.WithLabelValues(ModeStub, "ok").Inc()
	return domain.AIFeedback{Score: score, Feedback: FeedbackFor(score)}, nil
}

// StubScore is the heuristic score for a submission: 70, plus 10 if it has
// sentences or line breaks, plus 10 over 100 characters, plus 5 over 200,
// clamped to 65..95.
func StubScore(submission string) int {
	n := utf8.RuneCountInString(submission)
	score := stubBaseScore
	if strings.ContainsAny(submission, "\n.") {
		score += 10
	}
	if n > 100 {
		score += 10
	}
	if n > 200 {
		score += 5
	}
	return min(stubMaxScore, max(stubMinScore, score))
}

// FeedbackFor returns the canned feedback for a score tier.
func FeedbackFor(score int) string {
	switch {
	case score >= excellentScore:
		return feedbackExcellent
	case score >= goodScore:
		return feedbackGood
	default:
		return feedbackDeveloping
	}
}
