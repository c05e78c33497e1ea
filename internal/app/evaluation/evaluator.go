// Package evaluation scores learner submissions and produces the feedback
// stored with a completed quest. The progression engine treats the result
// as an opaque payload; which strategy produced it is a configuration choice.
package evaluation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aimastery/questd/internal/domain"
	"github.com/aimastery/questd/internal/infra/metrics"
)

// Request is what an evaluator sees of a submission.
type Request struct {
	QuestID      string `json:"quest_id"`
	QuestTitle   string `json:"quest_title"`
	Description  string `json:"quest_description"`
	Difficulty   string `json:"difficulty"`
	Instructions string `json:"practice_instructions,omitempty"`
	Submission   string `json:"submission"`
}

// Evaluator scores a submission.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) (domain.AIFeedback, error)
	Name() string
}

// Strategy names accepted in configuration.
const (
	ModeStub   = "stub"
	ModeOpenAI = "openai"
)

// Config selects and configures an evaluator.
type Config struct {
	Mode     string
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// New builds the evaluator for cfg. The remote strategy is always wrapped
// in a Fallback to the stub, and a remote strategy with no API key degrades
// to the stub alone.
func New(cfg Config, logger *zap.Logger) (Evaluator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("evaluation")

	switch cfg.Mode {
	case "", ModeStub:
		return Stub{}, nil
	case ModeOpenAI:
		if cfg.APIKey == "" {
			log.Warn("no evaluator API key configured, using stub evaluator")
			return Stub{}, nil
		}
		remote := NewOpenAI(cfg.Endpoint, cfg.APIKey, cfg.Model, cfg.Timeout)
		return NewFallback(remote, Stub{}, log), nil
	default:
		return nil, fmt.Errorf("%w: unknown evaluator mode %q", domain.ErrInvalidInput, cfg.Mode)
	}
}

// ─── Fallback ───────────────────────────────────────────────────────────────

// Fallback tries Primary and, on any error, returns Secondary's verdict.
type Fallback struct {
	primary   Evaluator
	secondary Evaluator
	log       *zap.Logger
}

// NewFallback wraps primary with a secondary evaluator.
func NewFallback(primary, secondary Evaluator, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{primary: primary, secondary: secondary, log: logger}
}

// Name reports the primary strategy.
func (f *Fallback) Name() string { return f.primary.Name() }

// Evaluate implements Evaluator.
func (f *Fallback) Evaluate(ctx context.Context, req Request) (domain.AIFeedback, error) {
	fb, err := f.primary.Evaluate(ctx, req)
	if err == nil {
		metrics.Evaluations.WithLabelValues(f.primary.Name(), "ok").Inc()
		return fb, nil
	}

	metrics.Evaluations.WithLabelValues(f.primary.Name(), "error").Inc()
	f.log.Warn("evaluator failed, falling back",
		zap.String("quest_id", req.QuestID),
		zap.String("evaluator", f.primary.Name()),
		zap.String("fallback", f.secondary.Name()),
		zap.Error(err),
	)

	fb, err = f.secondary.Evaluate(ctx, req)
	if err != nil {
		return domain.AIFeedback{}, fmt.Errorf("%w: %v", domain.ErrEvaluatorUnavailable, err)
	}
	return fb, nil
}
