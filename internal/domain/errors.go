package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.

var (
	// Input errors
	ErrInvalidInput = errors.New("invalid input")

	// Lookup errors
	ErrProfileNotFound   = errors.New("profile not found")
	ErrQuestNotFound     = errors.New("quest not found")
	ErrNoQuestsAvailable = errors.New("no published quests available")

	// Conflict errors
	ErrUsernameTaken = errors.New("username already taken")

	// Evaluation errors
	ErrEvaluatorUnavailable = errors.New("submission evaluator unavailable")
)
