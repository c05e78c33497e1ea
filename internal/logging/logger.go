// Package logging builds the zap logger shared by every questd component.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a zap logger at the given level ("debug", "info", "warn",
// "error"). development switches to the human-readable console encoder.
// If file is non-empty, logs go there in addition to stderr.
func New(level string, development bool, file string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = lvl
	}

	if file != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, file)
	}

	return cfg.Build()
}
