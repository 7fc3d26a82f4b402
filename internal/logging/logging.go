// Package logging builds the diagnostic logger. Console output for the user
// never goes through it; the log is a JSON sidecar file.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smileynet/agenda/internal/config"
)

// New returns a logger writing JSON lines to cfg.File at cfg.Level.
// An empty File yields a no-op logger. verbose forces debug level.
func New(cfg config.Log, verbose bool) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{cfg.File}
	zc.ErrorOutputPaths = []string{cfg.File}
	zc.Sampling = nil

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: opening %s: %w", cfg.File, err)
	}
	return logger, nil
}
