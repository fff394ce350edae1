// Package obs builds the structured logger and per-run correlation ID
// shared by the planner and the mover.
//
// Grounded on _examples/hemanta212-scaf/cmd/scaf-lsp/main.go's zap setup
// (development encoder for a TTY, explicit level, deferred Sync), adapted
// from an LSP server's stderr-only logging to a CLI's stdout-attached
// output, plus a per-run correlation ID in the style of
// _examples/FocuswithJustin-JuniperBible's uuid usage for content IDs.
package obs

import (
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a *zap.Logger: a human-readable development encoder
// when stdout is a terminal, a JSON encoder otherwise (so a migration
// launched from a job scheduler emits machine-parseable log lines).
func NewLogger(debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	var cfg zap.Config
	if isTerminal(os.Stdout) {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stdout"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// NewRunID generates a per-invocation correlation ID attached as a
// zap.Field to every log line for the duration of one migration.
func NewRunID() string {
	return uuid.NewString()
}

// WithRun returns a child logger carrying the run correlation ID.
func WithRun(log *zap.Logger, runID string) *zap.Logger {
	return log.With(zap.String("run_id", runID))
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
