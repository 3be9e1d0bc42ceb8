// Package logging constructs the zap logger shared by the CLI and the
// extraction pipeline.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a development-style logger at the given level.
// Unknown level strings fall back to info; an empty level or "off"
// yields a no-op logger so library callers can silence us entirely.
func NewLogger(level string) *zap.Logger {
	if level == "" || level == "off" {
		return zap.NewNop()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
