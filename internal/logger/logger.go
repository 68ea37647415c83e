// Package logger builds the engine's structured logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"chosenoffset.com/mspj/internal/config"
)

// New creates a zap logger from the log section of the engine config.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var zapConfig zap.Config

	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	if cfg.Format == "json" {
		zapConfig.Encoding = "json"
	} else {
		zapConfig.Encoding = "console"
	}

	zapConfig.Sampling = nil
	if !cfg.Development {
		// Per-frame logs repeat; keep the first 100 per second, then 1 in 1000
		zapConfig.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 1000,
		}
	}

	return zapConfig.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Sync flushes the logger, ignoring the errors some terminals report for
// stdout/stderr syncs.
func Sync(l *zap.Logger) {
	_ = l.Sync()
}
