package logger

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// auditMaxSizeMB is the size at which the audit file is rotated.
	auditMaxSizeMB = 10
	// auditMaxBackups is how many rotated audit files are kept.
	auditMaxBackups = 5
	// auditMaxAgeDays is how long rotated audit files are kept.
	auditMaxAgeDays = 90
)

// WithAuditFile is an option that tees every entry at or above level into a
// rotating JSON file at path.
//
//nolint:ireturn,nolintlint // Returning zap.Option is intended for zap integration.
func WithAuditFile(path string, level zapcore.LevelEnabler) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, newAuditCore(path, level))
	})
}

func newAuditCore(path string, level zapcore.LevelEnabler) zapcore.Core {
	writer := &lumberjack.Logger{
		Filename:   filepath.Clean(path),
		MaxSize:    auditMaxSizeMB,
		MaxBackups: auditMaxBackups,
		MaxAge:     auditMaxAgeDays,
		Compress:   true,
	}

	return zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(writer),
		level,
	)
}

// Setup configures the global logger level and, when auditPath is not empty,
// an audit file that records every entry down to debug level.
func Setup(level zapcore.Level, auditPath string) {
	defaultLevel.SetLevel(level)

	if auditPath == "" {
		SetLogger(New(defaultLevel))
		return
	}

	SetLogger(New(defaultLevel, WithAuditFile(auditPath, zapcore.DebugLevel)))
}
