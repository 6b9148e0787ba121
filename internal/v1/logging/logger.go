// Package logging wraps the process-wide zap logger. Log calls take a
// context so records carry the correlation id, user, and room of the
// work they describe.
package logging

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.Logger
	once   sync.Once
)

type contextKey string

// Context keys whose values are folded into every log record.
const (
	CorrelationIDKey contextKey = "correlation_id"
	UserIDKey        contextKey = "user_id"
	RoomNameKey      contextKey = "room_name"
)

// Initialize builds the global logger. Verbosity follows the CLI -v
// count: 0 warn, 1 info, 2 debug. Zap has no trace level, so a third
// -v keeps debug and switches to the development encoder instead.
func Initialize(verbosity int, development bool) error {
	var err error
	once.Do(func() {
		global, err = newConfig(verbosity, development).Build(zap.AddCallerSkip(1))
	})
	return err
}

func newConfig(verbosity int, development bool) zap.Config {
	var cfg zap.Config
	if development || verbosity >= 3 {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	cfg.Level = zap.NewAtomicLevelAt(levelFor(verbosity))
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg
}

func levelFor(verbosity int) zapcore.Level {
	switch verbosity {
	case 0:
		return zapcore.WarnLevel
	case 1:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// GetLogger returns the global logger, or a throwaway development
// logger when Initialize has not run, as in most tests.
func GetLogger() *zap.Logger {
	if global == nil {
		l, _ := zap.NewDevelopment()
		return l
	}
	return global
}

// Debug logs at DebugLevel with the context's fields folded in.
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, withContextFields(ctx, fields)...)
}

// Info logs at InfoLevel with the context's fields folded in.
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	GetLogger().Info(msg, withContextFields(ctx, fields)...)
}

// Warn logs at WarnLevel with the context's fields folded in.
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, withContextFields(ctx, fields)...)
}

// Error logs at ErrorLevel with the context's fields folded in.
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	GetLogger().Error(msg, withContextFields(ctx, fields)...)
}

// Fatal logs at FatalLevel and exits.
func Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, withContextFields(ctx, fields)...)
}

// withContextFields pulls the well-known correlation values off the
// context so every record names the request, user, and room it
// belongs to.
func withContextFields(ctx context.Context, fields []zap.Field) []zap.Field {
	if ctx == nil {
		return fields
	}

	if cid, ok := ctx.Value(CorrelationIDKey).(string); ok {
		fields = append(fields, zap.String("correlation_id", cid))
	}
	if uid, ok := ctx.Value(UserIDKey).(string); ok {
		fields = append(fields, zap.String("user_id", uid))
	}
	if room, ok := ctx.Value(RoomNameKey).(string); ok {
		fields = append(fields, zap.String("room_name", room))
	}

	return append(fields, zap.String("service", "planner"))
}
