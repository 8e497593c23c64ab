package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FieldSessionID = "session_id"
	FieldTenantID  = "tenant_id"
	FieldProvider  = "scoring_provider"
)

// New builds the service logger, console or JSON encoded
func New(json bool, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}
	return cfg.Build()
}

// OrNop returns logger, or a no-op logger when it is nil
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// ForSession attaches the session and tenant fields
func ForSession(logger *zap.Logger, sessionID, tenantID string) *zap.Logger {
	logger = OrNop(logger)
	fields := make([]zap.Field, 0, 2)
	if s := strings.TrimSpace(sessionID); s != "" {
		fields = append(fields, zap.String(FieldSessionID, s))
	}
	if t := strings.TrimSpace(tenantID); t != "" {
		fields = append(fields, zap.String(FieldTenantID, t))
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// Truncate shortens s to limit runes for logging
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
