// Package logger builds the zap logger used across kitforge.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger with the provided level and format writing to w.
// level: debug, info, warn, error
// format: json, console
func New(level, format string, w io.Writer) (*zap.Logger, error) {
	lvl := zap.InfoLevel
	if err := lvl.Set(strings.ToLower(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.MessageKey = "message"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = "time"
	encoderCfg.LevelKey = "level"
	encoderCfg.CallerKey = ""
	encoderCfg.StacktraceKey = ""

	var enc zapcore.Encoder
	switch strings.ToLower(format) {
	case "json":
		encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc = zapcore.NewJSONEncoder(encoderCfg)
	case "console", "":
		// Terminal output: no timestamps, colored level.
		encoderCfg.TimeKey = ""
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// Init builds a logger writing to stderr, keeping stdout for command output.
func Init(level, format string) (*zap.Logger, error) {
	return New(level, format, os.Stderr)
}

// Sync flushes any buffered log entries.
func Sync(l *zap.Logger) {
	if l != nil {
		_ = l.Sync()
	}
}
