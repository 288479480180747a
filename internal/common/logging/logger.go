// Package logging provides structured logging using zap
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// NewDefaultLogger creates a logger with default configuration using zap
func NewDefaultLogger() Logger {
	logger, err := NewZapLogger(DefaultLogConfig())
	if err != nil {
		panic(fmt.Sprintf("failed to initialize default zap logger: %v", err))
	}
	return logger
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() Logger {
	return &ZapAdapter{logger: zap.NewNop()}
}

// InitGlobalLogger configures the global logger from a level string and an
// optional log file path. An empty path logs to stdout. The returned closer
// releases the log file, if any.
func InitGlobalLogger(levelStr, logFile string) (func() error, error) {
	level := ParseLevel(levelStr)
	config := LogConfig{Level: level, Format: "console"}
	closer := func() error { return nil }

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return closer, fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		config.Output = file
		config.Format = "json"
		closer = file.Close
	}

	logger, err := NewZapLogger(config)
	if err != nil {
		return closer, fmt.Errorf("failed to initialize logger: %w", err)
	}

	SetGlobalLogger(logger)
	logger.Info("Logger initialized",
		Field{"level", level.String()},
		Field{"log_file", logFile},
	)
	return closer, nil
}

// MustSync flushes any buffered log entries for zap loggers.
// This should be called before application exit.
func MustSync() {
	if zapLogger, ok := GetGlobalLogger().(*ZapAdapter); ok {
		_ = zapLogger.Sync()
	}
}

// WithFields is a convenience function to add fields to the global logger
func WithFields(fields ...Field) Logger {
	return GetGlobalLogger().WithFields(fields...)
}

// Err creates an error field with key "error"
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}
