// Package logging provides structured logging using zap
package logging

import (
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewDefaultLogger creates a logger with default configuration using zap
func NewDefaultLogger() Logger {
	logger, err := NewZapLogger(DefaultLogConfig())
	if err != nil {
		panic(fmt.Sprintf("failed to initialize default zap logger: %v", err))
	}
	return logger
}

// Options controls how InitGlobalLogger builds the process logger.
type Options struct {
	Level string
	// File, when set, sends output to a size-rotated file instead of stdout
	File       string
	MaxSizeMB  int
	MaxBackups int
	JSON       bool
}

// InitGlobalLogger builds the process-wide logger from opts and installs it.
// The returned closer releases the log file, if any.
func InitGlobalLogger(opts Options) (io.Closer, error) {
	level := ParseLevel(opts.Level)

	config := LogConfig{
		Level:      level,
		TimeFormat: time.RFC3339,
		JSON:       opts.JSON,
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: opts.MaxBackups,
		}
		config.Output = rotator
		closer = rotator
	}

	logger, err := NewZapLogger(config)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	SetGlobalLogger(logger)

	logger.Info("Logger initialized",
		String("level", level.String()),
		String("log_file", opts.File),
	)

	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// MustSync flushes any buffered log entries for zap loggers
func MustSync() {
	if zapLogger, ok := GetGlobalLogger().(*ZapAdapter); ok {
		_ = zapLogger.Sync()
	}
}

// WithContext is a convenience function to add context to the global logger
func WithContext(ctx context.Context) Logger {
	return GetGlobalLogger().WithContext(ctx)
}

// WithFields is a convenience function to add fields to the global logger
func WithFields(fields ...Field) Logger {
	return GetGlobalLogger().WithFields(fields...)
}

// Err creates an error field with key "error"
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}
