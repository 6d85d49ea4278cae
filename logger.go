package pagekv

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/pagekv/internal/partition"
)

// Logger wraps slog.Logger with pagekv-specific context.
// This provides structured logging with consistent field names.
// Keys and values are never logged.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPartition adds a partition field to the logger.
func (l *Logger) WithPartition(id int) *Logger {
	return &Logger{
		Logger: l.Logger.With("partition", partition.FileName(id)),
	}
}

// LogOpen logs the outcome of opening an engine directory.
func (l *Logger) LogOpen(ctx context.Context, dir string, directIO bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"dir", dir,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "engine opened",
			"dir", dir,
			"direct_io", directIO,
		)
	}
}

// LogRecovery logs the replay of all partitions.
func (l *Logger) LogRecovery(ctx context.Context, partitions, records int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "recovery failed",
			"partitions", partitions,
			"records", records,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "recovery completed",
			"partitions", partitions,
			"records", records,
			"duration", d,
		)
	}
}

// LogPartitionRecovery logs the replay of one partition log.
func (l *Logger) LogPartitionRecovery(ctx context.Context, id, records int, size int64, err error) {
	if err != nil {
		l.WarnContext(ctx, "partition recovery failed",
			"partition", partition.FileName(id),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "partition recovered",
			"partition", partition.FileName(id),
			"records", records,
			"bytes", size,
		)
	}
}

// LogTornTail logs an incomplete record found at the end of a partition log.
func (l *Logger) LogTornTail(ctx context.Context, id int, valid, size int64, repaired bool) {
	l.WarnContext(ctx, "incomplete record at end of partition log",
		"partition", partition.FileName(id),
		"valid_bytes", valid,
		"file_bytes", size,
		"truncated", repaired,
	)
}

// LogWriteError logs a failed append.
func (l *Logger) LogWriteError(ctx context.Context, id int, err error) {
	l.ErrorContext(ctx, "write failed",
		"partition", partition.FileName(id),
		"error", err,
	)
}

// LogClose logs the outcome of closing the engine.
func (l *Logger) LogClose(ctx context.Context, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "engine closed")
	}
}

// LogBackup logs a backup operation.
func (l *Logger) LogBackup(ctx context.Context, entries uint64, compression string, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "backup failed",
			"entries", entries,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "backup completed",
			"entries", entries,
			"compression", compression,
			"duration", d,
		)
	}
}

// LogRestore logs a restore operation.
func (l *Logger) LogRestore(ctx context.Context, entries uint64, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"entries", entries,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "restore completed",
			"entries", entries,
			"duration", d,
		)
	}
}
