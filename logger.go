package prioritydb

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with the field names used by the index
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
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
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithLocation tags every line with the database location.
func (l *Logger) WithLocation(location string) *Logger {
	return &Logger{
		Logger: l.Logger.With("location", location),
	}
}

// LogOpen logs the outcome of Open.
func (l *Logger) LogOpen(maxSize int64, err error) {
	if err != nil {
		l.Error("open failed",
			"max_size", maxSize,
			"error", err,
		)
		return
	}
	l.Debug("open completed",
		"max_size", maxSize,
	)
}

// LogRecovery logs how much state was loaded from the backing file.
func (l *Logger) LogRecovery(records int, bytes int64, shadowed int) {
	if shadowed > 0 {
		l.Warn("recovery dropped stale rows",
			"records", records,
			"bytes", bytes,
			"shadowed", shadowed,
		)
		return
	}
	l.Info("recovery completed",
		"records", records,
		"bytes", bytes,
	)
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(id int64, hash string, size int64, err error) {
	if err != nil {
		l.Error("insert failed",
			"hash", hash,
			"size", size,
			"error", err,
		)
		return
	}
	l.Debug("insert completed",
		"id", id,
		"hash", hash,
		"size", size,
	)
}

// LogEviction logs the records dropped to restore the capacity.
func (l *Logger) LogEviction(evicted int, freed, remaining, maxSize int64) {
	l.Info("eviction completed",
		"evicted", evicted,
		"freed", freed,
		"remaining", remaining,
		"max_size", maxSize,
	)
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(hash string, found bool, err error) {
	if err != nil {
		l.Error("remove failed",
			"hash", hash,
			"error", err,
		)
		return
	}
	l.Debug("remove completed",
		"hash", hash,
		"found", found,
	)
}

// LogMark logs an on-disk flag change.
func (l *Logger) LogMark(hash string, onDisk, found bool, err error) {
	if err != nil {
		l.Error("mark failed",
			"hash", hash,
			"on_disk", onDisk,
			"error", err,
		)
		return
	}
	l.Debug("mark completed",
		"hash", hash,
		"on_disk", onDisk,
		"found", found,
	)
}
