package prioritydb

import (
	"log/slog"
	"time"

	"github.com/cqkv/prioritydb/codec"
)

type options struct {
	logger      *Logger
	metrics     MetricsCollector
	codec       codec.Codec
	fileLock    bool
	degree      int
	busyTimeout time.Duration
}

type Option func(*options)

func defaultOptions() options {
	return options{
		logger:      NoopLogger(),
		metrics:     NoopMetricsCollector{},
		codec:       codec.NewCodecImpl(),
		fileLock:    true,
		degree:      32,
		busyTimeout: 5 * time.Second,
	}
}

// WithLogger configures structured logging for operations.
//
//	logger := prioritydb.NewJSONLogger(slog.LevelInfo)
//	db, _ := prioritydb.Open(maxSize, path, prioritydb.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogLevel is shorthand for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// WithCodec replaces the record <-> row mapping.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithoutFileLock skips the lock file next to the database.
// The caller is then responsible for keeping a single owner per location.
func WithoutFileLock() Option {
	return func(o *options) {
		o.fileLock = false
	}
}

// WithBTreeDegree sets the degree of the in-memory index trees.
func WithBTreeDegree(degree int) Option {
	return func(o *options) {
		o.degree = degree
	}
}

// WithBusyTimeout sets how long SQLite waits on a lock held by another connection.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		o.busyTimeout = d
	}
}
