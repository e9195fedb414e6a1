package prioritydb

import (
	"log/slog"
	"testing"
	"time"

	"github.com/cqkv/prioritydb/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	assert.NotNil(t, o.logger)
	assert.Equal(t, NoopMetricsCollector{}, o.metrics)
	assert.IsType(t, &codec.CodecImpl{}, o.codec)
	assert.True(t, o.fileLock)
	assert.Equal(t, 32, o.degree)
	assert.Equal(t, 5*time.Second, o.busyTimeout)
}

func TestOptions(t *testing.T) {
	logger := NewTextLogger(slog.LevelWarn)
	metrics := &BasicMetricsCollector{}

	o := defaultOptions()
	for _, opt := range []Option{
		WithLogger(logger),
		WithMetricsCollector(metrics),
		WithoutFileLock(),
		WithBTreeDegree(4),
		WithBusyTimeout(time.Second),
		WithLogger(nil),
		WithMetricsCollector(nil),
	} {
		opt(&o)
	}

	assert.Same(t, logger, o.logger)
	assert.Same(t, metrics, o.metrics)
	assert.False(t, o.fileLock)
	assert.Equal(t, 4, o.degree)
	assert.Equal(t, time.Second, o.busyTimeout)

	WithLogLevel(slog.LevelDebug)(&o)
	assert.NotSame(t, logger, o.logger)
}

func TestOpen_WithOptions(t *testing.T) {
	db := openTestDB(t, 10, testLocation(t), WithBTreeDegree(2), WithCodec(codec.NewCodecImpl()), WithBusyTimeout(time.Second))
	for i := 0; i < 20; i++ {
		require.NoError(t, db.Insert(int64(i), string(rune('a'+i)), 1, false))
	}
	assert.Equal(t, 10, db.Len())
}

func TestWithCodec_Nil(t *testing.T) {
	o := defaultOptions()
	WithCodec(nil)(&o)
	assert.IsType(t, &codec.CodecImpl{}, o.codec)

	db := openTestDB(t, 10, testLocation(t), WithCodec(nil))
	require.NoError(t, db.Insert(1, "a", 1, false))
	assert.Equal(t, 1, db.Len())
}
