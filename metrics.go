package prioritydb

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives a callback after every mutating operation.
// See Collector for a Prometheus exporter built on Stats instead.
type MetricsCollector interface {
	// RecordInsert is called after each insert, err is nil if it succeeded.
	RecordInsert(duration time.Duration, err error)

	// RecordEviction is called once per eviction pass that dropped records.
	RecordEviction(records int, bytes int64)

	RecordRemove(duration time.Duration, err error)

	// RecordMark is called after each on-disk flag change.
	RecordMark(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error) {}
func (NoopMetricsCollector) RecordEviction(int, int64)         {}
func (NoopMetricsCollector) RecordRemove(time.Duration, error) {}
func (NoopMetricsCollector) RecordMark(time.Duration, error)   {}

// BasicMetricsCollector counts operations in memory.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	EvictionPasses   atomic.Int64
	EvictedRecords   atomic.Int64
	EvictedBytes     atomic.Int64
	RemoveCount      atomic.Int64
	RemoveErrors     atomic.Int64
	MarkCount        atomic.Int64
	MarkErrors       atomic.Int64
}

func (c *BasicMetricsCollector) RecordInsert(d time.Duration, err error) {
	c.InsertCount.Add(1)
	c.InsertTotalNanos.Add(d.Nanoseconds())
	if err != nil {
		c.InsertErrors.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordEviction(records int, bytes int64) {
	c.EvictionPasses.Add(1)
	c.EvictedRecords.Add(int64(records))
	c.EvictedBytes.Add(bytes)
}

func (c *BasicMetricsCollector) RecordRemove(_ time.Duration, err error) {
	c.RemoveCount.Add(1)
	if err != nil {
		c.RemoveErrors.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordMark(_ time.Duration, err error) {
	c.MarkCount.Add(1)
	if err != nil {
		c.MarkErrors.Add(1)
	}
}

// AverageInsertLatency returns the mean insert duration, zero before the first insert.
func (c *BasicMetricsCollector) AverageInsertLatency() time.Duration {
	n := c.InsertCount.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(c.InsertTotalNanos.Load() / n)
}
