package prioritydb

import (
	"github.com/prometheus/client_golang/prometheus"
)

var _ prometheus.Collector = (*Collector)(nil)

// Collector exports the Stats of a DB to Prometheus
type Collector struct {
	db *DB

	records       *prometheus.Desc
	bytes         *prometheus.Desc
	maxBytes      *prometheus.Desc
	onDiskRecords *prometheus.Desc
	onDiskBytes   *prometheus.Desc
	inserts       *prometheus.Desc
	evictions     *prometheus.Desc
	evictedBytes  *prometheus.Desc
}

func NewCollector(db *DB) *Collector {
	return &Collector{
		db: db,

		records: prometheus.NewDesc(
			"prioritydb_records",
			"Number of tracked records",
			nil, nil,
		),
		bytes: prometheus.NewDesc(
			"prioritydb_bytes",
			"Sum of the sizes of tracked records",
			nil, nil,
		),
		maxBytes: prometheus.NewDesc(
			"prioritydb_max_bytes",
			"Configured capacity",
			nil, nil,
		),
		onDiskRecords: prometheus.NewDesc(
			"prioritydb_on_disk_records",
			"Number of tracked records whose payload is on disk",
			nil, nil,
		),
		onDiskBytes: prometheus.NewDesc(
			"prioritydb_on_disk_bytes",
			"Sum of the sizes of records whose payload is on disk",
			nil, nil,
		),
		inserts: prometheus.NewDesc(
			"prioritydb_inserts_total",
			"Records inserted since open",
			nil, nil,
		),
		evictions: prometheus.NewDesc(
			"prioritydb_evictions_total",
			"Records evicted since open",
			nil, nil,
		),
		evictedBytes: prometheus.NewDesc(
			"prioritydb_evicted_bytes_total",
			"Bytes evicted since open",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.records
	ch <- c.bytes
	ch <- c.maxBytes
	ch <- c.onDiskRecords
	ch <- c.onDiskBytes
	ch <- c.inserts
	ch <- c.evictions
	ch <- c.evictedBytes
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.db.Stats()

	ch <- prometheus.MustNewConstMetric(c.records, prometheus.GaugeValue, float64(s.Records))
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.GaugeValue, float64(s.Bytes))
	ch <- prometheus.MustNewConstMetric(c.maxBytes, prometheus.GaugeValue, float64(s.MaxBytes))
	ch <- prometheus.MustNewConstMetric(c.onDiskRecords, prometheus.GaugeValue, float64(s.OnDiskRecords))
	ch <- prometheus.MustNewConstMetric(c.onDiskBytes, prometheus.GaugeValue, float64(s.OnDiskBytes))
	ch <- prometheus.MustNewConstMetric(c.inserts, prometheus.CounterValue, float64(s.Inserts))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.evictedBytes, prometheus.CounterValue, float64(s.EvictedBytes))
}
