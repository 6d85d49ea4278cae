package pagekv

import (
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// VictoriaMetricsCollector records engine metrics in a VictoriaMetrics set
// that can be exported in the Prometheus text format.
type VictoriaMetricsCollector struct {
	set *metrics.Set

	writes        *metrics.Counter
	writeErrors   *metrics.Counter
	writeBytes    *metrics.Counter
	writeDuration *metrics.Histogram

	reads        *metrics.Counter
	readMisses   *metrics.Counter
	readErrors   *metrics.Counter
	readDuration *metrics.Histogram

	ranges        *metrics.Counter
	rangeVisited  *metrics.Counter
	rangeErrors   *metrics.Counter
	rangeDuration *metrics.Histogram

	recoveries       *metrics.Counter
	recoveryRecords  *metrics.Counter
	recoveryErrors   *metrics.Counter
	recoveryDuration *metrics.Histogram
}

// NewVictoriaMetricsCollector creates a collector with its own metrics set.
func NewVictoriaMetricsCollector() *VictoriaMetricsCollector {
	s := metrics.NewSet()
	return &VictoriaMetricsCollector{
		set: s,

		writes:        s.NewCounter("pagekv_writes_total"),
		writeErrors:   s.NewCounter("pagekv_write_errors_total"),
		writeBytes:    s.NewCounter("pagekv_write_bytes_total"),
		writeDuration: s.NewHistogram("pagekv_write_duration_seconds"),

		reads:        s.NewCounter("pagekv_reads_total"),
		readMisses:   s.NewCounter("pagekv_read_misses_total"),
		readErrors:   s.NewCounter("pagekv_read_errors_total"),
		readDuration: s.NewHistogram("pagekv_read_duration_seconds"),

		ranges:        s.NewCounter("pagekv_ranges_total"),
		rangeVisited:  s.NewCounter("pagekv_range_visited_total"),
		rangeErrors:   s.NewCounter("pagekv_range_errors_total"),
		rangeDuration: s.NewHistogram("pagekv_range_duration_seconds"),

		recoveries:       s.NewCounter("pagekv_recoveries_total"),
		recoveryRecords:  s.NewCounter("pagekv_recovery_records_total"),
		recoveryErrors:   s.NewCounter("pagekv_recovery_errors_total"),
		recoveryDuration: s.NewHistogram("pagekv_recovery_duration_seconds"),
	}
}

// RecordWrite implements MetricsCollector.
func (c *VictoriaMetricsCollector) RecordWrite(d time.Duration, bytes int, err error) {
	c.writes.Inc()
	c.writeDuration.Update(d.Seconds())
	if err != nil {
		c.writeErrors.Inc()
		return
	}
	c.writeBytes.Add(bytes)
}

// RecordRead implements MetricsCollector.
func (c *VictoriaMetricsCollector) RecordRead(d time.Duration, found bool, err error) {
	c.reads.Inc()
	c.readDuration.Update(d.Seconds())
	if err != nil {
		c.readErrors.Inc()
	} else if !found {
		c.readMisses.Inc()
	}
}

// RecordRange implements MetricsCollector.
func (c *VictoriaMetricsCollector) RecordRange(d time.Duration, visited int, err error) {
	c.ranges.Inc()
	c.rangeVisited.Add(visited)
	c.rangeDuration.Update(d.Seconds())
	if err != nil {
		c.rangeErrors.Inc()
	}
}

// RecordRecovery implements MetricsCollector.
func (c *VictoriaMetricsCollector) RecordRecovery(d time.Duration, _ int, records int, err error) {
	c.recoveries.Inc()
	c.recoveryRecords.Add(records)
	c.recoveryDuration.Update(d.Seconds())
	if err != nil {
		c.recoveryErrors.Inc()
	}
}

// Set returns the underlying metrics set.
func (c *VictoriaMetricsCollector) Set() *metrics.Set {
	return c.set
}

// WritePrometheus writes all collected metrics in the Prometheus text format.
func (c *VictoriaMetricsCollector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}
