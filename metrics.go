package pagekv

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems, or use
// VictoriaMetricsCollector for a Prometheus text endpoint.
//
// Implementations are called on the hot path from many goroutines and must be
// safe for concurrent use.
type MetricsCollector interface {
	// RecordWrite is called after each Write. bytes is the size of key plus
	// value; err is nil if the record was appended.
	RecordWrite(duration time.Duration, bytes int, err error)

	// RecordRead is called after each Read. found is false for ErrNotFound,
	// which is not reported as an error.
	RecordRead(duration time.Duration, found bool, err error)

	// RecordRange is called after each range scan with the number of entries
	// handed to the visitor.
	RecordRange(duration time.Duration, visited int, err error)

	// RecordRecovery is called once per Open after all partitions were replayed.
	RecordRecovery(duration time.Duration, partitions, records int, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordWrite(time.Duration, int, error)         {}
func (NoopMetricsCollector) RecordRead(time.Duration, bool, error)         {}
func (NoopMetricsCollector) RecordRange(time.Duration, int, error)         {}
func (NoopMetricsCollector) RecordRecovery(time.Duration, int, int, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	WriteCount       atomic.Int64
	WriteErrors      atomic.Int64
	WriteBytes       atomic.Int64
	WriteTotalNanos  atomic.Int64
	ReadCount        atomic.Int64
	ReadMisses       atomic.Int64
	ReadErrors       atomic.Int64
	ReadTotalNanos   atomic.Int64
	RangeCount       atomic.Int64
	RangeVisited     atomic.Int64
	RangeErrors      atomic.Int64
	RecoveryCount    atomic.Int64
	RecoveryRecords  atomic.Int64
	RecoveryErrors   atomic.Int64
	RecoveryLastNano atomic.Int64
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(duration time.Duration, bytes int, err error) {
	b.WriteCount.Add(1)
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WriteErrors.Add(1)
		return
	}
	b.WriteBytes.Add(int64(bytes))
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(duration time.Duration, found bool, err error) {
	b.ReadCount.Add(1)
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
	} else if !found {
		b.ReadMisses.Add(1)
	}
}

// RecordRange implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRange(_ time.Duration, visited int, err error) {
	b.RangeCount.Add(1)
	b.RangeVisited.Add(int64(visited))
	if err != nil {
		b.RangeErrors.Add(1)
	}
}

// RecordRecovery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRecovery(duration time.Duration, _ int, records int, err error) {
	b.RecoveryCount.Add(1)
	b.RecoveryRecords.Add(int64(records))
	b.RecoveryLastNano.Store(duration.Nanoseconds())
	if err != nil {
		b.RecoveryErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		WriteCount:      b.WriteCount.Load(),
		WriteErrors:     b.WriteErrors.Load(),
		WriteBytes:      b.WriteBytes.Load(),
		WriteAvgNanos:   avg(b.WriteTotalNanos.Load(), b.WriteCount.Load()),
		ReadCount:       b.ReadCount.Load(),
		ReadMisses:      b.ReadMisses.Load(),
		ReadErrors:      b.ReadErrors.Load(),
		ReadAvgNanos:    avg(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
		RangeCount:      b.RangeCount.Load(),
		RangeVisited:    b.RangeVisited.Load(),
		RangeErrors:     b.RangeErrors.Load(),
		RecoveryCount:   b.RecoveryCount.Load(),
		RecoveryRecords: b.RecoveryRecords.Load(),
		RecoveryErrors:  b.RecoveryErrors.Load(),
		RecoveryNanos:   b.RecoveryLastNano.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	WriteCount      int64
	WriteErrors     int64
	WriteBytes      int64
	WriteAvgNanos   int64
	ReadCount       int64
	ReadMisses      int64
	ReadErrors      int64
	ReadAvgNanos    int64
	RangeCount      int64
	RangeVisited    int64
	RangeErrors     int64
	RecoveryCount   int64
	RecoveryRecords int64
	RecoveryErrors  int64
	RecoveryNanos   int64
}
