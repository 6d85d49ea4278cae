package pagekv

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicMetricsCollector(t *testing.T) {
	mc := &BasicMetricsCollector{}
	e := openTest(t, t.TempDir(), WithMetricsCollector(mc))

	require.NoError(t, e.Write([]byte("a"), []byte("12345")))
	require.NoError(t, e.Write([]byte("b"), []byte("1")))
	assert.Error(t, e.Write(nil, []byte("x")))

	_, err := e.Read([]byte("a"))
	require.NoError(t, err)
	_, err = e.Read([]byte("zz"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, e.Range(nil, nil, VisitorFunc(func(_, _ []byte) {})))

	stats := mc.GetStats()
	assert.Equal(t, int64(3), stats.WriteCount)
	assert.Equal(t, int64(1), stats.WriteErrors)
	assert.Equal(t, int64(len("a12345")+len("b1")), stats.WriteBytes)
	assert.Equal(t, int64(2), stats.ReadCount)
	assert.Equal(t, int64(1), stats.ReadMisses)
	assert.Zero(t, stats.ReadErrors)
	assert.Equal(t, int64(1), stats.RangeCount)
	assert.Equal(t, int64(2), stats.RangeVisited)
	assert.Equal(t, int64(1), stats.RecoveryCount)
}

func TestBasicMetricsCollector_Averages(t *testing.T) {
	mc := &BasicMetricsCollector{}
	mc.RecordWrite(10*time.Nanosecond, 1, nil)
	mc.RecordWrite(30*time.Nanosecond, 1, nil)
	mc.RecordRead(5*time.Nanosecond, true, nil)
	mc.RecordRecovery(time.Second, 3, 7, errors.New("x"))

	stats := mc.GetStats()
	assert.Equal(t, int64(20), stats.WriteAvgNanos)
	assert.Equal(t, int64(5), stats.ReadAvgNanos)
	assert.Equal(t, int64(7), stats.RecoveryRecords)
	assert.Equal(t, int64(1), stats.RecoveryErrors)
	assert.Equal(t, time.Second.Nanoseconds(), stats.RecoveryNanos)
}

func TestVictoriaMetricsCollector(t *testing.T) {
	mc := NewVictoriaMetricsCollector()
	e := openTest(t, t.TempDir(), WithMetricsCollector(mc))

	require.NoError(t, e.Write([]byte("a"), []byte("v")))
	_, err := e.Read([]byte("b"))
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, e.Range(nil, nil, VisitorFunc(func(_, _ []byte) {})))

	var buf bytes.Buffer
	mc.WritePrometheus(&buf)
	out := buf.String()

	assert.Contains(t, out, "pagekv_writes_total 1")
	assert.Contains(t, out, "pagekv_write_bytes_total 2")
	assert.Contains(t, out, "pagekv_reads_total 1")
	assert.Contains(t, out, "pagekv_read_misses_total 1")
	assert.Contains(t, out, "pagekv_range_visited_total 1")
	assert.Contains(t, out, "pagekv_recoveries_total 1")
	assert.Contains(t, out, "pagekv_write_duration_seconds_bucket")
	assert.NotNil(t, mc.Set())
}

func TestNoopMetricsCollector(t *testing.T) {
	e := openTest(t, t.TempDir(), WithMetricsCollector(nil))
	assert.IsType(t, NoopMetricsCollector{}, e.opts.metricsCollector)
	require.NoError(t, e.Write([]byte("a"), []byte("v")))
}
