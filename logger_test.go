package pagekv

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dir := t.TempDir()
	e, err := Open(dir, WithPageSize(testPageSize), WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, e.Write([]byte("secret-key"), []byte("secret-value")))
	require.NoError(t, e.Close())

	out := buf.String()
	assert.Contains(t, out, "msg=\"engine opened\"")
	assert.Contains(t, out, "msg=\"recovery completed\"")
	assert.Contains(t, out, "msg=\"engine closed\"")
	assert.Contains(t, out, "dir="+dir)
	assert.NotContains(t, out, "secret")
}

func TestLogger_WithPartition(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, nil)).WithPartition(0x0a)
	logger.Info("hello")
	assert.Contains(t, buf.String(), `"partition":"0a"`)
}

func TestNoopLogger(t *testing.T) {
	e := openTest(t, t.TempDir(), WithLogger(nil))
	require.NotNil(t, e.opts.logger)
	e.opts.logger.Error("discarded")
}
