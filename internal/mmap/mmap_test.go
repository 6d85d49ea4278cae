package mmap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "61")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpen(t *testing.T) {
	page := make([]byte, 4096)
	copy(page, "\x03\x00\x00\x00abc")
	path := writeLog(t, page)

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, path, m.Path())
	assert.Equal(t, int64(len(page)), m.Len())
	assert.Equal(t, page, m.Bytes())
	for _, a := range []Advice{Sequential, DontNeed, Normal} {
		assert.NoError(t, m.Advise(a), a.String())
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	m, err := Open(writeLog(t, nil))
	require.NoError(t, err)

	assert.Zero(t, m.Len())
	assert.Empty(t, m.Bytes())
	assert.NoError(t, m.Advise(Sequential))
	assert.NoError(t, m.Close())
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	dir := t.TempDir()
	_, err = Open(dir)
	assert.ErrorIs(t, err, ErrNotRegular)

	var pathErr *os.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, dir, pathErr.Path)
}

func TestClose(t *testing.T) {
	m, err := Open(writeLog(t, []byte("data")))
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(Sequential), ErrClosed)
}

func TestAdvice_String(t *testing.T) {
	assert.Equal(t, "normal", Normal.String())
	assert.Equal(t, "sequential", Sequential.String())
	assert.Equal(t, "dontneed", DontNeed.String())
}
