package wal

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagekv/internal/fs"
	"github.com/hupe1980/pagekv/internal/mem"
)

func record(t *testing.T, key, value string, pageSize int) []byte {
	t.Helper()
	buf := mem.AllocAligned(EncodedLen(len(key), len(value), pageSize), pageSize)
	_, err := Encode(buf, []byte(key), []byte(value), pageSize)
	require.NoError(t, err)
	return buf
}

func TestLog_AppendReplay(t *testing.T) {
	pageSize := os.Getpagesize()

	for _, direct := range []bool{false, true} {
		for _, durability := range []Durability{DurabilityAsync, DurabilitySync} {
			t.Run(fmt.Sprintf("direct=%t/%s", direct, durability), func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "61")
				opts := LogOptions{Durability: durability, DirectIO: direct, Alignment: pageSize}

				l, err := OpenLog(nil, path, opts)
				require.NoError(t, err)
				if !direct {
					assert.False(t, l.Direct())
				}

				require.NoError(t, l.Append(record(t, "a", "1", pageSize)))
				require.NoError(t, l.Append(record(t, "ab", "2", pageSize)))
				require.NoError(t, l.Sync())
				assert.Equal(t, int64(2*pageSize), l.Size())
				require.NoError(t, l.Close())

				data, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.Equal(t, []kv{{"a", "1"}, {"ab", "2"}}, decodeAll(data))

				// Reopening continues at the end of the file.
				l, err = OpenLog(nil, path, opts)
				require.NoError(t, err)
				assert.Equal(t, int64(2*pageSize), l.Size())
				require.NoError(t, l.Append(record(t, "a", "3", pageSize)))
				require.NoError(t, l.Close())

				data, err = os.ReadFile(path)
				require.NoError(t, err)
				assert.Len(t, decodeAll(data), 3)
			})
		}
	}
}

func TestLog_UnalignedFileOpensBuffered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "62")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))

	l, err := OpenLog(nil, path, DefaultLogOptions())
	require.NoError(t, err)
	defer l.Close()

	assert.False(t, l.Direct())
	assert.Equal(t, int64(7), l.Size())
}

func TestLog_ShortWritesAreRetried(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("63", fs.Fault{FailAfterBytes: -1, ShortWrite: 100})

	l, err := OpenLog(ffs, filepath.Join(dir, "63"), LogOptions{Alignment: 512})
	require.NoError(t, err)

	rec := record(t, "c", "short", 512)
	require.NoError(t, l.Append(rec))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, "63"))
	require.NoError(t, err)
	assert.Equal(t, rec, data)
}

func TestLog_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("64", fs.Fault{FailAfterBytes: 512})

	l, err := OpenLog(ffs, filepath.Join(dir, "64"), LogOptions{Alignment: 512})
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Append(record(t, "d", "1", 512)))
	err = l.Append(record(t, "d", "2", 512))
	assert.ErrorIs(t, err, fs.ErrInjected)
	assert.Equal(t, int64(512), l.Size())
}

func TestLog_TornAppendIsCutOff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "6b")
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("6b", fs.Fault{FailAfterBytes: 512 + 100, TornOnce: true})

	l, err := OpenLog(ffs, path, LogOptions{Alignment: 512})
	require.NoError(t, err)

	first := record(t, "k1", "kept", 512)
	require.NoError(t, l.Append(first))
	assert.ErrorIs(t, l.Append(record(t, "k2", "lost", 512)), fs.ErrInjected)
	assert.Equal(t, int64(512), l.Size())

	third := record(t, "k3", "acknowledged", 512)
	require.NoError(t, l.Append(third))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, first...), third...), data)
	assert.Equal(t, len(data), ValidPrefix(data))

	var values []string
	for _, value := range Decode(data) {
		values = append(values, string(value))
	}
	assert.Equal(t, []string{"kept", "acknowledged"}, values)
}

func TestLog_TornAppendStopsLogWhenCutFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "6c")
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("6c", fs.Fault{FailAfterBytes: 100, TornOnce: true, FailOnTruncate: true})

	l, err := OpenLog(ffs, path, LogOptions{Alignment: 512})
	require.NoError(t, err)
	defer l.Close()

	err = l.Append(record(t, "l1", "lost", 512))
	assert.ErrorIs(t, err, fs.ErrInjected)
	assert.ErrorIs(t, err, ErrTornAppend)
	assert.Equal(t, int64(100), l.Size())

	// The limit is gone, but the log must not write behind the torn bytes.
	assert.ErrorIs(t, l.Append(record(t, "l2", "next", 512)), ErrTornAppend)
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(100), fi.Size())
}

func TestLog_SyncFailure(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("65", fs.Fault{FailAfterBytes: -1, FailOnSync: true})

	l, err := OpenLog(ffs, filepath.Join(t.TempDir(), "65"), LogOptions{Durability: DurabilitySync, Alignment: 512})
	require.NoError(t, err)
	defer l.Close()

	assert.ErrorIs(t, l.Append(record(t, "e", "1", 512)), fs.ErrInjected)
	assert.ErrorIs(t, l.Sync(), fs.ErrInjected)
}

func TestLog_Closed(t *testing.T) {
	l, err := OpenLog(nil, filepath.Join(t.TempDir(), "66"), LogOptions{Alignment: 512})
	require.NoError(t, err)

	require.NoError(t, l.Close())
	assert.ErrorIs(t, l.Close(), os.ErrClosed)
	assert.ErrorIs(t, l.Append(record(t, "f", "1", 512)), os.ErrClosed)
	assert.ErrorIs(t, l.Sync(), os.ErrClosed)
}

func TestLog_OpenFailure(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("67", fs.Fault{FailOnOpen: true})

	_, err := OpenLog(ffs, filepath.Join(t.TempDir(), "67"), LogOptions{})
	assert.ErrorIs(t, err, fs.ErrInjected)
}

func TestTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "68")
	data := append(record(t, "g", "1", 512), []byte("torn")...)
	require.NoError(t, os.WriteFile(path, data, 0644))

	require.NoError(t, Truncate(nil, path, int64(ValidPrefix(data))))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(512), fi.Size())
}
