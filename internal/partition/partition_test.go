package partition

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagekv/internal/fs"
	"github.com/hupe1980/pagekv/internal/wal"
)

const testPageSize = 512

func TestRoute(t *testing.T) {
	assert.Equal(t, 0, Route(nil))
	assert.Equal(t, 0, Route([]byte{}))
	assert.Equal(t, int('a'), Route([]byte("abc")))
	assert.Equal(t, 255, Route([]byte{0xff, 0x00}))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "00", FileName(0))
	assert.Equal(t, "0a", FileName(10))
	assert.Equal(t, "61", FileName('a'))
	assert.Equal(t, "ff", FileName(255))

	seen := make(map[string]bool, Count)
	for id := range Count {
		seen[FileName(id)] = true
	}
	assert.Len(t, seen, Count)
}

func collect(x *Index, lower, upper string) []string {
	var keys []string
	x.AscendRange([]byte(lower), []byte(upper), func(k, _ []byte) bool {
		keys = append(keys, string(k))
		return true
	})
	return keys
}

func TestIndex(t *testing.T) {
	x := NewIndex()
	for _, k := range []string{"ccc", "aaa", "bbb", "ddd"} {
		x.Set([]byte(k), []byte("v-"+k))
	}
	x.Set([]byte("aaa"), []byte("v2"))

	assert.Equal(t, 4, x.Len())
	assert.Equal(t, int64(4*3+3*5+2), x.Bytes())

	v, ok := x.Get([]byte("aaa"))
	require.True(t, ok)
	assert.Equal(t, "v2", string(v))
	_, ok = x.Get([]byte("zzz"))
	assert.False(t, ok)

	tests := []struct {
		lower, upper string
		want         []string
	}{
		{"", "", []string{"aaa", "bbb", "ccc", "ddd"}},
		{"bbb", "", []string{"bbb", "ccc", "ddd"}},
		{"", "ccc", []string{"aaa", "bbb"}},
		{"aab", "ccd", []string{"bbb", "ccc"}},
		{"ccc", "bbb", nil},
		{"ccc", "ccc", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, collect(x, tt.lower, tt.upper), "[%q, %q)", tt.lower, tt.upper)
	}

	var n int
	completed := x.AscendRange(nil, nil, func(_, _ []byte) bool {
		n++
		return n < 2
	})
	assert.False(t, completed)
	assert.Equal(t, 2, n)
}

func openStore(t *testing.T, fsys fs.FileSystem, dir string, id int) *Store {
	t.Helper()
	s := NewStore(id, testPageSize, nil)

	path := filepath.Join(dir, FileName(id))
	if data, err := os.ReadFile(path); err == nil {
		s.Replay(data)
	}

	log, err := wal.OpenLog(fsys, path, wal.LogOptions{Alignment: testPageSize})
	require.NoError(t, err)
	s.Attach(log)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutGetReplay(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, nil, dir, 'k')

	require.NoError(t, s.Put([]byte("k1"), []byte("one")))
	require.NoError(t, s.Put([]byte("k2"), []byte("two")))
	require.NoError(t, s.Put([]byte("k1"), []byte("uno")))
	require.NoError(t, s.Sync())

	v, ok := s.Get([]byte("k1"))
	require.True(t, ok)
	assert.Equal(t, "uno", string(v))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, int64(3*testPageSize), s.LogSize())
	require.NoError(t, s.Close())

	r := openStore(t, nil, dir, 'k')
	v, ok = r.Get([]byte("k1"))
	require.True(t, ok)
	assert.Equal(t, "uno", string(v))
	assert.Equal(t, 2, r.Len())
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := openStore(t, nil, t.TempDir(), 'c')

	key, value := []byte("copy"), []byte("value")
	require.NoError(t, s.Put(key, value))
	key[0], value[0] = 'X', 'X'

	v, ok := s.Get([]byte("copy"))
	require.True(t, ok)
	assert.Equal(t, "value", string(v))

	v[0] = 'Y'
	s.Ascend(nil, nil, func(k, v []byte) bool {
		assert.Equal(t, "copy", string(k))
		assert.Equal(t, "value", string(v))
		return true
	})
}

func TestStore_FailedAppendLeavesIndex(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(FileName('f'), fs.Fault{FailAfterBytes: testPageSize})
	s := openStore(t, ffs, t.TempDir(), 'f')

	require.NoError(t, s.Put([]byte("f1"), []byte("a")))
	err := s.Put([]byte("f1"), []byte("b"))
	require.ErrorIs(t, err, fs.ErrInjected)
	err = s.Put([]byte("f2"), []byte("c"))
	require.ErrorIs(t, err, fs.ErrInjected)

	v, ok := s.Get([]byte("f1"))
	require.True(t, ok)
	assert.Equal(t, "a", string(v))
	_, ok = s.Get([]byte("f2"))
	assert.False(t, ok)
}

func TestStore_Closed(t *testing.T) {
	s := openStore(t, nil, t.TempDir(), 'z')
	require.NoError(t, s.Put([]byte("z"), []byte("1")))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Put([]byte("z"), []byte("2")), ErrClosed)
	assert.ErrorIs(t, s.Sync(), ErrClosed)
	_, ok := s.Get([]byte("z"))
	assert.False(t, ok)
	assert.True(t, s.Ascend(nil, nil, func(_, _ []byte) bool { return false }))
	assert.Equal(t, 0, s.Len())
}

func TestStore_ConcurrentReadersAndWriter(t *testing.T) {
	s := openStore(t, nil, t.TempDir(), 'p')

	const writes = 200
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range writes {
			assert.NoError(t, s.Put([]byte(fmt.Sprintf("p%04d", i)), []byte("v")))
		}
	}()
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				var prev string
				s.Ascend(nil, nil, func(k, _ []byte) bool {
					assert.Less(t, prev, string(k))
					prev = string(k)
					return true
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, writes, s.Len())
}
