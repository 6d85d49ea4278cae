package kvtest

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagekv"
	"github.com/hupe1980/pagekv/testutil"
)

// Factory opens a store rooted at dir. Calling it twice with the same dir
// after closing the first store must yield the persisted state.
type Factory func(tb testing.TB, dir string) pagekv.KV

// RunKVTests runs the conformance suite against the stores produced by factory.
func RunKVTests(t *testing.T, name string, factory Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("WriteRead", func(t *testing.T) {
			testWriteRead(t, factory)
		})

		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, factory)
		})

		t.Run("InvalidKey", func(t *testing.T) {
			testInvalidKey(t, factory)
		})

		t.Run("Values", func(t *testing.T) {
			testValues(t, factory)
		})

		t.Run("CopySemantics", func(t *testing.T) {
			testCopySemantics(t, factory)
		})

		t.Run("RangeBounds", func(t *testing.T) {
			testRangeBounds(t, factory)
		})

		t.Run("RangeAcrossPartitions", func(t *testing.T) {
			testRangeAcrossPartitions(t, factory)
		})

		t.Run("Reopen", func(t *testing.T) {
			testReopen(t, factory)
		})

		t.Run("Closed", func(t *testing.T) {
			testClosed(t, factory)
		})

		t.Run("ConcurrentWriters", func(t *testing.T) {
			testConcurrentWriters(t, factory)
		})

		t.Run("RandomAgainstModel", func(t *testing.T) {
			testRandomAgainstModel(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func open(t *testing.T, factory Factory) (pagekv.KV, string) {
	t.Helper()
	dir := t.TempDir()
	kv := factory(t, dir)
	t.Cleanup(func() { _ = kv.Close() })
	return kv, dir
}

func collect(t *testing.T, kv pagekv.KV, lower, upper string) []string {
	t.Helper()
	var keys []string
	err := kv.Range([]byte(lower), []byte(upper), pagekv.VisitorFunc(func(k, _ []byte) {
		keys = append(keys, string(k))
	}))
	require.NoError(t, err)
	return keys
}

func mustWrite(t *testing.T, kv pagekv.KV, key, value string) {
	t.Helper()
	require.NoError(t, kv.Write([]byte(key), []byte(value)))
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testWriteRead(t *testing.T, factory Factory) {
	kv, _ := open(t, factory)

	mustWrite(t, kv, "hello", "world")

	v, err := kv.Read([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "world", string(v))

	_, err = kv.Read([]byte("nonexistent-key"))
	assert.ErrorIs(t, err, pagekv.ErrNotFound)
}

func testOverwrite(t *testing.T, factory Factory) {
	kv, _ := open(t, factory)

	mustWrite(t, kv, "k", "v1")
	mustWrite(t, kv, "k", "v2")
	mustWrite(t, kv, "k", "v3")

	v, err := kv.Read([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "v3", string(v))
	assert.Equal(t, []string{"k"}, collect(t, kv, "", ""))
}

func testInvalidKey(t *testing.T, factory Factory) {
	kv, _ := open(t, factory)

	assert.ErrorIs(t, kv.Write(nil, []byte("v")), pagekv.ErrInvalidArgument)
	assert.ErrorIs(t, kv.Write([]byte{}, []byte("v")), pagekv.ErrInvalidArgument)

	_, err := kv.Read(nil)
	assert.ErrorIs(t, err, pagekv.ErrInvalidArgument)
}

func testValues(t *testing.T, factory Factory) {
	kv, _ := open(t, factory)
	rng := testutil.NewRNG(4711)

	cases := map[string][]byte{
		"empty":      {},
		"one":        {0x00},
		"page-1":     rng.Value(4096 - 12 - 7),
		"page":       rng.Value(4096),
		"multi-page": rng.Value(3*4096 + 17),
		"binary\x00": {0x00, 0xff, 0x00},
	}
	for k, v := range cases {
		require.NoError(t, kv.Write([]byte(k), v), k)
	}
	for k, want := range cases {
		got, err := kv.Read([]byte(k))
		require.NoError(t, err, k)
		assert.True(t, bytes.Equal(want, got), k)
	}
}

func testCopySemantics(t *testing.T, factory Factory) {
	kv, _ := open(t, factory)

	key := []byte("copy")
	value := []byte("original")
	require.NoError(t, kv.Write(key, value))

	// Mutating the caller's buffers must not reach the store.
	key[0] = 'X'
	value[0] = 'X'

	got, err := kv.Read([]byte("copy"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	// Neither must mutating a returned value.
	got[0] = 'Y'
	again, err := kv.Read([]byte("copy"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(again))

	require.NoError(t, kv.Range(nil, nil, pagekv.VisitorFunc(func(k, v []byte) {
		k[0] = 'Z'
		v[0] = 'Z'
	})))
	again, err = kv.Read([]byte("copy"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(again))
}

func testRangeBounds(t *testing.T, factory Factory) {
	kv, _ := open(t, factory)

	mustWrite(t, kv, "aaa", "1")
	mustWrite(t, kv, "bbb", "2")
	mustWrite(t, kv, "ccc", "3")
	mustWrite(t, kv, "ccd", "4")

	tests := []struct {
		lower, upper string
		want         []string
	}{
		{"", "", []string{"aaa", "bbb", "ccc", "ccd"}},
		{"aaa", "", []string{"aaa", "bbb", "ccc", "ccd"}},
		{"aab", "", []string{"bbb", "ccc", "ccd"}},
		{"aaa", "bb", []string{"aaa"}},
		{"c", "", []string{"ccc", "ccd"}},
		{"ccc", "ccd", []string{"ccc"}},
		{"ccc", "ccdd", []string{"ccc", "ccd"}},
		{"ccc", "", []string{"ccc", "ccd"}},
		{"", "bbb", []string{"aaa"}},
		{"ccd", "ccc", nil},
		{"bbb", "bbb", nil},
		{"d", "", nil},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("[%q,%q)", tt.lower, tt.upper), func(t *testing.T) {
			assert.Equal(t, tt.want, collect(t, kv, tt.lower, tt.upper))
		})
	}

	var values []string
	require.NoError(t, kv.Range(nil, nil, pagekv.VisitorFunc(func(_, v []byte) {
		values = append(values, string(v))
	})))
	assert.Equal(t, []string{"1", "2", "3", "4"}, values)
}

func testRangeAcrossPartitions(t *testing.T, factory Factory) {
	kv, _ := open(t, factory)

	var want []string
	for b := 1; b < 256; b += 3 {
		k := string([]byte{byte(b), 'x'})
		mustWrite(t, kv, k, "v")
		want = append(want, k)
	}
	assert.Equal(t, want, collect(t, kv, "", ""))

	lower := string([]byte{0x10})
	upper := string([]byte{0x20, 0x00})
	var sub []string
	for _, k := range want {
		if k >= lower && k < upper {
			sub = append(sub, k)
		}
	}
	assert.Equal(t, sub, collect(t, kv, lower, upper))
}

func testReopen(t *testing.T, factory Factory) {
	dir := t.TempDir()

	kv := factory(t, dir)
	mustWrite(t, kv, "aaa", "1")
	mustWrite(t, kv, "bbb", "2")
	mustWrite(t, kv, "aaa", "3")
	require.NoError(t, kv.Close())

	for round := range 2 {
		kv = factory(t, dir)
		v, err := kv.Read([]byte("aaa"))
		require.NoError(t, err, "round %d", round)
		assert.Equal(t, "3", string(v))
		assert.Equal(t, []string{"aaa", "bbb"}, collect(t, kv, "", ""))
		require.NoError(t, kv.Close())
	}
}

func testClosed(t *testing.T, factory Factory) {
	kv := factory(t, t.TempDir())
	mustWrite(t, kv, "k", "v")
	require.NoError(t, kv.Close())
	assert.NoError(t, kv.Close())

	assert.ErrorIs(t, kv.Write([]byte("k"), []byte("v")), pagekv.ErrClosed)
	_, err := kv.Read([]byte("k"))
	assert.ErrorIs(t, err, pagekv.ErrClosed)
	err = kv.Range(nil, nil, pagekv.VisitorFunc(func(_, _ []byte) {}))
	assert.ErrorIs(t, err, pagekv.ErrClosed)
}

func testConcurrentWriters(t *testing.T, factory Factory) {
	kv, _ := open(t, factory)

	const (
		writers = 8
		perKey  = 50
	)

	var wg sync.WaitGroup
	errs := make(chan error, writers+1)
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perKey {
				key := fmt.Appendf(nil, "%c-%03d", 'a'+w, i)
				if err := kv.Write(key, key); err != nil {
					errs <- err
					return
				}
				if _, err := kv.Read(key); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	// Readers scan while writers append.
	stop := make(chan struct{})
	var scans sync.WaitGroup
	scans.Add(1)
	go func() {
		defer scans.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			var (
				prev    []byte
				ordered = true
			)
			if err := kv.Range(nil, nil, pagekv.VisitorFunc(func(k, _ []byte) {
				if prev != nil && bytes.Compare(prev, k) >= 0 {
					ordered = false
				}
				prev = k
			})); err != nil {
				errs <- err
				return
			}
			if !ordered {
				errs <- errors.New("range out of order")
				return
			}
		}
	}()

	wg.Wait()
	close(stop)
	scans.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Len(t, collect(t, kv, "", ""), writers*perKey)
}

func testRandomAgainstModel(t *testing.T, factory Factory) {
	dir := t.TempDir()
	kv := factory(t, dir)
	rng := testutil.NewRNG(42)
	model := testutil.NewModel()

	keys := rng.Keys(200, 3)
	for range 1000 {
		k := keys[rng.Intn(len(keys))]
		v := rng.Value(rng.Intn(64))
		require.NoError(t, kv.Write(k, v))
		model.Put(k, v)
	}

	check := func(kv pagekv.KV) {
		for _, k := range keys {
			want, ok := model.Get(k)
			got, err := kv.Read(k)
			if !ok {
				assert.ErrorIs(t, err, pagekv.ErrNotFound)
				continue
			}
			require.NoError(t, err)
			assert.True(t, bytes.Equal(want, got))
		}

		lower, upper := rng.Key(2), rng.Key(2)
		var want, got [][]byte
		for k := range model.Range(lower, upper) {
			want = append(want, k)
		}
		require.NoError(t, kv.Range(lower, upper, pagekv.VisitorFunc(func(k, _ []byte) {
			got = append(got, k)
		})))
		assert.Equal(t, want, got)
	}

	check(kv)
	require.NoError(t, kv.Close())

	kv = factory(t, dir)
	defer kv.Close()
	check(kv)
}
