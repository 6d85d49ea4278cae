package kvtest

import (
	"sync/atomic"
	"testing"

	"github.com/hupe1980/pagekv"
	"github.com/hupe1980/pagekv/testutil"
)

// Workload describes the keys and values a benchmark writes.
type Workload struct {
	Keys      int // distinct keys preloaded for reads and scans
	KeySize   int
	ValueSize int
	Seed      int64
}

// DefaultWorkload is used by RunKVBenchmarks.
var DefaultWorkload = Workload{Keys: 10_000, KeySize: 16, ValueSize: 128, Seed: 4711}

// RunKVBenchmarks runs all benchmarks for a key-value store implementation.
func RunKVBenchmarks(b *testing.B, name string, factory Factory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Write", func(b *testing.B) {
			BenchWrite(b, factory(b, b.TempDir()), DefaultWorkload)
		})

		b.Run("WriteLargeValue", func(b *testing.B) {
			w := DefaultWorkload
			w.ValueSize = 64 << 10
			BenchWrite(b, factory(b, b.TempDir()), w)
		})

		b.Run("Read", func(b *testing.B) {
			BenchRead(b, factory(b, b.TempDir()), DefaultWorkload)
		})

		b.Run("Range", func(b *testing.B) {
			BenchRange(b, factory(b, b.TempDir()), DefaultWorkload)
		})

		b.Run("Mixed", func(b *testing.B) {
			BenchMixed(b, factory(b, b.TempDir()), DefaultWorkload)
		})
	})
}

// Preload writes w.Keys random entries and returns their keys.
func Preload(tb testing.TB, kv pagekv.KV, w Workload) [][]byte {
	tb.Helper()
	rng := testutil.NewRNG(w.Seed)
	keys := rng.Keys(w.Keys, w.KeySize)
	value := rng.Value(w.ValueSize)
	for _, k := range keys {
		if err := kv.Write(k, value); err != nil {
			tb.Fatalf("preload: %v", err)
		}
	}
	return keys
}

// BenchWrite measures parallel writes of fresh random keys. It closes kv.
func BenchWrite(b *testing.B, kv pagekv.KV, w Workload) {
	defer kv.Close()
	rng := testutil.NewRNG(w.Seed)
	value := rng.Value(w.ValueSize)

	b.SetBytes(int64(w.KeySize + w.ValueSize))
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := kv.Write(rng.Key(w.KeySize), value); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// BenchRead measures parallel point reads of preloaded keys. It closes kv.
func BenchRead(b *testing.B, kv pagekv.KV, w Workload) {
	defer kv.Close()
	keys := Preload(b, kv, w)

	var next atomic.Uint64
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			k := keys[next.Add(1)%uint64(len(keys))]
			if _, err := kv.Read(k); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// BenchRange measures scans over one partition's worth of preloaded keys.
// It closes kv.
func BenchRange(b *testing.B, kv pagekv.KV, w Workload) {
	defer kv.Close()
	keys := Preload(b, kv, w)

	var next atomic.Uint64
	visitor := pagekv.VisitorFunc(func(_, _ []byte) {})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			k := keys[next.Add(1)%uint64(len(keys))]
			if err := kv.Range(k[:1], partitionEnd(k), visitor); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// BenchMixed runs 80% reads, 15% writes and 5% short scans in parallel.
// It closes kv.
func BenchMixed(b *testing.B, kv pagekv.KV, w Workload) {
	defer kv.Close()
	keys := Preload(b, kv, w)
	rng := testutil.NewRNG(w.Seed + 1)
	value := rng.Value(w.ValueSize)

	var next atomic.Uint64
	visitor := pagekv.VisitorFunc(func(_, _ []byte) {})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := next.Add(1)
			k := keys[i%uint64(len(keys))]

			var err error
			switch op := i % 100; {
			case op < 80:
				_, err = kv.Read(k)
			case op < 95:
				err = kv.Write(k, value)
			default:
				err = kv.Range(k, partitionEnd(k), visitor)
			}
			if err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// partitionEnd returns the smallest key past the partition of k, or nil for
// the last partition.
func partitionEnd(k []byte) []byte {
	if k[0] == 0xff {
		return nil
	}
	return []byte{k[0] + 1}
}
