package pagekv_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagekv"
	"github.com/hupe1980/pagekv/kvtest"
)

func factory(opts ...pagekv.Option) kvtest.Factory {
	return func(tb testing.TB, dir string) pagekv.KV {
		db, err := pagekv.Open(dir, opts...)
		require.NoError(tb, err)
		return db
	}
}

func TestConformance(t *testing.T) {
	kvtest.RunKVTests(t, "DirectIO", factory())
	kvtest.RunKVTests(t, "Buffered", factory(pagekv.WithDirectIO(false)))
	kvtest.RunKVTests(t, "SmallPages", factory(pagekv.WithPageSize(512)))
	kvtest.RunKVTests(t, "SyncDurability", factory(pagekv.WithDurability(pagekv.DurabilitySync)))
}

func Benchmark(b *testing.B) {
	kvtest.RunKVBenchmarks(b, "pagekv", factory())
}
