// Package kvtest provides a standardised conformance suite and benchmarks for
// stores that satisfy the pagekv.KV interface.
//
// The suite checks the contract every implementation must honor: point writes
// and reads, last-write-wins, copy semantics, half-open ordered ranges and
// persistence across a close and reopen of the same directory.
//
// Example usage:
//
//	factory := func(tb testing.TB, dir string) pagekv.KV {
//		db, err := pagekv.Open(dir)
//		require.NoError(tb, err)
//		return db
//	}
//
//	kvtest.RunKVTests(t, "pagekv", factory)
//	kvtest.RunKVBenchmarks(b, "pagekv", factory)
package kvtest
