// Package testutil provides testing utilities for pagekv.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, goroutine-safe random source and generators for keys
// and values with controlled partition spread.
//
// # Random Keys
//
//	rng := testutil.NewRNG(seed)
//	key := rng.Key(16)              // random bytes, any partition
//	key = rng.KeyWithPrefix('u', 8) // always lands in partition "75"
//	val := rng.Value(4096)
//
// # Expected State
//
//	model := testutil.NewModel()
//	model.Put(k, v)
//	for k, v := range model.Range(lower, upper) { ... }
package testutil
