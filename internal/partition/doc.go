// Package partition implements one of the engine's 256 independent shards: its
// routing rule, its ordered in-memory index and the store that ties the index
// to its append-only log under a single read/write lock.
package partition
