package testutil

import (
	"bytes"
	"fmt"
	"iter"
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Fill fills b with random bytes.
func (r *RNG) Fill(b []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.rand.Read(b)
}

// Key returns n random bytes whose first byte is never zero, so keys are
// never empty and spread over partitions 01 to ff.
func (r *RNG) Key(n int) []byte {
	if n <= 0 {
		n = 1
	}
	k := make([]byte, n)
	r.Fill(k)
	if k[0] == 0 {
		k[0] = 1
	}
	return k
}

// KeyWithPrefix returns a key of n random bytes after first, pinning it to
// the partition of first.
func (r *RNG) KeyWithPrefix(first byte, n int) []byte {
	k := make([]byte, n+1)
	k[0] = first
	r.Fill(k[1:])
	return k
}

// Value returns n random bytes.
func (r *RNG) Value(n int) []byte {
	v := make([]byte, n)
	r.Fill(v)
	return v
}

// Keys returns count distinct random keys of n bytes, in generation order.
func (r *RNG) Keys(count, n int) [][]byte {
	seen := make(map[string]struct{}, count)
	keys := make([][]byte, 0, count)
	for len(keys) < count {
		k := r.Key(n)
		if _, dup := seen[string(k)]; dup {
			continue
		}
		seen[string(k)] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// SequentialKey formats i as a fixed-width key under prefix, so keys sort in
// numeric order: SequentialKey("user:", 7) == "user:00000007".
func SequentialKey(prefix string, i int) []byte {
	return fmt.Appendf(nil, "%s%08d", prefix, i)
}

// Model is a reference map with the semantics a key-value engine must show:
// last write wins and ranges are half-open in byte order.
// It is safe for concurrent use.
type Model struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{data: make(map[string][]byte)}
}

// Put stores a copy of value under key.
func (m *Model) Put(key, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = bytes.Clone(value)
}

// Get returns the value stored under key.
func (m *Model) Get(key []byte) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	return v, ok
}

// Len returns the number of keys.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Range yields every key in [lower, upper) in ascending order. Empty bounds
// are open.
func (m *Model) Range(lower, upper []byte) iter.Seq2[[]byte, []byte] {
	m.mu.RLock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		kb := []byte(k)
		if len(lower) > 0 && bytes.Compare(kb, lower) < 0 {
			continue
		}
		if len(upper) > 0 && bytes.Compare(kb, upper) >= 0 {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = m.data[k]
	}
	m.mu.RUnlock()

	return func(yield func([]byte, []byte) bool) {
		for i, k := range keys {
			if !yield([]byte(k), values[i]) {
				return
			}
		}
	}
}
