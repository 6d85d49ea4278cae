package partition

import (
	"bytes"

	"github.com/google/btree"
)

const indexDegree = 32

type entry struct {
	key   []byte
	value []byte
}

func lessEntry(a, b entry) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// Index is the ordered key/value map of one partition.
// It is not safe for concurrent use; Store guards it.
type Index struct {
	tree  *btree.BTreeG[entry]
	bytes int64
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{tree: btree.NewG(indexDegree, lessEntry)}
}

// Set inserts or replaces the value for key. The index keeps the slices as
// given; callers hand over ownership.
func (x *Index) Set(key, value []byte) {
	old, replaced := x.tree.ReplaceOrInsert(entry{key: key, value: value})
	if replaced {
		x.bytes -= int64(len(old.key) + len(old.value))
	}
	x.bytes += int64(len(key) + len(value))
}

// Get returns the value stored for key. The slice is owned by the index.
func (x *Index) Get(key []byte) ([]byte, bool) {
	e, ok := x.tree.Get(entry{key: key})
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Len returns the number of keys.
func (x *Index) Len() int {
	return x.tree.Len()
}

// Bytes returns the total size of all stored keys and values.
func (x *Index) Bytes() int64 {
	return x.bytes
}

// AscendRange calls fn for every key in [lower, upper) in ascending order.
// A nil or empty bound is open. Iteration stops early when fn returns false,
// in which case AscendRange returns false.
func (x *Index) AscendRange(lower, upper []byte, fn func(key, value []byte) bool) bool {
	completed := true
	visit := func(e entry) bool {
		if !fn(e.key, e.value) {
			completed = false
			return false
		}
		return true
	}

	switch {
	case len(lower) == 0 && len(upper) == 0:
		x.tree.Ascend(visit)
	case len(upper) == 0:
		x.tree.AscendGreaterOrEqual(entry{key: lower}, visit)
	case len(lower) == 0:
		x.tree.AscendLessThan(entry{key: upper}, visit)
	default:
		if bytes.Compare(lower, upper) >= 0 {
			return true
		}
		x.tree.AscendRange(entry{key: lower}, entry{key: upper}, visit)
	}
	return completed
}
