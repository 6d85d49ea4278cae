package pagekv

import (
	"bytes"
	"iter"
	"time"

	"github.com/hupe1980/pagekv/internal/partition"
)

// Range calls v.Visit for every key k with lower <= k < upper in ascending
// order. An empty lower or upper bound is open.
//
// Each partition is read under its shared lock and released before the next
// one, so writes to other partitions may land while the scan runs. v must not
// call Write.
func (e *Engine) Range(lower, upper []byte, v Visitor) error {
	if v == nil {
		return invalidArgument("nil visitor")
	}
	return e.RangeFunc(lower, upper, func(key, value []byte) bool {
		v.Visit(key, value)
		return true
	})
}

// RangeFunc is like Range but stops as soon as fn returns false.
func (e *Engine) RangeFunc(lower, upper []byte, fn func(key, value []byte) bool) (err error) {
	start := time.Now()
	visited := 0
	defer func() {
		e.opts.metricsCollector.RecordRange(time.Since(start), visited, err)
	}()

	if fn == nil {
		return invalidArgument("nil range callback")
	}
	if e.closed.Load() {
		return ErrClosed
	}
	if len(lower) > 0 && len(upper) > 0 && bytes.Compare(lower, upper) >= 0 {
		return nil
	}

	first, last := 0, partition.Count-1
	if len(lower) > 0 {
		first = partition.Route(lower)
	}
	if len(upper) > 0 {
		last = partition.Route(upper)
	}

	for id := first; id <= last; id++ {
		more := e.parts[id].Ascend(lower, upper, func(key, value []byte) bool {
			visited++
			return fn(key, value)
		})
		if !more {
			break
		}
	}

	// Close drops the indexes, which reads as empty partitions.
	if e.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Scan returns an iterator over the same entries Range visits. Breaking out
// of the loop stops the scan. Errors end the sequence silently; use RangeFunc
// to observe them.
//
//	for k, v := range db.Scan([]byte("user:"), []byte("user;")) {
//	    fmt.Printf("%s=%s\n", k, v)
//	}
func (e *Engine) Scan(lower, upper []byte) iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		_ = e.RangeFunc(lower, upper, yield)
	}
}
