package partition

import (
	"errors"
	"sync"

	"github.com/hupe1980/pagekv/internal/mem"
	"github.com/hupe1980/pagekv/internal/wal"
)

// ErrClosed is returned by Put and Sync once the store is closed.
var ErrClosed = errors.New("partition closed")

// Store is one partition: an append-only log, the index built from it and the
// lock that orders writers against readers. Writers hold the lock exclusively
// for the append and the index update; readers and range scans share it.
type Store struct {
	id       int
	pageSize int
	pool     *mem.BufferPool

	mu    sync.RWMutex
	log   *wal.Log
	index *Index
}

// NewStore returns an empty store for partition id. Records are padded to
// pageSize and staged in buffers from pool.
func NewStore(id, pageSize int, pool *mem.BufferPool) *Store {
	if pool == nil {
		pool = mem.NewBufferPool(pageSize)
	}
	return &Store{
		id:       id,
		pageSize: pageSize,
		pool:     pool,
		index:    NewIndex(),
	}
}

// ID returns the partition number.
func (s *Store) ID() int {
	return s.id
}

// Replay folds the complete records of a log image into the index, later
// records replacing earlier ones, and returns how many records it read.
// Keys and values are copied out of data. Replay must finish before the store
// is shared.
func (s *Store) Replay(data []byte) int {
	records := 0
	for key, value := range wal.Decode(data) {
		s.index.Set(clone(key), clone(value))
		records++
	}
	return records
}

// Attach hands the store the log that Put appends to.
func (s *Store) Attach(log *wal.Log) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = log
}

// Put appends a record for key and value and, once the append succeeded,
// makes the pair visible to readers. On error the index is left untouched.
func (s *Store) Put(key, value []byte) error {
	n := wal.EncodedLen(len(key), len(value), s.pageSize)
	buf := s.pool.Get(n)
	defer s.pool.Put(buf)

	if _, err := wal.Encode(buf, key, value, s.pageSize); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.log == nil {
		return ErrClosed
	}
	if err := s.log.Append(buf[:n]); err != nil {
		return err
	}
	s.index.Set(clone(key), clone(value))
	return nil
}

// Get returns a copy of the value stored for key.
func (s *Store) Get(key []byte) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index == nil {
		return nil, false
	}
	v, ok := s.index.Get(key)
	if !ok {
		return nil, false
	}
	return clone(v), true
}

// Ascend calls fn with copies of every pair in [lower, upper) in ascending key
// order while holding the shared lock, so fn sees one consistent state of the
// partition. It returns false if fn stopped the scan.
func (s *Store) Ascend(lower, upper []byte, fn func(key, value []byte) bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index == nil {
		return true
	}
	return s.index.AscendRange(lower, upper, func(key, value []byte) bool {
		return fn(clone(key), clone(value))
	})
}

// Len returns the number of live keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return 0
	}
	return s.index.Len()
}

// Bytes returns the size of the live keys and values.
func (s *Store) Bytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return 0
	}
	return s.index.Bytes()
}

// LogSize returns the size of the partition log in bytes.
func (s *Store) LogSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.log == nil {
		return 0
	}
	return s.log.Size()
}

// Direct reports whether the partition log writes with O_DIRECT.
func (s *Store) Direct() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log != nil && s.log.Direct()
}

// Sync flushes the partition log.
func (s *Store) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.log == nil {
		return ErrClosed
	}
	return s.log.Sync()
}

// Close closes the log and drops the index. Closing a closed store is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = nil
	if s.log == nil {
		return nil
	}
	err := s.log.Close()
	s.log = nil
	return err
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
