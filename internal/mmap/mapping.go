package mmap

import (
	"math"
	"os"
	"sync/atomic"
)

// Mapping is a read-only view of a whole partition log.
type Mapping struct {
	path   string
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the file at path. An empty file yields a Mapping without data,
// since zero-length mappings are rejected by the OS.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is built by the engine
	if err != nil {
		return nil, err
	}
	// The mapping stays valid after the descriptor is closed.
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, &os.PathError{Op: "mmap", Path: path, Err: ErrNotRegular}
	}

	m := &Mapping{path: path}
	if fi.Size() == 0 {
		return m, nil
	}
	if fi.Size() > math.MaxInt {
		return nil, &os.PathError{Op: "mmap", Path: path, Err: ErrTooLarge}
	}

	m.data, m.unmap, err = mapFile(f, int(fi.Size()))
	if err != nil {
		return nil, &os.PathError{Op: "mmap", Path: path, Err: err}
	}
	return m, nil
}

// Path returns the mapped file's path.
func (m *Mapping) Path() string { return m.path }

// Len returns the number of mapped bytes, which is the file size at Open.
func (m *Mapping) Len() int64 { return int64(len(m.data)) }

// Bytes returns the mapped file contents, or nil once closed. The slice must
// not be used after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Advise passes a as a hint for the whole mapping. Hints the platform does
// not understand are ignored.
func (m *Mapping) Advise(a Advice) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.data) == 0 {
		return nil
	}
	return advise(m.data, a)
}

// Close unmaps the file. Calling it again is a no-op.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.unmap == nil {
		return nil
	}
	if err := m.unmap(m.data); err != nil {
		return &os.PathError{Op: "munmap", Path: m.path, Err: err}
	}
	return nil
}
