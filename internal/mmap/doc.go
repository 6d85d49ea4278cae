// Package mmap provides read-only memory-mapped file access.
//
// Recovery maps each partition log once, walks it front to back and unmaps it,
// so the package only offers what that needs: a whole-file read-only mapping
// with an access-pattern hint.
//
// # Usage
//
//	m, err := mmap.Open("data/61")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.Sequential)
//	data := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch slices obtained from Bytes after Close returns.
package mmap
