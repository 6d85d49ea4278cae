package mmap

import "errors"

// Advice tells the kernel how a mapped log is about to be read.
type Advice int

const (
	// Normal drops any earlier advice.
	Normal Advice = iota
	// Sequential suits a single front-to-back replay.
	Sequential
	// DontNeed lets the kernel reclaim pages that were already replayed.
	DontNeed
)

func (a Advice) String() string {
	switch a {
	case Sequential:
		return "sequential"
	case DontNeed:
		return "dontneed"
	default:
		return "normal"
	}
}

var (
	// ErrClosed is returned by operations on a closed Mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrNotRegular is returned when the path is not a regular file.
	ErrNotRegular = errors.New("mmap: not a regular file")
	// ErrTooLarge is returned when the file does not fit the address space.
	ErrTooLarge = errors.New("mmap: file too large to map")
)
