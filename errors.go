package pagekv

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pagekv/internal/partition"
	"github.com/hupe1980/pagekv/internal/snapshot"
)

var (
	// ErrNotFound is returned by Read when the key has never been written.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for keys or values the engine cannot store.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIO marks failures of the underlying file system.
	ErrIO = errors.New("i/o error")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("engine closed")
	// ErrCorruptSnapshot is returned by Restore for truncated or damaged backups.
	ErrCorruptSnapshot = snapshot.ErrCorrupt
)

// IOError describes a failed file system operation on a partition log.
//
// errors.Is(err, ErrIO) reports true for every IOError; the underlying error
// can be accessed via errors.Unwrap.
type IOError struct {
	Op        string
	Partition int // -1 when the failure is not tied to a partition
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Partition >= 0 {
		return fmt.Sprintf("%s partition %s (%s): %v", e.Op, partition.FileName(e.Partition), e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// InvalidArgumentError explains why an argument was rejected.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

// Is reports whether target is ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

func invalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Reason: fmt.Sprintf(format, args...)}
}

// translateError maps internal partition errors to the public API.
func translateError(op string, id int, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, partition.ErrClosed) {
		return ErrClosed
	}
	return &IOError{Op: op, Partition: id, Path: path, Err: err}
}
