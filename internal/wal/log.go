package wal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hupe1980/pagekv/internal/fs"
)

// Durability controls the durability guarantees of a partition log.
type Durability int

const (
	// DurabilityAsync relies on the OS (or the device, with direct I/O) to
	// persist appended records. Fast but a power loss may drop recent writes.
	DurabilityAsync Durability = iota
	// DurabilitySync calls fdatasync after every append. Slow but safe.
	DurabilitySync
)

func (d Durability) String() string {
	switch d {
	case DurabilityAsync:
		return "async"
	case DurabilitySync:
		return "sync"
	default:
		return fmt.Sprintf("Durability(%d)", int(d))
	}
}

// LogOptions configures a partition log.
type LogOptions struct {
	Durability Durability
	// DirectIO opens the file with O_DIRECT when the platform and the file
	// system support it.
	DirectIO bool
	// Alignment is the block size direct writes must honor. An existing file
	// whose size is not a multiple of it is opened without O_DIRECT.
	Alignment int
}

// DefaultLogOptions returns the options the engine uses unless configured otherwise.
func DefaultLogOptions() LogOptions {
	return LogOptions{
		Durability: DurabilityAsync,
		DirectIO:   true,
		Alignment:  os.Getpagesize(),
	}
}

// Log is the append-only file behind one partition.
//
// Log does no locking of its own for Append; the owning partition serializes
// writers. Size, Sync and Close may be called concurrently with each other.
type Log struct {
	mu     sync.Mutex
	fs     fs.FileSystem
	file   fs.File
	path   string
	opts   LogOptions
	direct bool
	size   int64
	closed bool
	// torn is set when a failed append could not be cut off again.
	torn error
}

// ErrTornAppend is returned by Append once a failed append left bytes in the
// log that could not be removed. Records appended behind them would be lost on
// replay, so the log takes no more writes until it is reopened and recovered.
var ErrTornAppend = errors.New("wal: log ends in a torn append")

// OpenLog opens or creates the log at path for appending.
func OpenLog(fsys fs.FileSystem, path string, opts LogOptions) (*Log, error) {
	if fsys == nil {
		fsys = fs.Default
	}

	flag := os.O_WRONLY | os.O_APPEND | os.O_CREATE
	direct := opts.DirectIO && fs.DirectIOSupported

	// O_DIRECT appends land at the current end of file, so that end must already
	// be aligned.
	if direct && opts.Alignment > 0 {
		if fi, err := fsys.Stat(path); err == nil && fi.Size()%int64(opts.Alignment) != 0 {
			direct = false
		}
	}

	var (
		f   fs.File
		err error
	)
	if direct {
		f, err = fsys.OpenFile(path, flag|fs.O_DIRECT, 0644)
		if err != nil && fs.IsDirectIOUnsupported(err) {
			direct = false
		}
	}
	if !direct {
		f, err = fsys.OpenFile(path, flag, 0644)
	}
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return &Log{
		fs:     fsys,
		file:   f,
		path:   path,
		opts:   opts,
		direct: direct,
		size:   fi.Size(),
	}, nil
}

// Append writes rec to the end of the log, retrying short writes until the whole
// buffer is written or an error occurs. With DurabilitySync the data is synced
// before Append returns.
func (l *Log) Append(rec []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return os.ErrClosed
	}
	if l.torn != nil {
		return l.torn
	}

	start := l.size
	for written := 0; written < len(rec); {
		n, err := l.file.Write(rec[written:])
		written += n
		l.size += int64(n)
		if err != nil && written == 0 && l.direct && fs.IsDirectIOUnsupported(err) {
			// Some file systems accept O_DIRECT at open time and refuse the write.
			if err = l.reopenBuffered(); err == nil {
				continue
			}
		}
		if err != nil {
			return l.rollback(start, err)
		}
		if n == 0 {
			return l.rollback(start, io.ErrShortWrite)
		}
	}

	if l.opts.Durability == DurabilitySync {
		return fs.Datasync(l.file)
	}
	return nil
}

// rollback cuts the bytes of a failed append off the end of the log so the
// next record starts where the failed one did.
func (l *Log) rollback(start int64, cause error) error {
	if l.size == start {
		return cause
	}
	if err := l.fs.Truncate(l.path, start); err != nil {
		l.torn = fmt.Errorf("%w at offset %d: %w", ErrTornAppend, start, err)
		return errors.Join(cause, l.torn)
	}
	l.size = start
	return cause
}

func (l *Log) reopenBuffered() error {
	f, err := l.fs.OpenFile(l.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	_ = l.file.Close()
	l.file = f
	l.direct = false
	return nil
}

// Sync flushes appended records to stable storage.
func (l *Log) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return os.ErrClosed
	}
	return fs.Datasync(l.file)
}

// Size returns the number of bytes in the log. It includes the bytes of a
// failed append only when they could not be cut off again.
func (l *Log) Size() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Direct reports whether the log writes with O_DIRECT.
func (l *Log) Direct() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direct
}

// Path returns the file path of the log.
func (l *Log) Path() string {
	return l.path
}

// Close closes the log file. A second Close returns os.ErrClosed.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return os.ErrClosed
	}
	l.closed = true
	return l.file.Close()
}

// Truncate cuts the file at path down to size. Recovery uses it to drop the
// tail of an append that never completed.
func Truncate(fsys fs.FileSystem, path string, size int64) error {
	if fsys == nil {
		fsys = fs.Default
	}
	if err := fsys.Truncate(path, size); err != nil {
		return err
	}

	f, err := fsys.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
