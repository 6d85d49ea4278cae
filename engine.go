package pagekv

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/hupe1980/pagekv/internal/fs"
	"github.com/hupe1980/pagekv/internal/mem"
	"github.com/hupe1980/pagekv/internal/partition"
	"github.com/hupe1980/pagekv/internal/wal"
)

// Engine is an open pagekv directory.
type Engine struct {
	dir      string
	opts     options
	pageSize int
	parts    [partition.Count]*partition.Store
	closed   atomic.Bool
}

// Open opens the engine stored in dir, creating the directory if needed.
//
// Every partition log is replayed before Open returns, and all 256 logs are
// opened for appending. If any log cannot be opened, Open fails and closes
// whatever it already opened.
func Open(dir string, optFns ...Option) (*Engine, error) {
	ctx := context.Background()

	o, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return nil, invalidArgument("empty directory path")
	}

	if err := o.fs.MkdirAll(dir, 0o755); err != nil {
		err = &IOError{Op: "mkdir", Partition: -1, Path: dir, Err: err}
		o.logger.LogOpen(ctx, dir, false, err)
		return nil, err
	}

	e := &Engine{
		dir:      dir,
		opts:     o,
		pageSize: o.pageSize,
	}

	// One pool for all partitions; a buffer is owned by one Write at a time.
	pool := mem.NewBufferPool(o.pageSize)
	for id := range e.parts {
		e.parts[id] = partition.NewStore(id, o.pageSize, pool)
	}

	if err := e.recover(ctx); err != nil {
		o.logger.LogOpen(ctx, dir, false, err)
		return nil, err
	}
	if err := e.openLogs(); err != nil {
		o.logger.LogOpen(ctx, dir, false, err)
		return nil, err
	}
	if err := fs.SyncDir(o.fs, dir); err != nil {
		o.logger.DebugContext(ctx, "directory sync skipped", "dir", dir, "error", err)
	}

	o.logger.LogOpen(ctx, dir, e.directIO(), nil)
	return e, nil
}

func (e *Engine) logPath(id int) string {
	return filepath.Join(e.dir, partition.FileName(id))
}

func (e *Engine) openLogs() error {
	logOpts := wal.LogOptions{
		Durability: e.opts.durability,
		DirectIO:   e.opts.directIO,
		Alignment:  e.pageSize,
	}

	for id, p := range e.parts {
		log, err := wal.OpenLog(e.opts.fs, e.logPath(id), logOpts)
		if err != nil {
			for _, opened := range e.parts[:id] {
				_ = opened.Close()
			}
			return &IOError{Op: "open", Partition: id, Path: e.logPath(id), Err: err}
		}
		p.Attach(log)
	}
	return nil
}

func (e *Engine) directIO() bool {
	for _, p := range e.parts {
		if p.Direct() {
			return true
		}
	}
	return false
}

func validateKey(key []byte) error {
	if len(key) == 0 {
		return invalidArgument("empty key")
	}
	if uint64(len(key)) > math.MaxUint32 {
		return invalidArgument("key of %d bytes exceeds the 4 GiB limit", len(key))
	}
	return nil
}

// Write stores value under key, replacing any previous value. The record is
// appended to the key's partition log before it becomes visible to readers;
// if the append fails nothing changes and an *IOError is returned.
func (e *Engine) Write(key, value []byte) (err error) {
	start := time.Now()
	defer func() {
		e.opts.metricsCollector.RecordWrite(time.Since(start), len(key)+len(value), err)
	}()

	if e.closed.Load() {
		return ErrClosed
	}
	if err := validateKey(key); err != nil {
		return err
	}
	if uint64(len(value)) > math.MaxUint32 {
		return invalidArgument("value of %d bytes exceeds the 4 GiB limit", len(value))
	}

	id := partition.Route(key)
	if err := e.parts[id].Put(key, value); err != nil {
		if errors.Is(err, wal.ErrRecordTooLarge) {
			return invalidArgument("%v", err)
		}
		err = translateError("write", id, e.logPath(id), err)
		if errors.Is(err, ErrIO) {
			e.opts.logger.LogWriteError(context.Background(), id, err)
		}
		return err
	}
	return nil
}

// Read returns a copy of the value stored under key, or ErrNotFound.
func (e *Engine) Read(key []byte) (value []byte, err error) {
	start := time.Now()
	defer func() {
		found := err == nil
		if errors.Is(err, ErrNotFound) {
			e.opts.metricsCollector.RecordRead(time.Since(start), false, nil)
			return
		}
		e.opts.metricsCollector.RecordRead(time.Since(start), found, err)
	}()

	if e.closed.Load() {
		return nil, ErrClosed
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	v, ok := e.parts[partition.Route(key)].Get(key)
	if !ok {
		if e.closed.Load() {
			return nil, ErrClosed
		}
		return nil, ErrNotFound
	}
	return v, nil
}

// Sync flushes every partition log to stable storage.
func (e *Engine) Sync() error {
	if e.closed.Load() {
		return ErrClosed
	}

	var firstErr error
	for id, p := range e.parts {
		if err := p.Sync(); err != nil && firstErr == nil {
			firstErr = translateError("sync", id, e.logPath(id), err)
		}
	}
	return firstErr
}

// Close closes all partition logs and releases the indexes. Operations on a
// closed engine return ErrClosed; closing twice returns nil.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	var firstErr error
	for id, p := range e.parts {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = &IOError{Op: "close", Partition: id, Path: e.logPath(id), Err: err}
		}
	}

	e.opts.logger.LogClose(context.Background(), firstErr)
	return firstErr
}

// Dir returns the directory the engine was opened on.
func (e *Engine) Dir() string {
	return e.dir
}

// PageSize returns the record alignment in bytes.
func (e *Engine) PageSize() int {
	return e.pageSize
}
