package pagekv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/pagekv/blobstore"
	"github.com/hupe1980/pagekv/internal/snapshot"
	"github.com/hupe1980/pagekv/resource"
)

// Compression selects the codec of a backup stream.
type Compression = snapshot.Compression

const (
	CompressionNone   = snapshot.CompressionNone
	CompressionSnappy = snapshot.CompressionSnappy
	CompressionLZ4    = snapshot.CompressionLZ4
	CompressionZstd   = snapshot.CompressionZstd
)

// ParseCompression parses "none", "snappy", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	c, err := snapshot.ParseCompression(s)
	if err != nil {
		return CompressionNone, invalidArgument("%v", err)
	}
	return c, nil
}

type backupOptions struct {
	compression Compression
	rateLimit   int64
}

// BackupOption configures Backup and BackupTo.
type BackupOption func(*backupOptions)

// WithBackupCompression sets the codec of the backup body (default none).
func WithBackupCompression(c Compression) BackupOption {
	return func(o *backupOptions) {
		o.compression = c
	}
}

// WithBackupRateLimit caps the rate at which compressed backup bytes are
// written, in bytes per second. 0 falls back to the IO limit of the engine's
// resource controller, if any.
func WithBackupRateLimit(bytesPerSec int64) BackupOption {
	return func(o *backupOptions) {
		o.rateLimit = bytesPerSec
	}
}

// BackupInfo summarizes a finished backup.
type BackupInfo struct {
	Entries     uint64        `json:"entries" yaml:"entries"`
	Bytes       int64         `json:"bytes" yaml:"bytes"`
	Compression Compression   `json:"compression" yaml:"compression"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

// RestoreInfo summarizes a finished restore.
type RestoreInfo struct {
	Entries     uint64        `json:"entries" yaml:"entries"`
	Compression Compression   `json:"compression" yaml:"compression"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type kvPair struct {
	key, value []byte
}

// Backup writes every entry to w as a snapshot.
//
// Each partition is copied under its shared lock and streamed after the lock
// is released, so a slow writer never blocks Write. The copy is accounted
// against the memory limit of the engine's resource controller. Like Range,
// the result is consistent per partition only.
func (e *Engine) Backup(ctx context.Context, w io.Writer, optFns ...BackupOption) (info BackupInfo, err error) {
	start := time.Now()
	var bo backupOptions
	for _, fn := range optFns {
		fn(&bo)
	}
	info.Compression = bo.compression

	defer func() {
		info.Duration = time.Since(start)
		e.opts.logger.LogBackup(ctx, info.Entries, bo.compression.String(), info.Duration, err)
	}()

	if e.closed.Load() {
		return info, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return info, err
	}

	rc := e.opts.resources
	if err := rc.AcquireBackground(ctx); err != nil {
		return info, err
	}
	defer rc.ReleaseBackground()

	limiter := rc
	if bo.rateLimit > 0 {
		limiter = resource.NewController(resource.Config{IOLimitBytesPerSec: bo.rateLimit})
	}

	cw := &countingWriter{w: w}
	var out io.Writer = cw
	if limiter.Config().IOLimitBytesPerSec > 0 {
		out = resource.NewRateLimitedWriter(ctx, cw, limiter)
	}

	sw, err := snapshot.NewWriter(out, bo.compression)
	if err != nil {
		return info, err
	}

	for _, p := range e.parts {
		if err := ctx.Err(); err != nil {
			return info, err
		}

		reserved, err := rc.AcquireMemory(ctx, p.Bytes())
		if err != nil {
			return info, err
		}

		var staged []kvPair
		p.Ascend(nil, nil, func(key, value []byte) bool {
			staged = append(staged, kvPair{key: key, value: value})
			return true
		})

		err = e.writeStaged(ctx, sw, staged)
		rc.ReleaseMemory(reserved)
		if err != nil {
			return info, err
		}
		info.Entries = sw.Count()
	}

	if e.closed.Load() {
		return info, ErrClosed
	}
	if err := sw.Close(); err != nil {
		return info, err
	}
	info.Entries = sw.Count()
	info.Bytes = cw.n
	return info, nil
}

func (e *Engine) writeStaged(ctx context.Context, sw *snapshot.Writer, staged []kvPair) error {
	for _, kv := range staged {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sw.Add(kv.key, kv.value); err != nil {
			return err
		}
	}
	return nil
}

// Restore writes every entry of the snapshot read from r into the engine.
// Existing keys are overwritten; keys absent from the snapshot are kept.
// A damaged or truncated snapshot returns ErrCorruptSnapshot, possibly after
// some entries were already written.
func (e *Engine) Restore(ctx context.Context, r io.Reader) (info RestoreInfo, err error) {
	start := time.Now()
	defer func() {
		info.Duration = time.Since(start)
		e.opts.logger.LogRestore(ctx, info.Entries, info.Duration, err)
	}()

	if e.closed.Load() {
		return info, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return info, err
	}

	rc := e.opts.resources
	if err := rc.AcquireBackground(ctx); err != nil {
		return info, err
	}
	defer rc.ReleaseBackground()

	if rc.Config().IOLimitBytesPerSec > 0 {
		r = resource.NewRateLimitedReader(ctx, r, rc)
	}

	sr, err := snapshot.NewReader(r)
	if err != nil {
		return info, err
	}
	defer sr.Close()
	info.Compression = sr.Compression()

	for {
		if err := ctx.Err(); err != nil {
			return info, err
		}
		key, value, err := sr.Next()
		if errors.Is(err, io.EOF) {
			return info, nil
		}
		if err != nil {
			return info, err
		}
		if err := e.Write(key, value); err != nil {
			return info, fmt.Errorf("restore entry %d: %w", info.Entries, err)
		}
		info.Entries++
	}
}

// BackupTo writes a backup into store under name. The blob is only
// published when the backup completes; on failure it is discarded.
func (e *Engine) BackupTo(ctx context.Context, store blobstore.BlobStore, name string, optFns ...BackupOption) (BackupInfo, error) {
	w, err := store.Create(ctx, name)
	if err != nil {
		return BackupInfo{}, &IOError{Op: "create backup", Partition: -1, Path: name, Err: err}
	}

	info, err := e.Backup(ctx, w, optFns...)
	if err != nil {
		_ = blobstore.Abort(w)
		return info, err
	}
	if err := w.Sync(); err != nil {
		_ = blobstore.Abort(w)
		return info, &IOError{Op: "sync backup", Partition: -1, Path: name, Err: err}
	}
	if err := w.Close(); err != nil {
		return info, &IOError{Op: "close backup", Partition: -1, Path: name, Err: err}
	}
	return info, nil
}

// RestoreFrom restores the backup stored in store under name.
func (e *Engine) RestoreFrom(ctx context.Context, store blobstore.BlobStore, name string) (RestoreInfo, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return RestoreInfo{}, &IOError{Op: "open backup", Partition: -1, Path: name, Err: err}
	}
	defer b.Close()

	return e.Restore(ctx, blobstore.NewReader(b))
}
