package pagekv

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/hupe1980/pagekv/internal/fs"
	"github.com/hupe1980/pagekv/internal/mmap"
	"github.com/hupe1980/pagekv/internal/wal"
	"github.com/hupe1980/pagekv/resource"
)

// Durability controls when appended records reach stable storage.
type Durability = wal.Durability

const (
	// DurabilityAsync leaves flushing to the OS (or the device, with direct
	// I/O). Call Sync to force it.
	DurabilityAsync = wal.DurabilityAsync
	// DurabilitySync fdatasyncs the partition log after every Write.
	DurabilitySync = wal.DurabilitySync
)

// RecoveryPolicy decides what Open does with a partition log that exists but
// cannot be read.
type RecoveryPolicy int

const (
	// RecoveryAbort makes Open fail.
	RecoveryAbort RecoveryPolicy = iota
	// RecoverySkip starts the partition empty and logs a warning.
	RecoverySkip
)

func (p RecoveryPolicy) String() string {
	switch p {
	case RecoveryAbort:
		return "abort"
	case RecoverySkip:
		return "skip"
	default:
		return fmt.Sprintf("RecoveryPolicy(%d)", int(p))
	}
}

type options struct {
	logger              *Logger
	metricsCollector    MetricsCollector
	directIO            bool
	durability          Durability
	pageSize            int
	recoveryPolicy      RecoveryPolicy
	recoveryConcurrency int
	repairTornTail      bool
	fs                  fs.FileSystem
	mapLog              func(path string) (*mmap.Mapping, error)
	resources           *resource.Controller
}

// Option configures Open.
type Option func(*options)

func defaultOptions() options {
	return options{
		directIO:            true,
		durability:          DurabilityAsync,
		pageSize:            os.Getpagesize(),
		recoveryPolicy:      RecoveryAbort,
		recoveryConcurrency: runtime.GOMAXPROCS(0),
		repairTornTail:      true,
		fs:                  fs.Default,
		mapLog:              mmap.Open,
	}
}

func applyOptions(optFns []Option) (options, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.fs == nil {
		o.fs = fs.Default
	}
	if o.mapLog == nil {
		o.mapLog = mmap.Open
	}
	if o.recoveryConcurrency <= 0 {
		o.recoveryConcurrency = 1
	}
	if o.pageSize < 512 || o.pageSize&(o.pageSize-1) != 0 {
		return o, invalidArgument("page size %d is not a power of two >= 512", o.pageSize)
	}
	// O_DIRECT needs transfers aligned to the device block size, which a
	// smaller record padding cannot guarantee.
	if o.pageSize%os.Getpagesize() != 0 {
		o.directIO = false
	}
	return o, nil
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pagekv.NewJSONLogger(slog.LevelInfo)
//	db, _ := pagekv.Open(dir, pagekv.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pagekv.BasicMetricsCollector{}
//	db, _ := pagekv.Open(dir, pagekv.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
//	fmt.Printf("Writes: %d, Avg latency: %dns\n", stats.WriteCount, stats.WriteAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithDirectIO toggles O_DIRECT for partition logs (default true). File
// systems that refuse O_DIRECT fall back to buffered writes either way.
func WithDirectIO(enabled bool) Option {
	return func(o *options) {
		o.directIO = enabled
	}
}

// WithDurability sets when writes are flushed to stable storage
// (default DurabilityAsync).
func WithDurability(d Durability) Option {
	return func(o *options) {
		o.durability = d
	}
}

// WithPageSize overrides the record alignment, which defaults to the OS page
// size. It must be a power of two of at least 512. A directory must always be
// opened with the page size it was written with. Mostly useful in tests.
func WithPageSize(size int) Option {
	return func(o *options) {
		o.pageSize = size
	}
}

// WithRecoveryPolicy sets what Open does with unreadable partition logs
// (default RecoveryAbort).
func WithRecoveryPolicy(p RecoveryPolicy) Option {
	return func(o *options) {
		o.recoveryPolicy = p
	}
}

// WithRecoveryConcurrency bounds how many partitions Open replays in parallel
// (default GOMAXPROCS).
func WithRecoveryConcurrency(n int) Option {
	return func(o *options) {
		o.recoveryConcurrency = n
	}
}

// WithRepairTornTail controls whether Open truncates the incomplete record an
// interrupted write left at the end of a partition log (default true). When
// disabled the bytes stay in place and every record appended after them is
// unreachable on the next Open.
func WithRepairTornTail(enabled bool) Option {
	return func(o *options) {
		o.repairTornTail = enabled
	}
}

// WithResourceController bounds backup and restore jobs: concurrency, staged
// memory and IO rate.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// withFileSystem swaps the file system partition logs are written through.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// withLogMapper swaps how recovery maps partition logs into memory.
func withLogMapper(fn func(path string) (*mmap.Mapping, error)) Option {
	return func(o *options) {
		o.mapLog = fn
	}
}
