package pagekv

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pagekv/internal/mmap"
	"github.com/hupe1980/pagekv/internal/wal"
)

// recover rebuilds every partition index from its log. Partitions are
// replayed concurrently; each goroutine touches only its own store.
func (e *Engine) recover(ctx context.Context) (err error) {
	start := time.Now()

	var (
		partitions atomic.Int64
		records    atomic.Int64
	)
	defer func() {
		d := time.Since(start)
		e.opts.logger.LogRecovery(ctx, int(partitions.Load()), int(records.Load()), d, err)
		e.opts.metricsCollector.RecordRecovery(d, int(partitions.Load()), int(records.Load()), err)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.recoveryConcurrency)

	for id := range e.parts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			n, replayed, err := e.recoverPartition(gctx, id)
			if err != nil {
				if e.opts.recoveryPolicy == RecoverySkip {
					e.opts.logger.LogPartitionRecovery(gctx, id, 0, 0, err)
					return nil
				}
				return err
			}
			if replayed {
				partitions.Add(1)
				records.Add(int64(n))
			}
			return nil
		})
	}
	return g.Wait()
}

// recoverPartition replays one log. It reports false when there was nothing
// to replay.
func (e *Engine) recoverPartition(ctx context.Context, id int) (int, bool, error) {
	path := e.logPath(id)

	fi, err := e.opts.fs.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, &IOError{Op: "stat", Partition: id, Path: path, Err: err}
	}
	if fi.Mode().IsRegular() && fi.Size() == 0 {
		return 0, false, nil
	}

	m, err := e.opts.mapLog(path)
	if err != nil {
		return 0, false, &IOError{Op: "mmap", Partition: id, Path: path, Err: err}
	}
	_ = m.Advise(mmap.Sequential)

	data := m.Bytes()
	size := m.Len()
	records := e.parts[id].Replay(data)
	valid := int64(wal.ValidPrefix(data))

	// The index holds copies, so the mapping can go before the file shrinks.
	if err := m.Close(); err != nil {
		return 0, false, &IOError{Op: "munmap", Partition: id, Path: path, Err: err}
	}

	if valid < size {
		e.opts.logger.LogTornTail(ctx, id, valid, size, e.opts.repairTornTail)
		if e.opts.repairTornTail {
			if err := wal.Truncate(e.opts.fs, path, valid); err != nil {
				return 0, false, &IOError{Op: "truncate", Partition: id, Path: path, Err: err}
			}
			size = valid
		}
	}

	e.opts.logger.LogPartitionRecovery(ctx, id, records, size, nil)
	return records, true, nil
}
