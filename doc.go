// Package pagekv provides an embedded, persistent key-value storage engine for Go.
//
// pagekv stores opaque byte keys and values in 256 append-only partition logs,
// one per possible first key byte, and keeps an ordered in-memory index per
// partition. Records are padded to the page size and written with direct I/O
// where the file system allows it.
//
// # Quick Start
//
//	db, err := pagekv.Open("./data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	_ = db.Write([]byte("user:42"), []byte(`{"name":"ada"}`))
//
//	v, err := db.Read([]byte("user:42"))
//	if errors.Is(err, pagekv.ErrNotFound) {
//	    // never written
//	}
//
// # Range Scans
//
// Range visits every key in [lower, upper) in ascending byte order. An empty
// bound is open:
//
//	_ = db.Range([]byte("user:"), []byte("user;"), pagekv.VisitorFunc(func(k, v []byte) {
//	    fmt.Printf("%s=%s\n", k, v)
//	}))
//
//	for k, v := range db.Scan(nil, nil) {
//	    fmt.Printf("%s=%s\n", k, v)
//	}
//
// A scan holds one partition's read lock at a time, so each partition is seen
// at a single point in time but a scan spanning several partitions may observe
// writes that happen while it runs. Visitors must not write to the engine.
//
// # Durability Model
//
// Write returns once the record was handed to the file system (with direct
// I/O, to the device). A crash may drop the tail of a log; the next Open
// replays every complete record and cuts the rest:
//
//	db, _ := pagekv.Open(dir, pagekv.WithDurability(pagekv.DurabilitySync)) // fdatasync per write
//	_ = db.Sync()                                                            // or flush on demand
//
// The last write of a key wins, including across restarts. Superseded records
// stay in the log; there is no compaction.
//
// # Concurrency
//
// Each partition has its own read/write lock. Writes to keys with different
// first bytes never contend; reads and scans share the lock. The engine is
// safe for use from many goroutines.
//
// # Backups
//
// Backup streams a compressed, checksummed copy of every entry to an
// io.Writer or a blobstore.BlobStore (local disk, S3, MinIO):
//
//	info, err := db.BackupTo(ctx, blobstore.NewLocalStore("/backups"), "nightly.pkv",
//	    pagekv.WithBackupCompression(pagekv.CompressionZstd))
//
// # Observability
//
// Structured logging goes through log/slog (see WithLogger) and operation
// metrics through a MetricsCollector; NewVictoriaMetricsCollector exports them
// in the Prometheus text format.
package pagekv
