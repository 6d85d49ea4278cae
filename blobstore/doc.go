// Package blobstore provides the storage abstraction pagekv backups are
// written to and restored from.
//
// A backup is a single immutable blob. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local file system, written atomically, read through mmap
//   - MemoryStore: in-process map, for tests and ephemeral copies
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)            // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Create for streaming writes
//	    Put(ctx, name, data) error               // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// A blob becomes visible under its name only once its WritableBlob is closed
// successfully.
package blobstore
