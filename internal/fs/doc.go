// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: An append-only handle with write, sync and stat
//   - [FileSystem]: Abstracts filesystem operations (open, remove, rename, etc.)
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (failed opens, failed or
//     short writes, failed syncs)
//
// # Direct I/O
//
// [O_DIRECT] is the platform's direct I/O open flag (zero where unsupported).
// Callers that request it must fall back to buffered I/O when
// [IsDirectIOUnsupported] reports that the underlying file system refused it.
//
// # Usage
//
// Production code should use fs.Default (which is [LocalFS]):
//
//	file, err := fs.Default.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE|fs.O_DIRECT, 0644)
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("/61", fs.Fault{FailAfterBytes: 4096})
//	// hand ffs to the engine through its file system test hook
//
// This package intentionally does NOT include context.Context parameters.
// Filesystem operations are non-interruptible at the syscall level.
package fs
