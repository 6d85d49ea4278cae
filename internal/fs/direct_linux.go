//go:build linux

package fs

import (
	"errors"

	"golang.org/x/sys/unix"
)

// O_DIRECT bypasses the page cache. Buffers, offsets and lengths handed to a
// file opened with it must be aligned to the logical block size.
const O_DIRECT = unix.O_DIRECT

// DirectIOSupported reports whether O_DIRECT is available on this platform.
const DirectIOSupported = true

// IsDirectIOUnsupported reports whether err is the error a file system returns
// when it refuses O_DIRECT (tmpfs and several overlay file systems do).
func IsDirectIOUnsupported(err error) bool {
	return errors.Is(err, unix.EINVAL)
}

// Datasync flushes file data (not metadata that is not needed to read it back)
// to stable storage. Files that do not expose a descriptor fall back to Sync.
func Datasync(f File) error {
	if fd, ok := f.(interface{ Fd() uintptr }); ok {
		return unix.Fdatasync(int(fd.Fd()))
	}
	return f.Sync()
}
