//go:build !linux

package fs

// O_DIRECT is a no-op outside Linux.
const O_DIRECT = 0

// DirectIOSupported reports whether O_DIRECT is available on this platform.
const DirectIOSupported = false

// IsDirectIOUnsupported always returns false where O_DIRECT is never requested.
func IsDirectIOUnsupported(error) bool {
	return false
}

// Datasync is Sync on platforms without fdatasync(2).
func Datasync(f File) error {
	return f.Sync()
}
