package mem

import (
	"unsafe"
)

// DefaultAlignment is the alignment used when none is given (a typical page).
const DefaultAlignment = 4096

// AllocAligned allocates a byte slice of the given size whose first byte lies
// on an align-byte boundary. align must be a power of two; non-positive values
// select DefaultAlignment.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size, align int) []byte {
	if size <= 0 {
		return nil
	}
	if align <= 0 {
		align = DefaultAlignment
	}
	if align&(align-1) != 0 {
		panic("mem: alignment must be a power of two")
	}

	buf := make([]byte, size+align)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := int((uintptr(align) - (addr & uintptr(align-1))) & uintptr(align-1))

	return buf[offset : offset+size : offset+size]
}

// IsAligned reports whether the first byte of b lies on an align-byte boundary.
func IsAligned(b []byte, align int) bool {
	if len(b) == 0 {
		return true
	}
	addr := uintptr(unsafe.Pointer(&b[0])) //nolint:gosec // address inspection only
	return addr&uintptr(align-1) == 0
}

// RoundUp rounds n up to the next multiple of align (a power of two).
func RoundUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
