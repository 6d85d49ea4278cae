// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Direct I/O requires the user buffer to start on a block boundary. AllocAligned
// over-allocates a Go slice and re-slices it so that its first byte sits on the
// requested power-of-two boundary; the Go runtime keeps the backing array alive,
// so there is nothing to free by hand.
//
// # Buffer Pool
//
// BufferPool hands out aligned buffers with exclusive ownership. A goroutine
// that calls Get owns the buffer until it calls Put, which makes it safe to use
// as per-call staging space without any locking.
package mem
