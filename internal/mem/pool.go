package mem

import "sync"

// MaxPooledSize is the largest buffer a BufferPool keeps for reuse. Larger
// buffers serve one call and are left to the garbage collector.
const MaxPooledSize = 8 << 20

// BufferPool is a pool of aligned byte buffers.
// It is safe for concurrent use; each buffer returned by Get is owned by the
// caller alone until it is handed back with Put.
type BufferPool struct {
	align int
	pool  sync.Pool
}

// NewBufferPool creates a pool whose buffers are aligned to align bytes.
func NewBufferPool(align int) *BufferPool {
	if align <= 0 {
		align = DefaultAlignment
	}
	return &BufferPool{align: align}
}

// Align returns the alignment of buffers handed out by the pool.
func (p *BufferPool) Align() int {
	return p.align
}

// Get returns an aligned buffer with len(buf) == n. The contents are undefined.
func (p *BufferPool) Get(n int) []byte {
	if n <= 0 {
		return nil
	}
	if v := p.pool.Get(); v != nil {
		buf := *(v.(*[]byte))
		if cap(buf) >= n {
			return buf[:n]
		}
	}
	return AllocAligned(RoundUp(n, p.align), p.align)[:n]
}

// Put returns buf to the pool. buf must have come from Get on the same pool and
// must not be used afterwards.
func (p *BufferPool) Put(buf []byte) {
	if cap(buf) == 0 || cap(buf) > MaxPooledSize {
		return
	}
	buf = buf[:cap(buf)]
	p.pool.Put(&buf)
}
