package resource

import (
	"context"
	"io"
)

// throttled charges every byte that passes through it against the IO budget
// of a Controller. Backups write through it and restores read through it.
type throttled struct {
	ctx context.Context
	rc  *Controller
	w   io.Writer
	r   io.Reader
}

// NewRateLimitedWriter returns a writer that waits for the IO budget of rc
// before handing p to w. A nil rc or one without an IO limit never waits.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) io.Writer {
	return &throttled{ctx: ctx, rc: rc, w: w}
}

// NewRateLimitedReader returns a reader that charges rc after each read.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) io.Reader {
	return &throttled{ctx: ctx, rc: rc, r: r}
}

func (t *throttled) Write(p []byte) (int, error) {
	if err := t.rc.AcquireIO(t.ctx, len(p)); err != nil {
		return 0, err
	}
	return t.w.Write(p)
}

// Read charges only the bytes actually delivered, so a large buffer does not
// stall on bytes the source never returns.
func (t *throttled) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		if werr := t.rc.AcquireIO(t.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
