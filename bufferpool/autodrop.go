package bufferpool

import (
	"context"
	"sync"

	"github.com/aegroto/remotia-go/frame"
)

// AutoBuffer wraps a borrowed buffer with guarded, idempotent redemption: a
// processor that receives one back from the pipeline (e.g. through an
// error-switch's off-path destination) can call Redeem without needing to
// know whether some earlier path already redeemed it.
type AutoBuffer struct {
	pool *AutoPool
	buf  *frame.Buffer

	mu       sync.Mutex
	redeemed bool
}

// Buffer returns the wrapped buffer. Calling it after Redeem returns a
// buffer that has already been reset and may be concurrently re-borrowed;
// callers must not do so.
func (a *AutoBuffer) Buffer() *frame.Buffer {
	return a.buf
}

// Redeem returns the buffer to its pool. A second or later call is a no-op.
func (a *AutoBuffer) Redeem() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.redeemed {
		return
	}
	a.redeemed = true
	a.pool.Pool.SoftRedeem(a.buf)
}

// AutoPool wraps Pool, handing out AutoBuffer instead of raw buffers so
// callers cannot accidentally double-redeem. It is the pool used by
// components whose buffer lifetime is harder to reason about linearly, e.g.
// a buffer that may flow down either branch of an error switch.
type AutoPool struct {
	*Pool
}

// NewAutoPool wraps an existing Pool.
func NewAutoPool(p *Pool) *AutoPool {
	return &AutoPool{Pool: p}
}

// BorrowAuto borrows a buffer and wraps it for guarded redemption.
func (p *AutoPool) BorrowAuto(ctx context.Context) *AutoBuffer {
	buf := p.Pool.Borrow(ctx)
	if buf == nil {
		return nil
	}
	return &AutoBuffer{pool: p, buf: buf}
}
