// Package bufferpool implements the bounded, fixed-capacity buffer pools
// that give a pipeline its backpressure: a fixed number of same-sized
// buffers circulate between borrowers and redeemers, and a borrower blocks
// (logging a warning and retrying) whenever the pool is momentarily empty
// rather than growing unbounded memory use.
package bufferpool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aegroto/remotia-go/frame"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// defaultBorrowTimeout is how long Borrow waits for a free buffer before
// logging a warning and trying again. Borrow never gives up on its own; see
// Option WithBorrowTimeout to change the interval.
const defaultBorrowTimeout = 1000 * time.Millisecond

// Pool hands out fixed-size byte buffers from a fixed-capacity free list.
// The number of buffers in the free list plus the number currently checked
// out to borrowers is invariant: it never changes after NewPool.
type Pool struct {
	tag     string
	size    int
	timeout time.Duration
	logger  zerolog.Logger

	free chan *frame.Buffer

	mu          sync.Mutex
	outstanding map[*frame.Buffer]bool
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithBorrowTimeout overrides the default 1000ms borrow retry interval.
func WithBorrowTimeout(d time.Duration) Option {
	return func(p *Pool) { p.timeout = d }
}

// WithLogger overrides the pool's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pool) { p.logger = logger }
}

// NewPool allocates count buffers of size bytes each and returns a Pool
// ready to lend them out. tag identifies the pool in log lines.
func NewPool(tag string, count, size int, opts ...Option) *Pool {
	p := &Pool{
		tag:         tag,
		size:        size,
		timeout:     defaultBorrowTimeout,
		outstanding: make(map[*frame.Buffer]bool, count),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With().Str("pool", tag).Logger()

	p.free = make(chan *frame.Buffer, count)
	for i := 0; i < count; i++ {
		p.free <- frame.NewBuffer(size)
	}

	p.logger.Debug().
		Int("count", count).
		Str("bufferSize", humanize.Bytes(uint64(size))).
		Msg("buffer pool ready")

	return p
}

// Tag returns the pool's name.
func (p *Pool) Tag() string {
	return p.tag
}

// Size returns the fixed byte size of every buffer this pool manages.
func (p *Pool) Size() int {
	return p.size
}

// Capacity returns the total number of buffers this pool owns, free or
// outstanding.
func (p *Pool) Capacity() int {
	return cap(p.free)
}

// Borrow blocks until a buffer is available and gives up only when ctx is
// done: every timeout interval with no free buffer it logs a warning and
// keeps waiting, since a buffer pool that gave up would stall the pipeline
// anyway. Borrow returns nil only if ctx is done; callers such as Borrower
// turn that into frame.NoAvailableBuffers on the record.
func (p *Pool) Borrow(ctx context.Context) *frame.Buffer {
	for {
		select {
		case buf := <-p.free:
			buf.Ready()
			p.markOutstanding(buf)
			return buf
		case <-ctx.Done():
			return nil
		case <-time.After(p.timeout):
			p.logger.Warn().
				Dur("waited", p.timeout).
				Msg("timed out waiting for a free buffer, retrying")
		}
	}
}

// Redeem returns buf to the pool, resetting it to zero length. It panics if
// buf was not currently borrowed from this pool: a redeem of an unknown or
// already-redeemed buffer means the pool's conservation invariant has
// already been broken elsewhere.
func (p *Pool) Redeem(buf *frame.Buffer) {
	if !p.clearOutstanding(buf) {
		panic(fmt.Sprintf("bufferpool: redeem of buffer not borrowed from pool %q", p.tag))
	}
	buf.Reset()
	p.free <- buf
}

// SoftRedeem returns buf to the pool like Redeem, but silently does nothing
// if buf is nil or was not borrowed from this pool. Used where a buffer's
// presence is already conditional, e.g. redeeming a record's buffer slot
// that may or may not have been populated on a given path.
func (p *Pool) SoftRedeem(buf *frame.Buffer) {
	if buf == nil {
		return
	}
	if !p.clearOutstanding(buf) {
		return
	}
	buf.Reset()
	p.free <- buf
}

func (p *Pool) markOutstanding(buf *frame.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outstanding[buf] = true
}

func (p *Pool) clearOutstanding(buf *frame.Buffer) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.outstanding[buf] {
		return false
	}
	delete(p.outstanding, buf)
	return true
}
