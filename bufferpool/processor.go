package bufferpool

import (
	"context"
	"fmt"

	"github.com/aegroto/remotia-go/frame"
)

// Borrower is a processor.Processor that borrows a buffer from a pool and
// pushes it into a record under Key, the Go-idiomatic rendition of the
// original's single-step BufferAllocator. It blocks (per Pool.Borrow) until
// a buffer is free or ctx is cancelled, in which case it reports
// frame.NoAvailableBuffers and drops the record rather than passing one
// through with no buffer attached.
type Borrower struct {
	pool *Pool
	key  frame.Key
}

// NewBorrower returns a Borrower drawing from pool and pushing under key.
func NewBorrower(pool *Pool, key frame.Key) *Borrower {
	return &Borrower{pool: pool, key: key}
}

// Process borrows a buffer and attaches it to rec under the Borrower's key.
func (b *Borrower) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	buf := b.pool.Borrow(ctx)
	if buf == nil {
		rec.ReportError(frame.NoAvailableBuffers)
		return rec, false
	}
	rec.Push(b.key, buf)
	return rec, true
}

// Redeemer is a processor.Processor that pulls a buffer out of a record
// under Key and returns it to a pool, panicking if the record carries no
// buffer under Key or (via Pool.Redeem) if the buffer was not borrowed from
// that pool. It is meant for the end of a
// buffer's lifetime on the happy path, once nothing downstream still needs
// it.
type Redeemer struct {
	pool *Pool
	key  frame.Key
}

// NewRedeemer returns a Redeemer returning buffers to pool from under key.
func NewRedeemer(pool *Pool, key frame.Key) *Redeemer {
	return &Redeemer{pool: pool, key: key}
}

// Process pulls rec's buffer under the Redeemer's key and redeems it. A
// record with no buffer under the key is a fatal invariant violation and
// panics with a tagged message.
func (r *Redeemer) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	buf, ok := rec.Pull(r.key)
	if !ok {
		panic(fmt.Sprintf("bufferpool: redeemer found no buffer under key %q for pool %q", r.key, r.pool.Tag()))
	}
	r.pool.Redeem(buf)
	return rec, true
}

// SoftRedeemer is a processor.Processor like Redeemer, but tolerant of a
// record that never carried a buffer under Key or whose buffer came from a
// different pool — the shape an off-path error-switch destination needs,
// since a record can reach it from more than one upstream state.
type SoftRedeemer struct {
	pool *Pool
	key  frame.Key
}

// NewSoftRedeemer returns a SoftRedeemer returning buffers to pool from
// under key, silently ignoring a missing or foreign buffer.
func NewSoftRedeemer(pool *Pool, key frame.Key) *SoftRedeemer {
	return &SoftRedeemer{pool: pool, key: key}
}

// Process pulls rec's buffer under the SoftRedeemer's key, if any, and soft
// redeems it.
func (s *SoftRedeemer) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	buf, ok := rec.Pull(s.key)
	if ok {
		s.pool.SoftRedeem(buf)
	}
	return rec, true
}
