package processor

import (
	"context"

	"github.com/aegroto/remotia-go/frame"
)

// Closure wraps a synchronous user function returning (record, keep) into a
// Processor. It is the Go-idiomatic equivalent of the original source's
// synchronous Closure processor.
type Closure struct {
	fn func(rec *frame.Record) (*frame.Record, bool)
}

// NewClosure builds a Closure processor from fn.
func NewClosure(fn func(rec *frame.Record) (*frame.Record, bool)) *Closure {
	return &Closure{fn: fn}
}

// Process invokes the wrapped function.
func (c *Closure) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	return c.fn(rec)
}

// AsyncClosure wraps a context-aware user function, the asynchronous flavor
// named in the spec for closures that need to perform I/O or otherwise
// suspend while transforming a record.
type AsyncClosure struct {
	fn func(ctx context.Context, rec *frame.Record) (*frame.Record, bool)
}

// NewAsyncClosure builds an AsyncClosure processor from fn.
func NewAsyncClosure(fn func(ctx context.Context, rec *frame.Record) (*frame.Record, bool)) *AsyncClosure {
	return &AsyncClosure{fn: fn}
}

// Process invokes the wrapped function.
func (c *AsyncClosure) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	return c.fn(ctx, rec)
}
