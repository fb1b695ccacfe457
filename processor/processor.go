// Package processor provides the processor contract and the primitive
// building blocks every component chains together: tickers, closures,
// timestamp helpers, key checks and frame droppers.
package processor

import (
	"context"

	"github.com/aegroto/remotia-go/frame"
)

// Processor transforms or drops one frame record at a time. A false second
// return value means the record is dropped: it must not be passed to any
// later processor in the same component, nor sent downstream.
type Processor interface {
	Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool)
}

// Func adapts a plain function to the Processor interface.
type Func func(ctx context.Context, rec *frame.Record) (*frame.Record, bool)

// Process calls fn.
func (fn Func) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	return fn(ctx, rec)
}
