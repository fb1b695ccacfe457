package processor

import (
	"context"
	"time"

	"github.com/aegroto/remotia-go/frame"
)

// Ticker paces a component against a fixed period: each call blocks until
// the next tick before passing the record through unchanged. It strictly
// delays and never reorders records.
type Ticker struct {
	ticker *time.Ticker
}

// NewTicker builds a Ticker with the given period. Its phase is fixed at
// construction time, matching the original source's interval semantics.
func NewTicker(period time.Duration) *Ticker {
	return &Ticker{ticker: time.NewTicker(period)}
}

// Process waits for the next tick, then passes the record through.
func (t *Ticker) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	select {
	case <-t.ticker.C:
	case <-ctx.Done():
	}
	return rec, true
}

// Stop releases the underlying time.Ticker's resources.
func (t *Ticker) Stop() {
	t.ticker.Stop()
}
