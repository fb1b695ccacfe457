package processor

import (
	"context"
	"time"

	"github.com/aegroto/remotia-go/frame"
)

// ProfiledSequential runs its children in order on a single record, then
// records the total elapsed wall-clock time under timeKey. A drop by any
// child propagates immediately: later children do not run and timeKey is not
// set.
type ProfiledSequential struct {
	timeKey  frame.Key
	children []Processor
}

// NewProfiledSequential builds a ProfiledSequential recording elapsed time
// under timeKey.
func NewProfiledSequential(timeKey frame.Key, children ...Processor) *ProfiledSequential {
	return &ProfiledSequential{timeKey: timeKey, children: children}
}

// Process runs each child in order, then (if the record survived) stamps
// timeKey with the elapsed milliseconds.
func (p *ProfiledSequential) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	start := time.Now()

	current := rec
	keep := true
	for _, child := range p.children {
		current, keep = child.Process(ctx, current)
		if !keep {
			return current, false
		}
	}

	current.Set(p.timeKey, uint64(time.Since(start).Milliseconds()))
	return current, true
}
