package route

import (
	"context"
	"math/rand"

	"github.com/aegroto/remotia-go/frame"
	"github.com/aegroto/remotia-go/pipeline"
)

// PoolTagKey is the scalar property a PoolingSwitch stamps with the index of
// the worker pipeline it chose, so a later DepoolingSwitch on the same
// record can route it back to the matching worker.
const PoolTagKey frame.Key = "route.pool_tag"

// PoolingSwitch fans a record out to one of a fixed set of worker
// pipelines, chosen at random, and stamps the choice under PoolTagKey
// before removing the record from the caller's path.
type PoolingSwitch struct {
	feeders []*pipeline.Feeder
	rng     *rand.Rand
}

// NewPoolingSwitch builds a PoolingSwitch fanning out across workers.
// It panics if workers is empty: a pooling switch with no destinations has
// nowhere to route records and is always a wiring bug.
func NewPoolingSwitch(workers ...*pipeline.Pipeline) *PoolingSwitch {
	if len(workers) == 0 {
		panic("route: pooling switch requires at least one worker pipeline")
	}
	feeders := make([]*pipeline.Feeder, len(workers))
	for i, w := range workers {
		feeders[i] = w.GetFeeder()
	}
	return &PoolingSwitch{feeders: feeders, rng: rand.New(rand.NewSource(1))}
}

// Process picks a worker at random, stamps its index on rec and feeds it
// there, removing rec from the caller's own path.
func (s *PoolingSwitch) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	idx := s.rng.Intn(len(s.feeders))
	rec.Set(PoolTagKey, uint64(idx))
	s.feeders[idx].Feed(rec)
	return nil, false
}

// DepoolingSwitch routes a record to whichever destination pipeline a prior
// PoolingSwitch tagged it for. A record with no PoolTagKey, or a tag outside
// the configured destination count, is reported with frame.NoAvailableBuffers
// and passed through on the caller's own path instead of being dropped, since
// silently discarding an untagged record would hide a wiring bug.
type DepoolingSwitch struct {
	feeders []*pipeline.Feeder
}

// NewDepoolingSwitch builds a DepoolingSwitch routing by PoolTagKey across
// destinations, in the same order a corresponding PoolingSwitch used.
func NewDepoolingSwitch(destinations ...*pipeline.Pipeline) *DepoolingSwitch {
	feeders := make([]*pipeline.Feeder, len(destinations))
	for i, d := range destinations {
		feeders[i] = d.GetFeeder()
	}
	return &DepoolingSwitch{feeders: feeders}
}

// Process routes rec by its PoolTagKey tag.
func (s *DepoolingSwitch) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	tag, ok := rec.Get(PoolTagKey)
	if !ok || int(tag) >= len(s.feeders) {
		rec.ReportError(frame.NoAvailableBuffers)
		return rec, true
	}
	s.feeders[tag].Feed(rec)
	return nil, false
}
