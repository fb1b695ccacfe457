// Package pipeline implements the component chain that moves frame records
// from a source to a sink: an ordered list of Components connected by
// unbounded channels, run as a cooperative group of goroutines.
package pipeline

import (
	"context"

	"github.com/aegroto/remotia-go/frame"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Pipeline is an ordered chain of Components. Components are linked
// head-to-tail by unbounded channels the first time Run is called; after
// that the chain is fixed. A pipeline with zero components is valid and
// simply does nothing when run.
type Pipeline struct {
	id         uuid.UUID
	tag        string
	components []*Component
	logger     zerolog.Logger

	bound    bool
	feedable bool
	feedChan *unboundedChan[*frame.Record]

	cancel context.CancelFunc
}

// New returns an empty, untagged pipeline logging through logger.
func New(logger zerolog.Logger) *Pipeline {
	return &Pipeline{id: uuid.New(), logger: logger}
}

// ID returns the pipeline's unique instance identifier, assigned at
// construction and stable for its lifetime.
func (p *Pipeline) ID() uuid.UUID {
	return p.id
}

// Tag sets the pipeline's name, used in log lines, and returns the pipeline
// for fluent construction.
func (p *Pipeline) Tag(tag string) *Pipeline {
	p.tag = tag
	p.logger = p.logger.With().Str("pipeline", tag).Logger()
	return p
}

// Link appends a new, empty component named tag to the pipeline and returns
// it so its processor chain can be built fluently.
func (p *Pipeline) Link(tag string) *Component {
	c := newComponent(tag, p.logger)
	p.components = append(p.components, c)
	return c
}

// Feedable marks the pipeline's first component as externally fed: instead
// of synthesizing a fresh record per iteration, it blocks on a dedicated
// channel that GetFeeder exposes. Must be called before Run. Feedable is
// idempotent and independent of Link ordering: a caller may request a
// feeder before or after building the rest of the chain.
func (p *Pipeline) Feedable() *Pipeline {
	p.feedable = true
	return p
}

// bind wires components[i].sender to components[i+1].receiver for every
// adjacent pair, and if the pipeline was marked Feedable, assigns the feed
// channel as components[0]'s receiver. It intentionally never touches
// components[0]'s receiver when the pipeline is not feedable, so a
// non-feedable pipeline's head keeps synthesizing its own records. bind runs
// at most once.
func (p *Pipeline) bind() {
	if p.bound {
		return
	}
	p.bound = true

	if p.feedable {
		if p.feedChan == nil {
			p.feedChan = newUnboundedChan[*frame.Record]()
		}
		if len(p.components) > 0 {
			p.components[0].receiver = p.feedChan
		}
	}

	for i := 0; i+1 < len(p.components); i++ {
		ch := newUnboundedChan[*frame.Record]()
		p.components[i].sender = ch
		p.components[i+1].receiver = ch
	}
}

// makeFeedable lazily allocates the feed channel so GetFeeder can be called
// safely before bind (i.e. before the first Run), regardless of whether
// Feedable was already requested.
func (p *Pipeline) makeFeedable() *unboundedChan[*frame.Record] {
	p.feedable = true
	if p.feedChan == nil {
		p.feedChan = newUnboundedChan[*frame.Record]()
	}
	return p.feedChan
}

// GetFeeder returns a cheap, cloneable handle that injects records into this
// pipeline's head. Called before Run, it makes the pipeline feedable. Called
// after Run, it returns a working feeder only if the pipeline was already
// feedable when Run bound it; otherwise the head keeps synthesizing its own
// records and nothing reads the returned feeder's channel.
func (p *Pipeline) GetFeeder() *Feeder {
	return &Feeder{sender: p.makeFeedable()}
}

// Run binds the pipeline (on first call) and launches every component as a
// task in group, returning immediately. Components run until ctx is
// cancelled (directly, or through Stop). Channel close is never the
// shutdown signal: a component that observes its upstream channel closed
// without ctx being cancelled treats it as a fatal invariant violation and
// panics.
func (p *Pipeline) Run(ctx context.Context, group *errgroup.Group) {
	p.bind()
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.logger.Info().Str("id", p.id.String()).Int("components", len(p.components)).Msg("starting pipeline")
	for _, c := range p.components {
		c := c
		group.Go(func() error {
			err := c.launch(runCtx)
			if err != nil {
				p.logger.Error().Err(err).Str("component", c.tag).Msg("component exited with error")
				return err
			}
			if runCtx.Err() != nil {
				p.logger.Info().Str("component", c.tag).Msg("component stopped")
			}
			return nil
		})
	}
}

// Stop cancels this pipeline's run context, the intentional shutdown path
// every component observes via context cancellation rather than a closed
// channel. A no-op if Run has not been called yet.
func (p *Pipeline) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
}
