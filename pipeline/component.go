package pipeline

import (
	"context"

	"github.com/aegroto/remotia-go/frame"
	"github.com/aegroto/remotia-go/processor"
	"github.com/rs/zerolog"
)

// Component is one task in a pipeline: it receives a record from its
// receiver channel (or synthesizes an empty one if it has none, i.e. it is
// the pipeline's head), runs its processors in order, and sends the
// surviving record to its sender channel (if any).
type Component struct {
	tag        string
	processors []processor.Processor
	receiver   *unboundedChan[*frame.Record]
	sender     *unboundedChan[*frame.Record]
	logger     zerolog.Logger
}

// newComponent builds an unbound, unlinked component. bind() wires its
// receiver/sender before Run starts the pipeline.
func newComponent(tag string, logger zerolog.Logger) *Component {
	return &Component{
		tag:    tag,
		logger: logger.With().Str("component", tag).Logger(),
	}
}

// Append adds p to the end of this component's processor chain and returns
// the component, so chains can be built fluently.
func (c *Component) Append(p processor.Processor) *Component {
	c.processors = append(c.processors, p)
	return c
}

// Tag returns the component's name, used in log lines and error messages.
func (c *Component) Tag() string {
	return c.tag
}

// launch runs the component's receive/process/send loop until ctx is
// cancelled, returning nil: cancellation is always the intentional
// shutdown path, never an error. A component with a receiver that observes
// it closed without ctx being the cause panics with a tagged message
// instead: per the runtime's cancellation model, graceful shutdown is by
// context cancellation alone, so an upstream channel closing on its own is
// a fatal invariant violation, not a normal exit. A component with no
// receiver is a pipeline's head with no feeder attached; it synthesizes a
// fresh record every iteration (see Pipeline.bind).
func (c *Component) launch(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		var rec *frame.Record
		if c.receiver != nil {
			v, ok := c.receiver.Recv(ctx)
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				panic("pipeline: component " + c.tag + " observed a closed upstream channel")
			}
			rec = v
		} else {
			rec = frame.New()
		}

		current := rec
		keep := true
		for _, p := range c.processors {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			current, keep = p.Process(ctx, current)
			if !keep {
				break
			}
		}

		if !keep {
			continue
		}

		if c.sender != nil {
			c.sender.Send(current)
		}
	}
}
