package logging

import (
	"context"

	"github.com/aegroto/remotia-go/frame"
	"github.com/rs/zerolog"
)

// Printer logs every record it sees at debug level, one line per record,
// with the given keys as structured fields. Useful while wiring a new
// pipeline together; too noisy for steady-state operation.
type Printer struct {
	logger zerolog.Logger
	keys   []frame.Key
}

// NewPrinter builds a Printer logging keys from every record it sees.
func NewPrinter(logger zerolog.Logger, keys ...frame.Key) *Printer {
	return &Printer{logger: logger, keys: keys}
}

// Process logs rec and passes it through unchanged.
func (p *Printer) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	event := p.logger.Debug()
	for _, key := range p.keys {
		if v, ok := rec.Get(key); ok {
			event = event.Uint64(string(key), v)
		}
	}
	if err := rec.Err(); err != nil {
		event = event.Err(err)
	}
	event.Msg("record")
	return rec, true
}
