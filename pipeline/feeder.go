package pipeline

import "github.com/aegroto/remotia-go/frame"

// Feeder is a cheap, cloneable handle that injects records into a single
// pipeline's head. Multiple feeders obtained from the same pipeline (or
// copies of the same Feeder value) share the same underlying channel and are
// safe to use concurrently from separate goroutines.
type Feeder struct {
	sender *unboundedChan[*frame.Record]
}

// Feed hands rec to the pipeline's head component. Feed never blocks.
func (f *Feeder) Feed(rec *frame.Record) {
	f.sender.Send(rec)
}
