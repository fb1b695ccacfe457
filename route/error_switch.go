// Package route implements the routing switches that move a frame record
// off its pipeline's main path: to an error-handling pipeline, to a cloned
// destination, or to one of a pool of worker pipelines.
package route

import (
	"context"

	"github.com/aegroto/remotia-go/frame"
	"github.com/aegroto/remotia-go/pipeline"
)

// OnErrorSwitch routes a record with a reported error to a destination
// pipeline instead of letting it continue down the main path. If detected
// is non-empty, only errors matching one of its entries are routed; any
// other error (or no error at all) passes the record through unchanged.
type OnErrorSwitch struct {
	feeder   *pipeline.Feeder
	detected []error
}

// NewOnErrorSwitch routes every errored record to dest.
func NewOnErrorSwitch(dest *pipeline.Pipeline) *OnErrorSwitch {
	return &OnErrorSwitch{feeder: dest.GetFeeder()}
}

// NewOnErrorSwitchFor routes only records whose error matches one of
// detected to dest; all other records, errored or not, pass through.
func NewOnErrorSwitchFor(dest *pipeline.Pipeline, detected ...error) *OnErrorSwitch {
	return &OnErrorSwitch{feeder: dest.GetFeeder(), detected: detected}
}

// Process routes rec to the destination pipeline and drops it from the
// caller's path if its error slot matches, otherwise passes it through.
func (s *OnErrorSwitch) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	err := rec.Err()
	if err == nil {
		return rec, true
	}
	if len(s.detected) > 0 && !matches(err, s.detected) {
		return rec, true
	}
	s.feeder.Feed(rec)
	return nil, false
}

func matches(err error, candidates []error) bool {
	for _, c := range candidates {
		if err == c {
			return true
		}
	}
	return false
}
