package route

import (
	"context"

	"github.com/aegroto/remotia-go/frame"
	"github.com/aegroto/remotia-go/pipeline"
)

// CloneSwitch feeds a copy of every record it sees to a destination
// pipeline (typically a logging or stats pipeline) and always passes the
// original record through unchanged on the main path.
type CloneSwitch struct {
	feeder      *pipeline.Feeder
	withBuffers bool
}

// NewCloneSwitch clones only scalar properties and the error slot to dest,
// never buffers: the common case, since a cloned logging pipeline rarely
// needs pixel data and duplicating pooled buffers would break their
// pool's conservation invariant.
func NewCloneSwitch(dest *pipeline.Pipeline) *CloneSwitch {
	return &CloneSwitch{feeder: dest.GetFeeder()}
}

// NewFullCloneSwitch clones scalar properties, the error slot, and a fully
// independent copy of every buffer to dest. The cloned buffers belong to no
// pool; dest must not attempt to redeem them anywhere.
func NewFullCloneSwitch(dest *pipeline.Pipeline) *CloneSwitch {
	return &CloneSwitch{feeder: dest.GetFeeder(), withBuffers: true}
}

// Process feeds a clone to the destination and passes the original through.
func (s *CloneSwitch) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	var clone *frame.Record
	if s.withBuffers {
		clone = rec.Clone()
	} else {
		clone = rec.CloneWithoutBuffers()
	}
	s.feeder.Feed(clone)
	return rec, true
}
