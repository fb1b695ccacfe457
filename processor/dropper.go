package processor

import (
	"context"
	"math/rand"
	"time"

	"github.com/aegroto/remotia-go/frame"
)

// ThresholdDropper reports err into the record's error slot when the value
// under key exceeds threshold. It never drops the record outright — a
// downstream error-switch is expected to route it off the main path.
type ThresholdDropper struct {
	key       frame.Key
	threshold uint64
	err       error
}

// NewThresholdDropper builds a ThresholdDropper comparing key against
// threshold, reporting err when it is exceeded.
func NewThresholdDropper(key frame.Key, threshold uint64, err error) *ThresholdDropper {
	return &ThresholdDropper{key: key, threshold: threshold, err: err}
}

// Process compares the record's key value against the threshold.
func (d *ThresholdDropper) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	if v, ok := rec.Get(d.key); ok && v > d.threshold {
		rec.ReportError(d.err)
	}
	return rec, true
}

// TimestampDropper maintains the last-seen value of key across calls; any
// record whose value is lower than the last seen is reported (not dropped)
// with err, since late/out-of-order timestamps usually indicate a stale
// frame that arrived behind one already processed.
type TimestampDropper struct {
	key            frame.Key
	err            error
	lastTimestamp  uint64
	sawFirstRecord bool
}

// NewTimestampDropper builds a TimestampDropper comparing key across calls.
func NewTimestampDropper(key frame.Key, err error) *TimestampDropper {
	return &TimestampDropper{key: key, err: err}
}

// Process compares the record's timestamp against the last one seen.
func (d *TimestampDropper) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	v, ok := rec.Get(d.key)
	if !ok {
		return rec, true
	}

	if d.sawFirstRecord && v < d.lastTimestamp {
		rec.ReportError(d.err)
		return rec, true
	}

	d.lastTimestamp = v
	d.sawFirstRecord = true
	return rec, true
}

// RandomDropper drops a record with fixed probability p, independent of any
// record content. Useful to simulate lossy links or thin out a stream.
type RandomDropper struct {
	probability float32
	rng         *rand.Rand
}

// NewRandomDropper builds a RandomDropper dropping with probability p
// (0 never drops, 1 always drops).
func NewRandomDropper(p float32) *RandomDropper {
	return &RandomDropper{probability: p, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededRandomDropper builds a RandomDropper with a fixed seed, for
// reproducible tests.
func NewSeededRandomDropper(p float32, seed int64) *RandomDropper {
	return &RandomDropper{probability: p, rng: rand.New(rand.NewSource(seed))}
}

// Process drops the record with probability p.
func (d *RandomDropper) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	if d.rng.Float32() < d.probability {
		return nil, false
	}
	return rec, true
}
