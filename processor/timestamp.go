package processor

import (
	"context"
	"time"

	"github.com/aegroto/remotia-go/frame"
)

// nowMillis returns wall-clock milliseconds since the Unix epoch, the single
// monotonic-in-practice wall-clock source every timestamp processor shares.
// Two consecutive records may legitimately receive equal timestamps.
func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}

// TimestampAdder sets key to the current wall-clock millisecond count.
type TimestampAdder struct {
	key frame.Key
}

// NewTimestampAdder builds a TimestampAdder for key.
func NewTimestampAdder(key frame.Key) *TimestampAdder {
	return &TimestampAdder{key: key}
}

// Process stamps the record and passes it through.
func (t *TimestampAdder) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	rec.Set(t.key, nowMillis())
	return rec, true
}

// TimestampDiff sets diffKey to now-minus-sourceKey, typically used right
// after a TimestampAdder to measure elapsed time for a processing stage.
type TimestampDiff struct {
	sourceKey frame.Key
	diffKey   frame.Key
}

// NewTimestampDiff builds a TimestampDiff reading sourceKey and writing
// diffKey.
func NewTimestampDiff(sourceKey, diffKey frame.Key) *TimestampDiff {
	return &TimestampDiff{sourceKey: sourceKey, diffKey: diffKey}
}

// Process computes now - get(sourceKey) and stores it under diffKey. If
// sourceKey is absent the record passes through unmodified.
func (t *TimestampDiff) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	source, ok := rec.Get(t.sourceKey)
	if !ok {
		return rec, true
	}
	now := nowMillis()
	var diff uint64
	if now > source {
		diff = now - source
	}
	rec.Set(t.diffKey, diff)
	return rec, true
}
