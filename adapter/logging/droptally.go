package logging

import (
	"context"
	"time"

	"github.com/aegroto/remotia-go/frame"
	"github.com/rs/zerolog"
)

// DropReasonLogger tallies how many records carried each tracked error
// within a rolling window and logs the counts once the window elapses. Like
// StatsLogger, it is meant to sit on an off-path destination fed by an
// error switch and always passes records through unchanged.
type DropReasonLogger struct {
	logger      zerolog.Logger
	tracked     []error
	roundLength time.Duration
	roundStart  time.Time
	counts      map[error]int
	total       int
}

// NewDropReasonLogger builds a DropReasonLogger tallying tracked errors over
// roundLength. If tracked is empty, every distinct error seen is tallied.
func NewDropReasonLogger(logger zerolog.Logger, roundLength time.Duration, tracked ...error) *DropReasonLogger {
	return &DropReasonLogger{
		logger:      logger,
		tracked:     tracked,
		roundLength: roundLength,
		roundStart:  time.Now(),
		counts:      make(map[error]int),
	}
}

// Process tallies rec's error, if any, and logs/resets the round once
// elapsed.
func (d *DropReasonLogger) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	if err := rec.Err(); err != nil {
		d.total++
		d.counts[err]++
	}

	if time.Since(d.roundStart) >= d.roundLength {
		d.printRound()
		d.resetRound()
	}

	return rec, true
}

func (d *DropReasonLogger) printRound() {
	event := d.logger.Info().Int("frames", d.total)

	if d.total == 0 {
		event.Msg("no errored frames this round")
		return
	}

	keys := d.tracked
	if len(keys) == 0 {
		for err := range d.counts {
			keys = append(keys, err)
		}
	}
	for _, err := range keys {
		event = event.Int(err.Error(), d.counts[err])
	}
	event.Msg("drop reasons")
}

func (d *DropReasonLogger) resetRound() {
	d.total = 0
	d.roundStart = time.Now()
	d.counts = make(map[error]int)
}
