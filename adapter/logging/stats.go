// Package logging provides processor.Processor adapters that observe
// records flowing past (typically fed through a route.CloneSwitch) and turn
// them into periodic structured log output, drop-reason tallies, or a CSV
// trace file, without affecting the records on the main path.
package logging

import (
	"context"
	"time"

	"github.com/aegroto/remotia-go/frame"
	"github.com/rs/zerolog"
)

// StatsLogger accumulates scalar values named in Keys across records seen
// within a rolling window, and logs their average once the window elapses.
// It never reports or drops: it is meant to sit on an off-path destination
// pipeline fed by a clone switch.
type StatsLogger struct {
	logger       zerolog.Logger
	header       string
	keys         []frame.Key
	roundLength  time.Duration
	roundStart   time.Time
	logErrors    bool
	roundSamples map[frame.Key][]uint64
	roundCount   int
}

// NewStatsLogger builds a StatsLogger averaging keys over roundLength.
func NewStatsLogger(logger zerolog.Logger, header string, roundLength time.Duration, keys ...frame.Key) *StatsLogger {
	return &StatsLogger{
		logger:       logger,
		header:       header,
		keys:         keys,
		roundLength:  roundLength,
		roundStart:   time.Now(),
		roundSamples: make(map[frame.Key][]uint64, len(keys)),
	}
}

// WithErrors makes the logger also tally errored records in its averages,
// rather than skipping them (the default).
func (s *StatsLogger) WithErrors() *StatsLogger {
	s.logErrors = true
	return s
}

// Process records rec's tracked keys and, once the round has elapsed, logs
// and resets the round. rec always passes through unchanged.
func (s *StatsLogger) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	if !s.logErrors && rec.Err() != nil {
		return rec, true
	}

	s.roundCount++
	for _, key := range s.keys {
		if v, ok := rec.Get(key); ok {
			s.roundSamples[key] = append(s.roundSamples[key], v)
		}
	}

	if time.Since(s.roundStart) >= s.roundLength {
		s.printRound()
		s.resetRound()
	}

	return rec, true
}

func (s *StatsLogger) printRound() {
	event := s.logger.Info()
	if s.header != "" {
		event = event.Str("header", s.header)
	}

	if s.roundCount == 0 {
		event.Msg("no frames logged this round")
		return
	}

	for _, key := range s.keys {
		samples := s.roundSamples[key]
		if len(samples) == 0 {
			continue
		}
		var sum uint64
		for _, v := range samples {
			sum += v
		}
		event = event.Uint64(string(key)+"_avg", sum/uint64(len(samples)))
	}
	event.Int("frames", s.roundCount).Msg("stats round")
}

func (s *StatsLogger) resetRound() {
	s.roundCount = 0
	s.roundStart = time.Now()
	for key := range s.roundSamples {
		s.roundSamples[key] = s.roundSamples[key][:0]
	}
}
