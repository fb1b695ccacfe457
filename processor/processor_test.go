package processor

import (
	"context"
	"testing"

	"github.com/aegroto/remotia-go/frame"
)

func TestKeyCheckerPassesWhenPresent(t *testing.T) {
	rec := frame.New()
	rec.Set("dt", 5)

	out, keep := NewKeyChecker("dt").Process(context.Background(), rec)
	if !keep || out != rec {
		t.Fatalf("expected record to pass through unchanged")
	}
}

func TestKeyCheckerDropsWhenAbsent(t *testing.T) {
	rec := frame.New()

	_, keep := NewKeyChecker("dt").Process(context.Background(), rec)
	if keep {
		t.Fatalf("expected record to be dropped")
	}
}

func TestThresholdDropperReportsWithoutDropping(t *testing.T) {
	rec := frame.New()
	rec.Set("x", 20)

	dropper := NewThresholdDropper("x", 10, frame.StaleFrame)
	out, keep := dropper.Process(context.Background(), rec)
	if !keep {
		t.Fatalf("threshold dropper must not drop, only report")
	}
	if out.Err() != frame.StaleFrame {
		t.Fatalf("expected StaleFrame reported, got %v", out.Err())
	}
}

func TestThresholdDropperBelowThresholdUnaffected(t *testing.T) {
	rec := frame.New()
	rec.Set("x", 5)

	dropper := NewThresholdDropper("x", 10, frame.StaleFrame)
	out, _ := dropper.Process(context.Background(), rec)
	if out.Err() != nil {
		t.Fatalf("expected no error below threshold, got %v", out.Err())
	}
}

func TestTimestampDropperFlagsOutOfOrder(t *testing.T) {
	dropper := NewTimestampDropper("ts", frame.StaleFrame)

	first := frame.New()
	first.Set("ts", 100)
	out, _ := dropper.Process(context.Background(), first)
	if out.Err() != nil {
		t.Fatalf("first record should not be flagged")
	}

	second := frame.New()
	second.Set("ts", 50)
	out, _ = dropper.Process(context.Background(), second)
	if out.Err() != frame.StaleFrame {
		t.Fatalf("expected StaleFrame for out-of-order timestamp, got %v", out.Err())
	}
}

func TestRandomDropperDeterministicSeed(t *testing.T) {
	always := NewSeededRandomDropper(1, 1)
	_, keep := always.Process(context.Background(), frame.New())
	if keep {
		t.Fatalf("probability 1 should always drop")
	}

	never := NewSeededRandomDropper(0, 1)
	_, keep = never.Process(context.Background(), frame.New())
	if !keep {
		t.Fatalf("probability 0 should never drop")
	}
}

func TestTimestampAdderAndDiff(t *testing.T) {
	rec := frame.New()
	adder := NewTimestampAdder("t0")
	rec, _ = adder.Process(context.Background(), rec)

	t0, ok := rec.Get("t0")
	if !ok {
		t.Fatalf("expected t0 to be set")
	}

	diff := NewTimestampDiff("t0", "dt")
	rec, _ = diff.Process(context.Background(), rec)

	dt, ok := rec.Get("dt")
	if !ok {
		t.Fatalf("expected dt to be set")
	}
	_ = t0
	if dt > 1000 {
		t.Fatalf("expected a small diff, got %d", dt)
	}
}

func TestProfiledSequentialPropagatesDrop(t *testing.T) {
	dropAll := Func(func(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
		return nil, false
	})
	seq := NewProfiledSequential("elapsed", dropAll)

	_, keep := seq.Process(context.Background(), frame.New())
	if keep {
		t.Fatalf("expected drop to propagate through ProfiledSequential")
	}
}

func TestProfiledSequentialRecordsElapsed(t *testing.T) {
	passThrough := Func(func(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
		return rec, true
	})
	seq := NewProfiledSequential("elapsed", passThrough)

	out, keep := seq.Process(context.Background(), frame.New())
	if !keep {
		t.Fatalf("expected record to survive")
	}
	if _, ok := out.Get("elapsed"); !ok {
		t.Fatalf("expected elapsed time key to be set")
	}
}

func TestLiteralEndToEndSample(t *testing.T) {
	procs := []Processor{
		NewTimestampAdder("t0"),
		NewClosure(func(rec *frame.Record) (*frame.Record, bool) {
			rec.Set("n", 42)
			return rec, true
		}),
		NewTimestampDiff("t0", "dt"),
		NewKeyChecker("dt"),
	}

	run := func() (*frame.Record, bool) {
		current := frame.New()
		keep := true
		for _, p := range procs {
			current, keep = p.Process(context.Background(), current)
			if !keep {
				break
			}
		}
		return current, keep
	}

	out, keep := run()
	if !keep {
		t.Fatalf("expected record to reach the tail")
	}
	if n, ok := out.Get("n"); !ok || n != 42 {
		t.Fatalf("expected n == 42, got (%v, %v)", n, ok)
	}
	if _, ok := out.Get("t0"); !ok {
		t.Fatalf("expected t0 set")
	}
	if _, ok := out.Get("dt"); !ok {
		t.Fatalf("expected dt set")
	}
	if out.Err() != nil {
		t.Fatalf("expected no error, got %v", out.Err())
	}

	// Second record still passes: TimestampDiff runs again each time.
	out2, keep2 := run()
	if !keep2 {
		t.Fatalf("expected second record to also reach the tail")
	}
	if _, ok := out2.Get("dt"); !ok {
		t.Fatalf("expected dt set on second record")
	}

	// Remove TimestampDiff: dt is never set, KeyChecker drops the record.
	withoutDiff := []Processor{
		procs[0],
		procs[1],
		procs[3],
	}
	current := frame.New()
	keep3 := true
	count := 0
	for _, p := range withoutDiff {
		current, keep3 = p.Process(context.Background(), current)
		if !keep3 {
			break
		}
	}
	if keep3 {
		count++
	}
	if keep3 {
		t.Fatalf("expected record to drop at KeyChecker once TimestampDiff is removed")
	}
	if count != 0 {
		t.Fatalf("expected zero tail outputs")
	}
}
