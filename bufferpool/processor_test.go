package bufferpool

import (
	"context"
	"testing"
	"time"

	"github.com/aegroto/remotia-go/frame"
)

const testKey frame.Key = "test.buffer"

func TestBorrowerPushesBufferUnderKey(t *testing.T) {
	p := NewPool("test", 1, 8)
	b := NewBorrower(p, testKey)

	rec, keep := b.Process(context.Background(), frame.New())
	if !keep {
		t.Fatalf("expected borrower to keep the record when a buffer is available")
	}
	buf, ok := rec.Ref(testKey)
	if !ok || buf.Len() != 8 {
		t.Fatalf("expected an 8 byte buffer under testKey, got (%v, %v)", buf, ok)
	}
}

func TestBorrowerDropsOnContextCancellation(t *testing.T) {
	p := NewPool("test", 1, 8, WithBorrowTimeout(5*time.Millisecond))
	p.Borrow(context.Background()) // exhaust the only buffer

	b := NewBorrower(p, testKey)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	rec, keep := b.Process(ctx, frame.New())
	if keep {
		t.Fatalf("expected borrower to drop the record once ctx was cancelled")
	}
	if rec.Err() != frame.NoAvailableBuffers {
		t.Fatalf("expected NoAvailableBuffers, got %v", rec.Err())
	}
}

func TestRedeemerReturnsBufferToPool(t *testing.T) {
	p := NewPool("test", 1, 8)
	borrowed := p.Borrow(context.Background())

	rec := frame.New()
	rec.Push(testKey, borrowed)

	redeemer := NewRedeemer(p, testKey)
	out, keep := redeemer.Process(context.Background(), rec)
	if !keep || out.Err() != nil {
		t.Fatalf("expected a clean redeem, got keep=%v err=%v", keep, out.Err())
	}

	select {
	case buf := <-p.free:
		p.free <- buf
	default:
		t.Fatal("expected the buffer to be back in the free list")
	}
}

func TestRedeemerReportsMissingBuffer(t *testing.T) {
	p := NewPool("test", 1, 8)
	redeemer := NewRedeemer(p, testKey)

	defer func() {
		if recover() == nil {
			t.Fatal("expected strict redeemer to panic on a record with no buffer")
		}
	}()
	redeemer.Process(context.Background(), frame.New())
}

func TestSoftRedeemerIgnoresMissingBuffer(t *testing.T) {
	p := NewPool("test", 1, 8)
	redeemer := NewSoftRedeemer(p, testKey)

	out, keep := redeemer.Process(context.Background(), frame.New())
	if !keep || out.Err() != nil {
		t.Fatalf("expected no-op success, got keep=%v err=%v", keep, out.Err())
	}
}

func TestBorrowerRedeemerRoundTripThroughProcessors(t *testing.T) {
	p := NewPool("test", 1, 8)
	borrower := NewBorrower(p, testKey)
	redeemer := NewRedeemer(p, testKey)

	for i := 0; i < 3; i++ {
		rec, keep := borrower.Process(context.Background(), frame.New())
		if !keep {
			t.Fatalf("iteration %d: expected borrower to succeed", i)
		}
		if _, keep := redeemer.Process(context.Background(), rec); !keep {
			t.Fatalf("iteration %d: expected redeemer to succeed", i)
		}
	}
}
