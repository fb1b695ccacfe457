package capture

import (
	"context"
	"testing"

	"github.com/aegroto/remotia-go/adapter/codec"
	"github.com/aegroto/remotia-go/frame"
)

func TestSyntheticSetsDimensionsAndBuffer(t *testing.T) {
	s := NewSynthetic(4, 3)

	rec, keep := s.Process(context.Background(), frame.New())
	if !keep {
		t.Fatalf("expected synthetic capture to always produce a record")
	}

	w, ok := rec.Get(codec.WidthKey)
	if !ok || w != 4 {
		t.Fatalf("expected width 4, got (%v, %v)", w, ok)
	}
	h, ok := rec.Get(codec.HeightKey)
	if !ok || h != 3 {
		t.Fatalf("expected height 3, got (%v, %v)", h, ok)
	}

	buf, ok := rec.Ref(codec.RGBAKey)
	if !ok || buf.Len() != 4*3*4 {
		t.Fatalf("expected a %d byte RGBA buffer, got %v", 4*3*4, buf)
	}
}

func TestSyntheticAdvancesAcrossCalls(t *testing.T) {
	s := NewSynthetic(2, 2)

	first, _ := s.Process(context.Background(), frame.New())
	second, _ := s.Process(context.Background(), frame.New())

	firstBuf, _ := first.Ref(codec.RGBAKey)
	secondBuf, _ := second.Ref(codec.RGBAKey)

	if string(firstBuf.Bytes()) == string(secondBuf.Bytes()) {
		t.Fatalf("expected consecutive synthetic frames to differ")
	}
}
