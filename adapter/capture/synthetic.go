// Package capture provides RGBA frame sources: Synthetic, a deterministic
// test pattern that stands in for a real device during development and
// testing, and V4L2Capturer, which reads frames from a Video4Linux2 device
// through go4vl.
package capture

import (
	"context"

	"github.com/aegroto/remotia-go/adapter/codec"
	"github.com/aegroto/remotia-go/bufferpool"
	"github.com/aegroto/remotia-go/frame"
)

// Synthetic is a processor.Processor generating a deterministic RGBA test
// pattern of fixed dimensions on every call, incrementing an internal frame
// counter that drives a shifting gradient. It sets codec.WidthKey,
// codec.HeightKey and codec.RGBAKey on every record it produces.
type Synthetic struct {
	width, height int
	frameIndex    uint64
	pool          *bufferpool.Pool
}

// SyntheticOption configures a Synthetic at construction time.
type SyntheticOption func(*Synthetic)

// WithPool makes Synthetic borrow its RGBA buffer from pool instead of
// allocating a fresh one every frame, so an exhausted pool paces capture the
// same way it would a real device's frame source. pool must be sized for
// exactly width*height*4 bytes.
func WithPool(pool *bufferpool.Pool) SyntheticOption {
	return func(s *Synthetic) { s.pool = pool }
}

// NewSynthetic returns a Synthetic generator of width x height RGBA frames.
func NewSynthetic(width, height int, opts ...SyntheticOption) *Synthetic {
	s := &Synthetic{width: width, height: height}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process fills rec with a freshly generated RGBA frame, ignoring any
// existing content rec may carry. If the Synthetic was built WithPool, it
// reports frame.NoAvailableBuffers and drops the record if ctx is cancelled
// while waiting for a free buffer.
func (s *Synthetic) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	var buf *frame.Buffer
	if s.pool != nil {
		buf = s.pool.Borrow(ctx)
		if buf == nil {
			rec.ReportError(frame.NoAvailableBuffers)
			return rec, false
		}
	} else {
		buf = frame.NewBuffer(s.width * s.height * 4)
	}
	pix := buf.Bytes()

	shift := byte(s.frameIndex % 256)
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			o := (y*s.width + x) * 4
			pix[o] = byte(x) + shift
			pix[o+1] = byte(y) + shift
			pix[o+2] = shift
			pix[o+3] = 255
		}
	}
	s.frameIndex++

	rec.Set(codec.WidthKey, uint64(s.width))
	rec.Set(codec.HeightKey, uint64(s.height))
	rec.Push(codec.RGBAKey, buf)
	return rec, true
}
