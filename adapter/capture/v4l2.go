package capture

import (
	"context"
	"fmt"

	"github.com/aegroto/remotia-go/adapter/codec"
	"github.com/aegroto/remotia-go/bufferpool"
	"github.com/aegroto/remotia-go/frame"
	govl4 "github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"
)

// V4L2Capturer is a processor.Processor pulling frames off a real Video4Linux2
// device through go4vl, rather than generating them synthetically. It expects
// the device's configured pixel format to be 24-bit RGB (callers configure
// that through go4vl's own device.Option machinery before passing the
// device here) and expands each frame to RGBA on the way into the record,
// since the rest of this module's pipeline standardizes on RGBA buffers.
type V4L2Capturer struct {
	dev    *govl4.Device
	output <-chan []byte
	width  int
	height int
	pool   *bufferpool.Pool
}

// NewV4L2Capturer opens path with opts, starts its stream, and returns a
// Capturer reading from it. Callers are responsible for calling Close when
// done.
func NewV4L2Capturer(ctx context.Context, path string, opts ...govl4.Option) (*V4L2Capturer, error) {
	dev, err := govl4.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("capture: opening device %s: %w", path, err)
	}

	pixFmt, err := dev.GetPixFormat()
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("capture: reading pixel format: %w", err)
	}
	if pixFmt.PixelFormat != v4l2.PixelFmtRGB24 {
		dev.Close()
		return nil, fmt.Errorf("capture: device %s is not configured for 24-bit RGB", path)
	}

	if err := dev.Start(ctx); err != nil {
		dev.Close()
		return nil, fmt.Errorf("capture: starting stream: %w", err)
	}

	return &V4L2Capturer{
		dev:    dev,
		output: dev.GetOutput(),
		width:  int(pixFmt.Width),
		height: int(pixFmt.Height),
	}, nil
}

// WithPool makes the capturer borrow its RGBA buffer from pool instead of
// allocating a fresh one every frame, so an exhausted pool applies
// backpressure to the capture rate instead of growing memory use
// unbounded. pool must be sized for exactly width*height*4 bytes. Returns
// the capturer for fluent construction.
func (c *V4L2Capturer) WithPool(pool *bufferpool.Pool) *V4L2Capturer {
	c.pool = pool
	return c
}

// Process blocks until the device delivers one frame (or ctx is cancelled),
// then fills rec with it, expanded to RGBA. It reports
// frame.ConnectionError if the device's output channel closes, and
// frame.Timeout if ctx is cancelled first. If the V4L2Capturer was built
// WithPool, it reports frame.NoAvailableBuffers and drops the record if ctx
// is cancelled while waiting for a free buffer.
func (c *V4L2Capturer) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	select {
	case raw, ok := <-c.output:
		if !ok {
			rec.ReportError(frame.ConnectionError)
			return rec, true
		}
		if len(raw) < c.width*c.height*3 {
			rec.ReportError(frame.InvalidPacket)
			return rec, true
		}

		var buf *frame.Buffer
		if c.pool != nil {
			buf = c.pool.Borrow(ctx)
			if buf == nil {
				rec.ReportError(frame.NoAvailableBuffers)
				return rec, false
			}
		} else {
			buf = frame.NewBuffer(c.width * c.height * 4)
		}
		pix := buf.Bytes()
		for i := 0; i < c.width*c.height; i++ {
			pix[i*4] = raw[i*3]
			pix[i*4+1] = raw[i*3+1]
			pix[i*4+2] = raw[i*3+2]
			pix[i*4+3] = 255
		}

		rec.Set(codec.WidthKey, uint64(c.width))
		rec.Set(codec.HeightKey, uint64(c.height))
		rec.Push(codec.RGBAKey, buf)
		return rec, true
	case <-ctx.Done():
		rec.ReportError(frame.Timeout)
		return rec, true
	}
}

// Close stops the device's stream and releases it.
func (c *V4L2Capturer) Close() error {
	if err := c.dev.Stop(); err != nil {
		c.dev.Close()
		return fmt.Errorf("capture: stopping device: %w", err)
	}
	return c.dev.Close()
}
