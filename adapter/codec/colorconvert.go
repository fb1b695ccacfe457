// Package codec adapts pixel buffers between an RGBA frame (as produced by a
// capture adapter) and a YUV 4:2:0 planar buffer (as consumed by an external
// video encoder). It only converts color spaces; encoding and decoding
// bitstreams is left to an external library wired in by the caller.
package codec

import (
	"context"
	"image"
	"image/color"

	"github.com/aegroto/remotia-go/frame"
)

// RGBAKey and YUVKey are the record buffer slots a ColorConverter reads from
// and writes to. WidthKey and HeightKey are the scalar properties it reads
// frame dimensions from.
const (
	RGBAKey   frame.Key = "codec.rgba"
	YUVKey    frame.Key = "codec.yuv420p"
	WidthKey  frame.Key = "codec.width"
	HeightKey frame.Key = "codec.height"
)

// ColorConverter is a processor.Processor converting the RGBAKey buffer into
// a planar YUV 4:2:0 buffer under YUVKey, using the standard library's
// YCbCr color model for the RGB-to-YCbCr math. It reports
// frame.InvalidPacket if RGBAKey, WidthKey or HeightKey are missing, or the
// RGBA buffer is shorter than width*height*4 bytes.
type ColorConverter struct{}

// NewColorConverter returns a ColorConverter.
func NewColorConverter() *ColorConverter {
	return &ColorConverter{}
}

// Process converts rec's RGBA buffer to YUV 4:2:0.
func (c *ColorConverter) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	widthVal, ok := rec.Get(WidthKey)
	if !ok {
		rec.ReportError(frame.InvalidPacket)
		return rec, true
	}
	heightVal, ok := rec.Get(HeightKey)
	if !ok {
		rec.ReportError(frame.InvalidPacket)
		return rec, true
	}
	width, height := int(widthVal), int(heightVal)

	rgba, ok := rec.Ref(RGBAKey)
	if !ok {
		rec.ReportError(frame.InvalidPacket)
		return rec, true
	}
	if rgba.Len() < width*height*4 {
		rec.ReportError(frame.InvalidPacket)
		return rec, true
	}

	yuv := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)
	pix := rgba.Bytes()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := (y*width + x) * 4
			r, g, b := pix[o], pix[o+1], pix[o+2]
			yy, cb, cr := color.RGBToYCbCr(r, g, b)

			yuv.Y[yuv.YOffset(x, y)] = yy
			ci := yuv.COffset(x, y)
			yuv.Cb[ci] = cb
			yuv.Cr[ci] = cr
		}
	}

	out := frame.NewBuffer(len(yuv.Y) + len(yuv.Cb) + len(yuv.Cr))
	buf := out.Bytes()
	n := copy(buf, yuv.Y)
	n += copy(buf[n:], yuv.Cb)
	copy(buf[n:], yuv.Cr)

	rec.Push(YUVKey, out)
	return rec, true
}

// PlaneSize returns the byte length of a YUV 4:2:0 buffer for the given
// frame dimensions: a full-resolution Y plane plus two quarter-resolution
// chroma planes.
func PlaneSize(width, height int) int {
	return width*height + 2*((width+1)/2)*((height+1)/2)
}
