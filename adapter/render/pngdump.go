// Package render provides a headless sink adapter: it writes every received
// frame to a PNG file on disk rather than drawing to a window, which the
// module leaves to an external presentation layer entirely.
package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/aegroto/remotia-go/adapter/codec"
	"github.com/aegroto/remotia-go/frame"
)

// PNGDumper writes each record's RGBA buffer to dir as a sequentially
// numbered PNG file. It is meant for development and integration testing,
// standing in for a real presentation layer the same way adapter/capture's
// Synthetic stands in for a real capture device.
type PNGDumper struct {
	dir   string
	count uint64
}

// NewPNGDumper returns a PNGDumper writing files under dir, which is
// created if it does not already exist.
func NewPNGDumper(dir string) (*PNGDumper, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("render: creating output directory: %w", err)
	}
	return &PNGDumper{dir: dir}, nil
}

// Process writes rec's RGBA buffer (under codec.RGBAKey) to disk, reporting
// frame.InvalidPacket if the dimensions or buffer are missing or
// undersized.
func (d *PNGDumper) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	widthVal, ok := rec.Get(codec.WidthKey)
	if !ok {
		rec.ReportError(frame.InvalidPacket)
		return rec, true
	}
	heightVal, ok := rec.Get(codec.HeightKey)
	if !ok {
		rec.ReportError(frame.InvalidPacket)
		return rec, true
	}
	width, height := int(widthVal), int(heightVal)

	rgba, ok := rec.Ref(codec.RGBAKey)
	if !ok || rgba.Len() < width*height*4 {
		rec.ReportError(frame.InvalidPacket)
		return rec, true
	}

	img := &image.RGBA{
		Pix:    rgba.Bytes(),
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}

	path := filepath.Join(d.dir, fmt.Sprintf("frame-%06d.png", d.count))
	d.count++

	f, err := os.Create(path)
	if err != nil {
		rec.ReportError(frame.ConnectionError)
		return rec, true
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		rec.ReportError(frame.CodecError)
		return rec, true
	}

	return rec, true
}
