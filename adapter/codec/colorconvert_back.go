package codec

import (
	"context"
	"image"

	"github.com/aegroto/remotia-go/frame"
)

// BackConverter is the client-side inverse of ColorConverter: it expands a
// planar YUV 4:2:0 buffer under YUVKey back into an RGBA buffer under
// RGBAKey, using the standard library's YCbCr image model to draw into an
// RGBA image.
type BackConverter struct{}

// NewBackConverter returns a BackConverter.
func NewBackConverter() *BackConverter {
	return &BackConverter{}
}

// Process converts rec's YUV 4:2:0 buffer back to RGBA.
func (c *BackConverter) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
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

	yuvBuf, ok := rec.Ref(YUVKey)
	if !ok {
		rec.ReportError(frame.InvalidPacket)
		return rec, true
	}
	if yuvBuf.Len() < PlaneSize(width, height) {
		rec.ReportError(frame.InvalidPacket)
		return rec, true
	}

	rect := image.Rect(0, 0, width, height)
	cRect := image.Rect(0, 0, (width+1)/2, (height+1)/2)
	ySize := width * height
	cSize := cRect.Dx() * cRect.Dy()

	data := yuvBuf.Bytes()
	yuv := &image.YCbCr{
		Y:              data[0:ySize],
		Cb:             data[ySize : ySize+cSize],
		Cr:             data[ySize+cSize : ySize+2*cSize],
		YStride:        width,
		CStride:        cRect.Dx(),
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           rect,
	}

	rgba := image.NewRGBA(rect)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			rgba.Set(x, y, yuv.At(x, y))
		}
	}

	out := frame.NewBuffer(len(rgba.Pix))
	copy(out.Bytes(), rgba.Pix)
	rec.Push(RGBAKey, out)
	return rec, true
}
