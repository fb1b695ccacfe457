// Package protocol defines the wire-level framing this module's transport
// adapters use to carry an encoded frame buffer and its timing metadata
// across a stream, independent of any particular transport. It fixes only
// the byte layout; opening connections and multiplexing streams is left to
// the transport adapter.
package protocol

import (
	"encoding/binary"
	"fmt"
)

// headerSize is the fixed byte length of a WholeFrameHeader on the wire:
// capture timestamp (8), payload length (4), sequence number (4).
const headerSize = 16

// WholeFrameHeader precedes a fully encoded frame's payload on the wire. It
// carries just enough metadata for a receiver to validate, order and
// time-stamp the frame before handing its bytes to a decoder.
type WholeFrameHeader struct {
	CaptureTimestamp uint64
	PayloadLength    uint32
	Sequence         uint32
}

// MarshalBinary encodes h in a fixed 16-byte little-endian layout.
func (h WholeFrameHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.CaptureTimestamp)
	binary.LittleEndian.PutUint32(buf[8:12], h.PayloadLength)
	binary.LittleEndian.PutUint32(buf[12:16], h.Sequence)
	return buf, nil
}

// UnmarshalBinary decodes h from buf, which must be exactly headerSize bytes
// long. It reports frame.InvalidWholeFrameHeader-shaped errors by returning
// a plain error; callers map that to the record's error slot themselves.
func (h *WholeFrameHeader) UnmarshalBinary(buf []byte) error {
	if len(buf) != headerSize {
		return fmt.Errorf("protocol: whole frame header must be %d bytes, got %d", headerSize, len(buf))
	}
	h.CaptureTimestamp = binary.LittleEndian.Uint64(buf[0:8])
	h.PayloadLength = binary.LittleEndian.Uint32(buf[8:12])
	h.Sequence = binary.LittleEndian.Uint32(buf[12:16])
	return nil
}

// HeaderSize reports the fixed wire size of a WholeFrameHeader, so a
// transport adapter can size its read buffer without importing the binary
// layout constant directly.
func HeaderSize() int {
	return headerSize
}
