package protocol

import (
	"encoding/binary"
	"fmt"
)

// FeedbackKind identifies the shape of a FeedbackMessage's payload.
type FeedbackKind uint8

// HighFrameDelay is currently the only feedback kind: a client reporting to
// the server that it measured the given end-to-end delay, in milliseconds,
// on a received frame.
const HighFrameDelay FeedbackKind = 1

const feedbackSize = 1 + 8

// FeedbackMessage is a small, client-to-server control message carried over
// a side channel independent of the frame stream, used to signal congestion
// back to the sender.
type FeedbackMessage struct {
	Kind        FeedbackKind
	DelayMillis uint64
}

// NewHighFrameDelay builds a HighFrameDelay feedback message.
func NewHighFrameDelay(delayMillis uint64) FeedbackMessage {
	return FeedbackMessage{Kind: HighFrameDelay, DelayMillis: delayMillis}
}

// MarshalBinary encodes m as a fixed 9-byte little-endian layout.
func (m FeedbackMessage) MarshalBinary() ([]byte, error) {
	buf := make([]byte, feedbackSize)
	buf[0] = byte(m.Kind)
	binary.LittleEndian.PutUint64(buf[1:], m.DelayMillis)
	return buf, nil
}

// UnmarshalBinary decodes m from buf, which must be exactly feedbackSize
// bytes long.
func (m *FeedbackMessage) UnmarshalBinary(buf []byte) error {
	if len(buf) != feedbackSize {
		return fmt.Errorf("protocol: feedback message must be %d bytes, got %d", feedbackSize, len(buf))
	}
	m.Kind = FeedbackKind(buf[0])
	m.DelayMillis = binary.LittleEndian.Uint64(buf[1:])
	return nil
}
