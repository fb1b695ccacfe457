package transport

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/aegroto/remotia-go/frame"
	"github.com/aegroto/remotia-go/protocol"
	"github.com/rs/zerolog"
	"github.com/sagernet/smux"
)

// Receiver reads WholeFrameHeader-prefixed payloads off a dedicated smux
// stream accepted over conn and turns each into a fresh record. It has no
// receiver channel of its own: it is meant to be the sole processor on a
// non-feedable pipeline's head, called once per iteration with that
// component's synthesized empty record (see pipeline.Component).
type Receiver struct {
	session *smux.Session
	stream  *smux.Stream
	logger  zerolog.Logger
}

// NewReceiver accepts an smux server session over conn and its first
// incoming stream, treating it as the frame-data stream.
func NewReceiver(conn net.Conn, logger zerolog.Logger) (*Receiver, error) {
	session, err := smux.Server(conn, smux.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("transport: accepting smux session: %w", err)
	}
	stream, err := session.AcceptStream()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("transport: accepting frame stream: %w", err)
	}
	return &Receiver{session: session, stream: stream, logger: logger}, nil
}

// Process ignores rec and replaces it with the next frame read off the
// wire. A malformed header or a short payload reports frame.InvalidPacket
// (or frame.InvalidWholeFrameHeader) on a freshly synthesized record rather
// than propagating the network error, so the caller's error-switch handling
// stays uniform regardless of failure source. A closed connection is
// reported as frame.ConnectionError.
func (r *Receiver) Process(ctx context.Context, _ *frame.Record) (*frame.Record, bool) {
	out := frame.New()

	headerBytes := make([]byte, protocol.HeaderSize())
	if _, err := io.ReadFull(r.stream, headerBytes); err != nil {
		r.logger.Warn().Err(err).Msg("failed reading frame header")
		out.ReportError(frame.ConnectionError)
		return out, true
	}

	var header protocol.WholeFrameHeader
	if err := header.UnmarshalBinary(headerBytes); err != nil {
		out.ReportError(frame.InvalidWholeFrameHeader)
		return out, true
	}

	payload := make([]byte, header.PayloadLength)
	if _, err := io.ReadFull(r.stream, payload); err != nil {
		r.logger.Warn().Err(err).Msg("failed reading frame payload")
		out.ReportError(frame.InvalidPacket)
		return out, true
	}

	buf := frame.NewBuffer(len(payload))
	copy(buf.Bytes(), payload)

	out.Set(CaptureTimestampKey, header.CaptureTimestamp)
	out.Push(PayloadKey, buf)
	return out, true
}

// Close closes the frame stream and its underlying session.
func (r *Receiver) Close() error {
	r.stream.Close()
	return r.session.Close()
}
