// Package transport adapts a stream-multiplexed TCP connection into a frame
// sender/receiver pair, using smux to keep the frame-data stream and the
// feedback side channel independent over one underlying socket.
package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/aegroto/remotia-go/frame"
	"github.com/aegroto/remotia-go/protocol"
	"github.com/rs/zerolog"
	"github.com/sagernet/smux"
)

// PayloadKey is the record buffer slot a Sender writes to the wire and a
// Receiver fills in on arrival.
const PayloadKey frame.Key = "transport.payload"

// Sender writes one WholeFrameHeader-prefixed payload per record to a
// dedicated smux stream opened over conn.
type Sender struct {
	session *smux.Session
	stream  *smux.Stream
	logger  zerolog.Logger
	seq     uint32
}

// NewSender establishes an smux client session over conn and opens its
// frame-data stream.
func NewSender(conn net.Conn, logger zerolog.Logger) (*Sender, error) {
	session, err := smux.Client(conn, smux.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("transport: opening smux session: %w", err)
	}
	stream, err := session.OpenStream()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("transport: opening frame stream: %w", err)
	}
	return &Sender{session: session, stream: stream, logger: logger}, nil
}

// Process writes rec's PayloadKey buffer to the wire, prefixed with a
// WholeFrameHeader carrying CaptureTimestampKey (if set) and a monotonically
// increasing sequence number. Reports frame.ConnectionError on any write
// failure rather than returning it, since a send failure is a per-record
// condition a downstream error switch should route, not a fatal one.
func (s *Sender) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	buf, ok := rec.Ref(PayloadKey)
	if !ok {
		rec.ReportError(frame.EmptyFrame)
		return rec, true
	}

	captureTimestamp, _ := rec.Get(CaptureTimestampKey)

	header := protocol.WholeFrameHeader{
		CaptureTimestamp: captureTimestamp,
		PayloadLength:    uint32(buf.Len()),
		Sequence:         s.seq,
	}
	s.seq++

	headerBytes, _ := header.MarshalBinary()
	if _, err := s.stream.Write(headerBytes); err != nil {
		s.logger.Warn().Err(err).Msg("failed writing frame header")
		rec.ReportError(frame.ConnectionError)
		return rec, true
	}
	if _, err := s.stream.Write(buf.Bytes()); err != nil {
		s.logger.Warn().Err(err).Msg("failed writing frame payload")
		rec.ReportError(frame.ConnectionError)
		return rec, true
	}

	return rec, true
}

// Close closes the frame stream and its underlying session.
func (s *Sender) Close() error {
	s.stream.Close()
	return s.session.Close()
}

// CaptureTimestampKey is the scalar property a Sender reads to populate a
// WholeFrameHeader's CaptureTimestamp field.
const CaptureTimestampKey frame.Key = "transport.capture_timestamp"
