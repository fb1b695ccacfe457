package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/aegroto/remotia-go/frame"
	"github.com/aegroto/remotia-go/protocol"
	"github.com/rs/zerolog"
	"github.com/sagernet/smux"
)

// MaxFragmentPayload caps a single protocol.FrameFragment's payload. smux
// itself imposes no such limit, but FragmentingSender/FragmentingReceiver
// exist for the transports that do (a UDP-backed link below its MTU, for
// instance), so the cap is exercised here rather than left theoretical.
const MaxFragmentPayload = 1200

// fragmentCount reports how many MaxFragmentPayload-sized pieces payloadLen
// bytes split into. An empty payload still takes one (empty) fragment, so a
// zero-byte frame round-trips through the same reassembly path as any other.
func fragmentCount(payloadLen int) int {
	if payloadLen == 0 {
		return 1
	}
	return (payloadLen + MaxFragmentPayload - 1) / MaxFragmentPayload
}

// FragmentingSender is Sender's counterpart for a link that caps individual
// write sizes: it still writes one WholeFrameHeader per record, but splits
// the payload into MaxFragmentPayload-sized protocol.FrameFragment pieces
// instead of one contiguous write.
type FragmentingSender struct {
	session *smux.Session
	stream  *smux.Stream
	logger  zerolog.Logger
	seq     uint32
}

// NewFragmentingSender establishes an smux client session over conn and
// opens its frame-data stream.
func NewFragmentingSender(conn net.Conn, logger zerolog.Logger) (*FragmentingSender, error) {
	session, err := smux.Client(conn, smux.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("transport: opening smux session: %w", err)
	}
	stream, err := session.OpenStream()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("transport: opening frame stream: %w", err)
	}
	return &FragmentingSender{session: session, stream: stream, logger: logger}, nil
}

// Process writes rec's PayloadKey buffer to the wire as a WholeFrameHeader
// followed by its fragments in index order. Like Sender, a write failure is
// reported on the record rather than returned, since it is a per-record
// condition for a downstream error switch to route.
func (s *FragmentingSender) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	buf, ok := rec.Ref(PayloadKey)
	if !ok {
		rec.ReportError(frame.EmptyFrame)
		return rec, true
	}

	captureTimestamp, _ := rec.Get(CaptureTimestampKey)
	payload := buf.Bytes()

	header := protocol.WholeFrameHeader{
		CaptureTimestamp: captureTimestamp,
		PayloadLength:    uint32(len(payload)),
		Sequence:         s.seq,
	}
	s.seq++

	headerBytes, _ := header.MarshalBinary()
	if _, err := s.stream.Write(headerBytes); err != nil {
		s.logger.Warn().Err(err).Msg("failed writing frame header")
		rec.ReportError(frame.ConnectionError)
		return rec, true
	}

	count := fragmentCount(len(payload))
	for i := 0; i < count; i++ {
		start := i * MaxFragmentPayload
		end := start + MaxFragmentPayload
		if end > len(payload) {
			end = len(payload)
		}
		fragment := protocol.FrameFragment{Index: uint32(i), Payload: payload[start:end]}
		fragmentBytes, _ := fragment.MarshalBinary()
		if _, err := s.stream.Write(fragmentBytes); err != nil {
			s.logger.Warn().Err(err).Msg("failed writing frame fragment")
			rec.ReportError(frame.ConnectionError)
			return rec, true
		}
	}

	return rec, true
}

// Close closes the frame stream and its underlying session.
func (s *FragmentingSender) Close() error {
	s.stream.Close()
	return s.session.Close()
}

// FragmentingReceiver is Receiver's counterpart for FragmentingSender: it
// reads a WholeFrameHeader followed by that many fragments and reassembles
// them before handing the whole payload to the record.
type FragmentingReceiver struct {
	session *smux.Session
	stream  *smux.Stream
	logger  zerolog.Logger
}

// NewFragmentingReceiver accepts an smux server session over conn and its
// first incoming stream, treating it as the frame-data stream.
func NewFragmentingReceiver(conn net.Conn, logger zerolog.Logger) (*FragmentingReceiver, error) {
	session, err := smux.Server(conn, smux.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("transport: accepting smux session: %w", err)
	}
	stream, err := session.AcceptStream()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("transport: accepting frame stream: %w", err)
	}
	return &FragmentingReceiver{session: session, stream: stream, logger: logger}, nil
}

// Process ignores rec and replaces it with the next frame read off the
// wire, reassembled from its fragments. Failure reporting mirrors Receiver:
// errors land on a freshly synthesized record instead of propagating, so an
// error-switch downstream sees the same uniform taxonomy regardless of
// whether the transport was fragmenting or not.
func (r *FragmentingReceiver) Process(ctx context.Context, _ *frame.Record) (*frame.Record, bool) {
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

	reassembler := protocol.NewReassembler(fragmentCount(int(header.PayloadLength)))
	for complete := false; !complete; {
		fragment, err := r.readFragment()
		if err != nil {
			r.logger.Warn().Err(err).Msg("failed reading frame fragment")
			out.ReportError(frame.InvalidPacket)
			return out, true
		}
		complete = reassembler.Add(fragment)
	}

	payload, ok := reassembler.Assemble()
	if !ok {
		out.ReportError(frame.InvalidPacket)
		return out, true
	}

	buf := frame.NewBuffer(len(payload))
	copy(buf.Bytes(), payload)

	out.Set(CaptureTimestampKey, header.CaptureTimestamp)
	out.Push(PayloadKey, buf)
	return out, true
}

// readFragment reads one FrameFragment's fixed header, then its
// variable-length payload, off the stream.
func (r *FragmentingReceiver) readFragment() (protocol.FrameFragment, error) {
	headerBytes := make([]byte, protocol.FragmentHeaderSize())
	if _, err := io.ReadFull(r.stream, headerBytes); err != nil {
		return protocol.FrameFragment{}, fmt.Errorf("transport: reading fragment header: %w", err)
	}
	payloadLen := binary.LittleEndian.Uint32(headerBytes[4:8])

	buf := make([]byte, len(headerBytes)+int(payloadLen))
	copy(buf, headerBytes)
	if _, err := io.ReadFull(r.stream, buf[len(headerBytes):]); err != nil {
		return protocol.FrameFragment{}, fmt.Errorf("transport: reading fragment payload: %w", err)
	}

	var fragment protocol.FrameFragment
	if err := fragment.UnmarshalBinary(buf); err != nil {
		return protocol.FrameFragment{}, err
	}
	return fragment, nil
}

// Close closes the frame stream and its underlying session.
func (r *FragmentingReceiver) Close() error {
	r.stream.Close()
	return r.session.Close()
}
