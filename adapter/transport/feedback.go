package transport

import (
	"fmt"
	"io"

	"github.com/aegroto/remotia-go/protocol"
	"github.com/sagernet/smux"
)

// feedbackMessageSize is the wire size of one protocol.FeedbackMessage, used
// to size the read buffer in FeedbackReceiver.Recv.
const feedbackMessageSize = 9

// FeedbackSender writes FeedbackMessage values to a dedicated smux stream,
// the side channel a client uses to report congestion back to the server
// independent of the main frame stream's direction.
type FeedbackSender struct {
	stream *smux.Stream
}

// OpenFeedbackStream opens a new stream on session dedicated to feedback
// messages.
func OpenFeedbackStream(session *smux.Session) (*FeedbackSender, error) {
	stream, err := session.OpenStream()
	if err != nil {
		return nil, fmt.Errorf("transport: opening feedback stream: %w", err)
	}
	return &FeedbackSender{stream: stream}, nil
}

// Send writes m to the feedback stream.
func (s *FeedbackSender) Send(m protocol.FeedbackMessage) error {
	buf, _ := m.MarshalBinary()
	_, err := s.stream.Write(buf)
	return err
}

// FeedbackReceiver reads FeedbackMessage values off a dedicated smux stream.
type FeedbackReceiver struct {
	stream *smux.Stream
}

// AcceptFeedbackStream accepts the next incoming stream on session and
// treats it as the feedback channel.
func AcceptFeedbackStream(session *smux.Session) (*FeedbackReceiver, error) {
	stream, err := session.AcceptStream()
	if err != nil {
		return nil, fmt.Errorf("transport: accepting feedback stream: %w", err)
	}
	return &FeedbackReceiver{stream: stream}, nil
}

// Recv blocks until one feedback message arrives.
func (r *FeedbackReceiver) Recv() (protocol.FeedbackMessage, error) {
	buf := make([]byte, feedbackMessageSize)
	if _, err := io.ReadFull(r.stream, buf); err != nil {
		return protocol.FeedbackMessage{}, err
	}
	var m protocol.FeedbackMessage
	if err := m.UnmarshalBinary(buf); err != nil {
		return protocol.FeedbackMessage{}, err
	}
	return m, nil
}
