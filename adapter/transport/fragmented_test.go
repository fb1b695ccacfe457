package transport

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/aegroto/remotia-go/frame"
	"github.com/rs/zerolog"
)

func TestFragmentingSenderReceiverRoundTrip(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	senderReady := make(chan *FragmentingSender, 1)
	senderErr := make(chan error, 1)
	go func() {
		s, err := NewFragmentingSender(clientConn, zerolog.Nop())
		if err != nil {
			senderErr <- err
			return
		}
		senderReady <- s
	}()

	receiverReady := make(chan *FragmentingReceiver, 1)
	receiverErr := make(chan error, 1)
	go func() {
		r, err := NewFragmentingReceiver(serverConn, zerolog.Nop())
		if err != nil {
			receiverErr <- err
			return
		}
		receiverReady <- r
	}()

	var sender *FragmentingSender
	var receiver *FragmentingReceiver

	select {
	case sender = <-senderReady:
	case err := <-senderErr:
		t.Fatalf("sender setup failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("sender never became ready")
	}

	select {
	case receiver = <-receiverReady:
	case err := <-receiverErr:
		t.Fatalf("receiver setup failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("receiver never became ready")
	}
	defer sender.Close()
	defer receiver.Close()

	// bigger than MaxFragmentPayload so the round trip exercises more than
	// one fragment.
	payload := bytes.Repeat([]byte{0xAB}, MaxFragmentPayload*2+37)

	rec := frame.New()
	rec.Set(CaptureTimestampKey, 555)
	buf := frame.NewBuffer(len(payload))
	copy(buf.Bytes(), payload)
	rec.Push(PayloadKey, buf)

	recvDone := make(chan *frame.Record, 1)
	go func() {
		got, _ := receiver.Process(context.Background(), frame.New())
		recvDone <- got
	}()

	if _, keep := sender.Process(context.Background(), rec); !keep {
		t.Fatal("expected sender to pass the record through")
	}

	select {
	case got := <-recvDone:
		if got.Err() != nil {
			t.Fatalf("unexpected error on received record: %v", got.Err())
		}
		ts, ok := got.Get(CaptureTimestampKey)
		if !ok || ts != 555 {
			t.Fatalf("expected capture timestamp 555, got (%v, %v)", ts, ok)
		}
		gotPayload, ok := got.Ref(PayloadKey)
		if !ok || !bytes.Equal(gotPayload.Bytes(), payload) {
			t.Fatal("reassembled payload did not match the original")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("receiver never produced a record")
	}
}

func TestFragmentingSenderReceiverRoundTripEmptyPayload(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	senderReady := make(chan *FragmentingSender, 1)
	go func() {
		s, _ := NewFragmentingSender(clientConn, zerolog.Nop())
		senderReady <- s
	}()
	receiverReady := make(chan *FragmentingReceiver, 1)
	go func() {
		r, _ := NewFragmentingReceiver(serverConn, zerolog.Nop())
		receiverReady <- r
	}()

	sender := <-senderReady
	receiver := <-receiverReady
	defer sender.Close()
	defer receiver.Close()

	rec := frame.New()
	buf := frame.NewBuffer(0)
	rec.Push(PayloadKey, buf)

	recvDone := make(chan *frame.Record, 1)
	go func() {
		got, _ := receiver.Process(context.Background(), frame.New())
		recvDone <- got
	}()

	if _, keep := sender.Process(context.Background(), rec); !keep {
		t.Fatal("expected sender to pass the record through")
	}

	select {
	case got := <-recvDone:
		if got.Err() != nil {
			t.Fatalf("unexpected error on received record: %v", got.Err())
		}
		gotPayload, ok := got.Ref(PayloadKey)
		if !ok || gotPayload.Len() != 0 {
			t.Fatalf("expected an empty payload, got (%v, %v)", gotPayload, ok)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("receiver never produced a record")
	}
}
