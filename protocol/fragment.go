package protocol

import (
	"encoding/binary"
	"fmt"
)

// fragmentHeaderSize is the fixed byte length of a FrameFragment's header on
// the wire: fragment index (4), payload length (4). The payload itself
// follows immediately after.
const fragmentHeaderSize = 8

// FrameFragment is one piece of a frame's payload split across a stream that
// caps individual write sizes (e.g. a UDP-backed transport below the MTU).
// Index is the fragment's position within its parent frame; a receiver
// reassembles fragments sharing the same frame sequence in Index order.
type FrameFragment struct {
	Index   uint32
	Payload []byte
}

// MarshalBinary encodes f as an 8-byte little-endian header followed by its
// payload.
func (f FrameFragment) MarshalBinary() ([]byte, error) {
	buf := make([]byte, fragmentHeaderSize+len(f.Payload))
	binary.LittleEndian.PutUint32(buf[0:4], f.Index)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(f.Payload)))
	copy(buf[fragmentHeaderSize:], f.Payload)
	return buf, nil
}

// UnmarshalBinary decodes f from buf, which must be at least
// fragmentHeaderSize bytes and must declare a payload length matching its
// remaining bytes exactly.
func (f *FrameFragment) UnmarshalBinary(buf []byte) error {
	if len(buf) < fragmentHeaderSize {
		return fmt.Errorf("protocol: fragment header truncated: %d bytes", len(buf))
	}
	index := binary.LittleEndian.Uint32(buf[0:4])
	length := binary.LittleEndian.Uint32(buf[4:8])
	rest := buf[fragmentHeaderSize:]
	if uint32(len(rest)) != length {
		return fmt.Errorf("protocol: fragment declares %d payload bytes, got %d", length, len(rest))
	}
	f.Index = index
	f.Payload = append([]byte(nil), rest...)
	return nil
}

// FragmentHeaderSize reports the fixed wire size of a FrameFragment's header
// (not counting its variable-length payload), so a transport adapter can
// read a fragment in two fixed-then-variable reads without importing the
// binary layout constant directly.
func FragmentHeaderSize() int {
	return fragmentHeaderSize
}

// Reassembler collects fragments sharing one frame sequence and reports
// whether the whole frame is now complete. It is not safe for concurrent
// use; one instance tracks exactly one in-flight frame.
type Reassembler struct {
	total     int
	fragments map[uint32][]byte
}

// NewReassembler starts tracking a frame expected to arrive in
// fragmentCount pieces.
func NewReassembler(fragmentCount int) *Reassembler {
	return &Reassembler{total: fragmentCount, fragments: make(map[uint32][]byte, fragmentCount)}
}

// Add registers one fragment. It returns true once it holds as many distinct
// fragment indices as expected; an index outside 0..total-1 also counts, so
// Assemble is what confirms that exactly those indices are present.
func (r *Reassembler) Add(f FrameFragment) bool {
	r.fragments[f.Index] = f.Payload
	return len(r.fragments) >= r.total
}

// Assemble concatenates fragments 0..total-1 in order. It returns false if
// any index in that range is still missing.
func (r *Reassembler) Assemble() ([]byte, bool) {
	size := 0
	for i := 0; i < r.total; i++ {
		payload, ok := r.fragments[uint32(i)]
		if !ok {
			return nil, false
		}
		size += len(payload)
	}

	out := make([]byte, 0, size)
	for i := 0; i < r.total; i++ {
		out = append(out, r.fragments[uint32(i)]...)
	}
	return out, true
}
