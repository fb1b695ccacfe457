package processor

import (
	"context"

	"github.com/aegroto/remotia-go/frame"
)

// KeyChecker drops a record unless it has key set as a scalar property.
type KeyChecker struct {
	key frame.Key
}

// NewKeyChecker builds a KeyChecker for key.
func NewKeyChecker(key frame.Key) *KeyChecker {
	return &KeyChecker{key: key}
}

// Process passes the record through if key is present, drops it otherwise.
func (k *KeyChecker) Process(ctx context.Context, rec *frame.Record) (*frame.Record, bool) {
	if _, ok := rec.Get(k.key); !ok {
		return nil, false
	}
	return rec, true
}
