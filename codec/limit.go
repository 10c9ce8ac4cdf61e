package codec

import (
	"errors"
	"fmt"
)

// ErrTooLarge is returned by LimitCodec when a payload exceeds its limit.
var ErrTooLarge = errors.New("codec: payload too large")

// LimitCodec bounds payload sizes around Inner. A limit <= 0 disables that
// direction.
//
// MaxEncode stops a single oversized value from reaching the backing store.
// MaxDecode guards against oversized bytes written by other clients of a
// shared store; Inner is not called for them.
type LimitCodec[V any] struct {
	Inner     Codec[V]
	MaxEncode int
	MaxDecode int
}

func (c LimitCodec[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.MaxEncode > 0 && len(b) > c.MaxEncode {
		return nil, fmt.Errorf("%w: encoded %d > %d", ErrTooLarge, len(b), c.MaxEncode)
	}
	return b, nil
}

func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
