package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

// Protobuf stores proto messages. Encoding is deterministic so equal
// messages produce equal bytes.
type Protobuf[T proto.Message] struct {
	// New returns an empty message to decode into.
	New func() T
	// DiscardUnknown drops fields this binary does not know about.
	DiscardUnknown bool
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{New: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	if c.New == nil {
		var zero T
		return zero, errors.New("codec: protobuf codec has no message constructor")
	}
	m := c.New()
	if err := (proto.UnmarshalOptions{DiscardUnknown: c.DiscardUnknown}).Unmarshal(b, m); err != nil {
		return m, err
	}
	return m, nil
}
