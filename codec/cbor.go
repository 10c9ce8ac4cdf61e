package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR encodes values with fxamacker/cbor. Build it with NewCBOR; the zero
// value has no modes and panics on use.
//
// The decoder rejects duplicate map keys and deep nesting, since a shared
// backing store may hold bytes this process never wrote.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

// NewCBOR builds a CBOR codec. deterministic selects RFC 8949 core
// deterministic encoding (sorted map keys, shortest forms); otherwise the
// preferred unsorted encoding is used. Times are written as RFC 3339 text.
func NewCBOR[V any](deterministic bool) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels: 32,
	}.DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	if err := c.dec.Unmarshal(b, &v); err != nil {
		return v, err
	}
	return v, nil
}
