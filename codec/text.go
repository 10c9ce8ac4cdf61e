package codec

import (
	"encoding/json"
	"errors"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned by String.Decode for bytes that are not UTF-8.
var ErrInvalidUTF8 = errors.New("codec: invalid UTF-8")

// JSON encodes values with encoding/json. The zero value is ready to use.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }

func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	if err := json.Unmarshal(b, &v); err != nil {
		return v, err
	}
	return v, nil
}

// String stores Go strings as their UTF-8 bytes.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }

func (String) Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// Bytes stores []byte values as is. Decode copies, so the returned slice
// never aliases a provider buffer.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }

func (Bytes) Decode(b []byte) ([]byte, error) {
	if b == nil {
		return nil, nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}
