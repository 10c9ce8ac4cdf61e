// Package codec serializes cache values for byte-oriented backing stores.
package codec

import "fmt"

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// ByName resolves a codec from configuration: "json", "msgpack", "cbor",
// "cbor-det" (deterministic CBOR), and for V=string or V=[]byte also
// "string" / "bytes".
func ByName[V any](name string) (Codec[V], error) {
	switch name {
	case "json":
		return JSON[V]{}, nil
	case "msgpack":
		return Msgpack[V]{}, nil
	case "cbor", "cbor-det":
		cc, err := NewCBOR[V](name == "cbor-det")
		if err != nil {
			return nil, err
		}
		return cc, nil
	case "string":
		if cc, ok := any(String{}).(Codec[V]); ok {
			return cc, nil
		}
	case "bytes":
		if cc, ok := any(Bytes{}).(Codec[V]); ok {
			return cc, nil
		}
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
	var zero V
	return nil, fmt.Errorf("codec: %q does not apply to %T", name, zero)
}
