package store

import (
	"context"
	"errors"
	"fmt"

	c "github.com/unkn0wn-root/wtcache/codec"
	"github.com/unkn0wn-root/wtcache/internal/util"
	"github.com/unkn0wn-root/wtcache/internal/wire"
	pr "github.com/unkn0wn-root/wtcache/provider"
)

// Encoded adapts a byte Provider into a Store[string, V].
//
// Values are serialized with Codec and framed with a small versioned header
// so that bytes written by someone else under the same key are reported as
// corrupt instead of being decoded into garbage. Keys are isolated by
// Namespace: "<ns>:<key>".
type Encoded[V any] struct {
	ns       string
	provider pr.Provider
	codec    c.Codec[V]
}

var (
	_ Store[string, int] = (*Encoded[int])(nil)
	_ Closer             = (*Encoded[int])(nil)
)

// EncodedOptions configures an Encoded store. All fields are required.
type EncodedOptions[V any] struct {
	Namespace string
	Provider  pr.Provider
	Codec     c.Codec[V]
}

func NewEncoded[V any](opts EncodedOptions[V]) (*Encoded[V], error) {
	if opts.Provider == nil {
		return nil, errors.New("store: provider is required")
	}
	if opts.Codec == nil {
		return nil, errors.New("store: codec is required")
	}
	if opts.Namespace == "" {
		return nil, errors.New("store: namespace is required")
	}
	return &Encoded[V]{ns: opts.Namespace, provider: opts.Provider, codec: opts.Codec}, nil
}

func (s *Encoded[V]) GetValue(ctx context.Context, key string) (V, error) {
	var zero V
	raw, ok, err := s.provider.Get(ctx, s.storageKey(key))
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, ErrNotFound
	}
	payload, err := wire.Decode(raw)
	if err != nil {
		return zero, fmt.Errorf("store: key %q: %w", key, err)
	}
	v, err := s.codec.Decode(payload)
	if err != nil {
		return zero, fmt.Errorf("store: decode %q: %w", key, err)
	}
	return v, nil
}

func (s *Encoded[V]) SetValue(ctx context.Context, key string, value V) error {
	payload, err := s.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}
	return s.provider.Set(ctx, s.storageKey(key), wire.Encode(payload))
}

func (s *Encoded[V]) RemoveKey(ctx context.Context, key string) error {
	return s.provider.Del(ctx, s.storageKey(key))
}

func (s *Encoded[V]) ContainsKey(ctx context.Context, key string) (bool, error) {
	return s.provider.Has(ctx, s.storageKey(key))
}

func (s *Encoded[V]) Close(ctx context.Context) error {
	return s.provider.Close(ctx)
}

func (s *Encoded[V]) storageKey(key string) string {
	return util.StorageKey(s.ns, key)
}
