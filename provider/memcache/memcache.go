package memcache

import (
	"context"
	"errors"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/unkn0wn-root/wtcache/internal/util"
	pr "github.com/unkn0wn-root/wtcache/provider"
)

// memcached rejects keys longer than 250 bytes or containing whitespace/control bytes.
const maxKeyLen = 250

// Provider stores values in memcached with no expiration.
// Keys memcached would refuse are replaced by a stable hash.
type Provider struct {
	mc *memcache.Client
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	Servers      []string // host:port
	MaxIdleConns int
}

func New(cfg Config) (*Provider, error) {
	if len(cfg.Servers) == 0 {
		return nil, errors.New("memcache provider: at least one server is required")
	}
	mc := memcache.New(cfg.Servers...)
	if cfg.MaxIdleConns > 0 {
		mc.MaxIdleConns = cfg.MaxIdleConns
	}
	return &Provider{mc: mc}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(mc *memcache.Client) *Provider { return &Provider{mc: mc} }

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := p.mc.Get(util.FitKey(key, maxKeyLen))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item.Value, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte) error {
	return p.mc.Set(&memcache.Item{
		Key:        util.FitKey(key, maxKeyLen),
		Value:      value,
		Expiration: 0, // never
	})
}

func (p *Provider) Del(_ context.Context, key string) error {
	err := p.mc.Delete(util.FitKey(key, maxKeyLen))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

// Has uses Touch, which refreshes nothing (expiration stays 0) and does not
// transfer the value.
func (p *Provider) Has(_ context.Context, key string) (bool, error) {
	err := p.mc.Touch(util.FitKey(key, maxKeyLen), 0)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close is a no-op; idle connections are reaped by the client.
func (p *Provider) Close(_ context.Context) error { return nil }
