// Package ristretto keeps entries in an in-process Ristretto cache.
//
// Ristretto is bounded by MaxCost and may refuse a write (full set buffer)
// or, once full, displace older entries through its admission policy. A
// refused write is reported as provider.ErrRejected so the cache never holds
// a value the store lost; displaced entries read as misses. Size MaxCost for
// the whole working set when using it as a backing store.
package ristretto

import (
	"context"
	"errors"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/wtcache/provider"
)

type Provider struct {
	c *rc.Cache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	// MaxCost is the byte budget; each entry costs len(value).
	MaxCost int64
	// NumCounters defaults to MaxCost/100, i.e. ten counters per expected
	// entry at an average value size of 1KB.
	NumCounters int64
	// BufferItems defaults to 64, the value Ristretto recommends.
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Provider, error) {
	if cfg.MaxCost <= 0 {
		return nil, errors.New("ristretto provider: MaxCost must be > 0")
	}
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = max(cfg.MaxCost/100, 1000)
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = 64
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        cfg.BufferItems,
		Metrics:            cfg.Metrics,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, errors.New("ristretto provider: unexpected entry type")
	}
	return b, true, nil
}

// Set blocks until Ristretto applied the write so a following Get sees it.
func (p *Provider) Set(_ context.Context, key string, value []byte) error {
	if !p.c.Set(key, value, int64(len(value))) {
		return pr.ErrRejected
	}
	p.c.Wait()
	return nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Del(key)
	return nil
}

func (p *Provider) Has(_ context.Context, key string) (bool, error) {
	_, ok := p.c.Get(key)
	return ok, nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Close()
	return nil
}

// Metrics returns Ristretto's counters, or nil unless Config.Metrics is set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
