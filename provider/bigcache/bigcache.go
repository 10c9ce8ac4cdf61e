package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/wtcache/provider"
)

// Provider keeps values off the Go heap in BigCache shards.
//
// To act as a backing store it is configured so that nothing leaves on its
// own: no clean window and no hard size limit. Entries go away only through
// Del.
type Provider struct {
	c *bc.BigCache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	Shards             int // power of two; 0 => 1024
	MaxEntriesInWindow int
	MaxEntrySize       int
}

func New(ctx context.Context, cfg Config) (*Provider, error) {
	// LifeWindow is irrelevant while CleanWindow is 0 (no expiry sweep).
	conf := bc.DefaultConfig(24 * time.Hour)
	conf.CleanWindow = 0
	conf.HardMaxCacheSize = 0
	conf.Verbose = false
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte) error {
	return p.c.Set(key, value)
}

func (p *Provider) Del(_ context.Context, key string) error {
	err := p.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (p *Provider) Has(_ context.Context, key string) (bool, error) {
	_, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}

// Len returns the number of entries held by BigCache.
func (p *Provider) Len() int { return p.c.Len() }
