// Package redis stores entries as plain Redis strings with no expiry.
package redis

import (
	"context"
	"errors"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/wtcache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

type Provider struct {
	rdb    goredis.UniversalClient
	owned  bool
	unlink bool

	closeOnce sync.Once
	closeErr  error
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	Client goredis.UniversalClient
	// OwnClient makes Close close Client. Leave false for shared clients.
	OwnClient bool
	// Unlink removes keys with UNLINK, which frees large values off the
	// server's main thread. Needs Redis 4+.
	Unlink bool
	// Ping checks connectivity before New returns.
	Ping bool
}

func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Ping {
		if err := cfg.Client.Ping(ctx).Err(); err != nil {
			return nil, err
		}
	}
	return &Provider{rdb: cfg.Client, owned: cfg.OwnClient, unlink: cfg.Unlink}, nil
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return b, true, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte) error {
	return p.rdb.Set(ctx, key, value, 0).Err() // no expiry
}

func (p *Provider) Del(ctx context.Context, key string) error {
	if p.unlink {
		return p.rdb.Unlink(ctx, key).Err()
	}
	return p.rdb.Del(ctx, key).Err()
}

func (p *Provider) Has(ctx context.Context, key string) (bool, error) {
	n, err := p.rdb.Exists(ctx, key).Result()
	return n == 1, err
}

func (p *Provider) Close(context.Context) error {
	if !p.owned {
		return nil
	}
	p.closeOnce.Do(func() {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			p.closeErr = err
		}
	})
	return p.closeErr
}
