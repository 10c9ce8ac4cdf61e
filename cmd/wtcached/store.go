package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/unkn0wn-root/wtcache/codec"
	"github.com/unkn0wn-root/wtcache/internal/config"
	"github.com/unkn0wn-root/wtcache/provider"
	bcprov "github.com/unkn0wn-root/wtcache/provider/bigcache"
	mcprov "github.com/unkn0wn-root/wtcache/provider/memcache"
	minioprov "github.com/unkn0wn-root/wtcache/provider/minio"
	pgprov "github.com/unkn0wn-root/wtcache/provider/postgres"
	rdprov "github.com/unkn0wn-root/wtcache/provider/redis"
	riprov "github.com/unkn0wn-root/wtcache/provider/ristretto"
	"github.com/unkn0wn-root/wtcache/store"
)

// openStore builds the backing store named by cfg.Store.
func openStore(ctx context.Context, cfg config.Config) (store.Store[string, string], error) {
	if cfg.Store == config.StoreMemory {
		return store.NewMemory[string, string](), nil
	}

	p, err := openProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s provider: %w", cfg.Store, err)
	}
	cc, err := codec.ByName[string](cfg.Codec)
	if err != nil {
		_ = p.Close(ctx)
		return nil, err
	}
	s, err := store.NewEncoded[string](store.EncodedOptions[string]{
		Namespace: cfg.Namespace,
		Provider:  p,
		Codec:     cc,
	})
	if err != nil {
		_ = p.Close(ctx)
		return nil, err
	}
	return s, nil
}

func openProvider(ctx context.Context, cfg config.Config) (provider.Provider, error) {
	switch cfg.Store {
	case config.StoreRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		p, err := rdprov.New(ctx, rdprov.Config{Client: rdb, OwnClient: true, Unlink: true, Ping: true})
		if err != nil {
			_ = rdb.Close()
			return nil, err
		}
		return p, nil
	case config.StoreMemcache:
		return mcprov.New(mcprov.Config{Servers: cfg.MemcacheServers})
	case config.StorePostgres:
		return pgprov.New(ctx, pgprov.Config{
			DSN:         cfg.Postgres.DSN,
			Table:       cfg.Postgres.Table,
			CreateTable: true,
		})
	case config.StoreMinio:
		return minioprov.New(ctx, minioprov.Config{
			Endpoint:        cfg.Minio.Endpoint,
			AccessKeyID:     cfg.Minio.AccessKey,
			SecretAccessKey: cfg.Minio.SecretKey,
			UseSSL:          cfg.Minio.UseSSL,
			Bucket:          cfg.Minio.Bucket,
			CreateBucket:    true,
		})
	case config.StoreBigcache:
		return bcprov.New(ctx, bcprov.Config{Shards: cfg.BigcacheShards})
	case config.StoreRistretto:
		return riprov.New(riprov.Config{MaxCost: cfg.RistrettoMaxCost})
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
