// Package config loads the wtcached INI file.
//
//	[wtcached]
//	listen_addr    = :8080
//	store          = redis
//	namespace      = app
//	codec          = string
//	workers        = 8
//	queue          = 1024
//	log_level      = info
//	stats_schedule = @every 1m
//	redis_addr     = 127.0.0.1:6379
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/robfig/config"
)

// Section is the INI section every key is read from.
const Section = "wtcached"

// Config file keys
const (
	ListenAddr    = "listen_addr"
	StoreKind     = "store"
	Namespace     = "namespace"
	CodecName     = "codec"
	Workers       = "workers"
	Queue         = "queue"
	LogLevel      = "log_level"
	StatsSchedule = "stats_schedule"

	RedisAddr     = "redis_addr"
	RedisPassword = "redis_password"
	RedisDB       = "redis_db"

	MemcacheServers = "memcache_servers"

	PostgresDSN   = "postgres_dsn"
	PostgresTable = "postgres_table"

	MinioEndpoint  = "minio_endpoint"
	MinioAccessKey = "minio_access_key"
	MinioSecretKey = "minio_secret_key"
	MinioBucket    = "minio_bucket"
	MinioUseSSL    = "minio_use_ssl"

	BigcacheShards = "bigcache_shards"

	RistrettoMaxCost = "ristretto_max_cost"
)

// Stores accepted by the store key.
const (
	StoreMemory    = "memory"
	StoreRedis     = "redis"
	StoreMemcache  = "memcache"
	StorePostgres  = "postgres"
	StoreMinio     = "minio"
	StoreBigcache  = "bigcache"
	StoreRistretto = "ristretto"
)

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Postgres struct {
	DSN   string
	Table string
}

type Minio struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Config struct {
	ListenAddr    string
	Store         string
	Namespace     string
	Codec         string
	Workers       int
	Queue         int
	LogLevel      string
	StatsSchedule string // empty disables the stats job

	Redis            Redis
	MemcacheServers  []string
	Postgres         Postgres
	Minio            Minio
	BigcacheShards   int
	RistrettoMaxCost int64
}

// Default returns the configuration used for keys missing from the file.
func Default() Config {
	return Config{
		ListenAddr:       ":8080",
		Store:            StoreMemory,
		Namespace:        "wtcached",
		Codec:            "string",
		Workers:          runtime.GOMAXPROCS(0),
		Queue:            1024,
		LogLevel:         "info",
		StatsSchedule:    "@every 1m",
		Redis:            Redis{Addr: "127.0.0.1:6379"},
		MemcacheServers:  []string{"127.0.0.1:11211"},
		Postgres:         Postgres{Table: "wtcache_kv"},
		Minio:            Minio{Bucket: "wtcache"},
		BigcacheShards:   1024,
		RistrettoMaxCost: 1 << 30,
	}
}

// Load reads path and validates the result.
func Load(path string) (Config, error) {
	c, err := config.ReadDefault(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if !c.HasSection(Section) {
		return Config{}, fmt.Errorf("config: %s: missing [%s] section", path, Section)
	}

	cfg := Default()
	r := reader{c: c}
	r.str(ListenAddr, &cfg.ListenAddr)
	r.str(StoreKind, &cfg.Store)
	r.str(Namespace, &cfg.Namespace)
	r.str(CodecName, &cfg.Codec)
	r.num(Workers, &cfg.Workers)
	r.num(Queue, &cfg.Queue)
	r.str(LogLevel, &cfg.LogLevel)
	r.str(StatsSchedule, &cfg.StatsSchedule)

	r.str(RedisAddr, &cfg.Redis.Addr)
	r.str(RedisPassword, &cfg.Redis.Password)
	r.num(RedisDB, &cfg.Redis.DB)

	var servers string
	r.str(MemcacheServers, &servers)
	if servers != "" {
		cfg.MemcacheServers = splitList(servers)
	}

	r.str(PostgresDSN, &cfg.Postgres.DSN)
	r.str(PostgresTable, &cfg.Postgres.Table)

	r.str(MinioEndpoint, &cfg.Minio.Endpoint)
	r.str(MinioAccessKey, &cfg.Minio.AccessKey)
	r.str(MinioSecretKey, &cfg.Minio.SecretKey)
	r.str(MinioBucket, &cfg.Minio.Bucket)
	r.flag(MinioUseSSL, &cfg.Minio.UseSSL)

	r.num(BigcacheShards, &cfg.BigcacheShards)

	var maxCost int
	if r.num(RistrettoMaxCost, &maxCost) {
		cfg.RistrettoMaxCost = int64(maxCost)
	}

	if r.err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, r.err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	var errs []error
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%s must be > 0", Workers))
	}
	if c.Queue < 0 {
		errs = append(errs, fmt.Errorf("%s must be >= 0", Queue))
	}
	switch c.Store {
	case StoreMemory, StoreBigcache, StoreRistretto:
	case StoreRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("%s is required for store=redis", RedisAddr))
		}
	case StoreMemcache:
		if len(c.MemcacheServers) == 0 {
			errs = append(errs, fmt.Errorf("%s is required for store=memcache", MemcacheServers))
		}
	case StorePostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, fmt.Errorf("%s is required for store=postgres", PostgresDSN))
		}
	case StoreMinio:
		if c.Minio.Endpoint == "" {
			errs = append(errs, fmt.Errorf("%s is required for store=minio", MinioEndpoint))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}
	return errors.Join(errs...)
}

// reader keeps the first error so Load can read keys without checking each.
type reader struct {
	c   *config.Config
	err error
}

func (r *reader) has(key string) bool {
	return r.err == nil && r.c.HasOption(Section, key)
}

func (r *reader) str(key string, dst *string) {
	if !r.has(key) {
		return
	}
	v, err := r.c.String(Section, key)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = v
}

func (r *reader) num(key string, dst *int) bool {
	if !r.has(key) {
		return false
	}
	v, err := r.c.Int(Section, key)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", key, err)
		return false
	}
	*dst = v
	return true
}

func (r *reader) flag(key string, dst *bool) {
	if !r.has(key) {
		return
	}
	v, err := r.c.Bool(Section, key)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
