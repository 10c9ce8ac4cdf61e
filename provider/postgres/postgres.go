package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	pr "github.com/unkn0wn-root/wtcache/provider"
)

const defaultTable = "wtcache_kv"

// Provider keeps values in a two-column PostgreSQL table:
//
//	key   text  PRIMARY KEY
//	value bytea NOT NULL
type Provider struct {
	db      *sql.DB
	closeDB bool

	getQ, setQ, delQ, hasQ string
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	// Either DB or DSN must be set. With DSN the provider opens (and owns) the pool.
	DB  *sql.DB
	DSN string

	Table        string // default "wtcache_kv"
	CreateTable  bool   // run CREATE TABLE IF NOT EXISTS on New
	MaxOpenConns int
}

func New(ctx context.Context, cfg Config) (*Provider, error) {
	db := cfg.DB
	owned := false
	if db == nil {
		if cfg.DSN == "" {
			return nil, errors.New("postgres provider: DB or DSN is required")
		}
		var err error
		db, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, err
		}
		owned = true
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	table := cfg.Table
	if table == "" {
		table = defaultTable
	}
	t := pq.QuoteIdentifier(table)
	p := &Provider{
		db:      db,
		closeDB: owned,
		getQ:    fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, t),
		setQ: fmt.Sprintf(`INSERT INTO %s (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, t),
		delQ: fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, t),
		hasQ: fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE key = $1)`, t),
	}

	if cfg.CreateTable {
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	key   text PRIMARY KEY,
	value bytea NOT NULL
)`, t)
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			if owned {
				_ = db.Close()
			}
			return nil, fmt.Errorf("postgres provider: create table: %w", err)
		}
	}
	return p, nil
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var b []byte
	err := p.db.QueryRowContext(ctx, p.getQ, key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{} // NOT NULL column
	}
	_, err := p.db.ExecContext(ctx, p.setQ, key, value)
	return err
}

func (p *Provider) Del(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, p.delQ, key)
	return err
}

func (p *Provider) Has(ctx context.Context, key string) (bool, error) {
	var ok bool
	if err := p.db.QueryRowContext(ctx, p.hasQ, key).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Close closes the pool only when the provider opened it from a DSN.
func (p *Provider) Close(_ context.Context) error {
	if p.closeDB {
		return p.db.Close()
	}
	return nil
}
