package postgres

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestNewRequiresDBOrDSN(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without DB or DSN")
	}
}

func TestQueriesQuoteTable(t *testing.T) {
	// sql.Open does not dial; no server needed.
	p, err := New(context.Background(), Config{DSN: "postgres://localhost/none?sslmode=disable", Table: `odd"name`})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close(context.Background())

	for _, q := range []string{p.getQ, p.setQ, p.delQ, p.hasQ} {
		if !strings.Contains(q, `"odd""name"`) {
			t.Fatalf("table not quoted in %q", q)
		}
	}
}

// TestLiveRoundTrip runs against a real server when WTCACHE_POSTGRES_DSN is set.
func TestLiveRoundTrip(t *testing.T) {
	dsn := os.Getenv("WTCACHE_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("WTCACHE_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	p, err := New(ctx, Config{DSN: dsn, Table: "wtcache_kv_test", CreateTable: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Close(ctx) })

	const k = "k"
	_ = p.Del(ctx, k)
	if _, ok, err := p.Get(ctx, k); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if err := p.Set(ctx, k, []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := p.Set(ctx, k, []byte("two")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if b, ok, err := p.Get(ctx, k); err != nil || !ok || string(b) != "two" {
		t.Fatalf("Get: %q ok=%v err=%v", b, ok, err)
	}
	if ok, err := p.Has(ctx, k); err != nil || !ok {
		t.Fatalf("Has: ok=%v err=%v", ok, err)
	}
	if err := p.Del(ctx, k); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if ok, err := p.Has(ctx, k); err != nil || ok {
		t.Fatalf("Has after Del: ok=%v err=%v", ok, err)
	}
}
