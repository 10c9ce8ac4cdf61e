package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/wtcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	FillDiscardedEvery uint64
	EvictMissEvery     uint64
	// Log every eviction/removal at debug level.
	LogEvictions bool
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

// Hooks logs cache events through slog. Hits and misses are not logged.
type Hooks struct {
	l    *slog.Logger
	opts Options

	fillCtr      atomic.Uint64
	evictMissCtr atomic.Uint64
}

var _ wtcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(key any) string {
	k := fmt.Sprint(key)
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit()  {}
func (h *Hooks) Miss() {}

func (h *Hooks) FillDiscarded(key any) {
	if h.l == nil || !sample(h.opts.FillDiscardedEvery, &h.fillCtr) {
		return
	}
	h.l.Debug("wtcache.fill_discarded",
		"key", h.redact(key))
}

func (h *Hooks) StoreError(op string, key any, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("wtcache.store_error",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) Evicted(reason string) {
	if h.l == nil || !h.opts.LogEvictions {
		return
	}
	h.l.Debug("wtcache.evicted",
		"reason", reason)
}

func (h *Hooks) EvictMiss(key any) {
	if h.l == nil || !sample(h.opts.EvictMissEvery, &h.evictMissCtr) {
		return
	}
	h.l.Info("wtcache.evict_miss",
		"key", h.redact(key))
}
