// Package promhooks exports wtcache events as Prometheus metrics.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/unkn0wn-root/wtcache"
)

// Hooks counts cache events. Register it with Register before use.
type Hooks struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	fillDiscarded prometheus.Counter
	evictMisses   prometheus.Counter
	storeErrors   *prometheus.CounterVec
	evictions     *prometheus.CounterVec
}

var _ wtcache.Hooks = (*Hooks)(nil)

func New(namespace string) *Hooks {
	makeC := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	h := &Hooks{
		hits:          makeC("get_hit_total", "Number of GetValue calls served from memory"),
		misses:        makeC("get_miss_total", "Number of GetValue calls that went to the backing store"),
		fillDiscarded: makeC("fill_discarded_total", "Number of fetched values dropped because the key was cached concurrently"),
		evictMisses:   makeC("evict_miss_total", "Number of EvictKey calls for keys that were not cached"),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Number of failed backing store calls",
		}, []string{"op"}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evicted_total",
			Help:      "Number of keys that left memory",
		}, []string{"reason"}),
	}

	// pre-create label values so they export as 0
	for _, op := range []string{"get", "set", "remove", "contains"} {
		h.storeErrors.WithLabelValues(op)
	}
	for _, r := range []string{"evict", "remove"} {
		h.evictions.WithLabelValues(r)
	}
	return h
}

// Register adds the counters to reg.
func (h *Hooks) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		h.hits, h.misses, h.fillDiscarded, h.evictMisses, h.storeErrors, h.evictions,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEntries exports a gauge reading the live entry count from size,
// typically a Cache's Len method.
func RegisterEntries(reg prometheus.Registerer, namespace string, size func() int) error {
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "entries",
		Help:      "Number of cached entries",
	}, func() float64 { return float64(size()) }))
}

func (h *Hooks) Hit()                  { h.hits.Inc() }
func (h *Hooks) Miss()                 { h.misses.Inc() }
func (h *Hooks) FillDiscarded(any)     { h.fillDiscarded.Inc() }
func (h *Hooks) EvictMiss(any)         { h.evictMisses.Inc() }
func (h *Hooks) Evicted(reason string) { h.evictions.WithLabelValues(reason).Inc() }
func (h *Hooks) StoreError(op string, _ any, _ error) {
	h.storeErrors.WithLabelValues(op).Inc()
}
