// Package httpapi exposes a string cache over HTTP.
//
//	GET    /keys             cached key snapshot
//	GET    /keys/{key}       GetValue
//	HEAD   /keys/{key}       ContainsKey (?cached=1 for ContainsKeyInCache)
//	PUT    /keys/{key}       SetValue, body {"value": "..."}
//	DELETE /keys/{key}       RemoveKey
//	POST   /keys/{key}/evict EvictKey
//	GET    /health
//	GET    /metrics          when Options.Metrics is set
package httpapi

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/unkn0wn-root/wtcache"
)

type Options struct {
	Cache   wtcache.Cache[string, string]
	Logger  wtcache.Logger // access log; nil disables it
	Metrics http.Handler
	// Timeout bounds each request. Zero means no limit.
	Timeout time.Duration
}

// Server is the HTTP front-end. It implements http.Handler.
type Server struct {
	router   chi.Router
	draining atomic.Bool
}

func New(opts Options) *Server {
	s := &Server{}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(recoverer)
	if opts.Logger != nil {
		r.Use(accessLog(opts.Logger))
	}
	if opts.Timeout > 0 {
		r.Use(middleware.Timeout(opts.Timeout))
	}

	r.Get("/health", s.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	(&keysHandler{c: opts.Cache}).mount(r)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetDraining makes /health report 503 so load balancers stop routing here
// before shutdown.
func (s *Server) SetDraining(v bool) { s.draining.Store(v) }

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	if s.draining.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "draining"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
