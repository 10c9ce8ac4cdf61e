package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/unkn0wn-root/wtcache"
)

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				writeJSON(w, http.StatusInternalServerError, errorEnvelope{
					Err: newAppError(http.StatusInternalServerError, CodeInternalError, "panic recovered"),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func accessLog(l wtcache.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			l.Info("access.log", wtcache.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
				"bytes":       ww.BytesWritten(),
				"request_id":  middleware.GetReqID(r.Context()),
			})
		})
	}
}
