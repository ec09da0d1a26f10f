package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/go-chi/chi/v5"
)

// withLogging writes one access line per request. Record routes also log
// the matched pattern and the account the request addressed.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &accessRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		log := logger.FromRequest(r)
		event := log.Info()
		if rec.statusOrOK() >= http.StatusInternalServerError {
			event = log.Error()
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				event = event.Str("route", pattern)
			}
			if accountID := rctx.URLParam("accountID"); accountID != "" {
				event = event.Str("account_id", accountID)
			}
		}

		event.
			Str("uri", r.RequestURI).
			Str("method", r.Method).
			Int("status", rec.statusOrOK()).
			Dur("duration", time.Since(start)).
			Int("size", rec.size).
			Msg("record api request")
	})
}
