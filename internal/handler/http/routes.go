package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, withGZip)

	// routes without authorization
	router.Get("/api/health", h.health)

	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/records", h.queryRecords)
		r.Get("/api/records/{accountID}", h.getRecord)
		if h.checkHashes {
			r.With(h.recordHashing).Put("/api/records/{accountID}", h.putRecord)
		} else {
			r.Put("/api/records/{accountID}", h.putRecord)
		}
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
