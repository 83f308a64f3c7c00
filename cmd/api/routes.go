package main

import (
	"context"
	"net/http"
	"time"

	"marvelous/internal/catalog"
	"marvelous/internal/enrichment"
	"marvelous/internal/httpx"
	"marvelous/internal/metrics"
	"marvelous/internal/person"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	people     *person.HTTPHandler
	enrichment *enrichment.HTTPHandler
	catalog    *catalog.HTTPHandler
}

// readyCheck reports whether a dependency can serve traffic.
type readyCheck func(ctx context.Context) error

func newRouter(h handlers, checks ...readyCheck) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		for _, check := range checks {
			if err := check(ctx); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("GET /metrics", metrics.Handler())

	router.HandleFunc("GET /users", h.people.List)
	router.HandleFunc("POST /users", h.people.Create)
	router.HandleFunc("POST /users/update", h.enrichment.Update)
	router.HandleFunc("GET /users/{id}/comics", h.catalog.ComicsByPerson)
	router.HandleFunc("GET /comics/{id}", h.catalog.ComicByID)
	router.HandleFunc("GET /enrichment/runs/{id}", h.enrichment.GetRun)

	return router
}

// withMiddleware wraps the router; request ids are assigned first so every
// later layer can log them.
func withMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	return httpx.Chain(next,
		httpx.RequestIDMiddleware,
		metrics.InstrumentHandler,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware,
		httpx.CORSMiddleware(allowedOrigins),
		httpx.RequestSizeLimitMiddleware(maxBodyBytes),
	)
}
