// Package api exposes the dashboard over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"

	"sheetdash/internal/metrics"
	"sheetdash/internal/resolver"
	"sheetdash/internal/service"
)

// Server holds the handler dependencies.
type Server struct {
	svc      *service.Service
	resolver *resolver.Resolver
	metrics  *metrics.Metrics
	timeout  time.Duration
}

// Options configures the router.
type Options struct {
	// RequestTimeout bounds every /api request; 0 disables it.
	RequestTimeout time.Duration
}

// NewServer creates the HTTP layer. m may be nil, which disables /metrics.
func NewServer(svc *service.Service, res *resolver.Resolver, m *metrics.Metrics, opts Options) *Server {
	return &Server{svc: svc, resolver: res, metrics: m, timeout: opts.RequestTimeout}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if s.timeout > 0 {
			r.Use(middleware.Timeout(s.timeout))
		}
		r.Get("/sheets", s.listSheets)
		r.Get("/dashboard", s.getDashboard)
		r.Get("/choropleth", s.getChoropleth)
		r.With(middleware.NoCache).Get("/export.csv", s.exportCSV)
		r.With(middleware.NoCache).Get("/report.xlsx", s.exportReport)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":        "ok",
		"spreadsheetId": s.resolver.SpreadsheetID(),
		"cache":         s.resolver.CacheStats(),
	})
}
