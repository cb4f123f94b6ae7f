package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/station-climatology/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// SummaryReader looks up the latest climatology per station.
type SummaryReader interface {
	Get(station string) (domain.Climatology, bool)
	Stations() []string
}

// RateLimit bounds requests to the station API. Health and metrics routes are not limited.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

// Server exposes health, readiness, metrics, and station climatology endpoints.
type Server struct {
	httpServer *http.Server
	summaries  SummaryReader
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and /stations routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, summaries SummaryReader, limit RateLimit, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		summaries: summaries,
		limiter:   rate.NewLimiter(rate.Limit(limit.PerSecond), limit.Burst),
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /stations", s.limited(s.handleStations))
	mux.HandleFunc("GET /stations/{station}/climatology", s.limited(s.handleClimatology))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleStations(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string][]string{"stations": s.summaries.Stations()})
}

func (s *Server) handleClimatology(w http.ResponseWriter, r *http.Request) {
	station := r.PathValue("station")
	summary, ok := s.summaries.Get(station)
	if !ok {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error": "no climatology for station " + station,
		})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.logger.Debug("request rate limited", "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			sharedobs.WriteJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next(w, r)
	}
}
