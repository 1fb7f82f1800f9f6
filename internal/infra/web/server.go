package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"sellerhub-agent/internal/infra/notify"
	"sellerhub-agent/internal/usecase"
)

// Server is the agent's local HTTP surface: the dashboard uploads
// spreadsheets here and polls job state; Prometheus scrapes /metrics.
type Server struct {
	submitUC usecase.SubmitUseCase
	jobsUC   usecase.JobsUseCase
	center   *notify.Center
	apiKey   string
	maxBytes int64
	log      *zerolog.Logger

	server *http.Server
}

func NewServer(
	submitUC usecase.SubmitUseCase,
	jobsUC usecase.JobsUseCase,
	center *notify.Center,
	apiKey string,
	maxBytes int64,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		submitUC: submitUC,
		jobsUC:   jobsUC,
		center:   center,
		apiKey:   apiKey,
		maxBytes: maxBytes,
		log:      &l,
	}
}

// Router builds the chi routing tree. Exposed separately so tests can
// drive it without a listener.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/jobs/{type}", s.handleSubmit)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Delete("/jobs/{id}", s.handleRemoveJob)
		r.Get("/jobs/{id}/artifact", s.handleArtifact)
		r.Get("/notifications", s.handleNotifications)
	})

	return r
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("HTTP server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// authMiddleware provides simple Bearer token authentication for the
// agent API.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("agent API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}
		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
