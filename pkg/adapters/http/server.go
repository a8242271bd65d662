// Package http exposes the interpreter over a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toodl-app/mind"
	"github.com/toodl-app/mind/api"
	"github.com/toodl-app/mind/internal/metrics"
	"github.com/toodl-app/mind/pkg/domain"
)

// Engine defines the interface for the interpreter core.
type Engine interface {
	Handle(req *domain.MindRequest) *domain.MindResponse
	ModelInfo() mind.ModelInfo
}

// ResponseCache is the optional serving-layer cache. Interpretation is
// deterministic per request, so cached responses never go stale on their own.
type ResponseCache interface {
	Get(ctx context.Context, req *domain.MindRequest) (*domain.MindResponse, error)
	Set(ctx context.Context, req *domain.MindRequest, response *domain.MindResponse) error
}

// Server carries the engine and the serving-layer collaborators.
type Server struct {
	engine     Engine
	cache      ResponseCache
	logger     *slog.Logger
	metrics    *metrics.Metrics
	apiVersion string
}

type Option func(*Server)

// WithCache enables response caching.
func WithCache(cache ResponseCache) Option {
	return func(s *Server) {
		s.cache = cache
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics enables request counting and latency observation. The caller
// owns registration; the /metrics endpoint serves the default registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewHandler creates the HTTP handler for the engine. The embedded OpenAPI
// document is validated here so a broken spec aborts startup instead of
// being served.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	doc, err := api.Load(context.Background())
	if err != nil {
		return nil, err
	}

	server := &Server{
		engine:     engine,
		apiVersion: doc.Info.Version,
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Post("/api/mind/ask", server.Ask)
	r.Get("/openapi.yaml", server.GetSpec)
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Handle("/metrics", promhttp.Handler())

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Ask handles the POST /api/mind/ask request. A failed interpretation is
// still a 200; only malformed input is rejected before reaching the core.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req domain.MindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("ask: invalid request body", "err", err)
		return
	}
	if strings.TrimSpace(req.Utterance) == "" {
		http.Error(w, domain.ErrEmptyUtterance.Error(), http.StatusBadRequest)
		s.logger.Warn("ask: empty utterance rejected")
		return
	}

	ctx := r.Context()
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, &req)
		switch {
		case err == nil:
			w.Header().Set("X-Cache", "hit")
			s.observe(cached, time.Since(start))
			s.writeJSON(w, cached)
			return
		case !errors.Is(err, domain.ErrCacheMiss):
			s.logger.Warn("ask: cache read failed", "err", err)
		}
	}

	response := s.engine.Handle(&req)

	if s.cache != nil {
		if err := s.cache.Set(ctx, &req, response); err != nil {
			s.logger.Warn("ask: cache write failed", "err", err)
		}
	}

	s.observe(response, time.Since(start))
	s.writeJSON(w, response)
}

// GetSpec handles the GET /openapi.yaml request.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(api.Spec())
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{
		"app":         "mind-http",
		"version":     strings.TrimSpace(mind.Version),
		"api_version": s.apiVersion,
		"model":       s.engine.ModelInfo(),
	})
}

func (s *Server) observe(response *domain.MindResponse, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	tool := ""
	if response.Result != nil {
		tool = string(response.Result.Intent.Tool)
	}
	s.metrics.Observe(response.Status, tool, elapsed)
}

func (s *Server) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
