// Package server provides the HTTP REST API for lead collection, scoring
// and outreach.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/alexryan/leadscout/internal/agents"
	"github.com/alexryan/leadscout/internal/cache"
	"github.com/alexryan/leadscout/internal/collector"
	"github.com/alexryan/leadscout/internal/db"
	"github.com/alexryan/leadscout/internal/metrics"
	"github.com/alexryan/leadscout/internal/outreach"
	"github.com/alexryan/leadscout/internal/tasks"
)

// Task kinds the server enqueues.
const (
	TaskBuildProfile = "profile.build"
	TaskAnalyze      = "intelligence.analyze"
)

// Config holds server configuration
type Config struct {
	Port int
}

// Deps carries the wired components the handlers depend on. Analyst,
// Generator and Mailer may be nil when their backing services are not
// configured; the corresponding endpoints answer 503.
type Deps struct {
	DB        *db.DB
	Cache     cache.Store
	Collector *collector.Collector
	Analyst   *agents.Analyst
	Generator *agents.Generator
	Mailer    outreach.Sender
	Runner    *tasks.Runner
	Logger    *zap.Logger
	Metrics   *metrics.Manager
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server

	db        *db.DB
	cache     cache.Store
	collector *collector.Collector
	analyst   *agents.Analyst
	generator *agents.Generator
	mailer    outreach.Sender
	runner    *tasks.Runner
	logger    *zap.Logger
	metrics   *metrics.Manager
}

// New creates a new server instance
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		db:        deps.DB,
		cache:     deps.Cache,
		collector: deps.Collector,
		analyst:   deps.Analyst,
		generator: deps.Generator,
		mailer:    deps.Mailer,
		runner:    deps.Runner,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
	}

	mux := http.NewServeMux()

	// Synchronous collection endpoints
	mux.HandleFunc("POST /collect/company", s.handleCollectCompany)
	mux.HandleFunc("POST /collect/contacts", s.handleCollectContacts)

	// Companies CRUD
	mux.HandleFunc("POST /companies", s.handleCreateCompany)
	mux.HandleFunc("GET /companies", s.handleListCompanies)
	mux.HandleFunc("GET /companies/{id}", s.handleGetCompany)
	mux.HandleFunc("DELETE /companies/{id}", s.handleDeleteCompany)
	mux.HandleFunc("GET /companies/{id}/contacts", s.handleListContacts)

	// Profile building
	mux.HandleFunc("POST /companies/{id}/profile", s.handleBuildProfile)
	mux.HandleFunc("POST /companies/{id}/profile/sync", s.handleBuildProfileSync)

	// Intelligence and outreach
	mux.HandleFunc("POST /companies/{id}/intelligence", s.handleAnalyzeCompany)
	mux.HandleFunc("POST /companies/{id}/intelligence/sync", s.handleAnalyzeCompanySync)
	mux.HandleFunc("GET /companies/{id}/intelligence", s.handleGetIntelligence)
	mux.HandleFunc("POST /companies/{id}/outreach", s.handleGenerateOutreach)

	// Tasks and operations
	mux.HandleFunc("GET /tasks/{id}", s.handleGetTask)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	if s.runner != nil {
		s.registerTaskHandlers()
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withMetrics(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // profile builds can scrape
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the composed handler stack, used by httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if s.runner != nil {
		if err := s.runner.Shutdown(ctx); err != nil {
			s.logger.Warn("task runner drain incomplete", zap.Error(err))
		}
	}
	s.logger.Info("server stopped")
	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

// withMetrics records request counters and durations
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.URL.Path
		if pattern := r.Pattern; pattern != "" {
			route = pattern
		}
		s.metrics.RecordHTTPRequest(r.Method, route, fmt.Sprintf("%d", rec.status), time.Since(start).Seconds())
	})
}
