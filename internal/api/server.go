// Package api implements the Arogya dev server: the HTTP surface the TUI
// client talks to. It wires the consultation engine, the store and the PDF
// report service behind a chi router under the /api prefix.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arogya-health/arogya/internal/engine"
	"github.com/arogya-health/arogya/internal/report"
	"github.com/arogya-health/arogya/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8799"

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Opts holds configuration options for the server.
type Opts struct {
	Addr    string
	Store   store.Store
	Engine  *engine.Engine
	Reports *report.Service
}

// Option configures server construction.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithStore sets the persistence backend. Required.
func WithStore(s store.Store) Option {
	return func(o *Opts) { o.Store = s }
}

// WithEngine sets the consultation engine. Required.
func WithEngine(e *engine.Engine) Option {
	return func(o *Opts) { o.Engine = e }
}

// WithReports sets the PDF report service. Required.
func WithReports(r *report.Service) Option {
	return func(o *Opts) { o.Reports = r }
}

// Server is the Arogya dev server.
type Server struct {
	addr    string
	st      store.Store
	engine  *engine.Engine
	reports *report.Service
	httpSrv *http.Server
}

// NewServer creates a dev server from the given options.
func NewServer(opts ...Option) (*Server, error) {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("server requires a store")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("server requires an engine")
	}
	if cfg.Reports == nil {
		return nil, fmt.Errorf("server requires a report service")
	}
	return &Server{addr: cfg.Addr, st: cfg.Store, engine: cfg.Engine, reports: cfg.Reports}, nil
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.statusHandler)
		r.Get("/languages", s.languagesHandler)
		r.Post("/sessions", s.createSessionHandler)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSessionHandler)
			r.Post("/language", s.setLanguageHandler)
			r.Post("/messages", s.sendMessageHandler)
			r.Get("/messages", s.getMessagesHandler)
			r.Get("/health-guide", s.getHealthGuideHandler)
			r.Post("/generate-pdf", s.generatePDFHandler)
			r.Post("/feedback", s.feedbackHandler)
		})
	})
	r.Get("/reports/{filename}", s.downloadReportHandler)
	return r
}

// Run starts the server and blocks until the context is canceled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.Run: dev server listening", "addr", s.addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("Server.Run: shutting down")
	return s.httpSrv.Shutdown(shutdownCtx)
}

// corsMiddleware allows cross-origin access from local frontends.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
