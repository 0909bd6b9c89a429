// Package server serves the documentation page, the document and the search
// API over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/moamenhredeen/oasdoc/internal/app"
	"github.com/moamenhredeen/oasdoc/internal/config"
)

// SpecPath is where the document is served.
const SpecPath = "/spec.json"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithRegistry registers the server metrics with reg and serves reg on
// /metrics. By default the server uses a registry of its own.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// Server is the documentation HTTP server.
type Server struct {
	store    *app.Store
	cfg      config.Server
	logger   *slog.Logger
	registry *prometheus.Registry
	limiter  *rate.Limiter
	pages    *prometheus.CounterVec

	// pageMu serializes activation and rendering of the shared menu state
	pageMu sync.Mutex

	mux    *http.ServeMux
	server *http.Server
}

// New creates a server for store.
func New(store *app.Store, cfg config.Server, opts ...Option) (*Server, error) {
	s := &Server{
		store: store,
		cfg:   cfg,
		mux:   http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(collectors.NewGoCollector())
	}

	s.pages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oasdoc",
		Subsystem: "http",
		Name:      "page_renders_total",
		Help:      "Total documentation page renders by status",
	}, []string{"status"})
	if err := s.registry.Register(s.pages); err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.SearchRate > 0 {
		limit = rate.Limit(cfg.SearchRate)
	}
	burst := cfg.SearchBurst
	if burst < 1 {
		burst = 1
	}
	s.limiter = rate.NewLimiter(limit, burst)

	s.registerRoutes()

	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.logRequests(s.mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handlePage)
	s.mux.HandleFunc("GET /api/menu", s.handleMenu)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	if !s.store.Options.HideDownloadButton {
		s.mux.HandleFunc("GET "+SpecPath, s.handleSpec)
	}
	if s.store.Search != nil {
		s.mux.HandleFunc("GET /api/search", s.handleSearch)
	}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving HTTP requests. It blocks until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("documentation server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer

	s.pageMu.Lock()
	// every page starts from a fresh menu, only ?item= selects an entry
	s.store.Menu.Reset()
	if id := r.URL.Query().Get("item"); id != "" {
		if s.store.Menu.ActivateByID(id) == nil {
			s.logger.Debug("menu item not activated", "item", id)
		}
	}
	specPath := SpecPath
	if s.store.Options.HideDownloadButton {
		specPath = ""
	}
	err := s.store.RenderPage(&buf, specPath)
	s.pageMu.Unlock()

	if err != nil {
		s.pages.WithLabelValues("error").Inc()
		s.logger.Error("failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	s.pages.WithLabelValues("success").Inc()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleSpec(w http.ResponseWriter, r *http.Request) {
	spec, err := s.store.SpecJSON()
	if err != nil {
		s.logger.Error("failed to encode document", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to encode document")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+s.store.Info.DownloadFileName+`"`)
	_, _ = w.Write(spec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
