// Package server serves the search page, the results fragment, a JSON API,
// health and Prometheus metrics over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cableblog/sitesearch/internal/metrics"
	"github.com/cableblog/sitesearch/internal/render"
	"github.com/cableblog/sitesearch/internal/search"
)

// DefaultShutdownTimeout bounds how long in-flight requests may take to
// finish after shutdown starts.
const DefaultShutdownTimeout = 5 * time.Second

// Config configures the HTTP server.
type Config struct {
	Addr            string
	BaseURL         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Metrics enables request collectors and the /metrics route when set.
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Server is the search HTTP server.
type Server struct {
	cfg     Config
	handler *search.Handler
	html    render.HTML
	logger  *slog.Logger

	mu   sync.Mutex
	addr net.Addr
}

// New creates a server answering queries from h.
func New(h *search.Handler, cfg Config) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "server")
	}
	return &Server{
		cfg:     cfg,
		handler: h,
		html:    render.HTML{BaseURL: cfg.BaseURL},
		logger:  logger,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /search", s.handleFragment)
	mux.HandleFunc("GET /api/search", s.handleAPI)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.cfg.Metrics != nil {
		mux.Handle("GET /metrics", s.cfg.Metrics.Handler())
	}

	var chain http.Handler = mux
	chain = logRequests(s.logger)(chain)
	if s.cfg.Metrics != nil {
		chain = Metrics(s.cfg.Metrics)(chain)
	}
	return chain
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
// It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  requestBase(ctx),
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info("server_shutdown_started")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("server_listening", slog.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server_stopped")
	return nil
}

// requestBase derives request contexts from ctx without its cancellation.
// Shutdown bounds in-flight requests through ShutdownTimeout instead.
func requestBase(ctx context.Context) func(net.Listener) context.Context {
	base := context.WithoutCancel(ctx)
	return func(net.Listener) context.Context { return base }
}

// Addr returns the address being served, or nil before Serve starts.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}
