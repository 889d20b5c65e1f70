// Package server exposes detection and the registrar registry over a small
// read-only HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velemoonkon/whodns/pkg/config"
	"github.com/velemoonkon/whodns/pkg/detect"
	"github.com/velemoonkon/whodns/pkg/input"
	"github.com/velemoonkon/whodns/pkg/registry"
)

// Detector runs one detection; *detect.Detector satisfies it
type Detector interface {
	Detect(ctx context.Context, domain string) detect.RegistrarInfo
}

// Options configures a Server
type Options struct {
	Registry *registry.Registry // nil uses registry.Default()
	Logger   *slog.Logger

	// Gatherer backs /metrics. Nil leaves the route unmounted.
	Gatherer prometheus.Gatherer
}

// Server holds the HTTP handlers
type Server struct {
	detector Detector
	registry *registry.Registry
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	router   chi.Router
}

// New builds the server and its routes
func New(d Detector, opts Options) *Server {
	s := &Server{
		detector: d,
		registry: opts.Registry,
		logger:   opts.Logger,
		gatherer: opts.Gatherer,
	}
	if s.registry == nil {
		s.registry = registry.Default()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	s.Register(r)
	s.router = r
	return s
}

// Register mounts the API routes on r
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/detect/{domain}", s.handleDetect)
		r.Get("/registrars", s.handleRegistrars)
		r.Get("/registrars/{code}", s.handleRegistrar)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within config.Server.ShutdownTimeout
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: config.Server.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.Server.ShutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDetect handles GET /v1/detect/{domain}. ?registrable=true reduces
// the domain to its registrable name first.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	domain, err := input.Normalize(chi.URLParam(r, "domain"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.URL.Query().Get("registrable") == "true" {
		if domain, err = input.Registrable(domain); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	info := s.detector.Detect(ctx, domain)

	s.logger.InfoContext(ctx, "domain detected",
		"request_id", middleware.GetReqID(ctx),
		"domain", domain,
		"code", info.RegistrarCode,
		"method", info.Method,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleRegistrars(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.All())
}

func (s *Server) handleRegistrar(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	cfg, ok := s.registry.Get(code)
	if !ok {
		writeError(w, http.StatusNotFound, "no automated configuration for "+code)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// logRequests writes one slog line per request
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.DebugContext(r.Context(), "http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
