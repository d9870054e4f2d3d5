// Package server implements an HTTP proxy that re-exposes the Akismet operations.
//
// The proxy speaks the Akismet wire format: clients POST form encoded (or JSON) fields
// to /1.1/comment-check, /1.1/submit-ham, /1.1/submit-spam and /1.1/verify-key and get
// the same plain text answers and x-akismet-* headers the service would send. The
// server supplies its own API key, blog and test flag unless the request carries them.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/akismet/akismetclient-go/client"
	"github.com/akismet/akismetclient-go/config"
	"github.com/akismet/akismetclient-go/metrics"
	"github.com/akismet/akismetclient-go/protocol"
)

// Settings holds the HTTP side of the proxy configuration
type Settings struct {
	// Listen address, e.g. ":8080"
	Addr string
	// Origin allowed by CORS, empty to disable CORS headers
	CORSAllowedOrigin string
	// Maximum accepted request body size
	MaxBodyBytes int64
	// Grace period for in-flight requests on shutdown
	ShutdownTimeout time.Duration
}

// DefaultSettings returns the settings used when none are given
func DefaultSettings() Settings {
	return Settings{
		Addr:            ":8080",
		MaxBodyBytes:    1 << 20,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server is the Akismet proxy
type Server struct {
	akismet   *config.Config
	blog      *protocol.Blog
	settings  Settings
	doer      client.Doer
	logger    *slog.Logger
	registry  *prometheus.Registry
	collector *metrics.Collector
}

// Option customizes a Server
type Option func(*Server)

// WithDoer replaces the transport used to reach Akismet
func WithDoer(d client.Doer) Option { return func(s *Server) { s.doer = d } }

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

// WithRegistry sets the Prometheus registry the metrics are registered on and served from
func WithRegistry(r *prometheus.Registry) Option { return func(s *Server) { s.registry = r } }

// New creates a proxy forwarding to the service described by cfg, on behalf of blog
func New(cfg *config.Config, blog *protocol.Blog, settings Settings, opts ...Option) (*Server, error) {
	defaults := DefaultSettings()
	if settings.MaxBodyBytes <= 0 {
		settings.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if settings.ShutdownTimeout <= 0 {
		settings.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if settings.Addr == "" {
		settings.Addr = defaults.Addr
	}

	s := &Server{
		akismet:  cfg,
		blog:     blog,
		settings: settings,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.collector = metrics.NewCollector(s.registry)

	if s.doer == nil {
		httpClient, err := client.NewHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
		s.doer = httpClient
	}
	return s, nil
}

// Routes returns the HTTP handler of the proxy
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(NewRecoveryMiddleware(s.logger))
	r.Use(NewRequestIDMiddleware())
	r.Use(NewLoggingMiddleware(s.logger))
	if s.settings.CORSAllowedOrigin != "" {
		r.Use(NewCORSMiddleware(s.settings.CORSAllowedOrigin))
	}

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", metrics.Handler(s.registry))

	r.Route("/1.1", func(r chi.Router) {
		r.Use(NewDecompressMiddleware())
		r.Post("/comment-check", s.handleCommentCheck)
		r.Post("/submit-ham", s.handleSubmit(protocol.SubmitHam))
		r.Post("/submit-spam", s.handleSubmit(protocol.SubmitSpam))
		r.Post("/verify-key", s.handleVerifyKey)
	})

	return gzhttp.GzipHandler(r)
}

// ListenAndServe serves the proxy until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.settings.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("akismet proxy listening", slog.String("addr", s.settings.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.settings.ShutdownTimeout)
	defer cancel()
	s.logger.Info("akismet proxy shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
