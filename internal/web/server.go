package web

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vbonduro/menumate/internal/dispatch"
	"github.com/vbonduro/menumate/internal/pending"
	"github.com/vbonduro/menumate/internal/service"
)

const (
	serviceName    = "MenuMate - AI Menu & Restaurant Advisor"
	serviceVersion = "1.0.0"
)

// pipeline is the subset of service.Orchestrator the webhook requires.
type pipeline interface {
	Process(ctx context.Context, job service.Job) service.Outcome
}

type notifier interface {
	SendDirect(ctx context.Context, to, text string) error
}

type taskRunner interface {
	Go(ctx context.Context, name string, fn func(ctx context.Context) error) *dispatch.Task
}

type signatureValidator interface {
	Valid(fullURL string, form url.Values, signature string) bool
}

type Server struct {
	pipeline      pipeline
	notifier      notifier
	pending       pending.Cache
	tasks         taskRunner
	validator     signatureValidator
	publicBaseURL string
	now           func() time.Time
	mux           *http.ServeMux
	logger        *slog.Logger
}

type Option func(*Server)

// WithSignatureValidation rejects webhooks whose Twilio signature does not
// match publicBaseURL plus the request path.
func WithSignatureValidation(v signatureValidator, publicBaseURL string) Option {
	return func(s *Server) {
		s.validator = v
		s.publicBaseURL = publicBaseURL
	}
}

// WithClock overrides the time source used to stamp pending entries.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func NewServer(p pipeline, n notifier, cache pending.Cache, tasks taskRunner, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		pipeline: p,
		notifier: n,
		pending:  cache,
		tasks:    tasks,
		now:      time.Now,
		mux:      http.NewServeMux(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	// GET patterns also match HEAD.
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /webhook", s.handleWebhook)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// HTTPServer wraps s in an http.Server with the service's timeouts. The
// caller owns ListenAndServe and Shutdown.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
