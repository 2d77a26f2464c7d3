package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nao1215/jobguard/internal/classifier"
	"github.com/nao1215/jobguard/internal/config"
	"github.com/nao1215/jobguard/internal/extract"
	"github.com/nao1215/jobguard/internal/highlight"
	"github.com/nao1215/jobguard/internal/messaging"
	"github.com/nao1215/jobguard/internal/pipeline"
)

// Defaults for the HTTP server.
const (
	// DefaultMaxRequestSize limits request bodies. Pages are posted whole.
	DefaultMaxRequestSize = 6 * 1024 * 1024 // 6MB

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 10 * time.Second
)

// ServiceChecker reports the classifier status. *classifier.Client
// implements it.
type ServiceChecker interface {
	CheckService(ctx context.Context) classifier.ServiceStatus
}

// Server serves the jobguard HTTP API.
type Server struct {
	router         *chi.Mux
	highlighter    *highlight.Highlighter
	dispatcher     *messaging.Dispatcher
	extractor      *extract.Extractor
	analyzer       pipeline.Analyzer
	checker        ServiceChecker
	store          pipeline.AnalysisStore
	sites          pipeline.SiteConfigs
	signals        pipeline.SignalScanner
	maxPhrases     int
	maxRequestSize int64
	version        string
	logger         *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAnalyzer enables POST /scan using the given classifier.
func WithAnalyzer(analyzer pipeline.Analyzer) Option {
	return func(s *Server) {
		s.analyzer = analyzer
	}
}

// WithServiceChecker adds the classifier status to GET /health.
func WithServiceChecker(checker ServiceChecker) Option {
	return func(s *Server) {
		s.checker = checker
	}
}

// WithStore records analyses made through POST /scan.
func WithStore(store pipeline.AnalysisStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithSites applies per-site settings to POST /scan.
func WithSites(sites pipeline.SiteConfigs) Option {
	return func(s *Server) {
		s.sites = sites
	}
}

// WithSignals adds local signal highlights to POST /scan.
func WithSignals(scanner pipeline.SignalScanner) Option {
	return func(s *Server) {
		s.signals = scanner
	}
}

// WithExtractor sets the text extractor used by POST /scan.
func WithExtractor(extractor *extract.Extractor) Option {
	return func(s *Server) {
		s.extractor = extractor
	}
}

// WithMaxPhrases caps the classifier phrases highlighted by POST /scan.
func WithMaxPhrases(n int) Option {
	return func(s *Server) {
		s.maxPhrases = n
	}
}

// WithMaxRequestSize limits request bodies. Non-positive values are ignored.
func WithMaxRequestSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxRequestSize = n
		}
	}
}

// WithVersion sets the version reported by GET /health.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// New creates a Server and builds its routes.
func New(opts ...Option) *Server {
	s := &Server{
		maxPhrases:     config.DefaultMaxPhrases,
		maxRequestSize: DefaultMaxRequestSize,
		version:        "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.extractor == nil {
		s.extractor = extract.New()
	}
	s.highlighter = highlight.New(highlight.WithLogger(s.logger))
	s.dispatcher = messaging.NewDispatcher(
		messaging.WithHighlighter(s.highlighter),
		messaging.WithLogger(s.logger),
	)
	s.router = s.buildRouter()
	return s
}

// buildRouter wires middleware and handlers.
func (s *Server) buildRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Use(middleware.RequestSize(s.maxRequestSize))

		r.Post("/highlight", s.handleHighlight)
		r.Post("/message", s.handleMessage)
		r.Post("/scan", s.handleScan)
	})

	return r
}

// requestLogger logs each request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
