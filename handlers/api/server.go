package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/cliplens/cliplens/config"
	"github.com/cliplens/cliplens/middleware"
	"github.com/cliplens/cliplens/services/analysis"
	"github.com/cliplens/cliplens/validation"

	"github.com/sirupsen/logrus"
)

type Server struct {
	analysis    *AnalysisHandler
	credentials *CredentialsHandler
	config      *config.Config
	logger      *logrus.Logger
	server      *http.Server
	startTime   time.Time
}

type ServerOption func(*Server)

// NewServer creates the API server with the provided services and options.
func NewServer(cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		config:    cfg,
		logger:    logrus.StandardLogger(),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// WithServices sets up the handlers with the provided analysis service.
func WithServices(analysisSvc analysis.Service) ServerOption {
	return func(s *Server) {
		validator := validation.NewValidator(s.config)
		s.analysis = NewAnalysisHandler(analysisSvc, validator)
		s.credentials = NewCredentialsHandler(validator)
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("port", s.config.ServerPort).Info("Starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	s.addV1Routes(mux)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.middleware(mux)
}

func (s *Server) addV1Routes(mux *http.ServeMux) {
	const v1Prefix = "/api/v1"

	mux.HandleFunc("POST "+v1Prefix+"/analyze", s.analysis.HandleAnalyze)
	mux.HandleFunc("GET "+v1Prefix+"/analysis/{videoID}", s.analysis.HandleGetAnalysis)
	mux.HandleFunc("DELETE "+v1Prefix+"/analysis/{videoID}", s.analysis.HandleDeleteAnalysis)
	mux.HandleFunc("GET "+v1Prefix+"/analyses", s.analysis.HandleListAnalyses)
	mux.HandleFunc("DELETE "+v1Prefix+"/analyses", s.analysis.HandleClearAnalyses)

	mux.HandleFunc("POST "+v1Prefix+"/credentials/verify", s.credentials.HandleVerify)
}

func (s *Server) middleware(handler http.Handler) http.Handler {
	var rateLimiter middleware.RateLimiter
	if s.config.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(
			s.config.RateLimit.RequestsPerMinute,
			s.config.RateLimit.BurstSize,
		)
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.CORS(s.config.CORS),
		middleware.Timeout(s.config.RequestTimeout),
	}

	if rateLimiter != nil {
		middlewares = append(middlewares, rateLimiter.Middleware)
	}

	return middleware.Chain(handler, middlewares...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   s.config.Version,
		"uptime":    time.Since(s.startTime).String(),
	}

	if s.config.Debug {
		status["debug"] = true
		status["goroutines"] = runtime.NumGoroutine()
	}

	respondJSON(w, r, http.StatusOK, status)
}
