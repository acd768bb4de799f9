// Package api provides HTTP handlers and the main API server logic for the
// wizard service.
//
// It exposes the collaborator endpoints the session engine consumes: adaptive
// question generation, background answer analysis, streamed instruction
// generation, and the plain-text file-extraction boundary.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/mycustomai/wizard/internal/genai"
)

// Default server configuration constants
const (
	// DefaultAddr is the default API listen address.
	DefaultAddr = ":8080"
	// DefaultReadTimeout bounds reading a request (headers and body).
	DefaultReadTimeout = 30 * time.Second
	// DefaultWriteTimeout bounds writing a response. Generation streams run
	// long, so this stays generous.
	DefaultWriteTimeout = 5 * time.Minute
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr           string
	AllowedOrigins []string
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithAllowedOrigins sets the CORS allowed origins. Defaults to "*".
func WithAllowedOrigins(origins []string) Option {
	return func(o *Opts) { o.AllowedOrigins = origins }
}

// Server hosts the wizard API endpoints.
type Server struct {
	gaClient genai.ClientInterface
	addr     string
	origins  []string
}

// NewServer creates a Server backed by the given GenAI client.
func NewServer(gaClient genai.ClientInterface, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	slog.Debug("Server.NewServer: server configured", "addr", cfg.Addr, "origins", cfg.AllowedOrigins)
	return &Server{gaClient: gaClient, addr: cfg.Addr, origins: cfg.AllowedOrigins}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/api/next-question", s.nextQuestionHandler)
	r.Post("/api/analyze-answer", s.analyzeAnswerHandler)
	r.Post("/api/generate", s.generateHandler)
	r.Post("/api/parse-file", s.parseFileHandler)
	r.Get("/api/targets", s.targetsHandler)
	r.Get("/health", s.healthHandler)
	return r
}

// Run constructs the GenAI client and server from options and serves until
// the listener fails.
func Run(genaiOpts []genai.Option, apiOpts []Option) error {
	gaClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return err
	}
	srv := NewServer(gaClient, apiOpts...)

	httpSrv := &http.Server{
		Addr:         srv.addr,
		Handler:      srv.Router(),
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
	slog.Info("Server.Run: wizard API listening", "addr", srv.addr)
	return httpSrv.ListenAndServe()
}
