package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vibetube/vibetube/internal/backend"
	"github.com/vibetube/vibetube/internal/geoip"
	"github.com/vibetube/vibetube/internal/ratelimit"
)

const (
	defaultUploadRate  = 0.5
	defaultUploadBurst = 5
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// StreamResolver maps a backend filename to the URL a player loads.
type StreamResolver interface {
	StreamURL(ctx context.Context, filename string) (string, error)
}

// ObjectProber looks up the stored object behind a filename. Only the
// diagnostic page uses it.
type ObjectProber interface {
	Key(filename string) string
	HeadObject(ctx context.Context, key string) (int64, string, error)
}

type Config struct {
	Backend         *backend.Client
	Pinger          Pinger
	Streams         StreamResolver
	Objects         ObjectProber
	Geo             *geoip.Resolver
	BaseURL         string
	StorageEndpoint string
	MaxUploadBytes  int64
	UploadRate      float64
	UploadBurst     int
	TrustProxy      bool
}

type Server struct {
	router         chi.Router
	backend        *backend.Client
	pinger         Pinger
	streams        StreamResolver
	objects        ObjectProber
	maxUploadBytes int64
	uploadLimiter  *ratelimit.Limiter
}

func New(cfg Config) *Server {
	client := cfg.Backend
	if client == nil {
		client = backend.NewClient("")
	}

	r := chi.NewRouter()
	// Forwarding headers are client supplied unless a proxy overwrites them.
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(cfg.Geo))
	r.Use(securityHeaders(SecurityConfig{
		BaseURL:         cfg.BaseURL,
		BackendURL:      client.BaseURL(),
		StorageEndpoint: cfg.StorageEndpoint,
	}))

	s := &Server{
		router:         r,
		backend:        client,
		pinger:         cfg.Pinger,
		streams:        cfg.Streams,
		objects:        cfg.Objects,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	if s.pinger == nil {
		s.pinger = client
	}
	if s.streams == nil {
		s.streams = backendStreams{client: client}
	}

	uploadRate, uploadBurst := cfg.UploadRate, cfg.UploadBurst
	if uploadRate <= 0 {
		uploadRate = defaultUploadRate
	}
	if uploadBurst <= 0 {
		uploadBurst = defaultUploadBurst
	}
	s.uploadLimiter = ratelimit.NewLimiter(uploadRate, uploadBurst)

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	s.router.Get("/", s.handleFeed)
	s.router.With(s.limitUploads).Post("/upload", s.handleUpload)
	s.router.Get("/watch/{id}", s.handleWatch)
	s.router.Get("/test", s.handleDiagnostics)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.pinger.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unhealthy","error":"backend unreachable"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type backendStreams struct {
	client *backend.Client
}

func (b backendStreams) StreamURL(_ context.Context, filename string) (string, error) {
	return b.client.StreamURL(filename), nil
}

// streamURL resolves filename, falling back to the backend's own stream
// endpoint when the resolver fails.
func (s *Server) streamURL(ctx context.Context, filename string) string {
	u, err := s.streams.StreamURL(ctx, filename)
	if err != nil {
		slog.Warn("stream url unavailable, using backend stream", "filename", filename, "error", err)
		return s.backend.StreamURL(filename)
	}
	return u
}
