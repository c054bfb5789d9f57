package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"simple-repository/internal/audit"
	"simple-repository/internal/storage"
)

// Config carries the dependencies of the HTTP layer. It is built once
// in main and never mutated afterwards.
type Config struct {
	SecretUpload   string
	SecretDownload string
	TrustProxy     bool

	// StagingDir receives in-flight upload bodies before commit.
	StagingDir string

	Store storage.Store
	Log   *slog.Logger

	// Audit is optional; nil disables the trail.
	Audit *audit.Recorder
}

type Server struct {
	cfg        Config
	httpServer *http.Server
}

// New wires the routes. Every request passes the shared-secret gate
// before reaching a handler, unknown routes included.
func New(addr string, cfg Config) *Server {
	s := &Server{cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(s.recoverer)
	r.Use(noCache)
	r.Use(s.requireKey)

	r.Post("/api/upload", s.handleUpload)
	r.Get("/api/projects", s.handleListProjects)
	r.Get("/api/{project}/list", s.handleListFiles)
	r.Get("/{project}/{file}", s.handleDownload)

	notFound := func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Not found")
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// recordAudit writes a trail entry when auditing is enabled. Failures
// are logged and swallowed; auditing never fails a request.
func (s *Server) recordAudit(r *http.Request, action, project, filename string) {
	if s.cfg.Audit == nil {
		return
	}
	ev := audit.Event{
		Action:   action,
		Access:   string(accessFromContext(r.Context())),
		Project:  project,
		Filename: filename,
		ClientIP: s.clientIP(r),
	}
	if err := s.cfg.Audit.Record(r.Context(), ev); err != nil {
		s.cfg.Log.Warn("audit record failed", "action", action, "err", err)
	}
}
