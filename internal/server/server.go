// Package server exposes the montage pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /v1/categories
//	POST   /v1/montage                      multipart upload, returns a zip
//	POST   /v1/montage/preview              multipart upload, returns a PNG
//	POST   /v1/sessions                     create a session
//	GET    /v1/sessions/{id}                list its designs
//	DELETE /v1/sessions/{id}                drop the session
//	POST   /v1/sessions/{id}/designs        add uploaded designs
//	DELETE /v1/sessions/{id}/designs        reset the session
//	DELETE /v1/sessions/{id}/designs/{eid}  remove one design
//	POST   /v1/sessions/{id}/montage        build the session
//
// Uploads use the form fields "files", "category" and "copies"; the i-th
// category and copy count belong to the i-th file. The bracketed forms
// "files[]", "category[]" and "copies[]" are accepted as well.
//
// One bad design never fails a request: it is reported in the response (the
// X-Gangsheet-Skipped header, or the "skipped" list in JSON) while the rest of
// the batch is built. Only a run that produces nothing answers 422.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gangsheet/pkg/pipeline"
	"github.com/matzehuels/gangsheet/pkg/session"
	"github.com/matzehuels/gangsheet/pkg/storage"
)

const (
	// DefaultMaxUploadBytes caps a whole multipart request.
	DefaultMaxUploadBytes int64 = 256 << 20

	// formMemory is how much of a multipart body is kept in memory before
	// file parts spill to disk.
	formMemory = 32 << 20

	cleanupInterval = time.Hour
	shutdownTimeout = 10 * time.Second
)

// Publisher uploads finished archives. [storage.S3] satisfies it.
type Publisher interface {
	Publish(ctx context.Context, name string, r io.Reader, size int64) (*storage.Object, error)
}

// Config wires a Server.
type Config struct {
	Runner   *pipeline.Runner
	Options  pipeline.Options
	Sessions session.Store

	// Publisher is optional. When set, montage requests with ?publish=true
	// upload the archive and answer with its location instead of the bytes.
	Publisher Publisher

	MaxUploadBytes int64
	SessionTTL     time.Duration
	Logger         *log.Logger
}

// Server handles montage requests.
type Server struct {
	cfg    Config
	router chi.Router
}

// New validates cfg and builds the router.
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("server: runner is required")
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewMemoryStore()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if err := cfg.Options.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/categories", s.handleCategories)

		r.Post("/montage", s.handleMontage)
		r.Post("/montage/preview", s.handlePreview)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/designs", s.handleAddDesigns)
			r.Delete("/designs", s.handleResetSession)
			r.Delete("/designs/{eid}", s.handleRemoveDesign)
			r.Post("/montage", s.handleBuildSession)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Expired sessions are swept in the background.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepSessions(ctx)

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.cfg.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) sweepSessions(ctx context.Context) {
	t := time.NewTicker(cleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.cfg.Sessions.Cleanup(ctx); err != nil {
				s.cfg.Logger.Warn("session cleanup failed", "error", err)
			}
		}
	}
}

// logger returns the server logger tagged with the request ID.
func (s *Server) logger(r *http.Request) *log.Logger {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return s.cfg.Logger.With("request", id)
	}
	return s.cfg.Logger
}
