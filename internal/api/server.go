// Package api serves the dreamscape HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dreamscape/pkg/artifact"
	"github.com/matzehuels/dreamscape/pkg/gallery"
	"github.com/matzehuels/dreamscape/pkg/pipeline"
)

const (
	serviceName     = "dreamscape"
	maxBodyBytes    = 4 << 20
	shutdownTimeout = 10 * time.Second
)

// Server handles API requests. Its dependencies are shared with the CLI.
type Server struct {
	runner    *pipeline.Runner
	store     gallery.Store
	artifacts *artifact.Store
	logger    *log.Logger
	now       func() time.Time
}

// New returns a server backed by runner. The runner must carry a reader, a
// gallery store and an artifact store.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:    runner,
		store:     runner.Store,
		artifacts: runner.Artifacts,
		logger:    logger,
		now:       time.Now,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/generate", s.handleGenerate)
		r.Post("/preview", s.handlePreview)
		r.Get("/block/{slot}", s.handleBlock)
		r.Get("/wallet/{address}", s.handleWallet)
		r.Get("/gallery", s.handleListGallery)
		r.Get("/gallery/{id}", s.handleGetPiece)
		r.Delete("/gallery/{id}", s.handleDeletePiece)
	})

	files := http.StripPrefix("/gallery/", http.FileServer(http.Dir(s.artifacts.Root())))
	r.Handle("/gallery/*", files)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("dreamscape server running", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
