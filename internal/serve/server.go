package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves report files so the chart pages can load them.
type Server struct {
	router *chi.Mux
	port   int
	dir    string
	logger *slog.Logger
}

// Options configures a Server. ChartDir is optional.
type Options struct {
	Dir      string
	ChartDir string
	Port     int
	Logger   *slog.Logger
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.NoCache)

	s := &Server{
		router: router,
		port:   opts.Port,
		dir:    opts.Dir,
		logger: logger,
	}

	router.Get("/health", s.health)
	if opts.ChartDir != "" {
		// Chart pages fetch the data files with "../<name>".
		router.Get("/chart", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/chart/", http.StatusMovedPermanently)
		})
		router.Handle("/chart/*", http.StripPrefix("/chart/", http.FileServer(http.Dir(opts.ChartDir))))
	}
	router.Handle("/*", http.FileServer(http.Dir(opts.Dir)))

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

// URL returns the local address the server listens on.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d/", s.port)
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if info, err := os.Stat(s.dir); err != nil || !info.IsDir() {
		return fmt.Errorf("serve directory %s is not a directory", s.dir)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("preview server starting", "addr", srv.Addr, "dir", s.dir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
