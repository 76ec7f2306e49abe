// Package httpserver exposes the analysis pipeline over HTTP.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/atelierlab/groundfinder/internal/analysis"
	"github.com/atelierlab/groundfinder/internal/ground"
	"github.com/atelierlab/groundfinder/internal/imaging"
	"github.com/atelierlab/groundfinder/internal/mask"
	"github.com/atelierlab/groundfinder/internal/palette"
	"github.com/atelierlab/groundfinder/internal/render"
	"github.com/atelierlab/groundfinder/internal/store"
)

// Server wires the pipeline behind the HTTP routes.
type Server struct {
	store     *store.Store
	palette   *palette.Palette
	opts      analysis.Options
	window    ground.Window
	staticDir string
}

// Options configures a Server.
type Options struct {
	Analysis  analysis.Options
	Window    ground.Window
	StaticDir string
}

// New builds the chi router around the injected store and palette.
func New(st *store.Store, pal *palette.Palette, opts Options) http.Handler {
	s := &Server{
		store:     st,
		palette:   pal,
		opts:      opts.Analysis,
		window:    opts.Window,
		staticDir: opts.StaticDir,
	}

	mux := chi.NewRouter()
	mux.Use(middleware.Logger)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Post("/analyze", s.wrap(s.handleAnalyze))
	mux.Post("/mask", s.wrap(s.handleMask))
	mux.Post("/ground-inside", s.wrap(s.handleGroundInside))
	mux.Post("/export", s.wrap(s.handleExport))
	mux.Post("/match-color", s.wrap(s.handleMatchColor))
	mux.Delete("/analysis/{id}", s.wrap(s.handleDelete))

	if s.staticDir != "" {
		s.mountStatic(mux)
	}
	return mux
}

// errBadRequest marks malformed request bodies and out-of-range fields
// caught before the pipeline runs.
var errBadRequest = errors.New("invalid request")

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps the pipeline error taxonomy onto HTTP statuses. All errors
// are request-scoped; nothing shared is left dirty, so no retry logic
// lives here.
func (s *Server) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		var missing *mask.MissingParameterError
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, errBadRequest),
			errors.Is(err, imaging.ErrDecode),
			errors.Is(err, mask.ErrInvalidMode),
			errors.Is(err, mask.ErrRankOutOfRange),
			errors.Is(err, mask.ErrUnknownCategory),
			errors.Is(err, render.ErrInvalidView),
			errors.Is(err, ground.ErrNoCluster),
			errors.As(err, &missing):
			writeError(w, http.StatusBadRequest, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

// mountStatic serves a built frontend dist directory with SPA fallback.
func (s *Server) mountStatic(mux *chi.Mux) {
	index := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return
	}
	assets := http.StripPrefix("/assets/",
		http.FileServer(http.Dir(filepath.Join(s.staticDir, "assets"))))
	mux.Get("/assets/*", assets.ServeHTTP)
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		clean := filepath.Clean(strings.TrimPrefix(r.URL.Path, "/"))
		candidate := filepath.Join(s.staticDir, clean)
		if rel, err := filepath.Rel(s.staticDir, candidate); err == nil &&
			!strings.HasPrefix(rel, "..") {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				http.ServeFile(w, r, candidate)
				return
			}
		}
		http.ServeFile(w, r, index)
	})
}
