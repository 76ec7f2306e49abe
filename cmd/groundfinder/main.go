// Command groundfinder serves the ground-color analysis pipeline over
// HTTP. Configuration comes from an optional YAML file pointed at by
// CONFIG_PATH (default config.yaml); missing files fall back to the
// built-in defaults.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atelierlab/groundfinder/internal/analysis"
	"github.com/atelierlab/groundfinder/internal/config"
	"github.com/atelierlab/groundfinder/internal/ground"
	"github.com/atelierlab/groundfinder/internal/httpserver"
	"github.com/atelierlab/groundfinder/internal/palette"
	"github.com/atelierlab/groundfinder/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("groundfinder: %v", err)
	}
}

func run() error {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		log.Printf("no config at %s, using defaults", path)
	}

	pal, err := palette.Load()
	if err != nil {
		return fmt.Errorf("loading palette: %w", err)
	}

	opts := analysis.Options{
		MaxEdge:       cfg.Analysis.MaxEdge,
		Clusters:      cfg.Analysis.Clusters,
		Seed:          cfg.Analysis.Seed,
		WarmSpan:      float32(cfg.Analysis.WarmSpan),
		NeutralChroma: float32(cfg.Analysis.NeutralChroma),
	}
	window := ground.Window{
		LightnessMin: float32(cfg.Ground.LightnessMin),
		LightnessMax: float32(cfg.Ground.LightnessMax),
		ChromaMax:    float32(cfg.Ground.ChromaMax),
	}

	handler := httpserver.New(store.New(cfg.Store.Capacity), pal, httpserver.Options{
		Analysis:  opts,
		Window:    window,
		StaticDir: cfg.Server.StaticDir,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
