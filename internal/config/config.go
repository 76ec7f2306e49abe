// Package config loads the server configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration. Every field has a default
// matching the pipeline literals, so a missing or partial file is fine.
type Config struct {
	Server struct {
		Port      int    `yaml:"port"`
		StaticDir string `yaml:"staticDir"`
	} `yaml:"server"`

	Analysis struct {
		MaxEdge       int     `yaml:"maxEdge"`
		Clusters      int     `yaml:"clusters"`
		Seed          int64   `yaml:"seed"`
		WarmSpan      float64 `yaml:"warmSpan"`
		NeutralChroma float64 `yaml:"neutralChroma"`
	} `yaml:"analysis"`

	Ground struct {
		LightnessMin float64 `yaml:"lightnessMin"`
		LightnessMax float64 `yaml:"lightnessMax"`
		ChromaMax    float64 `yaml:"chromaMax"`
	} `yaml:"ground"`

	Store struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"store"`
}

// Default returns the stock configuration.
func Default() Config {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.Analysis.MaxEdge = 1600
	cfg.Analysis.Clusters = 5
	cfg.Analysis.Seed = 17
	cfg.Analysis.WarmSpan = 60
	cfg.Analysis.NeutralChroma = 8
	cfg.Ground.LightnessMin = 35
	cfg.Ground.LightnessMax = 65
	cfg.Ground.ChromaMax = 8
	cfg.Store.Capacity = 64
	return cfg
}

// Load reads a YAML config file, overlaying it on the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
