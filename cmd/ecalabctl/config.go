package main

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"ecalab/internal/automaton"
)

// fileConfig is the optional YAML config. Top-level keys mirror the persistent flags;
// modes holds per-command defaults keyed by command name.
type fileConfig struct {
	Store        string                `yaml:"store"`
	DBPath       string                `yaml:"db_path"`
	ArtifactsDir string                `yaml:"artifacts_dir"`
	Codec        string                `yaml:"codec"`
	Workers      int                   `yaml:"workers"`
	LogLevel     string                `yaml:"log_level"`
	Save         *bool                 `yaml:"save"`
	MetricsFile  string                `yaml:"metrics_file"`
	Modes        map[string]modeConfig `yaml:"modes"`
}

// modeConfig overrides the built-in defaults of one command. Width and generations
// treat zero as unset; the rest are pointers because 0 is a valid value for them.
type modeConfig struct {
	Rule        *int     `yaml:"rule"`
	Width       int      `yaml:"width"`
	Generations int      `yaml:"generations"`
	MaxSteps    *int     `yaml:"max_steps"`
	BlockSize   *int     `yaml:"block_size"`
	MaxRadius   *int     `yaml:"max_radius"`
	Noise       *float64 `yaml:"noise"`
}

type settings struct {
	ConfigPath   string
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	Codec        string
	Workers      int
	LogLevel     string
	Save         bool
	MetricsFile  string
}

func loadConfig(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// apply overlays the config onto flag values that were not set explicitly.
func (c fileConfig) apply(s settings, changed func(name string) bool) settings {
	if c.Store != "" && !changed("store") {
		s.StoreKind = c.Store
	}
	if c.DBPath != "" && !changed("db-path") {
		s.DBPath = c.DBPath
	}
	if c.ArtifactsDir != "" && !changed("artifacts-dir") {
		s.ArtifactsDir = c.ArtifactsDir
	}
	if c.Codec != "" && !changed("codec") {
		s.Codec = c.Codec
	}
	if c.Workers > 0 && !changed("workers") {
		s.Workers = c.Workers
	}
	if c.LogLevel != "" && !changed("log-level") {
		s.LogLevel = c.LogLevel
	}
	if c.Save != nil && !changed("save") {
		s.Save = *c.Save
	}
	if c.MetricsFile != "" && !changed("metrics-file") {
		s.MetricsFile = c.MetricsFile
	}
	return s
}

func (c fileConfig) mode(name string) modeConfig {
	return c.Modes[name]
}

func (m modeConfig) rule(def automaton.Rule) automaton.Rule {
	if m.Rule == nil || *m.Rule < 0 || *m.Rule > 255 {
		return def
	}
	return automaton.Rule(*m.Rule)
}

func (m modeConfig) noise(def float64) float64 {
	if m.Noise == nil || math.IsNaN(*m.Noise) || *m.Noise < 0 || *m.Noise > 1 {
		return def
	}
	return *m.Noise
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// bound returns *v when it is set and non-negative.
func bound(v *int, def int) int {
	if v == nil || *v < 0 {
		return def
	}
	return *v
}
