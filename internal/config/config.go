// Package config loads the figsplit pipeline configuration.
package config

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/gobwas/glob"
)

const (
	// DefaultSeed is used when the config omits seed.
	DefaultSeed int64 = 42
	// DefaultValRatio is used when the config omits val_ratio.
	DefaultValRatio = 0.1
	// DefaultSarcasmSource is the only sarcasm source kept by default.
	DefaultSarcasmSource = "Reddit"
	// DefaultMaxLenForModels is recorded in split manifests for trainers.
	DefaultMaxLenForModels = 128
)

// Config is the top-level configuration.
type Config struct {
	RawDir              string     `yaml:"raw_dir" json:"raw_dir"`
	ProcDir             string     `yaml:"proc_dir" json:"proc_dir"`
	SplitsDir           string     `yaml:"splits_dir" json:"splits_dir"`
	ReportDir           string     `yaml:"report_dir" json:"report_dir"`
	Seed                *int64     `yaml:"seed" json:"seed"`
	ValRatio            *float64   `yaml:"val_ratio" json:"val_ratio"`
	SarcasmSourceFilter *string    `yaml:"sarcasm_source_filter" json:"sarcasm_source_filter"`
	MaxLenForModels     int        `yaml:"max_len_for_models" json:"max_len_for_models"`
	Workers             int        `yaml:"workers" json:"workers"`
	CleanOutput         bool       `yaml:"clean_output" json:"clean_output"`
	Catalog             bool       `yaml:"catalog" json:"catalog"`
	Metrics             bool       `yaml:"metrics" json:"metrics"`
	LogFile             string     `yaml:"log_file" json:"log_file,omitempty"`
	Overrides           []Override `yaml:"overrides" json:"overrides,omitempty"`
}

// Override applies split parameters to tasks matching glob patterns.
type Override struct {
	Tasks    []string `yaml:"tasks" json:"tasks"`
	Seed     *int64   `yaml:"seed" json:"seed,omitempty"`
	ValRatio *float64 `yaml:"val_ratio" json:"val_ratio,omitempty"`
}

// SplitParams are the effective split parameters for one task.
type SplitParams struct {
	Seed     int64
	ValRatio float64
}

// Defaults returns a config with every default applied, rooted at dir.
func Defaults(dir string) *Config {
	cfg := &Config{}
	cfg.applyDefaults(dir)
	return cfg
}

// SarcasmSource returns the configured sarcasm source filter; empty means
// no filter.
func (cfg *Config) SarcasmSource() string {
	if cfg.SarcasmSourceFilter == nil {
		return DefaultSarcasmSource
	}
	return *cfg.SarcasmSourceFilter
}

// Effective returns the split parameters for task. It starts with the
// top-level values and then applies each override whose task patterns
// match, in order. Later overrides take precedence.
func (cfg *Config) Effective(task string) SplitParams {
	params := SplitParams{Seed: DefaultSeed, ValRatio: DefaultValRatio}
	if cfg.Seed != nil {
		params.Seed = *cfg.Seed
	}
	if cfg.ValRatio != nil {
		params.ValRatio = *cfg.ValRatio
	}

	for _, o := range cfg.Overrides {
		if !matchesAny(o.Tasks, task) {
			continue
		}
		if o.Seed != nil {
			params.Seed = *o.Seed
		}
		if o.ValRatio != nil {
			params.ValRatio = *o.ValRatio
		}
	}
	return params
}

func (cfg *Config) applyDefaults(configDir string) {
	if cfg.RawDir == "" {
		cfg.RawDir = "data/raw"
	}
	if cfg.ProcDir == "" {
		cfg.ProcDir = "data/processed"
	}
	if cfg.SplitsDir == "" {
		cfg.SplitsDir = "data/splits"
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = "reports"
	}
	if cfg.MaxLenForModels == 0 {
		cfg.MaxLenForModels = DefaultMaxLenForModels
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}

	for _, dir := range []*string{&cfg.RawDir, &cfg.ProcDir, &cfg.SplitsDir, &cfg.ReportDir} {
		if !filepath.IsAbs(*dir) {
			*dir = filepath.Join(configDir, *dir)
		}
	}
	if cfg.LogFile != "" && !filepath.IsAbs(cfg.LogFile) {
		cfg.LogFile = filepath.Join(configDir, cfg.LogFile)
	}
}

// Validate checks value ranges and override patterns.
func (cfg *Config) Validate() error {
	if cfg.Seed != nil && *cfg.Seed < 0 {
		return fmt.Errorf("seed must be >= 0")
	}
	if cfg.ValRatio != nil && !validRatio(*cfg.ValRatio) {
		return fmt.Errorf("val_ratio must be between 0 and 1 (exclusive)")
	}
	if cfg.MaxLenForModels < 0 {
		return fmt.Errorf("max_len_for_models must be >= 0")
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}

	for i, o := range cfg.Overrides {
		if len(o.Tasks) == 0 {
			return fmt.Errorf("override %d: tasks is required", i)
		}
		for _, pattern := range o.Tasks {
			if _, err := glob.Compile(pattern); err != nil {
				return fmt.Errorf("override %d: invalid task pattern %q: %w", i, pattern, err)
			}
		}
		if o.Seed != nil && *o.Seed < 0 {
			return fmt.Errorf("override %d: seed must be >= 0", i)
		}
		if o.ValRatio != nil && !validRatio(*o.ValRatio) {
			return fmt.Errorf("override %d: val_ratio must be between 0 and 1 (exclusive)", i)
		}
	}
	return nil
}

func validRatio(r float64) bool {
	return !math.IsNaN(r) && r > 0 && r < 1
}

// matchesAny returns true if task matches any of the given glob patterns.
func matchesAny(patterns []string, task string) bool {
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			continue
		}
		if g.Match(task) {
			return true
		}
	}
	return false
}
