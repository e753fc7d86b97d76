package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rescale/internal/scaler"
)

// Config holds the defaults applied before command-line flags.
type Config struct {
	// Width and Height are the base dimensions for batch runs. Zero means
	// the size of the first image.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Scale      float64 `yaml:"scale"`
	LockAspect *bool   `yaml:"lock_aspect"`
	Format     string  `yaml:"format"`
	Quality    float64 `yaml:"quality"`

	OutputDir string `yaml:"output_dir"`
	Overwrite bool   `yaml:"overwrite"`
}

// Default returns the built-in configuration.
func Default() *Config {
	lock := true
	return &Config{
		Scale:      scaler.DefaultScalePercent,
		LockAspect: &lock,
		Format:     "jpeg",
		Quality:    scaler.DefaultQuality,
		OutputDir:  ".",
	}
}

// Load reads a YAML file over the defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.LockAspect == nil {
		lock := true
		cfg.LockAspect = &lock
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks ranges and the format name.
func (c *Config) Validate() error {
	if c.Width < 0 || c.Width > scaler.MaxDimension {
		return fmt.Errorf("width must be between 0 and %d", scaler.MaxDimension)
	}
	if c.Height < 0 || c.Height > scaler.MaxDimension {
		return fmt.Errorf("height must be between 0 and %d", scaler.MaxDimension)
	}
	if c.Scale < scaler.MinScalePercent || c.Scale > scaler.MaxScalePercent {
		return fmt.Errorf("scale must be between %g and %g", scaler.MinScalePercent, scaler.MaxScalePercent)
	}
	if c.Quality < scaler.MinQuality || c.Quality > scaler.MaxQuality {
		return fmt.Errorf("quality must be between %g and %g", scaler.MinQuality, scaler.MaxQuality)
	}
	if _, err := scaler.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	return nil
}

// Settings converts the configuration into editor settings. Width and
// Height are left at the configured values, which may be zero.
func (c *Config) Settings() (scaler.Settings, error) {
	format, err := scaler.ParseFormat(c.Format)
	if err != nil {
		return scaler.Settings{}, err
	}
	lock := true
	if c.LockAspect != nil {
		lock = *c.LockAspect
	}
	return scaler.Settings{
		Width:        c.Width,
		Height:       c.Height,
		LockAspect:   lock,
		ScalePercent: c.Scale,
		Format:       format,
		Quality:      c.Quality,
	}, nil
}
