// Package config handles tilestage configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/tilestage/internal/loader"
	"github.com/Faultbox/tilestage/internal/logger"
	"github.com/Faultbox/tilestage/internal/physics"
	"github.com/Faultbox/tilestage/internal/texture"
)

// Config holds all tilestage settings.
type Config struct {
	Loader   LoaderConfig   `yaml:"loader"`
	Textures TexturesConfig `yaml:"textures"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Preview  PreviewConfig  `yaml:"preview"`
	Watch    WatchConfig    `yaml:"watch"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoaderConfig holds glTF staging settings.
type LoaderConfig struct {
	UpAxis         string `yaml:"up_axis"`         // Y, Z or X
	Workers        int    `yaml:"workers"`         // Concurrent files in batch loads
	StrictTextures bool   `yaml:"strict_textures"` // Fail on broken textures
	SmoothNormals  bool   `yaml:"smooth_normals"`  // Smooth generated normals
}

// TexturesConfig holds texture staging settings.
type TexturesConfig struct {
	GenerateMips bool `yaml:"generate_mips"`
	MaxSize      int  `yaml:"max_size"`
}

// PhysicsConfig holds collision mesh settings.
type PhysicsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Backend string `yaml:"backend"` // shared or exclusive
}

// PreviewConfig holds viewer window settings.
type PreviewConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	VSync     bool    `yaml:"vsync"`
	FOV       float32 `yaml:"fov"`
	Wireframe bool    `yaml:"wireframe"`
}

// WatchConfig holds file watching settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			UpAxis:  "Y",
			Workers: 4,
		},
		Textures: TexturesConfig{
			GenerateMips: true,
			MaxSize:      4096,
		},
		Physics: PhysicsConfig{
			Enabled: true,
			Backend: "shared",
		},
		Preview: PreviewConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
			FOV:    45,
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	var errs []error
	if _, err := loader.ParseUpAxis(c.Loader.UpAxis); err != nil {
		errs = append(errs, fmt.Errorf("loader.up_axis: %w", err))
	}
	if c.Loader.Workers < 0 {
		errs = append(errs, fmt.Errorf("loader.workers: must not be negative, got %d", c.Loader.Workers))
	}
	if c.Textures.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("textures.max_size: must not be negative, got %d", c.Textures.MaxSize))
	}
	if _, err := physics.ParseBackend(c.Physics.Backend); err != nil {
		errs = append(errs, fmt.Errorf("physics.backend: %w", err))
	}
	if c.Preview.Width <= 0 || c.Preview.Height <= 0 {
		errs = append(errs, fmt.Errorf("preview: invalid size %dx%d", c.Preview.Width, c.Preview.Height))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}

// LoaderOptions converts the loader, texture and physics sections.
func (c *Config) LoaderOptions() (loader.Options, error) {
	opts := loader.DefaultOptions()

	axis, err := loader.ParseUpAxis(c.Loader.UpAxis)
	if err != nil {
		return opts, err
	}
	backend, err := physics.ParseBackend(c.Physics.Backend)
	if err != nil {
		return opts, err
	}

	opts.UpAxis = axis
	opts.Workers = c.Loader.Workers
	opts.StrictTextures = c.Loader.StrictTextures
	opts.SmoothNormals = c.Loader.SmoothNormals
	opts.Physics = backend
	opts.CreatePhysicsMeshes = c.Physics.Enabled
	opts.Mips = texture.MipOptions{
		GenerateMips: c.Textures.GenerateMips,
		MaxSize:      c.Textures.MaxSize,
	}
	return opts, nil
}

// LoggerOptions converts the logging section.
func (c *Config) LoggerOptions() logger.Options {
	opts := logger.Options{Level: c.Logging.Level, Console: true, JSON: c.Logging.JSON}
	if c.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(c.Logging.LogFile)
	}
	return opts
}
