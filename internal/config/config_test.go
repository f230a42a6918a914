package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/tilestage/internal/loader"
	"github.com/Faultbox/tilestage/internal/physics"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Loader.UpAxis != "Y" || cfg.Loader.Workers != 4 {
		t.Errorf("loader defaults = %+v", cfg.Loader)
	}
	if !cfg.Textures.GenerateMips || cfg.Textures.MaxSize != 4096 {
		t.Errorf("texture defaults = %+v", cfg.Textures)
	}
	if !cfg.Physics.Enabled || cfg.Physics.Backend != "shared" {
		t.Errorf("physics defaults = %+v", cfg.Physics)
	}
	if cfg.Preview.Width != 1280 || cfg.Preview.Height != 720 {
		t.Errorf("expected 1280x720 preview, got %dx%d", cfg.Preview.Width, cfg.Preview.Height)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected 250ms debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.LogFile != "" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "tilestage.yaml")

	yamlContent := `
loader:
  up_axis: Z
  workers: 8
  strict_textures: true
  smooth_normals: true

textures:
  generate_mips: false
  max_size: 1024

physics:
  enabled: false
  backend: exclusive

preview:
  width: 1920
  height: 1080
  wireframe: true

watch:
  debounce: 1s

logging:
  level: debug
  log_file: stage.log
  json: true
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Loader.UpAxis != "Z" || cfg.Loader.Workers != 8 || !cfg.Loader.StrictTextures || !cfg.Loader.SmoothNormals {
		t.Errorf("loader = %+v", cfg.Loader)
	}
	if cfg.Textures.GenerateMips || cfg.Textures.MaxSize != 1024 {
		t.Errorf("textures = %+v", cfg.Textures)
	}
	if cfg.Physics.Enabled || cfg.Physics.Backend != "exclusive" {
		t.Errorf("physics = %+v", cfg.Physics)
	}
	if cfg.Preview.Width != 1920 || !cfg.Preview.Wireframe {
		t.Errorf("preview = %+v", cfg.Preview)
	}
	// Keys absent from the file keep their defaults.
	if !cfg.Preview.VSync || cfg.Preview.FOV != 45 {
		t.Errorf("preview defaults lost: %+v", cfg.Preview)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "stage.log" || !cfg.Logging.JSON {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"invalid yaml": "loader:\n  workers: not a number\n  invalid syntax here\n",
		"unknown key":  "loader:\n  up_axes: Z\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if err := loadFromFile(Default(), path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if err := loadFromFile(Default(), "/nonexistent/path/tilestage.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFromEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("empty file should be accepted: %v", err)
	}
	if cfg.Loader.Workers != 4 {
		t.Error("empty file changed defaults")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"up axis", func(c *Config) { c.Loader.UpAxis = "W" }},
		{"workers", func(c *Config) { c.Loader.Workers = -1 }},
		{"max size", func(c *Config) { c.Textures.MaxSize = -5 }},
		{"backend", func(c *Config) { c.Physics.Backend = "physx" }},
		{"preview size", func(c *Config) { c.Preview.Width = 0 }},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoaderOptions(t *testing.T) {
	cfg := Default()
	cfg.Loader.UpAxis = "x"
	cfg.Physics.Backend = "exclusive"
	cfg.Textures.MaxSize = 512
	cfg.Loader.SmoothNormals = true

	opts, err := cfg.LoaderOptions()
	if err != nil {
		t.Fatalf("LoaderOptions: %v", err)
	}
	if opts.UpAxis != loader.UpAxisX || opts.Physics != physics.BackendExclusive {
		t.Errorf("opts = %+v", opts)
	}
	if !opts.CreatePhysicsMeshes || opts.Mips.MaxSize != 512 || !opts.Mips.GenerateMips {
		t.Errorf("opts = %+v", opts)
	}
	if !opts.SmoothNormals {
		t.Error("smooth_normals not carried into loader options")
	}
	if !opts.TileTransform.IsIdentity() {
		t.Error("tile transform should default to identity")
	}
}

func TestLoggerOptions(t *testing.T) {
	cfg := Default()
	if opts := cfg.LoggerOptions(); opts.File.Path != "" || !opts.Console {
		t.Errorf("opts = %+v", opts)
	}
	cfg.Logging.LogFile = "stage.log"
	if opts := cfg.LoggerOptions(); opts.File.Path != "stage.log" || opts.File.MaxSizeMB == 0 {
		t.Errorf("opts = %+v", opts)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, fileName), []byte("preview:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find tilestage.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "physics",
			args: []string{"-physics", "exclusive", "-no-physics"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Physics.Backend != "exclusive" || cfg.Physics.Enabled {
					t.Errorf("physics = %+v", cfg.Physics)
				}
			},
		},
		{
			name: "loader",
			args: []string{"-up-axis", "Z", "-workers", "2", "-no-mips"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Loader.UpAxis != "Z" || cfg.Loader.Workers != 2 || cfg.Textures.GenerateMips {
					t.Errorf("loader = %+v textures = %+v", cfg.Loader, cfg.Textures)
				}
			},
		},
		{
			name: "preview size",
			args: []string{"-width", "2560", "-height", "1440"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Preview.Width != 2560 || cfg.Preview.Height != 1440 {
					t.Errorf("preview = %dx%d", cfg.Preview.Width, cfg.Preview.Height)
				}
			},
		},
		{
			name: "no flags",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if *cfg != *Default() {
					t.Errorf("config changed without flags: %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet(tt.name, flag.ContinueOnError)
			flags := RegisterFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse: %v", err)
			}

			cfg := Default()
			flags.apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "tilestage.yaml")
	yamlContent := `
preview:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", configPath, "-width", "1920"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width comes from the flag, height from the file.
	if cfg.Preview.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Preview.Width)
	}
	if cfg.Preview.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Preview.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	_ = fs.Parse([]string{"-config", filepath.Join(t.TempDir(), "none.yaml")})
	if _, err := Load(flags); err == nil {
		t.Error("expected error for a missing explicit config")
	}

	flags = &Flags{Backend: "physx"}
	if _, err := Load(flags); err == nil {
		t.Error("expected validation error for unknown backend")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tilestage.yaml")
	cfg := Default()
	cfg.Physics.Backend = "exclusive"
	cfg.Watch.Debounce = 2 * time.Second

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("saved config differs:\n got %+v\nwant %+v", loaded, cfg)
	}
}
