package config

import "flag"

// Flags are the command-line overrides shared by the tilestage commands.
// Zero values mean "not set".
type Flags struct {
	Config    string
	Debug     bool
	UpAxis    string
	Backend   string
	NoPhysics bool
	NoMips    bool
	Workers   int
	Width     int
	Height    int
}

// RegisterFlags binds the override flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.UpAxis, "up-axis", "", "Up axis of the content (Y, Z or X)")
	fs.StringVar(&f.Backend, "physics", "", "Physics backend (shared or exclusive)")
	fs.BoolVar(&f.NoPhysics, "no-physics", false, "Skip collision mesh cooking")
	fs.BoolVar(&f.NoMips, "no-mips", false, "Skip mip generation")
	fs.IntVar(&f.Workers, "workers", 0, "Concurrent files in batch loads")
	fs.IntVar(&f.Width, "width", 0, "Preview window width")
	fs.IntVar(&f.Height, "height", 0, "Preview window height")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.UpAxis != "" {
		cfg.Loader.UpAxis = f.UpAxis
	}
	if f.Backend != "" {
		cfg.Physics.Backend = f.Backend
	}
	if f.NoPhysics {
		cfg.Physics.Enabled = false
	}
	if f.NoMips {
		cfg.Textures.GenerateMips = false
	}
	if f.Workers > 0 {
		cfg.Loader.Workers = f.Workers
	}
	if f.Width > 0 {
		cfg.Preview.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Preview.Height = f.Height
	}
}
