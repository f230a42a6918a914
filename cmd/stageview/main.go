// Package main is the entry point for the tile preview viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/tilestage/internal/config"
	"github.com/Faultbox/tilestage/internal/loader"
	"github.com/Faultbox/tilestage/internal/logger"
	"github.com/Faultbox/tilestage/internal/preview"
	"github.com/Faultbox/tilestage/internal/watch"
)

func init() {
	// SDL and OpenGL calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	fs := flag.NewFlagSet("stageview", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	noWatch := fs.Bool("no-watch", false, "Disable reloading when the asset changes")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: stageview [options] <asset.gltf|asset.glb>")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitWithOptions(cfg.LoggerOptions()); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== stageview ===", zap.String("asset", path))
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg, path, !*noWatch); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

func run(cfg *config.Config, path string, watchAsset bool) error {
	opts, err := cfg.LoaderOptions()
	if err != nil {
		return err
	}
	l, err := loader.New(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reload := make(chan struct{}, 1)
	if watchAsset {
		w, err := watch.New(cfg.Watch.Debounce)
		if err != nil {
			return err
		}
		defer w.Close()
		if err := w.Add(path); err != nil {
			return err
		}
		go func() {
			err := w.Run(ctx, func(string) {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
			if err != nil {
				logger.Warn("watcher stopped", zap.Error(err))
			}
		}()
	}

	load := func(ctx context.Context) (*loader.Result, error) {
		return l.LoadFile(ctx, path)
	}

	return preview.Run(ctx, preview.Config{
		Width:     cfg.Preview.Width,
		Height:    cfg.Preview.Height,
		VSync:     cfg.Preview.VSync,
		FOV:       cfg.Preview.FOV,
		Wireframe: cfg.Preview.Wireframe,
	}, path, load, reload)
}
