// stagetool inspects glTF tile content the way the stager sees it.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/tilestage/internal/config"
	"github.com/Faultbox/tilestage/internal/loader"
	"github.com/Faultbox/tilestage/internal/logger"
	"github.com/Faultbox/tilestage/internal/model"
	"github.com/Faultbox/tilestage/internal/watch"
	"github.com/Faultbox/tilestage/internal/water"
	"github.com/Faultbox/tilestage/pkg/qmesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "textures", "tex":
		err = cmdTextures(args)
	case "watermask", "wm":
		err = cmdWaterMask(args)
	case "watch":
		err = cmdWatch(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`stagetool - glTF tile staging utility

Usage:
  stagetool <command> [options]

Commands:
  info <asset>...               Show staged models, textures and water masks
  textures <asset|->            List staged textures with sampler modes (- reads stdin)
  watermask <extension.bin>     Decode a quantized-mesh water mask extension
  watch <asset>                 Restage an asset whenever it changes
  config [-o path]              Write the default configuration

Common options:
  -config <file>   Config file (default ./tilestage.yaml or the user config dir)
  -up-axis <Y|Z|X> Authoring up axis
  -physics <shared|exclusive>, -no-physics, -no-mips, -workers <n>, -debug

Examples:
  stagetool info tile.glb
  stagetool textures -no-mips terrain.gltf
  stagetool watermask -png mask.png 12_2048_1024.watermask
  stagetool watch -debug tile.glb`)
}

// setup parses the common flags, loads config and initializes logging.
func setup(name string, args []string, extra func(fs *flag.FlagSet)) (*config.Config, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	if extra != nil {
		extra(fs)
	}
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.InitWithOptions(cfg.LoggerOptions()); err != nil {
		return nil, nil, err
	}
	return cfg, fs, nil
}

func newLoader(cfg *config.Config) (*loader.Loader, error) {
	opts, err := cfg.LoaderOptions()
	if err != nil {
		return nil, err
	}
	return loader.New(opts)
}

func cmdInfo(args []string) error {
	cfg, fs, err := setup("info", args, nil)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: stagetool info <asset>...")
	}

	l, err := newLoader(cfg)
	if err != nil {
		return err
	}
	results, err := l.LoadFiles(context.Background(), fs.Args())
	if err != nil {
		return err
	}
	for _, res := range results {
		printResult(res)
		res.Release()
	}
	return nil
}

func printResult(res *loader.Result) {
	fmt.Printf("Asset:   %s\n", res.Source)
	fmt.Printf("Models:  %d\n", len(res.Models))
	fmt.Printf("Skipped: %d\n", len(res.Skipped))

	for i, m := range res.Models {
		rd := m.RenderData
		fmt.Println()
		fmt.Printf("[%d] node %d mesh %d primitive %d %q\n", i, m.NodeIndex, m.MeshIndex, m.PrimitiveIndex, m.Name)
		fmt.Printf("    vertices   %d\n", len(rd.Vertices))
		fmt.Printf("    triangles  %d\n", rd.TriangleCount())
		fmt.Printf("    bounds     %v .. %v\n", rd.Bounds.Min, rd.Bounds.Max)
		fmt.Printf("    origin     %.3f\n", m.Transform.Translation())
		fmt.Printf("    material   alpha=%s double-sided=%v\n", rd.Material.AlphaMode, rd.Material.DoubleSided)
		if m.CollisionMesh != nil {
			size := m.CollisionMesh.Bounds().Size()
			fmt.Printf("    collision  %d triangles, extent %.2f x %.2f x %.2f (%s, %s)\n",
				len(m.CollisionMesh.Triangles()), size[0], size[1], size[2],
				m.CollisionMesh.Ownership(), m.CollisionMesh.ID())
		}
		for _, nt := range m.Textures() {
			fmt.Printf("    texture    %-40s uv%d %dx%d\n", nt.Param, m.TextureCoordinateParameters[nt.Param],
				nt.Texture.PlatformData.Width, nt.Texture.PlatformData.Height)
		}
		fmt.Printf("    water      %s\n", describeWaterMask(m.WaterMask))
	}

	for _, s := range res.Skipped {
		fmt.Printf("skipped node %d mesh %d primitive %d: %s\n", s.Node, s.Mesh, s.Primitive, s.Reason)
	}
	fmt.Println()
}

func describeWaterMask(m water.LoadedWaterMask) string {
	if m.Type() != water.MixOfLandAndWater {
		return m.Type().String()
	}
	return fmt.Sprintf("%s offset=%v scale=%g", m.Type(), m.Translation(), m.Scale())
}

func cmdTextures(args []string) error {
	cfg, fs, err := setup("textures", args, nil)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: stagetool textures <asset|->")
	}

	l, err := newLoader(cfg)
	if err != nil {
		return err
	}
	res, err := loadOne(l, fs.Arg(0))
	if err != nil {
		return err
	}
	defer res.Release()

	var total int
	fmt.Printf("%-4s %-42s %-11s %-5s %-6s %-7s %-7s %-9s %s\n",
		"#", "PARAM", "SIZE", "MIPS", "FORMAT", "WRAP-X", "WRAP-Y", "FILTER", "BYTES")
	for i, m := range res.Models {
		named := m.Textures()
		if tex, ok := m.WaterMask.Texture(); ok {
			named = append(named, model.NamedTexture{Param: model.ParamWaterMask, Texture: tex})
		}
		for _, nt := range named {
			pd := nt.Texture.PlatformData
			fmt.Printf("%-4d %-42s %-11s %-5d %-6s %-7s %-7s %-9s %d\n",
				i, nt.Param, fmt.Sprintf("%dx%d", pd.Width, pd.Height), len(pd.Mips), pd.Format,
				nt.Texture.AddressX, nt.Texture.AddressY, nt.Texture.Filter, pd.SizeBytes())
			total += pd.SizeBytes()
		}
	}
	fmt.Printf("\nTotal: %.2f MB\n", float64(total)/(1024*1024))
	return nil
}

// loadOne stages a file, or a GLB/glTF stream on stdin when path is "-".
func loadOne(l *loader.Loader, path string) (*loader.Result, error) {
	if path == "-" {
		return l.LoadReader(context.Background(), os.Stdin, "stdin")
	}
	return l.LoadFile(context.Background(), path)
}

func cmdWaterMask(args []string) error {
	var pngOut string
	_, fs, err := setup("watermask", args, func(fs *flag.FlagSet) {
		fs.StringVar(&pngOut, "png", "", "Write the mask as a grayscale PNG")
	})
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: stagetool watermask [-png out.png] <extension.bin>")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	ext, err := qmesh.ReadWaterMaskExtension(f)
	if err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(0), err)
	}
	mask, err := water.FromQuantizedMesh(ext)
	if err != nil {
		return err
	}
	defer mask.Release()

	fmt.Printf("File:   %s\n", fs.Arg(0))
	fmt.Printf("Bytes:  %d\n", len(ext.Mask))
	fmt.Printf("Type:   %s\n", mask.Type())
	fmt.Printf("Water:  %.1f%%\n", water.WaterFraction(ext)*100)

	if pngOut == "" {
		return nil
	}
	if !ext.IsFull() {
		return fmt.Errorf("uniform mask has no image to write")
	}
	img := &image.Gray{
		Pix:    ext.Mask,
		Stride: qmesh.WaterMaskSize,
		Rect:   image.Rect(0, 0, qmesh.WaterMaskSize, qmesh.WaterMaskSize),
	}
	out, err := os.Create(pngOut)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func cmdWatch(args []string) error {
	cfg, fs, err := setup("watch", args, nil)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: stagetool watch <asset>")
	}
	path := fs.Arg(0)

	l, err := newLoader(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stage := func() {
		res, err := l.LoadFile(ctx, path)
		if err != nil {
			logger.Error("staging failed", zap.String("path", path), zap.Error(err))
			return
		}
		printResult(res)
		res.Release()
	}
	stage()

	w, err := watch.New(cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		return err
	}

	logger.Info("watching", zap.String("path", path))
	return w.Run(ctx, func(string) { stage() })
}

func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	out := fs.String("o", "", "Output path (default: user config directory)")
	fs.Parse(args)

	cfg := config.Default()
	if *out == "" {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", config.ConfigDir())
		return nil
	}
	if err := cfg.SaveTo(*out); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", *out)
	return nil
}
