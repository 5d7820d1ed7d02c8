package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/OCharnyshevich/voxel-terrain/internal/config"
	"github.com/OCharnyshevich/voxel-terrain/internal/preview"
	"github.com/OCharnyshevich/voxel-terrain/internal/world/gen"
)

func main() {
	var (
		configSrc = flag.String("config", "", "config file path or go-getter address")
		cacheDir  = flag.String("cache", filepath.Join(os.TempDir(), "voxelgen"), "download directory for remote configs")
		out       = flag.String("o", "heightmap.webp", "output WebP path")
		radius    = flag.Int("radius", -1, "radius in chunks (default: config render distance)")
		pixels    = flag.Int("pixels", 0, "pixels per chunk (default: chunk size)")
		seed      = flag.Int64("seed", 0, "override the config seed")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := config.DefaultConfig()
	if *configSrc != "" {
		loaded, err := config.LoadSource(context.Background(), *configSrc, *cacheDir)
		if err != nil {
			log.Error("load config", "source", *configSrc, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg.Seed = *seed
		}
	})
	if *radius < 0 {
		*radius = cfg.RenderDistance
	}
	if *pixels <= 0 {
		*pixels = cfg.ChunkSize
	}

	v, err := gen.NewVoxelizer(cfg.Biome)
	if err != nil {
		log.Error("invalid biome", "error", err)
		os.Exit(1)
	}
	img, err := preview.Render(v, preview.TerrainRamp, cfg.Center(), *radius, *pixels)
	if err != nil {
		log.Error("render heightmap", "error", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Error("create output", "path", *out, "error", err)
		os.Exit(1)
	}
	if err := preview.EncodeWebP(f, img); err != nil {
		f.Close()
		log.Error("write heightmap", "error", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		log.Error("close output", "error", err)
		os.Exit(1)
	}
	log.Info("wrote heightmap", "path", *out, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
}
