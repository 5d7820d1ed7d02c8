package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/OCharnyshevich/voxel-terrain/internal/config"
	"github.com/OCharnyshevich/voxel-terrain/internal/mesh"
	"github.com/OCharnyshevich/voxel-terrain/internal/pipeline"
	"github.com/OCharnyshevich/voxel-terrain/internal/storage"
	"github.com/OCharnyshevich/voxel-terrain/internal/world"
	"github.com/OCharnyshevich/voxel-terrain/internal/world/gen"
)

func main() {
	cfg := config.DefaultConfig()

	configSrc := flag.String("config", "", "config file path or go-getter address")
	cacheDir := flag.String("cache", filepath.Join(os.TempDir(), "voxelgen"), "download directory for remote configs")
	verbose := flag.Bool("v", false, "log every batch")

	flag.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "chunk width in voxels")
	flag.IntVar(&cfg.MaxHeight, "max-height", cfg.MaxHeight, "maximum terrain height in voxels")
	flag.TextVar(&cfg.Mode, "mode", cfg.Mode, "generation mode: solid or sub")
	flag.IntVar(&cfg.SubChunkHeight, "sub-height", cfg.SubChunkHeight, "band thickness in sub mode")
	flag.Float64Var(&cfg.Scale, "scale", cfg.Scale, "noise scale")
	flag.IntVar(&cfg.Octaves, "octaves", cfg.Octaves, "noise octaves")
	flag.Float64Var(&cfg.Persistence, "persistence", cfg.Persistence, "amplitude multiplier per octave")
	flag.Float64Var(&cfg.Lacunarity, "lacunarity", cfg.Lacunarity, "frequency multiplier per octave")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.Float64Var(&cfg.Resolution, "resolution", cfg.Resolution, "world units per noise unit (0 = chunk size)")
	flag.StringVar(&cfg.Basis, "basis", cfg.Basis, "noise basis: opensimplex, simplex or flat")
	flag.IntVar(&cfg.ChunksPerTick, "chunks-per-tick", cfg.ChunksPerTick, "chunks loaded or meshed per step")
	flag.IntVar(&cfg.RenderDistance, "render-distance", cfg.RenderDistance, "radius in chunks around the center")
	flag.Func("center-x", "center chunk x", int32Flag(&cfg.CenterX))
	flag.Func("center-z", "center chunk z", int32Flag(&cfg.CenterZ))
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent chunks per batch (0 = GOMAXPROCS)")
	flag.IntVar(&cfg.MeshWorkers, "mesh-workers", cfg.MeshWorkers, "mesher pool size (0 = GOMAXPROCS)")
	flag.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "mesh export directory (empty to skip export)")
	flag.BoolVar(&cfg.Compress, "compress", cfg.Compress, "zstd-compress exported meshes")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *configSrc != "" {
		explicit := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

		fromFile, err := config.LoadSource(ctx, *configSrc, *cacheDir)
		if err != nil {
			log.Error("load config", "source", *configSrc, "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
		log.Info("loaded config", "source", *configSrc)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	vox, err := gen.NewVoxelizer(cfg.Biome)
	if err != nil {
		return err
	}
	reg := world.NewRegistry()
	mesher := mesh.NewMesher(cfg.MeshWorkers)
	defer mesher.Close()

	var (
		sink  pipeline.Sink = discardSink{}
		store *storage.Storage
	)
	if cfg.OutputDir != "" {
		store, err = storage.New(cfg.OutputDir, cfg.ChunkSize, cfg.Compress, log)
		if err != nil {
			return err
		}
		defer store.Close()
		sink = store
	}

	p, err := pipeline.New(pipeline.Config{ChunksPerTick: cfg.ChunksPerTick, Workers: cfg.Workers}, vox, reg, mesher, sink, log)
	if err != nil {
		return err
	}

	log.Info("generating",
		"center", cfg.Center(),
		"renderDistance", cfg.RenderDistance,
		"chunkSize", cfg.ChunkSize,
		"mode", cfg.Mode,
		"basis", cfg.Basis,
		"seed", cfg.Seed,
	)
	start := time.Now()
	p.Enqueue(pipeline.Around(cfg.Center(), cfg.RenderDistance)...)
	if err := p.Run(ctx); err != nil {
		return err
	}

	if store != nil {
		if err := store.SaveManifest(cfg.Biome); err != nil {
			return err
		}
	}
	printSummary(p.Stats(), reg.Len(), time.Since(start), cfg.OutputDir)
	return nil
}

// discardSink accepts meshes without keeping them.
type discardSink struct{}

func (discardSink) Accept(context.Context, world.ChunkCoord, *mesh.Buffers) error { return nil }
func (discardSink) Drop(world.ChunkCoord)                                          {}

func printSummary(st pipeline.Stats, published int, elapsed time.Duration, out string) {
	label := color.New(color.FgCyan).SprintFunc()
	value := color.New(color.FgHiWhite, color.Bold).SprintFunc()

	color.Green("Terrain generated in %s", elapsed.Round(time.Millisecond))
	fmt.Fprintln(color.Output, label("  chunks published: ")+value(published))
	fmt.Fprintln(color.Output, label("  meshes built:     ")+value(st.Meshed))
	fmt.Fprintln(color.Output, label("  faces emitted:    ")+value(st.Faces))
	if st.Remeshed > 0 {
		fmt.Fprintln(color.Output, label("  meshes rebuilt:   ")+value(st.Remeshed))
	}
	if st.Duplicates > 0 {
		color.Yellow("  duplicate loads:  %d", st.Duplicates)
	}
	if out != "" {
		fmt.Fprintln(color.Output, label("  output:           ")+value(out))
	}
}
