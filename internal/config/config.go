package config

import (
	"fmt"

	"github.com/OCharnyshevich/voxel-terrain/internal/world"
	"github.com/OCharnyshevich/voxel-terrain/internal/world/gen"
)

// Config holds the generator configuration: the biome plus the knobs of the
// pipeline and the mesh output.
type Config struct {
	gen.Biome `yaml:",inline"`

	ChunksPerTick  int   `json:"chunks_per_tick" yaml:"chunks_per_tick"`
	RenderDistance int   `json:"render_distance" yaml:"render_distance"` // radius in chunks around the center
	CenterX        int32 `json:"center_x" yaml:"center_x"`
	CenterZ        int32 `json:"center_z" yaml:"center_z"`
	Workers        int   `json:"workers" yaml:"workers"`           // 0 = GOMAXPROCS
	MeshWorkers    int   `json:"mesh_workers" yaml:"mesh_workers"` // 0 = GOMAXPROCS

	OutputDir string `json:"output_dir" yaml:"output_dir"` // empty disables mesh export
	Compress  bool   `json:"compress" yaml:"compress"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Biome:          gen.DefaultBiome(),
		ChunksPerTick:  8,
		RenderDistance: 4,
		OutputDir:      "./out",
	}
}

// Center returns the chunk the working set is built around.
func (c *Config) Center() world.ChunkCoord {
	return world.ChunkCoord{X: c.CenterX, Z: c.CenterZ}
}

// Validate reports the first setting that cannot drive a run.
func (c *Config) Validate() error {
	if err := c.Biome.Validate(); err != nil {
		return err
	}
	switch {
	case c.ChunksPerTick <= 0:
		return fmt.Errorf("chunks per tick %d must be positive: %w", c.ChunksPerTick, world.ErrInvalidConfiguration)
	case c.RenderDistance < 0:
		return fmt.Errorf("render distance %d must not be negative: %w", c.RenderDistance, world.ErrInvalidConfiguration)
	case c.Workers < 0 || c.MeshWorkers < 0:
		return fmt.Errorf("worker counts must not be negative: %w", world.ErrInvalidConfiguration)
	}
	return nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["chunk-size"] {
		cfg.ChunkSize = fromFile.ChunkSize
	}
	if !explicitFlags["max-height"] {
		cfg.MaxHeight = fromFile.MaxHeight
	}
	if !explicitFlags["sub-height"] {
		cfg.SubChunkHeight = fromFile.SubChunkHeight
	}
	if !explicitFlags["scale"] {
		cfg.Scale = fromFile.Scale
	}
	if !explicitFlags["octaves"] {
		cfg.Octaves = fromFile.Octaves
	}
	if !explicitFlags["persistence"] {
		cfg.Persistence = fromFile.Persistence
	}
	if !explicitFlags["lacunarity"] {
		cfg.Lacunarity = fromFile.Lacunarity
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["resolution"] {
		cfg.Resolution = fromFile.Resolution
	}
	if !explicitFlags["mode"] {
		cfg.Mode = fromFile.Mode
	}
	if !explicitFlags["basis"] {
		cfg.Basis = fromFile.Basis
	}
	if !explicitFlags["chunks-per-tick"] {
		cfg.ChunksPerTick = fromFile.ChunksPerTick
	}
	if !explicitFlags["render-distance"] {
		cfg.RenderDistance = fromFile.RenderDistance
	}
	if !explicitFlags["center-x"] {
		cfg.CenterX = fromFile.CenterX
	}
	if !explicitFlags["center-z"] {
		cfg.CenterZ = fromFile.CenterZ
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["mesh-workers"] {
		cfg.MeshWorkers = fromFile.MeshWorkers
	}
	if !explicitFlags["out"] {
		cfg.OutputDir = fromFile.OutputDir
	}
	if !explicitFlags["compress"] {
		cfg.Compress = fromFile.Compress
	}
}
