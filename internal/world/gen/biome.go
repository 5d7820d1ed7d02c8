package gen

import (
	"fmt"
	"strings"

	"github.com/OCharnyshevich/voxel-terrain/internal/world"
)

// Mode selects how a column is filled below its surface height.
type Mode string

const (
	// ModeSolid fills every cell from y=0 to the surface.
	ModeSolid Mode = "solid"
	// ModeSub fills a band of SubChunkHeight cells ending at the surface.
	ModeSub Mode = "sub"
)

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

// UnmarshalText accepts a mode name in any case. An empty name is kept and
// treated as solid.
func (m *Mode) UnmarshalText(text []byte) error {
	v := Mode(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case "", ModeSolid, ModeSub:
		*m = v
		return nil
	}
	return fmt.Errorf("generation mode %q: %w", text, world.ErrInvalidConfiguration)
}

// Biome holds every parameter the voxelizer needs for one terrain type.
type Biome struct {
	ChunkSize      int     `json:"chunk_size" yaml:"chunk_size"`
	MaxHeight      int     `json:"max_height" yaml:"max_height"`
	SubChunkHeight int     `json:"sub_chunk_height" yaml:"sub_chunk_height"`
	Scale          float64 `json:"scale" yaml:"scale"`
	Octaves        int     `json:"octaves" yaml:"octaves"`
	Persistence    float64 `json:"persistence" yaml:"persistence"`
	Lacunarity     float64 `json:"lacunarity" yaml:"lacunarity"`
	Seed           int64   `json:"seed" yaml:"seed"`
	Resolution     float64 `json:"resolution" yaml:"resolution"` // 0 = ChunkSize
	Mode           Mode    `json:"generation_mode" yaml:"generation_mode"`
	Basis          string  `json:"basis" yaml:"basis"` // "opensimplex", "simplex" or "flat"
}

// DefaultBiome returns rolling hills on 16-wide chunks.
func DefaultBiome() Biome {
	return Biome{
		ChunkSize:      16,
		MaxHeight:      64,
		SubChunkHeight: 4,
		Scale:          0.35,
		Octaves:        4,
		Persistence:    0.5,
		Lacunarity:     2,
		Seed:           12,
		Mode:           ModeSolid,
		Basis:          BasisOpenSimplex,
	}
}

// Validate reports the first parameter that cannot produce a chunk.
func (b Biome) Validate() error {
	if b.ChunkSize <= 0 || b.ChunkSize > world.MaxChunkSize {
		return fmt.Errorf("chunk size %d outside [1,%d]: %w", b.ChunkSize, world.MaxChunkSize, world.ErrInvalidConfiguration)
	}
	if b.MaxHeight <= 0 || b.MaxHeight > world.MaxHeight {
		return fmt.Errorf("max height %d outside [1,%d]: %w", b.MaxHeight, world.MaxHeight, world.ErrInvalidConfiguration)
	}
	switch b.Mode {
	case ModeSolid, "":
	case ModeSub:
		if b.SubChunkHeight <= 0 {
			return fmt.Errorf("sub chunk height %d must be positive in %q mode: %w", b.SubChunkHeight, ModeSub, world.ErrInvalidConfiguration)
		}
	default:
		return fmt.Errorf("generation mode %q: %w", b.Mode, world.ErrInvalidConfiguration)
	}
	return b.NoiseParams().Validate()
}

// seedSpan bounds the coordinate offset derived from a seed. Sample
// coordinates much beyond 2^31 lose their fractional part in the basis and
// the terrain flattens, so the offset stays small; the full seed still
// shuffles the basis permutation.
const seedSpan = 1 << 16

// seedOffset folds seed into [0, seedSpan).
func seedOffset(seed int64) float64 {
	return float64(uint64(seed) % seedSpan)
}

// NoiseParams derives the height field parameters of the biome.
func (b Biome) NoiseParams() NoiseParams {
	res := b.Resolution
	if res == 0 {
		res = float64(b.ChunkSize)
	}
	return NoiseParams{
		Seed:        seedOffset(b.Seed),
		Scale:       b.Scale,
		Octaves:     b.Octaves,
		Persistence: b.Persistence,
		Lacunarity:  b.Lacunarity,
		Resolution:  res,
	}
}
