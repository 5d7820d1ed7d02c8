package gen

import (
	"fmt"

	"github.com/OCharnyshevich/voxel-terrain/internal/world"
)

const maxOctaves = 32

// NoiseParams parameterize the fractal height field.
type NoiseParams struct {
	Seed        float64 // added to both sample coordinates
	Scale       float64
	Octaves     int
	Persistence float64 // amplitude multiplier per octave
	Lacunarity  float64 // frequency multiplier per octave
	Resolution  float64 // world units per noise unit before Scale
}

// Validate checks that p can produce a normalized height.
func (p NoiseParams) Validate() error {
	switch {
	case p.Octaves < 1 || p.Octaves > maxOctaves:
		return fmt.Errorf("octaves %d outside [1,%d]: %w", p.Octaves, maxOctaves, world.ErrInvalidConfiguration)
	case p.Scale <= 0:
		return fmt.Errorf("scale %g must be positive: %w", p.Scale, world.ErrInvalidConfiguration)
	case p.Resolution <= 0:
		return fmt.Errorf("resolution %g must be positive: %w", p.Resolution, world.ErrInvalidConfiguration)
	case p.Persistence < 0:
		return fmt.Errorf("persistence %g must not be negative: %w", p.Persistence, world.ErrInvalidConfiguration)
	case p.Lacunarity <= 0:
		return fmt.Errorf("lacunarity %g must be positive: %w", p.Lacunarity, world.ErrInvalidConfiguration)
	}
	return nil
}

// Height returns the fractal height at world (x, z), normalized to [0, 1].
//
// Octave i samples the basis at frequency lacunarity^i with amplitude
// persistence^i; the sum is divided by the total amplitude. The result
// depends only on the arguments, so two chunks sampling the same world
// column always agree.
func Height(b Basis, worldX, worldZ float64, p NoiseParams) float64 {
	var total, maxPossible float64
	amplitude, frequency := 1.0, 1.0

	for range p.Octaves {
		sx := worldX/p.Resolution*p.Scale*frequency + p.Seed
		sz := worldZ/p.Resolution*p.Scale*frequency + p.Seed
		total += b.Eval2(sx, sz) * amplitude
		maxPossible += amplitude
		amplitude *= p.Persistence
		frequency *= p.Lacunarity
	}
	if maxPossible == 0 {
		return 0
	}

	return clamp01(total / maxPossible)
}

// Field binds a basis to a parameter set.
type Field struct {
	Basis  Basis
	Params NoiseParams
}

// NewField validates p and builds the named basis.
func NewField(basis string, seed int64, p NoiseParams) (*Field, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b, err := NewBasis(basis, seed)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, world.ErrInvalidConfiguration)
	}
	return &Field{Basis: b, Params: p}, nil
}

// Height samples the field at world (x, z).
func (f *Field) Height(worldX, worldZ float64) float64 {
	return Height(f.Basis, worldX, worldZ, f.Params)
}
