package gen

import (
	"fmt"

	"github.com/OCharnyshevich/voxel-terrain/internal/world"
)

// Voxelizer turns chunk coordinates into published-ready ChunkData for one
// biome. It is immutable and safe for concurrent use.
type Voxelizer struct {
	biome Biome
	field *Field
}

// NewVoxelizer validates b and prepares its height field.
func NewVoxelizer(b Biome) (*Voxelizer, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	f, err := NewField(b.Basis, b.Seed, b.NoiseParams())
	if err != nil {
		return nil, err
	}
	return &Voxelizer{biome: b, field: f}, nil
}

// Biome returns the parameters the voxelizer was built with.
func (v *Voxelizer) Biome() Biome { return v.biome }

// WorldColumn returns the world-space (x, z) of a chunk-local column.
// lx and lz may lie outside [0, size) to address neighbor columns.
func WorldColumn(coord world.ChunkCoord, size, lx, lz int) (x, z float64) {
	x = float64(int64(coord.X)*int64(size) + int64(lx))
	z = float64(int64(coord.Z)*int64(size) + int64(lz))
	return x, z
}

// HeightAt returns the normalized height of a world column.
func (v *Voxelizer) HeightAt(worldX, worldZ float64) float64 {
	return v.field.Height(worldX, worldZ)
}

// ColumnTop returns the highest occupied y of a world column.
func (v *Voxelizer) ColumnTop(worldX, worldZ float64) int {
	top := int(v.HeightAt(worldX, worldZ) * float64(v.biome.MaxHeight))
	if top >= v.biome.MaxHeight {
		top = v.biome.MaxHeight - 1
	}
	return top
}

// Voxelize produces the occupied voxels of the chunk at coord.
func (v *Voxelizer) Voxelize(coord world.ChunkCoord) (*world.ChunkData, error) {
	size := v.biome.ChunkSize
	voxels := make([]world.VoxelPos, 0, size*size*4)

	for lz := 0; lz < size; lz++ {
		for lx := 0; lx < size; lx++ {
			wx, wz := WorldColumn(coord, size, lx, lz)
			top := v.ColumnTop(wx, wz)

			bottom := 0
			if v.biome.Mode == ModeSub {
				bottom = max(top-v.biome.SubChunkHeight+1, 0)
			}
			for y := bottom; y <= top; y++ {
				voxels = append(voxels, world.VoxelPos{X: int16(lx), Y: int16(y), Z: int16(lz)})
			}
		}
	}

	d, err := world.NewChunkData(coord, size, voxels)
	if err != nil {
		return nil, fmt.Errorf("voxelize %s: %w", coord, err)
	}
	return d, nil
}

// Voxelize validates b and voxelizes a single chunk. Callers producing many
// chunks should build a Voxelizer once instead.
func Voxelize(coord world.ChunkCoord, b Biome) (*world.ChunkData, error) {
	v, err := NewVoxelizer(b)
	if err != nil {
		return nil, fmt.Errorf("voxelize %s: %w", coord, err)
	}
	return v.Voxelize(coord)
}

// Heights returns the normalized height of every column of the chunk at
// coord, row by row along z.
func (v *Voxelizer) Heights(coord world.ChunkCoord) []float64 {
	size := v.biome.ChunkSize
	out := make([]float64, 0, size*size)
	for lz := 0; lz < size; lz++ {
		for lx := 0; lx < size; lx++ {
			out = append(out, v.HeightAt(WorldColumn(coord, size, lx, lz)))
		}
	}
	return out
}
