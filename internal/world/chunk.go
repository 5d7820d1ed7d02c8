package world

import (
	"fmt"
	"slices"
)

// VoxelPos is a chunk-local voxel position. Components are signed so that
// neighbor border voxels can be expressed one cell outside the chunk volume
// (x == -1, x == size, z == -1, z == size).
type VoxelPos struct {
	X, Y, Z int16
}

// Offset returns p translated by (dx, dy, dz).
func (p VoxelPos) Offset(dx, dy, dz int16) VoxelPos {
	return VoxelPos{p.X + dx, p.Y + dy, p.Z + dz}
}

// ChunkCoord identifies a chunk on the chunk grid. Y is 0 for a single
// vertical layer of chunks.
type ChunkCoord struct {
	X, Y, Z int32
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Side names one of the four horizontal faces of a chunk volume.
type Side int

const (
	SideLeft    Side = iota // -X
	SideRight               // +X
	SideForward             // +Z
	SideBack                // -Z
)

// Sides lists every horizontal side in a fixed order.
var Sides = [4]Side{SideLeft, SideRight, SideForward, SideBack}

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideForward:
		return "forward"
	case SideBack:
		return "back"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// Opposite returns the side facing s across a chunk seam.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	case SideForward:
		return SideBack
	default:
		return SideForward
	}
}

// Neighbor returns the coordinate of the chunk sharing side s with c.
func (c ChunkCoord) Neighbor(s Side) ChunkCoord {
	switch s {
	case SideLeft:
		return ChunkCoord{c.X - 1, c.Y, c.Z}
	case SideRight:
		return ChunkCoord{c.X + 1, c.Y, c.Z}
	case SideForward:
		return ChunkCoord{c.X, c.Y, c.Z + 1}
	default:
		return ChunkCoord{c.X, c.Y, c.Z - 1}
	}
}

// ChunkData holds the occupied voxels of one chunk and the four border lists
// used to stitch meshes across chunk seams.
//
// A ChunkData must not be modified once it has been published to a Registry.
type ChunkData struct {
	Coord  ChunkCoord
	Size   int
	Voxels []VoxelPos // unique, ordered by (Y, Z, X)

	EdgeLeft    []VoxelPos // x == 0
	EdgeRight   []VoxelPos // x == Size-1
	EdgeForward []VoxelPos // z == Size-1
	EdgeBack    []VoxelPos // z == 0
}

// NewChunkData builds a ChunkData from an arbitrary voxel list. Duplicates are
// dropped and the edge lists are filtered from the same set.
func NewChunkData(coord ChunkCoord, size int, voxels []VoxelPos) (*ChunkData, error) {
	if size <= 0 || size > MaxChunkSize {
		return nil, fmt.Errorf("chunk size %d: %w", size, ErrInvalidConfiguration)
	}

	for _, p := range voxels {
		if p.X < 0 || p.Z < 0 || p.Y < 0 || int(p.X) >= size || int(p.Z) >= size {
			return nil, fmt.Errorf("voxel %v outside chunk of size %d: %w", p, size, ErrInvalidConfiguration)
		}
	}

	vs := slices.Clone(voxels)
	slices.SortFunc(vs, compareVoxel)
	vs = slices.Compact(vs)

	d := &ChunkData{Coord: coord, Size: size, Voxels: vs}
	last := int16(size - 1)
	for _, p := range vs {
		if p.X == 0 {
			d.EdgeLeft = append(d.EdgeLeft, p)
		}
		if p.X == last {
			d.EdgeRight = append(d.EdgeRight, p)
		}
		if p.Z == last {
			d.EdgeForward = append(d.EdgeForward, p)
		}
		if p.Z == 0 {
			d.EdgeBack = append(d.EdgeBack, p)
		}
	}
	return d, nil
}

// Edge returns the border list for side s.
func (d *ChunkData) Edge(s Side) []VoxelPos {
	switch s {
	case SideLeft:
		return d.EdgeLeft
	case SideRight:
		return d.EdgeRight
	case SideForward:
		return d.EdgeForward
	default:
		return d.EdgeBack
	}
}

// Contains reports whether p is an occupied voxel of the chunk.
func (d *ChunkData) Contains(p VoxelPos) bool {
	_, ok := slices.BinarySearchFunc(d.Voxels, p, compareVoxel)
	return ok
}

func compareVoxel(a, b VoxelPos) int {
	if a.Y != b.Y {
		return int(a.Y) - int(b.Y)
	}
	if a.Z != b.Z {
		return int(a.Z) - int(b.Z)
	}
	return int(a.X) - int(b.X)
}
