package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// maxVertices16 is the largest vertex count addressable with 16-bit indices.
const maxVertices16 = math.MaxUint16 + 1

// Buffers is the compacted mesh of one chunk. Vertices and UVs come in runs
// of four per quad face; Triangles holds six indices per face.
type Buffers struct {
	Vertices  []mgl32.Vec3
	Triangles []uint32
	UVs       []mgl32.Vec2

	// Wide is set when the compacted vertex count exceeds the 16-bit index
	// range and consumers must upload 32-bit indices.
	Wide bool
}

// Faces returns the number of quad faces in the mesh.
func (b *Buffers) Faces() int {
	return len(b.Triangles) / indicesPerFace
}

// Empty reports whether the mesh has no geometry.
func (b *Buffers) Empty() bool {
	return len(b.Vertices) == 0
}

// Indices16 returns the triangle list narrowed to 16 bits. It reports false
// when the buffers use the wide representation.
func (b *Buffers) Indices16() ([]uint16, bool) {
	if b.Wide {
		return nil, false
	}
	out := make([]uint16, len(b.Triangles))
	for i, idx := range b.Triangles {
		out[i] = uint16(idx)
	}
	return out, true
}

// Validate checks the structural invariants of the buffers.
func (b *Buffers) Validate() error {
	if len(b.Triangles)%3 != 0 {
		return fmt.Errorf("triangle index count %d not a multiple of 3", len(b.Triangles))
	}
	if len(b.Vertices)%vertsPerFace != 0 {
		return fmt.Errorf("vertex count %d not a multiple of %d", len(b.Vertices), vertsPerFace)
	}
	if len(b.UVs) != len(b.Vertices) {
		return fmt.Errorf("uv count %d != vertex count %d", len(b.UVs), len(b.Vertices))
	}
	for i, idx := range b.Triangles {
		if int(idx) >= len(b.Vertices) {
			return fmt.Errorf("index %d at %d out of range (%d vertices)", idx, i, len(b.Vertices))
		}
	}
	return nil
}
