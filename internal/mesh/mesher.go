package mesh

import (
	"fmt"
	"math"
	"runtime"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxel-terrain/internal/world"
)

// inactive marks an index slot whose face was culled.
const inactive int32 = -1

// minBatch is the smallest number of voxels handed to one worker task.
const minBatch = 256

// Mesher converts chunk voxel sets into compacted Buffers. The per-voxel face
// pass fans out over a worker pool; compaction runs on the calling goroutine.
// A Mesher is safe for concurrent use.
type Mesher struct {
	pool    pond.Pool
	workers int
}

// NewMesher creates a Mesher backed by workers goroutines. A non-positive
// count uses GOMAXPROCS.
func NewMesher(workers int) *Mesher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Mesher{pool: pond.NewPool(workers), workers: workers}
}

// Close stops the worker pool after running tasks finish.
func (m *Mesher) Close() {
	m.pool.StopAndWait()
}

// slots is the worst-case arena of one Mesh call: every voxel owns room for
// all six faces, and writes nowhere else.
type slots struct {
	vertices []mgl32.Vec3
	indices  []int32
}

// Mesh builds the visible faces of data. nb carries the neighbor border
// voxels already translated into data's local space; absent neighbors leave
// their side exposed.
func (m *Mesher) Mesh(data *world.ChunkData, chunkSize int, nb world.Neighbors) (*Buffers, error) {
	if data == nil {
		return nil, fmt.Errorf("mesh: nil chunk data: %w", world.ErrInvalidConfiguration)
	}
	if chunkSize <= 0 || chunkSize != data.Size {
		return nil, fmt.Errorf("mesh %s: chunk size %d, data built with %d: %w",
			data.Coord, chunkSize, data.Size, world.ErrInvalidConfiguration)
	}

	n := len(data.Voxels)
	if n == 0 {
		return &Buffers{}, nil
	}
	if int64(n)*vertsPerVoxel > math.MaxInt32 {
		return nil, fmt.Errorf("mesh %s: %d voxels exceed the index arena: %w",
			data.Coord, n, world.ErrInvalidConfiguration)
	}

	occ := newOccupancy(data, nb)
	s := &slots{
		vertices: make([]mgl32.Vec3, n*vertsPerVoxel),
		indices:  make([]int32, n*indicesPerVoxel),
	}

	batch := max(minBatch, (n+m.workers-1)/m.workers)
	group := m.pool.NewGroup()
	for start := 0; start < n; start += batch {
		end := min(start+batch, n)
		group.Submit(func() {
			for i := start; i < end; i++ {
				s.fill(i, data.Voxels[i], occ)
			}
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("mesh %s: %w", data.Coord, err)
	}

	buf := compact(s)
	buf.Wide = len(buf.Vertices) > maxVertices16
	return buf, nil
}

// fill writes voxel i's slot. Culled faces keep the inactive sentinel in
// their first index.
func (s *slots) fill(i int, p world.VoxelPos, occ *occupancy) {
	vbase := i * vertsPerVoxel
	ibase := i * indicesPerVoxel
	origin := mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}

	for f := range facesPerVoxel {
		d := faceDirs[f]
		iq := s.indices[ibase+f*indicesPerFace : ibase+(f+1)*indicesPerFace]
		if occ.has(p.Offset(d.X, d.Y, d.Z)) {
			for k := range iq {
				iq[k] = inactive
			}
			continue
		}
		v0 := vbase + f*vertsPerFace
		for k, c := range faceCorners[f] {
			s.vertices[v0+k] = origin.Add(c)
		}
		for k, q := range quadIndices {
			iq[k] = int32(v0) + q
		}
	}
}

// compact drops culled quads and rebases the surviving indices by the number
// of vertices skipped before them.
func compact(s *slots) *Buffers {
	quads := len(s.indices) / indicesPerFace
	visible := 0
	for q := range quads {
		if s.indices[q*indicesPerFace] != inactive {
			visible++
		}
	}

	buf := &Buffers{
		Vertices:  make([]mgl32.Vec3, 0, visible*vertsPerFace),
		Triangles: make([]uint32, 0, visible*indicesPerFace),
		UVs:       make([]mgl32.Vec2, 0, visible*vertsPerFace),
	}
	var skipped int32
	for q := range quads {
		iq := s.indices[q*indicesPerFace : (q+1)*indicesPerFace]
		if iq[0] == inactive {
			skipped += vertsPerFace
			continue
		}
		buf.Vertices = append(buf.Vertices, s.vertices[q*vertsPerFace:(q+1)*vertsPerFace]...)
		buf.UVs = append(buf.UVs, quadUVs[:]...)
		for _, idx := range iq {
			buf.Triangles = append(buf.Triangles, uint32(idx-skipped))
		}
	}
	return buf
}
