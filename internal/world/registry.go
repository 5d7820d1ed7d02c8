package world

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"
)

// Registry maps chunk coordinates to published ChunkData. Each coordinate is
// write-once: re-voxelizing a chunk means Remove followed by Publish.
//
// Reads are lock-free and never wait on a publish of another coordinate.
type Registry struct {
	chunks sync.Map // ChunkCoord -> *ChunkData
	count  *atomic.Int64
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{count: atomic.NewInt64(0)}
}

// Publish makes data visible under coord. The data must be fully built; it is
// stored by pointer in a single atomic step. Publishing an existing coordinate
// fails with ErrDuplicateChunk and leaves the existing entry untouched.
func (r *Registry) Publish(coord ChunkCoord, data *ChunkData) error {
	if data == nil {
		return fmt.Errorf("publish %s: nil chunk data: %w", coord, ErrInvalidConfiguration)
	}
	if _, loaded := r.chunks.LoadOrStore(coord, data); loaded {
		return fmt.Errorf("publish %s: %w", coord, ErrDuplicateChunk)
	}
	r.count.Inc()
	return nil
}

// Get returns the ChunkData published under coord, if any.
func (r *Registry) Get(coord ChunkCoord) (*ChunkData, bool) {
	v, ok := r.chunks.Load(coord)
	if !ok {
		return nil, false
	}
	return v.(*ChunkData), true
}

// Has reports whether coord has been published.
func (r *Registry) Has(coord ChunkCoord) bool {
	_, ok := r.chunks.Load(coord)
	return ok
}

// Remove retires the chunk at coord. It reports whether an entry was removed.
func (r *Registry) Remove(coord ChunkCoord) bool {
	if _, loaded := r.chunks.LoadAndDelete(coord); loaded {
		r.count.Dec()
		return true
	}
	return false
}

// Len returns the number of published chunks.
func (r *Registry) Len() int {
	return int(r.count.Load())
}

// Range calls fn for every published chunk until fn returns false.
func (r *Registry) Range(fn func(coord ChunkCoord, data *ChunkData) bool) {
	r.chunks.Range(func(k, v any) bool {
		return fn(k.(ChunkCoord), v.(*ChunkData))
	})
}

// Neighbors holds the border voxels of the four horizontal neighbors of a
// chunk, already translated into that chunk's local coordinate space.
// An absent neighbor leaves its list empty.
type Neighbors struct {
	Front []VoxelPos // from the +Z neighbor's EdgeBack
	Right []VoxelPos // from the +X neighbor's EdgeLeft
	Back  []VoxelPos // from the -Z neighbor's EdgeForward
	Left  []VoxelPos // from the -X neighbor's EdgeRight
}

// Len returns the total number of translated border voxels.
func (n Neighbors) Len() int {
	return len(n.Front) + len(n.Right) + len(n.Back) + len(n.Left)
}

// Neighbors fetches the four neighbors of coord and translates their facing
// edge lists across the shared boundary.
func (r *Registry) Neighbors(coord ChunkCoord, size int) Neighbors {
	var nb Neighbors
	for _, s := range Sides {
		other, ok := r.Get(coord.Neighbor(s))
		if !ok {
			continue
		}
		edge := TranslateEdge(other.Edge(s.Opposite()), s, size)
		switch s {
		case SideForward:
			nb.Front = edge
		case SideRight:
			nb.Right = edge
		case SideBack:
			nb.Back = edge
		case SideLeft:
			nb.Left = edge
		}
	}
	return nb
}

// TranslateEdge shifts a neighbor's border list into the local space of the
// chunk that has the neighbor on side s.
func TranslateEdge(edge []VoxelPos, s Side, size int) []VoxelPos {
	if len(edge) == 0 {
		return nil
	}
	n := int16(size)
	var dx, dz int16
	switch s {
	case SideLeft:
		dx = -n
	case SideRight:
		dx = n
	case SideForward:
		dz = n
	case SideBack:
		dz = -n
	}
	out := make([]VoxelPos, len(edge))
	for i, p := range edge {
		out[i] = p.Offset(dx, 0, dz)
	}
	return out
}
