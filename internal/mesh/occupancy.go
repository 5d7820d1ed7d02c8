package mesh

import (
	"github.com/brentp/intintmap"

	"github.com/OCharnyshevich/voxel-terrain/internal/world"
)

const occupancyFill = 0.6

// occupancy is a read-only membership set over voxel positions. It is built
// once per Mesh call and then shared by every worker without locking.
type occupancy struct {
	m *intintmap.Map
}

func newOccupancy(data *world.ChunkData, nb world.Neighbors) *occupancy {
	o := &occupancy{m: intintmap.New(len(data.Voxels)+nb.Len(), occupancyFill)}
	o.add(data.Voxels)
	o.add(nb.Front)
	o.add(nb.Right)
	o.add(nb.Back)
	o.add(nb.Left)
	return o
}

func (o *occupancy) add(ps []world.VoxelPos) {
	for _, p := range ps {
		o.m.Put(packKey(p), 1)
	}
}

func (o *occupancy) has(p world.VoxelPos) bool {
	_, ok := o.m.Get(packKey(p))
	return ok
}

// packKey maps a position to a non-zero int64. The high tag bit keeps the
// origin away from the map's reserved zero key.
func packKey(p world.VoxelPos) int64 {
	return int64(uint16(p.X)) | int64(uint16(p.Y))<<16 | int64(uint16(p.Z))<<32 | 1<<48
}
