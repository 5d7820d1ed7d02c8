package pipeline

import "github.com/OCharnyshevich/voxel-terrain/internal/world"

// Around returns every chunk coordinate within Chebyshev distance radius of
// center, ring by ring from the center outward. Each ring is walked
// clockwise starting at its minimum corner.
func Around(center world.ChunkCoord, radius int) []world.ChunkCoord {
	if radius < 0 {
		return nil
	}
	side := 2*radius + 1
	out := make([]world.ChunkCoord, 0, side*side)
	out = append(out, center)

	at := func(x, z int32) world.ChunkCoord {
		return world.ChunkCoord{X: x, Y: center.Y, Z: z}
	}
	for r := int32(1); r <= int32(radius); r++ {
		x0, x1 := center.X-r, center.X+r
		z0, z1 := center.Z-r, center.Z+r

		for x := x0; x <= x1; x++ {
			out = append(out, at(x, z0))
		}
		for z := z0 + 1; z <= z1-1; z++ {
			out = append(out, at(x1, z))
		}
		for x := x1; x >= x0; x-- {
			out = append(out, at(x, z1))
		}
		for z := z1 - 1; z >= z0+1; z-- {
			out = append(out, at(x0, z))
		}
	}
	return out
}

// InRange reports whether c lies within Chebyshev distance radius of center
// on the horizontal plane.
func InRange(center, c world.ChunkCoord, radius int) bool {
	dx := int64(c.X) - int64(center.X)
	if dx < 0 {
		dx = -dx
	}
	dz := int64(c.Z) - int64(center.Z)
	if dz < 0 {
		dz = -dz
	}
	return dx <= int64(radius) && dz <= int64(radius)
}
