package storage

import (
	"bufio"
	"fmt"
	"io"

	"github.com/OCharnyshevich/voxel-terrain/internal/mesh"
	"github.com/OCharnyshevich/voxel-terrain/internal/world"
)

// WriteOBJ writes buf as a Wavefront OBJ object. Vertices are moved from
// chunk-local into world space using the chunk coordinate and size.
func WriteOBJ(w io.Writer, coord world.ChunkCoord, size int, buf *mesh.Buffers) error {
	bw := bufio.NewWriter(w)
	ox := float32(int64(coord.X) * int64(size))
	oy := float32(int64(coord.Y) * int64(size))
	oz := float32(int64(coord.Z) * int64(size))

	fmt.Fprintf(bw, "o chunk_%d_%d_%d\n", coord.X, coord.Y, coord.Z)
	for _, v := range buf.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X()+ox, v.Y()+oy, v.Z()+oz)
	}
	for _, uv := range buf.UVs {
		fmt.Fprintf(bw, "vt %g %g\n", uv.X(), uv.Y())
	}
	// OBJ indices are 1-based.
	for i := 0; i+2 < len(buf.Triangles); i += 3 {
		a, b, c := buf.Triangles[i]+1, buf.Triangles[i+1]+1, buf.Triangles[i+2]+1
		fmt.Fprintf(bw, "f %d/%d %d/%d %d/%d\n", a, a, b, b, c, c)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write obj %s: %w", coord, err)
	}
	return nil
}
