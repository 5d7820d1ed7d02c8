package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxel-terrain/internal/world"
)

// Face identifies one side of a voxel cube.
type Face int

const (
	FaceBack   Face = iota // -Z
	FaceFront              // +Z
	FaceRight              // +X
	FaceLeft               // -X
	FaceTop                // +Y
	FaceBottom             // -Y
)

const (
	facesPerVoxel   = 6
	vertsPerFace    = 4
	indicesPerFace  = 6
	vertsPerVoxel   = facesPerVoxel * vertsPerFace
	indicesPerVoxel = facesPerVoxel * indicesPerFace
)

func (f Face) String() string {
	return [...]string{"back", "front", "right", "left", "top", "bottom"}[f]
}

// faceDirs is the neighbor cell offset tested for each face.
var faceDirs = [facesPerVoxel]world.VoxelPos{
	FaceBack:   {X: 0, Y: 0, Z: -1},
	FaceFront:  {X: 0, Y: 0, Z: 1},
	FaceRight:  {X: 1, Y: 0, Z: 0},
	FaceLeft:   {X: -1, Y: 0, Z: 0},
	FaceTop:    {X: 0, Y: 1, Z: 0},
	FaceBottom: {X: 0, Y: -1, Z: 0},
}

// faceCorners lists the quad corners of each face relative to the voxel's
// minimum corner, counter-clockwise as seen from outside the cube.
var faceCorners = [facesPerVoxel][vertsPerFace]mgl32.Vec3{
	FaceBack:   {{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}},
	FaceFront:  {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	FaceRight:  {{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}},
	FaceLeft:   {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	FaceTop:    {{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}},
	FaceBottom: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
}

// quadIndices splits a quad into two triangles sharing the 0-2 diagonal.
var quadIndices = [indicesPerFace]int32{0, 1, 2, 0, 2, 3}

// quadUVs spans the full unit square; atlas placement is left to the renderer.
var quadUVs = [vertsPerFace]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
