package storage

import "github.com/OCharnyshevich/voxel-terrain/internal/world/gen"

// Manifest is the serializable index of an export directory.
type Manifest struct {
	Biome      gen.Biome    `json:"biome"`
	Compressed bool         `json:"compressed"`
	Faces      int64        `json:"faces"`
	Chunks     []ChunkEntry `json:"chunks"`
}

// ChunkEntry describes one exported chunk mesh.
type ChunkEntry struct {
	X        int32  `json:"x"`
	Y        int32  `json:"y"`
	Z        int32  `json:"z"`
	File     string `json:"file,omitempty"` // empty for a chunk with no visible faces
	Faces    int    `json:"faces"`
	Vertices int    `json:"vertices"`
	Wide     bool   `json:"wide_indices,omitempty"`
}
