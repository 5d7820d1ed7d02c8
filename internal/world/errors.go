package world

import "errors"

// Limits keep every local coordinate, including translated neighbor border
// cells, inside the int16 range of VoxelPos.
const (
	MaxChunkSize = 1024
	MaxHeight    = 4096
)

var (
	// ErrInvalidConfiguration is returned for non-positive sizes, octaves < 1
	// and other parameters that cannot produce a chunk.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDuplicateChunk is returned when publishing a coordinate that is
	// already present in a Registry.
	ErrDuplicateChunk = errors.New("duplicate chunk")
)
