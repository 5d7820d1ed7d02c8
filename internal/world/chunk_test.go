package world

import (
	"errors"
	"testing"
)

func TestNewChunkDataEdges(t *testing.T) {
	const size = 4
	voxels := []VoxelPos{
		{0, 0, 0}, // left + back
		{3, 0, 3}, // right + forward
		{1, 2, 1}, // interior
		{0, 1, 3}, // left + forward
		{1, 2, 1}, // duplicate
	}
	d, err := NewChunkData(ChunkCoord{X: 2}, size, voxels)
	if err != nil {
		t.Fatalf("NewChunkData: %v", err)
	}

	if len(d.Voxels) != 4 {
		t.Fatalf("len(Voxels) = %d, want 4 after dedup", len(d.Voxels))
	}
	counts := map[Side]int{SideLeft: 2, SideRight: 1, SideForward: 2, SideBack: 1}
	for s, want := range counts {
		if got := len(d.Edge(s)); got != want {
			t.Errorf("len(Edge(%s)) = %d, want %d", s, got, want)
		}
	}

	// Every edge element must also be a member of the voxel set.
	for _, s := range Sides {
		for _, p := range d.Edge(s) {
			if !d.Contains(p) {
				t.Errorf("edge %s voxel %v missing from voxel set", s, p)
			}
		}
	}
	if d.Contains(VoxelPos{X: 2, Y: 2, Z: 2}) {
		t.Error("Contains reported an empty cell")
	}
}

func TestNewChunkDataInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1, MaxChunkSize + 1} {
		if _, err := NewChunkData(ChunkCoord{}, size, nil); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("NewChunkData(size=%d) error = %v, want ErrInvalidConfiguration", size, err)
		}
	}
}

func TestSideOppositeAndNeighbor(t *testing.T) {
	c := ChunkCoord{X: 5, Z: -3}
	for _, s := range Sides {
		if s.Opposite().Opposite() != s {
			t.Errorf("%s.Opposite().Opposite() != %s", s, s)
		}
		if back := c.Neighbor(s).Neighbor(s.Opposite()); back != c {
			t.Errorf("Neighbor(%s) round trip = %s, want %s", s, back, c)
		}
	}
}

func TestNewChunkDataRejectsOutOfRange(t *testing.T) {
	bad := []VoxelPos{{X: -1, Y: 0, Z: 0}, {X: 0, Y: -1, Z: 0}, {X: 4, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 4}}
	for _, p := range bad {
		if _, err := NewChunkData(ChunkCoord{}, 4, []VoxelPos{p}); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("NewChunkData with %v error = %v, want ErrInvalidConfiguration", p, err)
		}
	}
}
