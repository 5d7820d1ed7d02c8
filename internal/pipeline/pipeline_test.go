package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/OCharnyshevich/voxel-terrain/internal/mesh"
	"github.com/OCharnyshevich/voxel-terrain/internal/world"
	"github.com/OCharnyshevich/voxel-terrain/internal/world/gen"
)

// recordingSink remembers accepted meshes and checks, at accept time, that
// every in-wave neighbor had already been published.
type recordingSink struct {
	reg  *world.Registry
	wave map[world.ChunkCoord]bool

	mu         sync.Mutex
	accepted   map[world.ChunkCoord]*mesh.Buffers
	order      []world.ChunkCoord
	dropped    []world.ChunkCoord
	violations []string
	fail       error
}

func newRecordingSink(reg *world.Registry) *recordingSink {
	return &recordingSink{reg: reg, accepted: make(map[world.ChunkCoord]*mesh.Buffers)}
}

func (s *recordingSink) Accept(_ context.Context, c world.ChunkCoord, buf *mesh.Buffers) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	for _, side := range world.Sides {
		n := c.Neighbor(side)
		if s.wave[n] && !s.reg.Has(n) {
			s.violations = append(s.violations, c.String()+" meshed before "+n.String())
		}
	}
	s.accepted[c] = buf
	s.order = append(s.order, c)
	return nil
}

func (s *recordingSink) Drop(c world.ChunkCoord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accepted, c)
	s.dropped = append(s.dropped, c)
}

func testBiome() gen.Biome {
	b := gen.DefaultBiome()
	b.ChunkSize = 4
	b.MaxHeight = 8
	return b
}

func newTestPipeline(t *testing.T, perTick int) (*Pipeline, *world.Registry, *recordingSink) {
	t.Helper()
	vox, err := gen.NewVoxelizer(testBiome())
	if err != nil {
		t.Fatalf("NewVoxelizer: %v", err)
	}
	m := mesh.NewMesher(2)
	t.Cleanup(m.Close)

	reg := world.NewRegistry()
	sink := newRecordingSink(reg)
	p, err := New(Config{ChunksPerTick: perTick, Workers: 3}, vox, reg, m, sink, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, reg, sink
}

func TestPipelineLoadsWaveBeforeRendering(t *testing.T) {
	p, reg, sink := newTestPipeline(t, 2)
	coords := Around(world.ChunkCoord{}, 1)
	sink.wave = make(map[world.ChunkCoord]bool)
	for _, c := range coords {
		sink.wave[c] = true
	}

	if n := p.Enqueue(coords...); n != 9 {
		t.Fatalf("Enqueue = %d, want 9", n)
	}

	ctx := context.Background()
	steps := 0
	for {
		more, err := p.Step(ctx, 0)
		if err != nil {
			t.Fatalf("Step %d: %v", steps, err)
		}
		steps++
		if p.State() == Loading && len(sink.order) > 0 {
			t.Fatalf("step %d: mesh accepted while still loading", steps)
		}
		if !more {
			break
		}
		if steps > 50 {
			t.Fatal("pipeline did not settle")
		}
	}

	// 5 load batches of at most 2, then 5 render batches.
	if steps != 10 {
		t.Errorf("steps = %d, want 10", steps)
	}
	if p.State() != Idle {
		t.Errorf("State() = %s, want idle", p.State())
	}
	if len(sink.violations) > 0 {
		t.Errorf("ordering violations: %v", sink.violations)
	}
	if reg.Len() != 9 || len(sink.accepted) != 9 {
		t.Errorf("published %d, meshed %d; want 9 each", reg.Len(), len(sink.accepted))
	}
	byCoord := cmpopts.SortSlices(func(a, b world.ChunkCoord) bool { return compareCoord(a, b) < 0 })
	if diff := cmp.Diff(coords, sink.order, byCoord); diff != "" {
		t.Errorf("meshed chunks (-want +got):\n%s", diff)
	}

	st := p.Stats()
	if st.Loaded != 9 || st.Meshed != 9 || st.Waves != 1 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestPipelineSeamsMatchAcrossWave(t *testing.T) {
	p, _, sink := newTestPipeline(t, 16)
	left := world.ChunkCoord{}
	right := left.Neighbor(world.SideRight)
	p.Enqueue(left, right)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// No quad may lie on the x=4 plane shared by the two chunks: both
	// sides are occupied up to their column heights, so only the taller
	// column can show a face there and it belongs to exactly one chunk.
	count := func(buf *mesh.Buffers, x float32) int {
		n := 0
		for q := 0; q < buf.Faces(); q++ {
			v := buf.Vertices[q*4 : q*4+4]
			if v[0].X() == x && v[1].X() == x && v[2].X() == x && v[3].X() == x {
				n++
			}
		}
		return n
	}
	vox, _ := gen.NewVoxelizer(testBiome())
	want := 0
	for lz := 0; lz < 4; lz++ {
		ax, az := gen.WorldColumn(left, 4, 3, lz)
		bx, bz := gen.WorldColumn(right, 4, 0, lz)
		d := vox.ColumnTop(ax, az) - vox.ColumnTop(bx, bz)
		if d < 0 {
			d = -d
		}
		want += d
	}
	got := count(sink.accepted[left], 4) + count(sink.accepted[right], 0)
	if got != want {
		t.Errorf("seam quads = %d, want %d", got, want)
	}
}

func TestPipelineDefersEnqueueDuringWave(t *testing.T) {
	p, reg, _ := newTestPipeline(t, 1)
	ctx := context.Background()
	p.Enqueue(world.ChunkCoord{}, world.ChunkCoord{X: 1})

	// Load both chunks, leaving the wave in Rendering.
	for p.State() != Rendering {
		if _, err := p.Step(ctx, 0); err != nil {
			t.Fatal(err)
		}
	}
	late := world.ChunkCoord{X: 5}
	if p.Enqueue(late) != 1 {
		t.Fatal("late Enqueue should be accepted")
	}
	if p.Enqueue(world.ChunkCoord{}) != 0 {
		t.Error("Enqueue of an in-flight chunk should be ignored")
	}
	if p.Pending() != 3 {
		t.Errorf("Pending() = %d, want 3", p.Pending())
	}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reg.Has(late) {
		t.Error("deferred chunk was never loaded")
	}
	if got := p.Stats().Waves; got != 2 {
		t.Errorf("Waves = %d, want 2", got)
	}
}

func TestPipelineSkipsPublishedChunks(t *testing.T) {
	p, reg, sink := newTestPipeline(t, 4)
	c := world.ChunkCoord{Z: 2}
	data, err := world.NewChunkData(c, 4, []world.VoxelPos{{X: 1, Y: 0, Z: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Publish(c, data); err != nil {
		t.Fatal(err)
	}

	p.Enqueue(c)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, _ := reg.Get(c); got != data {
		t.Error("pre-published chunk was replaced")
	}
	if sink.accepted[c].Faces() != 6 {
		t.Errorf("mesh faces = %d, want 6", sink.accepted[c].Faces())
	}
	if st := p.Stats(); st.Duplicates != 1 || st.Loaded != 0 {
		t.Errorf("Stats = %+v, want 1 duplicate and 0 loaded", st)
	}
}

func TestPipelineUnloadRequeuesNeighbors(t *testing.T) {
	p, reg, sink := newTestPipeline(t, 8)
	ctx := context.Background()
	p.Enqueue(Around(world.ChunkCoord{}, 1)...)
	if err := p.Run(ctx); err != nil {
		t.Fatal(err)
	}

	gone := world.ChunkCoord{X: 1}
	if n := p.Unload(gone, world.ChunkCoord{X: 40}); n != 1 {
		t.Fatalf("Unload = %d, want 1", n)
	}
	if reg.Has(gone) {
		t.Error("unloaded chunk still published")
	}
	if _, ok := sink.accepted[gone]; ok {
		t.Error("sink still holds the unloaded mesh")
	}
	// (0,0), (1,1) and (1,-1) border the removed chunk; (2,0) was never loaded.
	if p.Pending() != 3 {
		t.Errorf("Pending() = %d, want 3 re-queued neighbors", p.Pending())
	}

	sink.order = nil
	if err := p.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if len(sink.order) != 3 {
		t.Errorf("re-meshed %d chunks, want 3", len(sink.order))
	}
	if reg.Has(gone) {
		t.Error("re-meshing neighbors reloaded the unloaded chunk")
	}
	st := p.Stats()
	if st.Remeshed != 3 || st.Duplicates != 0 {
		t.Errorf("Remeshed = %d, Duplicates = %d, want 3 and 0", st.Remeshed, st.Duplicates)
	}

	// A plain re-enqueue of a published chunk is still a duplicate.
	p.Enqueue(world.ChunkCoord{})
	if err := p.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if st := p.Stats(); st.Remeshed != 3 || st.Duplicates != 1 {
		t.Errorf("after re-enqueue Remeshed = %d, Duplicates = %d, want 3 and 1", st.Remeshed, st.Duplicates)
	}
}

func TestPipelineUnloadDuringLoading(t *testing.T) {
	p, reg, _ := newTestPipeline(t, 1)
	ctx := context.Background()
	a, b, c := world.ChunkCoord{}, world.ChunkCoord{X: 3}, world.ChunkCoord{X: 6}
	p.Enqueue(a, b, c)

	if _, err := p.Step(ctx, 0); err != nil {
		t.Fatal(err)
	}
	p.Unload(a)
	if err := p.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if reg.Has(a) || !reg.Has(b) || !reg.Has(c) {
		t.Errorf("published a=%v b=%v c=%v, want false true true", reg.Has(a), reg.Has(b), reg.Has(c))
	}
}

func TestPipelineEvict(t *testing.T) {
	p, reg, _ := newTestPipeline(t, 32)
	ctx := context.Background()
	p.Enqueue(Around(world.ChunkCoord{}, 2)...)
	if err := p.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if n := p.Evict(world.ChunkCoord{}, 1); n != 16 {
		t.Errorf("Evict = %d, want 16", n)
	}
	if reg.Len() != 9 {
		t.Errorf("registry holds %d chunks, want 9", reg.Len())
	}
	if p.Stats().Unloaded != 16 {
		t.Errorf("Unloaded = %d, want 16", p.Stats().Unloaded)
	}
}

func TestPipelineSinkErrorRetries(t *testing.T) {
	p, _, sink := newTestPipeline(t, 4)
	ctx := context.Background()
	p.Enqueue(world.ChunkCoord{})

	boom := errors.New("disk full")
	sink.fail = boom
	var err error
	for i := 0; i < 4 && err == nil; i++ {
		_, err = p.Step(ctx, 0)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("Step error = %v, want %v", err, boom)
	}
	if p.State() != Rendering {
		t.Errorf("State() = %s, want rendering after failed batch", p.State())
	}

	sink.fail = nil
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run after recovery: %v", err)
	}
	if len(sink.accepted) != 1 {
		t.Errorf("accepted %d meshes, want 1", len(sink.accepted))
	}
}

func TestPipelineCancelled(t *testing.T) {
	p, _, _ := newTestPipeline(t, 4)
	p.Enqueue(world.ChunkCoord{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Step(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Step error = %v, want context.Canceled", err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	vox, _ := gen.NewVoxelizer(testBiome())
	m := mesh.NewMesher(1)
	defer m.Close()
	reg := world.NewRegistry()
	if _, err := New(Config{}, vox, reg, m, newRecordingSink(reg), nil); !errors.Is(err, world.ErrInvalidConfiguration) {
		t.Errorf("zero budget error = %v, want ErrInvalidConfiguration", err)
	}
	if _, err := New(Config{ChunksPerTick: 1}, vox, reg, m, nil, nil); !errors.Is(err, world.ErrInvalidConfiguration) {
		t.Errorf("nil sink error = %v, want ErrInvalidConfiguration", err)
	}
}
