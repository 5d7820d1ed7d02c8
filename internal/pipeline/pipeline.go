// Package pipeline schedules chunk loading and meshing in budgeted steps.
//
// Work arrives as waves of chunk coordinates. A wave is voxelized and
// published in full before any of its chunks is meshed, so every chunk in the
// wave is meshed against all of its in-wave neighbors.
package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/voxel-terrain/internal/mesh"
	"github.com/OCharnyshevich/voxel-terrain/internal/world"
	"github.com/OCharnyshevich/voxel-terrain/internal/world/gen"
)

// State is the phase of the current wave.
type State int32

const (
	Idle State = iota
	Loading
	Rendering
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Rendering:
		return "rendering"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Sink receives finished meshes. Accept may be called from several
// goroutines at once.
type Sink interface {
	Accept(ctx context.Context, coord world.ChunkCoord, buf *mesh.Buffers) error
	// Drop invalidates any mesh previously accepted for coord.
	Drop(coord world.ChunkCoord)
}

// Config holds the scheduling knobs of a Pipeline.
type Config struct {
	ChunksPerTick int // default budget of one Step
	Workers       int // chunks voxelized or meshed concurrently within a batch; 0 = GOMAXPROCS
}

// Pipeline drives chunks through Idle -> Loading -> Rendering -> Idle.
// Step and the queue operations may be called from different goroutines.
type Pipeline struct {
	cfg    Config
	vox    *gen.Voxelizer
	reg    *world.Registry
	mesher *mesh.Mesher
	sink   Sink
	log    *slog.Logger

	state *atomic.Int32
	stats counters

	mu        sync.Mutex
	pending   []world.ChunkCoord // current wave, in admission order
	inPending map[world.ChunkCoord]struct{}
	cursor    int // next pending index to load
	next      []world.ChunkCoord
	inNext    map[world.ChunkCoord]struct{}
	remesh    map[world.ChunkCoord]struct{} // published chunks queued again by Unload
	wave      uuid.UUID
}

// New creates an idle Pipeline.
func New(cfg Config, vox *gen.Voxelizer, reg *world.Registry, mesher *mesh.Mesher, sink Sink, log *slog.Logger) (*Pipeline, error) {
	if cfg.ChunksPerTick <= 0 {
		return nil, fmt.Errorf("chunks per tick %d must be positive: %w", cfg.ChunksPerTick, world.ErrInvalidConfiguration)
	}
	if vox == nil || reg == nil || mesher == nil || sink == nil {
		return nil, fmt.Errorf("pipeline needs a voxelizer, registry, mesher and sink: %w", world.ErrInvalidConfiguration)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		cfg:       cfg,
		vox:       vox,
		reg:       reg,
		mesher:    mesher,
		sink:      sink,
		log:       log,
		state:     atomic.NewInt32(int32(Idle)),
		stats:     newCounters(),
		inPending: make(map[world.ChunkCoord]struct{}),
		inNext:    make(map[world.ChunkCoord]struct{}),
		remesh:    make(map[world.ChunkCoord]struct{}),
	}, nil
}

// State returns the current phase.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() Stats {
	return p.stats.snapshot()
}

// Pending returns the number of chunks in the current wave plus those
// waiting for the next one.
func (p *Pipeline) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending) + len(p.next)
}

// Enqueue queues coords for the next wave and returns how many were new.
// Coordinates already queued or in the current wave are ignored. Chunks
// added while a wave is in flight wait for that wave to finish.
func (p *Pipeline) Enqueue(coords ...world.ChunkCoord) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, c := range coords {
		if p.enqueueLocked(c) {
			n++
		}
	}
	return n
}

func (p *Pipeline) enqueueLocked(c world.ChunkCoord) bool {
	if _, ok := p.inPending[c]; ok {
		return false
	}
	if _, ok := p.inNext[c]; ok {
		return false
	}
	p.inNext[c] = struct{}{}
	p.next = append(p.next, c)
	return true
}

// Step advances the pipeline by at most one batch of budget chunks. A
// non-positive budget uses Config.ChunksPerTick. It reports whether work
// remains.
//
// A failed batch leaves the wave where it was; the next Step retries it.
func (p *Pipeline) Step(ctx context.Context, budget int) (more bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if budget <= 0 {
		budget = p.cfg.ChunksPerTick
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.State() {
	case Idle:
		if len(p.next) == 0 {
			return false, nil
		}
		p.admit()
		fallthrough
	case Loading:
		if err := p.loadBatch(ctx, budget); err != nil {
			return true, err
		}
		return true, nil
	case Rendering:
		if err := p.renderBatch(ctx, budget); err != nil {
			return true, err
		}
		if len(p.pending) == 0 {
			p.finishWave()
		}
		return len(p.pending) > 0 || len(p.next) > 0, nil
	}
	return false, nil
}

// Run steps with the default budget until the pipeline is idle with nothing
// queued, or ctx is done.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		more, err := p.Step(ctx, 0)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func (p *Pipeline) admit() {
	p.pending, p.next = p.next, nil
	p.inPending, p.inNext = p.inNext, make(map[world.ChunkCoord]struct{})
	p.cursor = 0
	p.wave = uuid.New()
	p.state.Store(int32(Loading))
	p.log.Info("wave started", "wave", p.wave, "chunks", len(p.pending))
}

func (p *Pipeline) finishWave() {
	p.stats.waves.Inc()
	p.state.Store(int32(Idle))
	p.log.Info("wave finished", "wave", p.wave, "published", p.reg.Len(), "queued", len(p.next))
}

func (p *Pipeline) loadBatch(ctx context.Context, budget int) error {
	end := min(p.cursor+budget, len(p.pending))
	batch := p.pending[p.cursor:end]

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for _, c := range batch {
		if p.reg.Has(c) {
			if _, ok := p.remesh[c]; ok {
				delete(p.remesh, c)
				p.stats.remeshed.Inc()
			} else {
				p.stats.duplicates.Inc()
			}
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := p.vox.Voxelize(c)
			if err != nil {
				return err
			}
			if err := p.reg.Publish(c, data); err != nil {
				if errors.Is(err, world.ErrDuplicateChunk) {
					p.stats.duplicates.Inc()
					return nil
				}
				return err
			}
			p.stats.loaded.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load wave %s: %w", p.wave, err)
	}

	p.cursor = end
	p.log.Debug("loaded batch", "wave", p.wave, "chunks", len(batch), "done", end, "total", len(p.pending))
	if p.cursor == len(p.pending) {
		p.cursor = 0
		p.state.Store(int32(Rendering))
	}
	return nil
}

func (p *Pipeline) renderBatch(ctx context.Context, budget int) error {
	end := min(budget, len(p.pending))
	batch := p.pending[:end]
	size := p.vox.Biome().ChunkSize

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for _, c := range batch {
		g.Go(func() error {
			data, ok := p.reg.Get(c)
			if !ok {
				return nil
			}
			buf, err := p.mesher.Mesh(data, size, p.reg.Neighbors(c, size))
			if err != nil {
				return err
			}
			if err := p.sink.Accept(gctx, c, buf); err != nil {
				return fmt.Errorf("sink %s: %w", c, err)
			}
			p.stats.meshed.Inc()
			p.stats.faces.Add(int64(buf.Faces()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("render wave %s: %w", p.wave, err)
	}

	for _, c := range batch {
		delete(p.inPending, c)
	}
	p.pending = p.pending[end:]
	p.log.Debug("rendered batch", "wave", p.wave, "chunks", len(batch), "left", len(p.pending))
	return nil
}

// Unload removes coords from the queues and the registry and drops their
// meshes. Published neighbors of a removed chunk are queued again so the
// faces that bordered it are rebuilt. It returns the number of chunks
// removed from the registry.
func (p *Pipeline) Unload(coords ...world.ChunkCoord) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := make(map[world.ChunkCoord]struct{}, len(coords))
	for _, c := range coords {
		p.dequeueLocked(c)
		if p.reg.Remove(c) {
			p.sink.Drop(c)
			p.stats.unloaded.Inc()
			removed[c] = struct{}{}
		}
	}

	for c := range removed {
		for _, s := range world.Sides {
			nc := c.Neighbor(s)
			if _, gone := removed[nc]; gone || !p.reg.Has(nc) {
				continue
			}
			if p.enqueueLocked(nc) {
				p.remesh[nc] = struct{}{}
			}
		}
	}
	if len(removed) > 0 {
		p.log.Debug("unloaded chunks", "count", len(removed))
	}
	return len(removed)
}

func (p *Pipeline) dequeueLocked(c world.ChunkCoord) {
	delete(p.remesh, c)
	if _, ok := p.inNext[c]; ok {
		delete(p.inNext, c)
		p.next = slices.DeleteFunc(p.next, func(x world.ChunkCoord) bool { return x == c })
	}
	if _, ok := p.inPending[c]; !ok {
		return
	}
	delete(p.inPending, c)
	i := slices.Index(p.pending, c)
	p.pending = slices.Delete(p.pending, i, i+1)
	if p.State() == Loading && i < p.cursor {
		p.cursor--
	}
}

// Evict unloads every published chunk farther than radius from center and
// returns how many were removed.
func (p *Pipeline) Evict(center world.ChunkCoord, radius int) int {
	var far []world.ChunkCoord
	p.reg.Range(func(c world.ChunkCoord, _ *world.ChunkData) bool {
		if !InRange(center, c, radius) {
			far = append(far, c)
		}
		return true
	})
	if len(far) == 0 {
		return 0
	}
	slices.SortFunc(far, compareCoord)
	return p.Unload(far...)
}

func compareCoord(a, b world.ChunkCoord) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.Z, b.Z)
}
