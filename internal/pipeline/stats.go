package pipeline

import "go.uber.org/atomic"

// Stats is a snapshot of pipeline counters since creation.
type Stats struct {
	Loaded     int64 // chunks voxelized and published
	Meshed     int64 // meshes handed to the sink
	Faces      int64 // quad faces across all meshes
	Duplicates int64 // loads skipped because the chunk was already published
	Remeshed   int64 // published chunks rebuilt after a neighbor was unloaded
	Unloaded   int64 // chunks removed from the registry
	Waves      int64 // completed load/render cycles
}

type counters struct {
	loaded     *atomic.Int64
	meshed     *atomic.Int64
	faces      *atomic.Int64
	duplicates *atomic.Int64
	remeshed   *atomic.Int64
	unloaded   *atomic.Int64
	waves      *atomic.Int64
}

func newCounters() counters {
	return counters{
		loaded:     atomic.NewInt64(0),
		meshed:     atomic.NewInt64(0),
		faces:      atomic.NewInt64(0),
		duplicates: atomic.NewInt64(0),
		remeshed:   atomic.NewInt64(0),
		unloaded:   atomic.NewInt64(0),
		waves:      atomic.NewInt64(0),
	}
}

func (c counters) snapshot() Stats {
	return Stats{
		Loaded:     c.loaded.Load(),
		Meshed:     c.meshed.Load(),
		Faces:      c.faces.Load(),
		Duplicates: c.duplicates.Load(),
		Remeshed:   c.remeshed.Load(),
		Unloaded:   c.unloaded.Load(),
		Waves:      c.waves.Load(),
	}
}
