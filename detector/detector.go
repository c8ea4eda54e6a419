// Package detector implements the three interchangeable broadphase
// strategies that narrow the pairwise TOI search and return the earliest
// candidate collision across the whole particle set.
package detector

import (
	"runtime"
	"sync"

	"github.com/tccd-sim/collider/particle"
	"github.com/tccd-sim/collider/spatial"
	"github.com/tccd-sim/collider/toi"
)

// Method selects which broadphase candidate-generation strategy a
// Detector uses. All three share the same per-particle TOI reduction;
// they differ only in how candidates are gathered from the grid.
type Method int

const (
	CellList Method = iota
	TCCD
	SweptAABB
)

// String returns the CLI spelling of m (cell-list, tccd, swept-aabb).
func (m Method) String() string {
	switch m {
	case CellList:
		return "cell-list"
	case TCCD:
		return "tccd"
	case SweptAABB:
		return "swept-aabb"
	default:
		return "unknown"
	}
}

// Tag returns the CSV filename tag for m (cell_list, tccd, swept_aabb),
// per the trace file naming in the external interface spec.
func (m Method) Tag() string {
	switch m {
	case CellList:
		return "cell_list"
	case TCCD:
		return "tccd"
	case SweptAABB:
		return "swept_aabb"
	default:
		return "unknown"
	}
}

// ParseMethod parses a CLI method string. ok is false for anything other
// than "cell-list", "tccd", "swept-aabb".
func ParseMethod(s string) (m Method, ok bool) {
	switch s {
	case "cell-list":
		return CellList, true
	case "tccd":
		return TCCD, true
	case "swept-aabb":
		return SweptAABB, true
	default:
		return 0, false
	}
}

// DefaultWorkers returns max(1, logical_cores - 4), the pool size the spec
// calls for when no explicit worker count is requested.
func DefaultWorkers() int {
	n := runtime.GOMAXPROCS(0) - 4
	if n < 1 {
		n = 1
	}
	return n
}

// workerScratch holds per-worker reusable buffers so the hot scan never
// allocates. visited is only used by the TCCD and SweptAABB methods.
type workerScratch struct {
	candidates []int
	visited    map[int]struct{}
}

type toiSlot struct {
	rec   toi.Record
	found bool
}

// Detector scans particles in parallel, drawing workers from a
// fixed-size pool sized at construction time, and reduces each worker's
// local-best candidate to the global earliest collision via an
// associative min. numWorkers is never read from the environment at
// call time, so tests can force 1 worker for determinism.
type Detector struct {
	method     Method
	numWorkers int
	scratch    []workerScratch
	results    []toiSlot
}

// New creates a Detector for the given method with a fixed worker count.
// numWorkers < 1 is treated as 1.
func New(method Method, numWorkers int) *Detector {
	if numWorkers < 1 {
		numWorkers = 1
	}
	scratch := make([]workerScratch, numWorkers)
	for i := range scratch {
		scratch[i].visited = make(map[int]struct{})
	}
	return &Detector{
		method:     method,
		numWorkers: numWorkers,
		scratch:    scratch,
		results:    make([]toiSlot, numWorkers),
	}
}

// Method returns the broadphase strategy this detector was built with.
func (d *Detector) Method() Method { return d.method }

// FindMinTOI scans every particle's candidate neighborhood and returns
// the earliest collision (pair or wall) in [0, dt], or false if none of
// the particles has a candidate collision within the window.
//
// The scan over particles is data-parallel: each worker owns a
// contiguous chunk of the index range and writes its local best into a
// private slot (no shared mutable state, no lock); the driving goroutine
// reduces across slots after every worker finishes. The grid and the
// particle slice are read-only for the duration of the call.
func (d *Detector) FindMinTOI(grid *spatial.Grid, particles []particle.Particle, bounds particle.Bounds, dt float32) (toi.Record, bool) {
	n := len(particles)
	if n == 0 {
		return toi.Record{}, false
	}

	for i := range d.results {
		d.results[i] = toiSlot{}
	}

	chunk := (n + d.numWorkers - 1) / d.numWorkers

	var wg sync.WaitGroup
	for w := 0; w < d.numWorkers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(workerID, i0, i1 int) {
			defer wg.Done()
			d.scanChunk(workerID, i0, i1, grid, particles, bounds, dt)
		}(w, start, end)
	}
	wg.Wait()

	var best toi.Record
	found := false
	for _, slot := range d.results {
		if !slot.found {
			continue
		}
		if !found || slot.rec.Time < best.Time {
			best = slot.rec
			found = true
		}
	}
	return best, found
}

func (d *Detector) scanChunk(workerID, i0, i1 int, grid *spatial.Grid, particles []particle.Particle, bounds particle.Bounds, dt float32) {
	scratch := &d.scratch[workerID]
	var best toi.Record
	found := false

	for i := i0; i < i1; i++ {
		rec, ok := d.bestForParticle(i, scratch, grid, particles, bounds, dt)
		if !ok {
			continue
		}
		if !found || rec.Time < best.Time {
			best = rec
			found = true
		}
	}

	d.results[workerID] = toiSlot{rec: best, found: found}
}

// bestForParticle computes the earliest collision involving particle i,
// considering only candidates j > i from the chosen broadphase (each
// unordered pair is checked exactly once) plus i's own wall crossing. The
// per-particle window dt_i is tightened to the best TOI found so far,
// per spec: this reduces work and is reflected in which wall crossings
// can still be in range by the time the boundary check runs.
func (d *Detector) bestForParticle(i int, scratch *workerScratch, grid *spatial.Grid, particles []particle.Particle, bounds particle.Bounds, dt float32) (toi.Record, bool) {
	p := particles[i]
	dtI := dt
	var best toi.Record
	found := false

	scratch.candidates = scratch.candidates[:0]
	switch d.method {
	case CellList:
		scratch.candidates = grid.CellList(p, scratch.candidates)
	case TCCD:
		scratch.candidates = grid.CandidatesAlongSweep(particles, i, dtI, scratch.candidates, scratch.visited)
	case SweptAABB:
		scratch.candidates = grid.CandidatesSweptAABB(particles, i, dtI, scratch.candidates, scratch.visited)
	}

	for _, j := range scratch.candidates {
		if j <= i {
			continue
		}

		t, ok := toi.Pair(p, particles[j], dtI)
		if !ok || (found && t >= best.Time) {
			continue
		}

		dtI = t
		best = toi.Record{Time: t, Collision: toi.Collision{Pair: true, I: i, J: j}}
		found = true
	}

	if t, ok := toi.Boundary(p, bounds, dtI); ok && (!found || t < best.Time) {
		best = toi.Record{Time: t, Collision: toi.Collision{Pair: false, I: i}}
		found = true
	}

	return best, found
}
