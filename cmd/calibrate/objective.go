package main

import (
	"math/rand"

	"github.com/tccd-sim/collider/config"
	"github.com/tccd-sim/collider/detector"
	"github.com/tccd-sim/collider/particle"
	"github.com/tccd-sim/collider/spatial"
)

// Objective evaluates, for a given grid cell size, the average number
// of broadphase candidates a particle's TOI check has to examine per
// sub-iteration. Lower is better: it is a direct proxy for how much
// work the detector's inner loop does, independent of any particular
// collision outcome.
type Objective struct {
	method      detector.Method
	seeds       []int64
	count       int
	minRadius   float64
	maxRadius   float64
	maxVelocity float64
	bounds      particle.Bounds
	dt          float32
}

// NewObjective builds an Objective from the base config and CLI overrides.
func NewObjective(method detector.Method, seeds []int64, cfg *config.Config) *Objective {
	return &Objective{
		method:      method,
		seeds:       seeds,
		count:       cfg.Particles.Count,
		minRadius:   cfg.Particles.MinRadius,
		maxRadius:   cfg.Particles.MaxRadius,
		maxVelocity: cfg.Particles.MaxVelocity,
		bounds:      cfg.Derived.Bounds,
		dt:          cfg.Derived.DT32,
	}
}

// Evaluate scatters particles for each seed, builds a grid at cellSize,
// and returns the average per-particle candidate count across every
// seed.
func (o *Objective) Evaluate(cellSize float64) float64 {
	var total float64
	var samples int

	for _, seed := range o.seeds {
		particles := o.scatter(seed)
		grid := spatial.New(float32(cellSize))
		grid.Rebuild(particles)

		visited := make(map[int]struct{})
		var dst []int

		for i := range particles {
			dst = dst[:0]
			switch o.method {
			case detector.CellList:
				dst = grid.CellList(particles[i], dst)
			case detector.SweptAABB:
				dst = grid.CandidatesSweptAABB(particles, i, o.dt, dst, visited)
			case detector.TCCD:
				dst = grid.CandidatesAlongSweep(particles, i, o.dt, dst, visited)
			}
			total += float64(len(dst))
			samples++
		}
	}

	if samples == 0 {
		return 0
	}
	return total / float64(samples)
}

func (o *Objective) scatter(seed int64) []particle.Particle {
	rng := rand.New(rand.NewSource(seed))
	hw, hh := o.bounds.HalfExtents()

	particles := make([]particle.Particle, o.count)
	for i := range particles {
		radius := float32(o.minRadius + rng.Float64()*(o.maxRadius-o.minRadius))
		pos := particle.Vec2{
			X: (rng.Float32()*2 - 1) * hw * 0.9,
			Y: (rng.Float32()*2 - 1) * hh * 0.9,
		}
		vel := particle.Vec2{
			X: (rng.Float32()*2 - 1) * float32(o.maxVelocity),
			Y: (rng.Float32()*2 - 1) * float32(o.maxVelocity),
		}
		particles[i] = particle.New(pos, vel, radius, [3]float32{})
	}
	return particles
}
