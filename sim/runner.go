package sim

import (
	"math/rand"
	"time"

	"github.com/tccd-sim/collider/particle"
	"github.com/tccd-sim/collider/solver"
)

// Runner is the concrete Simulation the simulate command drives: a
// randomly initialized particle population advanced each frame by a
// Solver. Randomization happens in Init, once the real window bounds
// are known, not at construction time.
type Runner struct {
	particles []particle.Particle
	solv      *solver.Solver
	rng       *rand.Rand

	minRadius, maxRadius, maxVelocity float32

	frame int
	timeS float32
}

// NewRunner builds a Runner for count particles, each given a radius in
// [minRadius, maxRadius] and a velocity with components in
// [-maxVelocity, maxVelocity]. seed == 0 seeds from the current time;
// any other value seeds deterministically.
func NewRunner(count int, minRadius, maxRadius, maxVelocity float32, seed int64, solv *solver.Solver) *Runner {
	src := rand.NewSource(seed)
	if seed == 0 {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Runner{
		particles:   make([]particle.Particle, count),
		solv:        solv,
		rng:         rand.New(src),
		minRadius:   minRadius,
		maxRadius:   maxRadius,
		maxVelocity: maxVelocity,
	}
}

// Init scatters particles uniformly across the central 90% of the
// arena and gives each a uniformly random velocity and radius, then
// records the initial layout as frame 0.
func (r *Runner) Init(bounds particle.Bounds) {
	hw, hh := bounds.HalfExtents()

	for i := range r.particles {
		radius := r.minRadius + r.rng.Float32()*(r.maxRadius-r.minRadius)
		pos := particle.Vec2{
			X: (r.rng.Float32()*2 - 1) * 0.9 * hw,
			Y: (r.rng.Float32()*2 - 1) * 0.9 * hh,
		}
		vel := particle.Vec2{
			X: (r.rng.Float32()*2 - 1) * r.maxVelocity,
			Y: (r.rng.Float32()*2 - 1) * r.maxVelocity,
		}
		color := [3]float32{r.rng.Float32(), r.rng.Float32(), r.rng.Float32()}
		r.particles[i] = particle.New(pos, vel, radius, color)
	}

	r.frame = 0
	r.timeS = 0
	r.solv.RecordInitial(r.particles)
}

// Step advances the simulation by dt, resolving every collision within
// the frame, and records the resulting frame.
func (r *Runner) Step(dt float32, bounds particle.Bounds) {
	r.frame++
	r.timeS += dt
	r.solv.Solve(r.frame, r.timeS, r.particles, bounds, dt)
}

// Instances returns the current particle state for rendering.
func (r *Runner) Instances() []particle.Particle { return r.particles }
