// Package solver implements the per-frame event loop: repeatedly find the
// earliest collision, advance every particle to that instant, resolve the
// impulse, and recurse on the remaining sub-step.
package solver

import (
	"github.com/tccd-sim/collider/detector"
	"github.com/tccd-sim/collider/particle"
	"github.com/tccd-sim/collider/spatial"
	"github.com/tccd-sim/collider/toi"
)

// MaxIter bounds the number of sub-iterations a single frame may spend
// resolving events. Exhausting it means the final defensive clamp is the
// authority on particle state, not a bug.
const MaxIter = 100

// EpsT is the remaining-time threshold below which a sub-step is treated
// as "done": the remainder is integrated directly instead of searching
// for another event.
const EpsT = 1e-5

// WallTag identifies which of the four arena boundaries a wall event
// occurred against.
type WallTag string

const (
	WallLeft   WallTag = "left"
	WallRight  WallTag = "right"
	WallTop    WallTag = "top"
	WallBottom WallTag = "bottom"
)

// Recorder is the write-only sink the solver reports frame snapshots and
// resolved events to. Implementations must not block the solver on I/O
// beyond what they choose to do internally.
type Recorder interface {
	Snapshot(frame int, timeS float32, particles []particle.Particle)
	EventPair(frame int, timeS, toiT float32, i, j int, posI, posJ, normal particle.Vec2, vRelBefore, vRelAfter float32)
	EventWall(frame int, timeS, toiT float32, i int, tag WallTag, pos, normal particle.Vec2, vnBefore, vnAfter float32)
	Flush()
}

// Solver owns the spatial grid and detector a simulation run resolves
// collisions with, plus the recorder it reports to.
type Solver struct {
	grid     *spatial.Grid
	det      *detector.Detector
	recorder Recorder
}

// New builds a Solver from an already-constructed grid, detector, and
// recorder. The grid and detector are mutated (rebuilt, scanned) across
// calls to Solve; callers should not touch them concurrently.
func New(grid *spatial.Grid, det *detector.Detector, recorder Recorder) *Solver {
	return &Solver{grid: grid, det: det, recorder: recorder}
}

// RecordInitial reports a snapshot of the particle state before any
// frame has been stepped, frame 0 at time 0. Simulation hosts call this
// once after randomizing the initial particle layout.
func (s *Solver) RecordInitial(particles []particle.Particle) {
	s.recorder.Snapshot(0, 0, particles)
}

// Solve advances particles by dt, resolving every collision that occurs
// within the frame in chronological order, then reports exactly one
// snapshot for the frame. frame and timeS identify the frame for the
// recorder; timeS is the simulation clock at the end of the frame.
func (s *Solver) Solve(frame int, timeS float32, particles []particle.Particle, bounds particle.Bounds, dt float32) {
	remaining := dt

	for iter := 0; iter < MaxIter; iter++ {
		if remaining <= EpsT {
			advance(particles, remaining)
			remaining = 0
			break
		}

		s.grid.Rebuild(particles)
		rec, ok := s.det.FindMinTOI(s.grid, particles, bounds, remaining)
		if !ok {
			advance(particles, remaining)
			remaining = 0
			break
		}

		advance(particles, rec.Time)
		s.applyEvent(frame, timeS, rec, particles, bounds)
		remaining -= rec.Time
	}

	clampAll(particles, bounds)
	s.recorder.Snapshot(frame, timeS, particles)
}

func advance(particles []particle.Particle, dt float32) {
	for i := range particles {
		particles[i].Position = particles[i].Position.Add(particles[i].Velocity.Scale(dt))
	}
}

func (s *Solver) applyEvent(frame int, timeS float32, rec toi.Record, particles []particle.Particle, bounds particle.Bounds) {
	if rec.Collision.Pair {
		s.applyPairImpulse(frame, timeS, rec.Time, rec.Collision.I, rec.Collision.J, particles)
		return
	}
	s.applyWallImpulse(frame, timeS, rec.Time, rec.Collision.I, particles, bounds)
}

// applyPairImpulse resolves an equal-mass-general elastic collision
// between particles i and j, then reports the event. It does nothing if
// the pair has zero separation or is already separating along the
// normal: both are defensive guards that should not trigger given a
// correctly guarded TOI kernel, but they keep the resolver safe against
// degenerate geometry.
func (s *Solver) applyPairImpulse(frame int, timeS, toiT float32, i, j int, particles []particle.Particle) {
	p1, p2 := &particles[i], &particles[j]

	n := p2.Position.Sub(p1.Position)
	lenSq := n.LengthSq()
	if lenSq == 0 {
		return
	}
	normal := n.Normalized()

	vRelBefore := p2.Velocity.Sub(p1.Velocity).Dot(normal)
	if vRelBefore >= 0 {
		return
	}

	j12 := 2 * p1.Mass * p2.Mass / (p1.Mass + p2.Mass) * vRelBefore
	impulse := normal.Scale(j12)
	p1.Velocity = p1.Velocity.Add(impulse.Scale(1 / p1.Mass))
	p2.Velocity = p2.Velocity.Sub(impulse.Scale(1 / p2.Mass))

	vRelAfter := p2.Velocity.Sub(p1.Velocity).Dot(normal)
	s.recorder.EventPair(frame, timeS, toiT, i, j, p1.Position, p2.Position, normal, vRelBefore, vRelAfter)
}

// applyWallImpulse resolves a collision between particle i and whichever
// boundary it has reached. The wall tag and normal are derived from the
// clamp interval before the velocity flip is applied; this is equivalent
// to deriving them afterward and simpler.
func (s *Solver) applyWallImpulse(frame int, timeS, toiT float32, i int, particles []particle.Particle, bounds particle.Bounds) {
	p := &particles[i]
	xMin, xMax, yMin, yMax := bounds.ClampInterval(p.Radius)

	tag, normal, ok := wallAt(p.Position, xMin, xMax, yMin, yMax)
	if !ok {
		return
	}

	vnBefore := p.Velocity.Dot(normal)
	if vnBefore >= 0 {
		return
	}

	switch tag {
	case WallLeft, WallRight:
		p.Velocity.X = -p.Velocity.X
	case WallTop, WallBottom:
		p.Velocity.Y = -p.Velocity.Y
	}
	snapToBoundary(p, tag, xMin, xMax, yMin, yMax)

	vnAfter := p.Velocity.Dot(normal)
	s.recorder.EventWall(frame, timeS, toiT, i, tag, p.Position, normal, vnBefore, vnAfter)
}

// wallAt identifies which boundary, if any, pos has reached or crossed,
// and that wall's normal pointing back into the arena, so a velocity
// heading into the wall has a negative normal component. Corner cases (position
// beyond two boundaries at once) resolve to whichever axis is checked
// first; a disk cannot be clamped on two adjacent walls simultaneously
// under normal arena sizing.
func wallAt(pos particle.Vec2, xMin, xMax, yMin, yMax float32) (WallTag, particle.Vec2, bool) {
	switch {
	case pos.X <= xMin:
		return WallLeft, particle.Vec2{X: 1, Y: 0}, true
	case pos.X >= xMax:
		return WallRight, particle.Vec2{X: -1, Y: 0}, true
	case pos.Y <= yMin:
		return WallBottom, particle.Vec2{X: 0, Y: 1}, true
	case pos.Y >= yMax:
		return WallTop, particle.Vec2{X: 0, Y: -1}, true
	default:
		return "", particle.Vec2{}, false
	}
}

func snapToBoundary(p *particle.Particle, tag WallTag, xMin, xMax, yMin, yMax float32) {
	switch tag {
	case WallLeft:
		p.Position.X = xMin
	case WallRight:
		p.Position.X = xMax
	case WallBottom:
		p.Position.Y = yMin
	case WallTop:
		p.Position.Y = yMax
	}
}

// clampAll forces every particle back into its valid interval and flips
// the offending velocity component on any clamp. This runs after the
// sub-iteration loop regardless of whether it terminated cleanly or hit
// MaxIter, so out-of-bounds state can never leak into the next frame.
func clampAll(particles []particle.Particle, bounds particle.Bounds) {
	for i := range particles {
		p := &particles[i]
		xMin, xMax, yMin, yMax := bounds.ClampInterval(p.Radius)

		if p.Position.X < xMin {
			p.Position.X = xMin
			if p.Velocity.X < 0 {
				p.Velocity.X = -p.Velocity.X
			}
		} else if p.Position.X > xMax {
			p.Position.X = xMax
			if p.Velocity.X > 0 {
				p.Velocity.X = -p.Velocity.X
			}
		}

		if p.Position.Y < yMin {
			p.Position.Y = yMin
			if p.Velocity.Y < 0 {
				p.Velocity.Y = -p.Velocity.Y
			}
		} else if p.Position.Y > yMax {
			p.Position.Y = yMax
			if p.Velocity.Y > 0 {
				p.Velocity.Y = -p.Velocity.Y
			}
		}
	}
}
