// Package toi implements the time-of-impact kernels: pure functions that
// compute the earliest time in [0, dt] at which two moving disks, or a
// moving disk and an arena wall, first touch.
//
// These kernels never fail. Every guard below exists to keep a NaN or
// physically meaningless root from ever being returned; callers can treat
// a missing result as "no collision in this window", full stop.
package toi

import (
	"math"

	"github.com/tccd-sim/collider/particle"
)

// Collision identifies what a Record refers to: either an ordered pair of
// particle indices (Pair, with I < J) or a single particle about to cross
// a wall (Wall).
type Collision struct {
	Pair bool // true for a Pair collision, false for a Wall collision
	I, J int  // J is only meaningful when Pair is true
}

// Record pairs a time with the collision it refers to.
type Record struct {
	Time      float32
	Collision Collision
}

// Pair computes the earliest time t in [0, dt] at which two moving disks
// first touch.
//
// Solves |Δp + tΔv|^2 = R^2 for the smaller root, where Δp is the relative
// position, Δv the relative velocity, and R the sum of radii. Returns
// (0, false) when:
//
//   - c <= 0: the disks already overlap. Reporting this would re-trigger
//     a collision that was already resolved by the previous event's
//     impulse and position clamp; the caller must not recurse forever on
//     a pair that is still touching from the prior step.
//   - a <= 1e-12: the disks have (near-)zero relative velocity, so they
//     are not on a collision course within this window.
//   - b >= 0: the disks are separating or moving tangentially.
//   - the discriminant is negative: the two trajectories never intersect.
func Pair(p1, p2 particle.Particle, dt float32) (float32, bool) {
	dp := p2.Position.Sub(p1.Position)
	dv := p2.Velocity.Sub(p1.Velocity)
	r := p1.Radius + p2.Radius

	a := dv.Dot(dv)
	b := 2 * dp.Dot(dv)
	c := dp.Dot(dp) - r*r

	if c <= 0 {
		return 0, false
	}
	if a <= 1e-12 {
		return 0, false
	}
	if b >= 0 {
		return 0, false
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}

	sqrtDisc := float32(math.Sqrt(float64(disc)))
	t := (-b - sqrtDisc) / (2 * a)

	if t < 0 || t > dt {
		return 0, false
	}
	return t, true
}

// Boundary computes the earliest time in [0, dt] at which a moving disk's
// center would cross its clamped valid interval, i.e. first touch an arena
// wall. Returns (0, false) if no axis crosses within the window.
func Boundary(p particle.Particle, bounds particle.Bounds, dt float32) (float32, bool) {
	xMin, xMax, yMin, yMax := bounds.ClampInterval(p.Radius)
	pos, vel := p.Position, p.Velocity

	tMin := float32(math.Inf(1))

	if vel.X > 0 {
		if t := (xMax - pos.X) / vel.X; t >= 0 && t <= dt && t < tMin {
			tMin = t
		}
	} else if vel.X < 0 {
		if t := (xMin - pos.X) / vel.X; t >= 0 && t <= dt && t < tMin {
			tMin = t
		}
	}

	if vel.Y > 0 {
		if t := (yMax - pos.Y) / vel.Y; t >= 0 && t <= dt && t < tMin {
			tMin = t
		}
	} else if vel.Y < 0 {
		if t := (yMin - pos.Y) / vel.Y; t >= 0 && t <= dt && t < tMin {
			tMin = t
		}
	}

	if math.IsInf(float64(tMin), 1) {
		return 0, false
	}
	return tMin, true
}
