// Package particle defines the simulation's core data model: the moving
// disks and the arena they move inside.
package particle

import "math"

// Vec2 is a 2-D vector with float32 components. All physics arithmetic in
// this module stays in float32 to match the precision class the TOI
// kernels are reasoned about in (see package toi): the kernels are guarded
// so that NaN never arises, which only holds if intermediate arithmetic
// doesn't silently widen to float64 and back.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float32 { return v.X*o.X + v.Y*o.Y }

// LengthSq returns the squared length of v.
func (v Vec2) LengthSq() float32 { return v.Dot(v) }

// Length returns the length of v.
func (v Vec2) Length() float32 { return float32(math.Sqrt(float64(v.LengthSq()))) }

// Normalized returns v scaled to unit length. Returns the zero vector if
// v is the zero vector.
func (v Vec2) Normalized() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Particle is a circular rigid body: position, velocity, radius, mass, and
// an opaque color used only by rendering and trace output.
//
// Particles are identified by their position (index) in a densely packed
// slice — that index is stable for the lifetime of a run. Mass is fixed at
// creation (pi * r^2) and never changes afterward.
type Particle struct {
	Position Vec2
	Velocity Vec2
	Radius   float32
	Mass     float32
	Color    [3]float32
}

// New creates a particle with mass derived from its radius (mass = pi * r^2).
func New(position, velocity Vec2, radius float32, color [3]float32) Particle {
	return Particle{
		Position: position,
		Velocity: velocity,
		Radius:   radius,
		Mass:     float32(math.Pi) * radius * radius,
		Color:    color,
	}
}

// Bounds is an axis-aligned rectangle centered at the origin.
type Bounds struct {
	Width, Height float32
}

// HalfExtents returns (width/2, height/2).
func (b Bounds) HalfExtents() (hw, hh float32) {
	return b.Width / 2, b.Height / 2
}

// ClampInterval returns the valid position interval [min, max] on each axis
// for a particle of the given radius inside b.
func (b Bounds) ClampInterval(radius float32) (xMin, xMax, yMin, yMax float32) {
	hw, hh := b.HalfExtents()
	return -hw + radius, hw - radius, -hh + radius, hh - radius
}
