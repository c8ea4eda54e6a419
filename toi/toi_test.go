package toi

import (
	"math"
	"testing"

	"github.com/tccd-sim/collider/particle"
)

func approxEqual(a, b, tol float32) bool {
	return float32(math.Abs(float64(a-b))) <= tol
}

func TestPairHeadOnApproach(t *testing.T) {
	p1 := particle.New(particle.Vec2{X: -50, Y: 0}, particle.Vec2{X: 100, Y: 0}, 5, [3]float32{})
	p2 := particle.New(particle.Vec2{X: 50, Y: 0}, particle.Vec2{X: -100, Y: 0}, 5, [3]float32{})

	tHit, ok := Pair(p1, p2, 1.0)
	if !ok {
		t.Fatal("expected a collision")
	}
	want := float32(0.45)
	if !approxEqual(tHit, want, 1e-4) {
		t.Errorf("expected t=%.4f, got %.6f", want, tHit)
	}
}

func TestPairAlreadyOverlapping(t *testing.T) {
	p1 := particle.New(particle.Vec2{}, particle.Vec2{}, 5, [3]float32{})
	p2 := particle.New(particle.Vec2{}, particle.Vec2{}, 5, [3]float32{})

	if _, ok := Pair(p1, p2, 1.0); ok {
		t.Error("expected no collision for coincident, stationary particles (c <= 0 guard)")
	}
}

func TestPairZeroRelativeVelocity(t *testing.T) {
	p1 := particle.New(particle.Vec2{X: -20, Y: 0}, particle.Vec2{X: 10, Y: 0}, 5, [3]float32{})
	p2 := particle.New(particle.Vec2{X: 20, Y: 0}, particle.Vec2{X: 10, Y: 0}, 5, [3]float32{})

	if _, ok := Pair(p1, p2, 1.0); ok {
		t.Error("expected no collision for parallel equal velocities (a <= 1e-12 guard)")
	}
}

func TestPairSeparating(t *testing.T) {
	p1 := particle.New(particle.Vec2{X: -10, Y: 0}, particle.Vec2{X: -100, Y: 0}, 5, [3]float32{})
	p2 := particle.New(particle.Vec2{X: 10, Y: 0}, particle.Vec2{X: 100, Y: 0}, 5, [3]float32{})

	if _, ok := Pair(p1, p2, 1.0); ok {
		t.Error("expected no collision for separating particles (b >= 0 guard)")
	}
}

func TestPairGlancing(t *testing.T) {
	p1 := particle.New(particle.Vec2{X: -10, Y: 0}, particle.Vec2{X: 100, Y: 0}, 1, [3]float32{})
	p2 := particle.New(particle.Vec2{X: 0, Y: 1.5}, particle.Vec2{}, 1, [3]float32{})

	tHit, ok := Pair(p1, p2, 1.0)
	if !ok {
		t.Fatal("expected a glancing collision to register")
	}
	if tHit < 0 || tHit > 1.0 {
		t.Errorf("toi out of window: %v", tHit)
	}
}

func TestPairOutsideWindow(t *testing.T) {
	p1 := particle.New(particle.Vec2{X: -1000, Y: 0}, particle.Vec2{X: 1, Y: 0}, 5, [3]float32{})
	p2 := particle.New(particle.Vec2{X: 1000, Y: 0}, particle.Vec2{X: -1, Y: 0}, 5, [3]float32{})

	if _, ok := Pair(p1, p2, 0.1); ok {
		t.Error("expected no collision: TOI exceeds dt")
	}
}

func TestBoundaryWallApproach(t *testing.T) {
	p := particle.New(particle.Vec2{X: 0, Y: 0}, particle.Vec2{X: 500, Y: 0}, 3, [3]float32{})
	bounds := particle.Bounds{Width: 800, Height: 600}

	tHit, ok := Boundary(p, bounds, 1.0)
	if !ok {
		t.Fatal("expected a wall collision")
	}
	want := float32(0.794)
	if !approxEqual(tHit, want, 1e-3) {
		t.Errorf("expected t=%.3f, got %.6f", want, tHit)
	}
}

func TestBoundaryNoMotionTowardWall(t *testing.T) {
	p := particle.New(particle.Vec2{X: 0, Y: 0}, particle.Vec2{}, 3, [3]float32{})
	bounds := particle.Bounds{Width: 800, Height: 600}

	if _, ok := Boundary(p, bounds, 1.0); ok {
		t.Error("expected no wall collision for a stationary particle")
	}
}

func TestBoundaryOutsideWindow(t *testing.T) {
	p := particle.New(particle.Vec2{X: 0, Y: 0}, particle.Vec2{X: 1, Y: 0}, 3, [3]float32{})
	bounds := particle.Bounds{Width: 800, Height: 600}

	if _, ok := Boundary(p, bounds, 0.01); ok {
		t.Error("expected no wall collision within such a short window")
	}
}
