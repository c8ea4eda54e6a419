package spatial

import (
	"math"

	"github.com/tccd-sim/collider/particle"
)

// rayMarch walks the grid cells a ray from origin along dir crosses over
// [0, tmax], Amanatides-Woo style: it tracks the current cell, the
// per-axis step direction, the remaining time to the next axis crossing
// (tMax), the time delta between crossings of the same axis (tDelta), and
// the remaining budget (tRemain).
type rayMarch struct {
	cur     CellCoord
	step    CellCoord
	tMax    particle.Vec2
	tDelta  particle.Vec2
	tRemain float32
	done    bool
}

func newRayMarch(origin, dir particle.Vec2, tmax, cellSize float32) *rayMarch {
	cell := CellCoord{
		X: floorDiv(origin.X, cellSize),
		Y: floorDiv(origin.Y, cellSize),
	}

	var stepX, stepY int32
	switch {
	case dir.X > 0:
		stepX = 1
	case dir.X < 0:
		stepX = -1
	}
	switch {
	case dir.Y > 0:
		stepY = 1
	case dir.Y < 0:
		stepY = -1
	}

	nextBoundaryX := float32(cell.X) * cellSize
	if stepX > 0 {
		nextBoundaryX = float32(cell.X+1) * cellSize
	}
	nextBoundaryY := float32(cell.Y) * cellSize
	if stepY > 0 {
		nextBoundaryY = float32(cell.Y+1) * cellSize
	}

	inf := float32(math.Inf(1))

	tx, tdx := inf, inf
	if stepX != 0 && dir.X != 0 {
		invX := 1 / dir.X
		tx = (nextBoundaryX - origin.X) * invX
		tdx = absF((cellSize * float32(stepX)) * invX)
	}

	ty, tdy := inf, inf
	if stepY != 0 && dir.Y != 0 {
		invY := 1 / dir.Y
		ty = (nextBoundaryY - origin.Y) * invY
		tdy = absF((cellSize * float32(stepY)) * invY)
	}

	return &rayMarch{
		cur:     cell,
		step:    CellCoord{stepX, stepY},
		tMax:    particle.Vec2{X: maxF(tx, 0), Y: maxF(ty, 0)},
		tDelta:  particle.Vec2{X: tdx, Y: tdy},
		tRemain: maxF(tmax, 0),
	}
}

// next returns the current cell and whether a further call will yield
// another cell. Once it returns false, the returned cell is the last one
// on the ray within the budget and next must not be called again.
func (r *rayMarch) next() (CellCoord, bool) {
	out := r.cur

	if r.done {
		return out, false
	}

	bothInfinite := math.IsInf(float64(r.tMax.X), 1) && math.IsInf(float64(r.tMax.Y), 1)
	if r.tRemain <= 0 || bothInfinite {
		r.done = true
		return out, false
	}

	if r.tMax.X < r.tMax.Y {
		if r.tMax.X > r.tRemain {
			r.done = true
			return out, false
		}
		r.cur.X += r.step.X
		r.tMax.X += r.tDelta.X
	} else {
		if r.tMax.Y > r.tRemain {
			r.done = true
			return out, false
		}
		r.cur.Y += r.step.Y
		r.tMax.Y += r.tDelta.Y
	}

	return out, true
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
