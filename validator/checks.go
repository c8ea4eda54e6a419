package validator

import (
	"math"

	"github.com/tccd-sim/collider/particle"
	"github.com/tccd-sim/collider/toi"
)

func dist(ax, ay, bx, by float32) float32 {
	dx, dy := bx-ax, by-ay
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// validateEvent checks a single recorded event's geometry and
// kinematics against its own recorded fields. Position data comes
// straight off the event row, never from a particle snapshot lookup:
// by the time an event is validated the particles involved have
// already moved past the moment of impact in the next snapshot.
// Radius lookups still go through prev, since the event row carries no
// radius of its own.
func validateEvent(ev Event, prev FrameWindow, tolerance float32) *ValidationError {
	switch ev.Kind {
	case EventPair:
		return validatePairEvent(ev, prev, tolerance)
	case EventWall:
		return validateWallEvent(ev, tolerance)
	default:
		return nil
	}
}

func validatePairEvent(ev Event, prev FrameWindow, tolerance float32) *ValidationError {
	pi, ok := prev.Particles[ev.I]
	if !ok {
		return &ValidationError{Kind: ErrParticleNotFound, I: ev.I}
	}
	pj, ok := prev.Particles[ev.J]
	if !ok {
		return &ValidationError{Kind: ErrParticleNotFound, I: ev.J}
	}

	distance := dist(ev.IX, ev.IY, ev.JX, ev.JY)
	expected := pi.Radius + pj.Radius
	if absf(distance-expected)/expected > tolerance {
		return &ValidationError{
			Kind: ErrNotTouching, I: ev.I, J: ev.J,
			IX: ev.IX, IY: ev.IY, JX: ev.JX, JY: ev.JY,
			Distance: distance, Expected: expected,
		}
	}

	dx, dy := ev.JX-ev.IX, ev.JY-ev.IY
	if distance > 0 {
		dx, dy = dx/distance, dy/distance
	}
	dot := dx*ev.NX + dy*ev.NY
	if absf(dot) < 1-tolerance {
		return &ValidationError{
			Kind: ErrWrongNormal, I: ev.I, J: ev.J,
			NX: ev.NX, NY: ev.NY,
		}
	}

	expectedAfter := -ev.VRelNBefore
	if absf(ev.VRelNAfter-expectedAfter) > tolerance {
		return &ValidationError{
			Kind: ErrNotElastic, I: ev.I, J: ev.J,
			Before: ev.VRelNBefore, After: ev.VRelNAfter, Expected: expectedAfter,
		}
	}
	return nil
}

func validateWallEvent(ev Event, tolerance float32) *ValidationError {
	expectedAfter := -ev.VRelNBefore
	if absf(ev.VRelNAfter-expectedAfter) > tolerance {
		return &ValidationError{
			Kind: ErrNotElastic, I: ev.I,
			Before: ev.VRelNBefore, After: ev.VRelNAfter, Expected: expectedAfter,
		}
	}
	return nil
}

// findMissedCollisions re-runs the pair TOI kernel over every unordered
// pair in window against dt, the gap to the next frame, and flags any
// pair with a finite time-of-impact that reported events does not
// cover. It is the only check that recomputes physics rather than
// checking recorded values for self-consistency.
func findMissedCollisions(window FrameWindow, events []Event, dt float32) []Event {
	reported := make(map[[2]int]bool)
	for _, ev := range events {
		if ev.Kind == EventPair {
			i, j := ev.I, ev.J
			if i > j {
				i, j = j, i
			}
			reported[[2]int{i, j}] = true
		}
	}

	ids := make([]int, 0, len(window.Particles))
	for id := range window.Particles {
		ids = append(ids, id)
	}

	var missed []Event
	for a := 0; a < len(ids); a++ {
		for b := a + 1; b < len(ids); b++ {
			i, j := ids[a], ids[b]
			if i > j {
				i, j = j, i
			}
			if reported[[2]int{i, j}] {
				continue
			}

			si, sj := window.Particles[i], window.Particles[j]
			p1 := particle.Particle{Position: si.Position, Velocity: si.Velocity, Radius: si.Radius, Mass: si.Mass}
			p2 := particle.Particle{Position: sj.Position, Velocity: sj.Velocity, Radius: sj.Radius, Mass: sj.Mass}

			if t, ok := toi.Pair(p1, p2, dt); ok {
				missed = append(missed, Event{
					Kind: EventPair, Frame: window.Frame, TimeS: window.TimeS, Toi: t,
					I: i, J: j,
				})
			}
		}
	}
	return missed
}

// checkBoundaries flags any particle whose center has escaped its
// valid clamp interval by more than tolerance.
func checkBoundaries(window FrameWindow, bounds particle.Bounds, tolerance float32) []*ValidationError {
	var errs []*ValidationError
	for id, p := range window.Particles {
		xMin, xMax, yMin, yMax := bounds.ClampInterval(p.Radius)
		if p.Position.X < xMin-tolerance || p.Position.X > xMax+tolerance ||
			p.Position.Y < yMin-tolerance || p.Position.Y > yMax+tolerance {
			errs = append(errs, &ValidationError{
				Kind: ErrNotTouching, I: id,
				IX: p.Position.X, IY: p.Position.Y,
			})
		}
	}
	return errs
}

// checkInitialOverlaps flags any pair of particles that start closer
// together than the sum of their radii allows, tolerance aside. It is
// only meaningful against the very first recorded frame.
func checkInitialOverlaps(window FrameWindow, tolerance float32) []*ValidationError {
	ids := make([]int, 0, len(window.Particles))
	for id := range window.Particles {
		ids = append(ids, id)
	}

	var errs []*ValidationError
	for a := 0; a < len(ids); a++ {
		for b := a + 1; b < len(ids); b++ {
			i, j := ids[a], ids[b]
			pi, pj := window.Particles[i], window.Particles[j]
			d := dist(pi.Position.X, pi.Position.Y, pj.Position.X, pj.Position.Y)
			expected := pi.Radius + pj.Radius
			if d < expected-tolerance {
				errs = append(errs, &ValidationError{
					Kind: ErrNotTouching, I: i, J: j,
					Distance: d, Expected: expected,
				})
			}
		}
	}
	return errs
}

// totals holds the summed kinetic energy and linear momentum of a
// frame window, used by checkConservation to compare two frames.
type totals struct {
	ke, px, py float32
}

func computeTotals(window FrameWindow) totals {
	var t totals
	for _, p := range window.Particles {
		t.ke += 0.5 * p.Mass * p.Velocity.LengthSq()
		t.px += p.Mass * p.Velocity.X
		t.py += p.Mass * p.Velocity.Y
	}
	return t
}

func relativeError(a, b float32) float32 {
	denom := absf(a)
	if denom < 1e-6 {
		denom = 1e-6
	}
	return absf(a-b) / denom
}

// checkConservation compares total kinetic energy and momentum between
// two consecutive frames and flags a violation if either drifts beyond
// tolerance. A frame with zero recorded events is expected to conserve
// both exactly; one or more elastic collisions should still conserve
// both to within floating point error.
func checkConservation(curr, next FrameWindow, tolerance float32) (violation *ValidationError, keDrift, pDrift float32) {
	ct, nt := computeTotals(curr), computeTotals(next)

	keErr := relativeError(ct.ke, nt.ke)
	pxErr := relativeError(ct.px, nt.px)
	pyErr := relativeError(ct.py, nt.py)
	pErr := pxErr
	if pyErr > pErr {
		pErr = pyErr
	}

	if keErr > tolerance {
		violation = &ValidationError{Kind: ErrNotElastic, Before: ct.ke, After: nt.ke, Expected: ct.ke}
	} else if pxErr > tolerance || pyErr > tolerance {
		violation = &ValidationError{Kind: ErrNotElastic, Before: ct.px, After: nt.px, Expected: ct.px}
	}
	return violation, keErr, pErr
}
