package solver

import (
	"testing"

	"github.com/tccd-sim/collider/detector"
	"github.com/tccd-sim/collider/particle"
	"github.com/tccd-sim/collider/spatial"
)

type pairEvent struct {
	i, j               int
	vRelBefore, vRelAfter float32
}

type wallEvent struct {
	i         int
	tag       WallTag
	vnBefore, vnAfter float32
}

type fakeRecorder struct {
	snapshots  int
	lastFrame  []particle.Particle
	pairEvents []pairEvent
	wallEvents []wallEvent
	flushes    int
}

func (f *fakeRecorder) Snapshot(frame int, timeS float32, particles []particle.Particle) {
	f.snapshots++
	f.lastFrame = append([]particle.Particle(nil), particles...)
}

func (f *fakeRecorder) EventPair(frame int, timeS, toiT float32, i, j int, posI, posJ, normal particle.Vec2, vRelBefore, vRelAfter float32) {
	f.pairEvents = append(f.pairEvents, pairEvent{i, j, vRelBefore, vRelAfter})
}

func (f *fakeRecorder) EventWall(frame int, timeS, toiT float32, i int, tag WallTag, pos, normal particle.Vec2, vnBefore, vnAfter float32) {
	f.wallEvents = append(f.wallEvents, wallEvent{i, tag, vnBefore, vnAfter})
}

func (f *fakeRecorder) Flush() { f.flushes++ }

func newSolver(rec Recorder) *Solver {
	g := spatial.New(20)
	d := detector.New(detector.CellList, 1)
	return New(g, d, rec)
}

func TestSolveHeadOnPairExchangesVelocity(t *testing.T) {
	bounds := particle.Bounds{Width: 2000, Height: 2000}
	particles := []particle.Particle{
		particle.New(particle.Vec2{X: -50, Y: 0}, particle.Vec2{X: 100, Y: 0}, 5, [3]float32{}),
		particle.New(particle.Vec2{X: 50, Y: 0}, particle.Vec2{X: -100, Y: 0}, 5, [3]float32{}),
	}

	rec := &fakeRecorder{}
	s := New(spatial.New(100), detector.New(detector.CellList, 1), rec)
	s.Solve(0, 0, particles, bounds, 1.0)

	if rec.snapshots != 1 {
		t.Fatalf("expected exactly one snapshot, got %d", rec.snapshots)
	}
	if len(rec.pairEvents) != 1 {
		t.Fatalf("expected one pair event, got %d", len(rec.pairEvents))
	}

	ev := rec.pairEvents[0]
	if ev.vRelBefore >= 0 {
		t.Errorf("expected approaching v_rel_n before impact, got %v", ev.vRelBefore)
	}
	want := -ev.vRelBefore
	if diff := ev.vRelAfter - want; diff > 1e-3 || diff < -1e-3 {
		t.Errorf("expected v_rel_n to reverse: before=%v after=%v", ev.vRelBefore, ev.vRelAfter)
	}

	got := particles[0].Velocity.X
	if got > -90 {
		t.Errorf("equal-mass head-on collision should swap velocities, particle 0 vx=%v", got)
	}
}

func TestSolveWallBounceFlipsVelocityAndSnapsPosition(t *testing.T) {
	bounds := particle.Bounds{Width: 100, Height: 100}
	particles := []particle.Particle{
		particle.New(particle.Vec2{X: 0, Y: 0}, particle.Vec2{X: 100, Y: 0}, 5, [3]float32{}),
	}

	rec := &fakeRecorder{}
	s := newSolver(rec)
	s.Solve(0, 0, particles, bounds, 1.0)

	if len(rec.wallEvents) != 1 {
		t.Fatalf("expected one wall event, got %d", len(rec.wallEvents))
	}
	ev := rec.wallEvents[0]
	if ev.tag != WallRight {
		t.Errorf("expected right wall, got %v", ev.tag)
	}
	if ev.vnBefore >= 0 || ev.vnAfter <= 0 {
		t.Errorf("expected normal velocity to flip sign, before=%v after=%v", ev.vnBefore, ev.vnAfter)
	}
	if particles[0].Velocity.X >= 0 {
		t.Errorf("expected particle to reverse direction, vx=%v", particles[0].Velocity.X)
	}

	xMin, xMax, _, _ := bounds.ClampInterval(particles[0].Radius)
	if particles[0].Position.X < xMin || particles[0].Position.X > xMax {
		t.Errorf("particle escaped its valid interval: x=%v, [%v, %v]", particles[0].Position.X, xMin, xMax)
	}
}

func TestSolveNoCollisionJustIntegrates(t *testing.T) {
	bounds := particle.Bounds{Width: 2000, Height: 2000}
	particles := []particle.Particle{
		particle.New(particle.Vec2{X: 0, Y: 0}, particle.Vec2{X: 10, Y: 0}, 5, [3]float32{}),
	}

	rec := &fakeRecorder{}
	s := newSolver(rec)
	s.Solve(0, 0, particles, bounds, 1.0)

	if len(rec.pairEvents) != 0 || len(rec.wallEvents) != 0 {
		t.Fatal("expected no events for an uneventful frame")
	}
	if particles[0].Position.X != 10 {
		t.Errorf("expected free flight to dt*v, got x=%v", particles[0].Position.X)
	}
}

func TestSolveThreeParticleSimultaneousLine(t *testing.T) {
	bounds := particle.Bounds{Width: 2000, Height: 2000}
	particles := []particle.Particle{
		particle.New(particle.Vec2{X: -20, Y: 0}, particle.Vec2{X: 50, Y: 0}, 5, [3]float32{}),
		particle.New(particle.Vec2{X: 0, Y: 0}, particle.Vec2{}, 5, [3]float32{}),
		particle.New(particle.Vec2{X: 20, Y: 0}, particle.Vec2{}, 5, [3]float32{}),
	}

	rec := &fakeRecorder{}
	s := newSolver(rec)
	s.Solve(0, 0, particles, bounds, 1.0)

	if rec.snapshots != 1 {
		t.Fatalf("expected exactly one snapshot, got %d", rec.snapshots)
	}
	if len(rec.pairEvents) == 0 {
		t.Fatal("expected at least one pair event resolving the chain collision")
	}

	totalMomentum := float32(0)
	totalKE := float32(0)
	for _, p := range particles {
		totalMomentum += p.Mass * p.Velocity.X
		totalKE += 0.5 * p.Mass * p.Velocity.LengthSq()
	}
	wantMomentum := particles[0].Mass * 50
	if diff := totalMomentum - wantMomentum; diff > 1e-2 || diff < -1e-2 {
		t.Errorf("momentum not conserved across the chain: got %v want %v", totalMomentum, wantMomentum)
	}
}

func TestSolveExhaustingIterCapStillClamps(t *testing.T) {
	bounds := particle.Bounds{Width: 12, Height: 12}
	var particles []particle.Particle
	for i := 0; i < 6; i++ {
		x := float32(i)*2 - 5
		particles = append(particles, particle.New(particle.Vec2{X: x, Y: 0}, particle.Vec2{X: 1000, Y: 0}, 1, [3]float32{}))
	}

	rec := &fakeRecorder{}
	s := newSolver(rec)
	s.Solve(0, 0, particles, bounds, 1.0)

	xMin, xMax, yMin, yMax := bounds.ClampInterval(1)
	for i, p := range particles {
		if p.Position.X < xMin || p.Position.X > xMax || p.Position.Y < yMin || p.Position.Y > yMax {
			t.Errorf("particle %d escaped its valid interval after solve: %+v", i, p.Position)
		}
	}
}
