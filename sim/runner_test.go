package sim

import (
	"testing"

	"github.com/tccd-sim/collider/detector"
	"github.com/tccd-sim/collider/particle"
	"github.com/tccd-sim/collider/recorder"
	"github.com/tccd-sim/collider/solver"
	"github.com/tccd-sim/collider/spatial"
)

func newTestRunner(count int, seed int64) *Runner {
	g := spatial.New(20)
	d := detector.New(detector.CellList, 1)
	s := solver.New(g, d, recorder.NullRecorder{})
	return NewRunner(count, 3, 10, 200, seed, s)
}

func TestRunnerInitScattersWithinArena(t *testing.T) {
	bounds := particle.Bounds{Width: 800, Height: 600}
	r := newTestRunner(50, 42)
	r.Init(bounds)

	hw, hh := bounds.HalfExtents()
	for i, p := range r.Instances() {
		if p.Radius < 3 || p.Radius > 10 {
			t.Errorf("particle %d radius out of range: %v", i, p.Radius)
		}
		if p.Position.X < -hw || p.Position.X > hw || p.Position.Y < -hh || p.Position.Y > hh {
			t.Errorf("particle %d escaped the arena: %+v", i, p.Position)
		}
		if p.Velocity.X < -200 || p.Velocity.X > 200 {
			t.Errorf("particle %d velocity out of range: %v", i, p.Velocity.X)
		}
	}
}

func TestRunnerInitIsDeterministicForSameSeed(t *testing.T) {
	bounds := particle.Bounds{Width: 800, Height: 600}
	a := newTestRunner(20, 7)
	b := newTestRunner(20, 7)
	a.Init(bounds)
	b.Init(bounds)

	for i := range a.Instances() {
		pa, pb := a.Instances()[i], b.Instances()[i]
		if pa.Position != pb.Position || pa.Velocity != pb.Velocity || pa.Radius != pb.Radius {
			t.Fatalf("same seed produced different particle %d: %+v vs %+v", i, pa, pb)
		}
	}
}

func TestRunnerStepAdvancesFrameAndTime(t *testing.T) {
	bounds := particle.Bounds{Width: 800, Height: 600}
	r := newTestRunner(10, 1)
	r.Init(bounds)

	r.Step(1.0/30, bounds)
	if r.frame != 1 {
		t.Errorf("expected frame 1 after one step, got %d", r.frame)
	}
	if r.timeS <= 0 {
		t.Errorf("expected time_s to advance, got %v", r.timeS)
	}
}
