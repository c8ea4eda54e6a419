// Package sim hosts a Simulation inside a raylib window: it owns the
// window and frame loop and pulls instance snapshots from the
// simulation at display cadence, the way the original windowing host
// pulled render instances from its simulation trait object.
package sim

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/tccd-sim/collider/particle"
)

// Simulation is whatever the host drives: told the arena bounds once at
// startup, then asked to advance by dt every frame and to report the
// current particle instances for rendering.
type Simulation interface {
	Init(bounds particle.Bounds)
	Step(dt float32, bounds particle.Bounds)
	Instances() []particle.Particle
}

// HostConfig configures the window the simulation runs inside.
type HostConfig struct {
	Title      string
	Width      int32
	Height     int32
	Fullscreen bool
	FPS        int32
}

// RunWith opens a window, initializes sim against the window's starting
// bounds, then loops: advance by the real frame delta while focused,
// draw every particle as a filled circle. The window can be resized;
// bounds are recomputed from the live screen size every frame, the same
// way the original host's renderer picked up the current window size on
// every resize event.
func RunWith(s Simulation, cfg HostConfig) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(cfg.Width, cfg.Height, cfg.Title)
	defer rl.CloseWindow()

	if cfg.Fullscreen {
		monitor := rl.GetCurrentMonitor()
		rl.SetWindowSize(rl.GetMonitorWidth(monitor), rl.GetMonitorHeight(monitor))
		rl.ToggleFullscreen()
	}

	rl.SetTargetFPS(cfg.FPS)

	bounds := currentBounds()
	s.Init(bounds)

	h := newHUD()

	for !rl.WindowShouldClose() {
		bounds = currentBounds()
		instances := s.Instances()
		dt := h.Update(rl.GetFrameTime(), len(instances))
		if rl.IsWindowFocused() && dt > 0 {
			s.Step(dt, bounds)
			instances = s.Instances()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		drawInstances(instances, bounds)
		rl.DrawFPS(10, 10)
		h.Draw(int32(rl.GetScreenWidth()))
		rl.EndDrawing()
	}
}

func currentBounds() particle.Bounds {
	return particle.Bounds{
		Width:  float32(rl.GetScreenWidth()),
		Height: float32(rl.GetScreenHeight()),
	}
}

// drawInstances maps simulation space (origin at arena center, +y up) to
// screen space (origin top-left, +y down).
func drawInstances(instances []particle.Particle, bounds particle.Bounds) {
	hw, hh := bounds.HalfExtents()
	for _, p := range instances {
		x := p.Position.X + hw
		y := hh - p.Position.Y
		col := rl.NewColor(
			uint8(clamp01(p.Color[0])*255),
			uint8(clamp01(p.Color[1])*255),
			uint8(clamp01(p.Color[2])*255),
			255,
		)
		rl.DrawCircleV(rl.Vector2{X: x, Y: y}, p.Radius, col)
	}
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
