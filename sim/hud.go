package sim

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
)

// hudWidth is the panel's fixed width, docked to the top-right corner
// the way the original tool's parameter panel was.
const hudWidth = 220

// hud is a small debug overlay: a pause toggle and a time-scale slider
// over the running simulation, plus live particle-count and frame-count
// readouts. Toggled with H, the same "press a key to show the tuning
// panel" pattern as the teacher's interactive preview tools.
type hud struct {
	visible       bool
	paused        bool
	timeScale     float32
	frameCount    int
	particleCount int
}

func newHUD() *hud {
	return &hud{timeScale: 1.0}
}

// Update advances the overlay's own input handling (toggle, pause) and
// returns the dt the simulation should actually advance by this frame:
// zero while paused, frameTime*timeScale otherwise.
func (h *hud) Update(frameTime float32, particleCount int) float32 {
	if rl.IsKeyPressed(rl.KeyH) {
		h.visible = !h.visible
	}
	h.frameCount++
	h.particleCount = particleCount

	if h.paused {
		return 0
	}
	return frameTime * h.timeScale
}

func (h *hud) Draw(screenW int32) {
	if !h.visible {
		return
	}
	panelX := float32(screenW) - hudWidth - 10
	panelY := float32(40)

	rl.DrawRectangle(int32(panelX)-8, int32(panelY)-8, hudWidth+16, 150, rl.Fade(rl.Black, 0.55))

	rl.DrawText(fmt.Sprintf("frame %d", h.frameCount), int32(panelX), int32(panelY), 14, rl.RayWhite)
	panelY += 20

	rl.DrawText("time scale", int32(panelX), int32(panelY), 12, rl.LightGray)
	panelY += 16
	h.timeScale = gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: hudWidth - 50, Height: 18},
		"0.1", "3.0",
		h.timeScale, 0.1, 3.0,
	)
	rl.DrawText(fmt.Sprintf("%.2fx", h.timeScale), int32(panelX+hudWidth-45), int32(panelY+2), 12, rl.RayWhite)
	panelY += 30

	if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: hudWidth - 8, Height: 26}, pauseLabel(h.paused)) {
		h.paused = !h.paused
	}
	panelY += 34

	rl.DrawText(fmt.Sprintf("particles: %d", h.particleCount), int32(panelX), int32(panelY), 12, rl.LightGray)
}

func pauseLabel(paused bool) string {
	if paused {
		return "Resume"
	}
	return "Pause"
}
