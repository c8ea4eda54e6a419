// Command simulate runs the TOI-based particle collision simulation in
// a window, optionally recording a CSV trace for the offline validator.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tccd-sim/collider/config"
	"github.com/tccd-sim/collider/detector"
	"github.com/tccd-sim/collider/recorder"
	"github.com/tccd-sim/collider/sim"
	"github.com/tccd-sim/collider/solver"
	"github.com/tccd-sim/collider/spatial"
)

func main() {
	method := flag.String("method", "tccd", "detection method: cell-list, tccd, swept-aabb")
	particleCount := flag.Int("particle-count", 0, "number of particles to simulate (0 = use config default)")
	seed := flag.Int64("seed", 0, "random seed for reproducibility (0 = time-based)")
	record := flag.String("record", "", "what to record: snapshots, events, checks, all (empty = no recording)")
	outputDir := flag.String("output", ".", "directory the recorded CSV trace is written to")
	cellSize := flag.Float64("cell-size", 0, "spatial grid cell size (0 = use config default)")
	fps := flag.Int("fps", 0, "target frame rate (0 = use config default)")
	fullscreen := flag.Bool("fullscreen", false, "open in fullscreen mode")
	minRadius := flag.Float64("min-radius", 0, "minimum particle radius (0 = use config default)")
	maxRadius := flag.Float64("max-radius", 0, "maximum particle radius (0 = use config default)")
	maxVelocity := flag.Float64("max-velocity", 0, "maximum particle speed component (0 = use config default)")
	configPath := flag.String("config", "", "optional YAML config file overriding embedded defaults")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	m, ok := detector.ParseMethod(*method)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown method %q: want cell-list, tccd, or swept-aabb\n", *method)
		os.Exit(1)
	}

	count := cfg.Particles.Count
	if *particleCount > 0 {
		count = *particleCount
	}
	cSize := cfg.Derived.GridCellSize32
	if *cellSize > 0 {
		cSize = float32(*cellSize)
	}
	targetFPS := cfg.Screen.TargetFPS
	if *fps > 0 {
		targetFPS = *fps
	}
	minR := float32(cfg.Particles.MinRadius)
	if *minRadius > 0 {
		minR = float32(*minRadius)
	}
	maxR := float32(cfg.Particles.MaxRadius)
	if *maxRadius > 0 {
		maxR = float32(*maxRadius)
	}
	if minR > maxR {
		fmt.Fprintf(os.Stderr, "min-radius (%v) must not exceed max-radius (%v)\n", minR, maxR)
		os.Exit(1)
	}
	maxV := float32(cfg.Particles.MaxVelocity)
	if *maxVelocity > 0 {
		maxV = float32(*maxVelocity)
	}

	var rec solver.Recorder = recorder.NullRecorder{}
	if *record != "" {
		mode, ok := recorder.ParseRecordMode(*record)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown -record %q: want snapshots, events, checks, or all\n", *record)
			os.Exit(1)
		}
		csv, err := recorder.NewCSV(*outputDir, m.Tag(), count, mode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "setting up CSV recorder: %v\n", err)
			os.Exit(1)
		}
		defer csv.Close()
		rec = csv
	}

	grid := spatial.New(cSize)
	det := detector.New(m, detector.DefaultWorkers())
	solv := solver.New(grid, det, rec)
	runner := sim.NewRunner(count, minR, maxR, maxV, *seed, solv)

	slog.Info("starting simulation",
		"method", m.String(), "particles", count, "cell_size", cSize,
		"fps", targetFPS, "fullscreen", *fullscreen, "record", *record)

	sim.RunWith(runner, sim.HostConfig{
		Title:      "TOI Particle Collider",
		Width:      int32(cfg.Screen.Width),
		Height:     int32(cfg.Screen.Height),
		Fullscreen: *fullscreen,
		FPS:        int32(targetFPS),
	})
}
