// Command validate replays a particles/events CSV trace produced by
// cmd/simulate and reports every geometric, kinematic, and
// conservation violation it finds.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/tccd-sim/collider/particle"
	"github.com/tccd-sim/collider/validator"
)

func main() {
	particlesPath := flag.String("particles", "", "path to the particles trace CSV (required)")
	eventsPath := flag.String("events", "", "path to the events trace CSV (required)")
	maxFrame := flag.Int("max-frame", 0, "stop after this many frames (0 means no limit)")
	tolerance := flag.Float64("tolerance", 1e-5, "epsilon for geometry/kinematics comparisons")
	size := flag.String("size", "800x600", "arena size as WIDTHxHEIGHT, for the boundary check")
	output := flag.String("output", "", "directory to write per-category violation CSVs to (optional)")
	flag.Parse()

	if *particlesPath == "" || *eventsPath == "" {
		fmt.Fprintln(os.Stderr, "both -particles and -events are required")
		flag.Usage()
		os.Exit(2)
	}

	bounds, err := parseSize(*size)
	if err != nil {
		slog.Error("invalid -size", "value", *size, "error", err)
		os.Exit(2)
	}

	v := validator.NewStreamingValidator().
		WithTolerance(float32(*tolerance)).
		WithMaxFrame(*maxFrame).
		WithBoundary(bounds)

	slog.Info("validating trace", "particles", *particlesPath, "events", *eventsPath, "tolerance", *tolerance)

	report, err := v.Validate(*particlesPath, *eventsPath)
	if err != nil {
		slog.Error("validation failed", "error", err)
		os.Exit(1)
	}

	fmt.Print(report.Summary())

	if *output != "" {
		if err := report.WriteCSV(*output); err != nil {
			slog.Error("failed to write report CSVs", "error", err)
			os.Exit(1)
		}
	}

	if !report.Clean() {
		os.Exit(1)
	}
}

func parseSize(s string) (particle.Bounds, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return particle.Bounds{}, fmt.Errorf("expected WIDTHxHEIGHT, got %q", s)
	}
	w, err := strconv.ParseFloat(parts[0], 32)
	if err != nil {
		return particle.Bounds{}, fmt.Errorf("parsing width: %w", err)
	}
	h, err := strconv.ParseFloat(parts[1], 32)
	if err != nil {
		return particle.Bounds{}, fmt.Errorf("parsing height: %w", err)
	}
	return particle.Bounds{Width: float32(w), Height: float32(h)}, nil
}
