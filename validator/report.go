package validator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ValidationReport tallies every violation a streaming validation run
// found, bucketed by what failed. A report with every slice empty
// means the trace checked out end to end.
type ValidationReport struct {
	FramesChecked int

	InitialOverlaps        []*ValidationError
	FalsePositives         []*ValidationError
	MissedCollisions       []Event
	BoundaryViolations     []*ValidationError
	ConservationViolations []*ValidationError

	// EnergyDrift and MomentumDrift hold the per-frame relative
	// conservation error, one sample per transition checked, collected
	// regardless of whether it exceeded tolerance. Feeds SummaryStats.
	EnergyDrift   []float32
	MomentumDrift []float32
}

// Clean reports whether every check passed.
func (r *ValidationReport) Clean() bool {
	return len(r.InitialOverlaps) == 0 &&
		len(r.FalsePositives) == 0 &&
		len(r.MissedCollisions) == 0 &&
		len(r.BoundaryViolations) == 0 &&
		len(r.ConservationViolations) == 0
}

// Summary prints a console-friendly overview: counts for each category
// plus the first ten entries of any non-empty one.
func (r *ValidationReport) Summary() string {
	s := fmt.Sprintf("validated %d frames\n", r.FramesChecked)
	s += fmt.Sprintf("  initial overlaps:         %d\n", len(r.InitialOverlaps))
	s += fmt.Sprintf("  false positives:          %d\n", len(r.FalsePositives))
	s += fmt.Sprintf("  missed collisions:        %d\n", len(r.MissedCollisions))
	s += fmt.Sprintf("  boundary violations:      %d\n", len(r.BoundaryViolations))
	s += fmt.Sprintf("  conservation violations:  %d\n", len(r.ConservationViolations))

	energy, momentum := r.SummaryStats()
	s += fmt.Sprintf("  energy drift:   mean=%.3g stddev=%.3g max=%.3g\n", energy.Mean, energy.StdDev, energy.Max)
	s += fmt.Sprintf("  momentum drift: mean=%.3g stddev=%.3g max=%.3g\n", momentum.Mean, momentum.StdDev, momentum.Max)

	s += summarizeErrors("initial overlaps", r.InitialOverlaps)
	s += summarizeErrors("false positives", r.FalsePositives)
	s += summarizeErrors("boundary violations", r.BoundaryViolations)
	s += summarizeErrors("conservation violations", r.ConservationViolations)

	if n := len(r.MissedCollisions); n > 0 {
		s += "  missed collisions (first 10):\n"
		for i, ev := range r.MissedCollisions {
			if i >= 10 {
				break
			}
			s += fmt.Sprintf("    frame %d: particles %d,%d at toi=%.5f\n", ev.Frame, ev.I, ev.J, ev.Toi)
		}
	}
	return s
}

func summarizeErrors(label string, errs []*ValidationError) string {
	if len(errs) == 0 {
		return ""
	}
	s := fmt.Sprintf("  %s (first 10):\n", label)
	for i, e := range errs {
		if i >= 10 {
			break
		}
		s += "    " + e.Error() + "\n"
	}
	return s
}

// DriftStats summarizes a series of per-frame relative conservation
// errors: mean, sample (unbiased) standard deviation, and the worst sample
// seen. Computed with gonum/stat rather than by hand, the way the
// teacher's optimization tooling leans on gonum for the same kind of
// sample-series reduction.
type DriftStats struct {
	Mean, StdDev, Max float64
}

func driftStats(samples []float32) DriftStats {
	if len(samples) == 0 {
		return DriftStats{}
	}
	xs := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = float64(s)
	}
	mean, stdDev := stat.MeanStdDev(xs, nil)
	return DriftStats{Mean: mean, StdDev: stdDev, Max: floats.Max(xs)}
}

// SummaryStats returns the energy- and momentum-drift distributions
// across every checked frame transition, independent of whether any
// individual sample tripped the tolerance used during validation.
func (r *ValidationReport) SummaryStats() (energy, momentum DriftStats) {
	return driftStats(r.EnergyDrift), driftStats(r.MomentumDrift)
}

type summaryStatRow struct {
	Metric string  `csv:"metric"`
	Mean   float64 `csv:"mean"`
	StdDev float64 `csv:"stddev"`
	Max    float64 `csv:"max"`
}

// WriteSummaryStatsCSV writes summary_stats.csv into dir: one row each
// for the energy-drift and momentum-drift distributions over the run.
func (r *ValidationReport) WriteSummaryStatsCSV(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report output directory: %w", err)
	}
	energy, momentum := r.SummaryStats()
	rows := []summaryStatRow{
		{Metric: "energy_drift", Mean: energy.Mean, StdDev: energy.StdDev, Max: energy.Max},
		{Metric: "momentum_drift", Mean: momentum.Mean, StdDev: momentum.StdDev, Max: momentum.Max},
	}
	f, err := os.Create(filepath.Join(dir, "summary_stats.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.Marshal(rows, f)
}

type overlapRow struct {
	I        int     `csv:"i"`
	J        int     `csv:"j"`
	Distance float32 `csv:"distance"`
	Expected float32 `csv:"expected"`
}

type errorRow struct {
	Kind     string  `csv:"kind"`
	I        int     `csv:"i"`
	J        int     `csv:"j"`
	Distance float32 `csv:"distance"`
	Expected float32 `csv:"expected"`
	Before   float32 `csv:"before"`
	After    float32 `csv:"after"`
}

type missedRow struct {
	Frame int     `csv:"frame"`
	TimeS float32 `csv:"time_s"`
	I     int     `csv:"i"`
	J     int     `csv:"j"`
	Toi   float32 `csv:"toi"`
}

func errorRows(errs []*ValidationError) []errorRow {
	rows := make([]errorRow, len(errs))
	for i, e := range errs {
		rows[i] = errorRow{
			Kind: string(e.Kind), I: e.I, J: e.J,
			Distance: e.Distance, Expected: e.Expected,
			Before: e.Before, After: e.After,
		}
	}
	return rows
}

// WriteCSV writes one CSV file per non-empty violation category into
// dir, named after the category.
func (r *ValidationReport) WriteCSV(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report output directory: %w", err)
	}

	writeIfNonEmpty := func(name string, rows any) error {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		defer f.Close()
		return gocsv.Marshal(rows, f)
	}

	if len(r.InitialOverlaps) > 0 {
		if err := writeIfNonEmpty("initial_overlaps.csv", errorRows(r.InitialOverlaps)); err != nil {
			return err
		}
	}
	if len(r.FalsePositives) > 0 {
		if err := writeIfNonEmpty("false_positives.csv", errorRows(r.FalsePositives)); err != nil {
			return err
		}
	}
	if len(r.BoundaryViolations) > 0 {
		if err := writeIfNonEmpty("boundary_violations.csv", errorRows(r.BoundaryViolations)); err != nil {
			return err
		}
	}
	if len(r.ConservationViolations) > 0 {
		if err := writeIfNonEmpty("conservation_violations.csv", errorRows(r.ConservationViolations)); err != nil {
			return err
		}
	}
	if len(r.MissedCollisions) > 0 {
		rows := make([]missedRow, len(r.MissedCollisions))
		for i, ev := range r.MissedCollisions {
			rows[i] = missedRow{Frame: ev.Frame, TimeS: ev.TimeS, I: ev.I, J: ev.J, Toi: ev.Toi}
		}
		if err := writeIfNonEmpty("missed_collisions.csv", rows); err != nil {
			return err
		}
	}
	return r.WriteSummaryStatsCSV(dir)
}
