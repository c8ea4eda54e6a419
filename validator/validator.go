package validator

import (
	"fmt"

	"github.com/tccd-sim/collider/particle"
)

// defaultTolerance matches the solver's remaining-time threshold EpsT;
// a validation run that wants a looser or tighter bound should call
// WithTolerance explicitly.
const defaultTolerance = 1e-5

// StreamingValidator replays a particles/events trace pair frame by
// frame and reports every geometric, kinematic, and conservation
// violation it finds. Zero value is usable; NewStreamingValidator
// exists only to make the default tolerance explicit at call sites.
type StreamingValidator struct {
	tolerance float32
	maxFrame  int
	bounds    particle.Bounds
	hasBounds bool
}

// NewStreamingValidator returns a validator configured with the
// default tolerance and no frame limit or boundary check.
func NewStreamingValidator() *StreamingValidator {
	return &StreamingValidator{tolerance: defaultTolerance}
}

// WithTolerance sets the epsilon every floating point comparison is
// judged against.
func (v *StreamingValidator) WithTolerance(tolerance float32) *StreamingValidator {
	v.tolerance = tolerance
	return v
}

// WithMaxFrame caps how many frames are read from the trace. Zero
// means no limit.
func (v *StreamingValidator) WithMaxFrame(maxFrame int) *StreamingValidator {
	v.maxFrame = maxFrame
	return v
}

// WithBoundary enables the boundary-containment check against bounds.
func (v *StreamingValidator) WithBoundary(bounds particle.Bounds) *StreamingValidator {
	v.bounds = bounds
	v.hasBounds = true
	return v
}

// Validate streams particlesPath and eventsPath in lockstep and
// returns everything it found wrong with the trace. It opens both
// files, decodes them frame by frame through BufferedParticleReader
// and BufferedEventReader, and never holds more than two frames of
// particle state in memory at once.
func (v *StreamingValidator) Validate(particlesPath, eventsPath string) (*ValidationReport, error) {
	pr, err := NewBufferedParticleReader(particlesPath)
	if err != nil {
		return nil, err
	}
	defer pr.Close()

	er, err := NewBufferedEventReader(eventsPath)
	if err != nil {
		return nil, err
	}
	defer er.Close()

	report := &ValidationReport{}

	curr, err := pr.ReadFrame(0)
	if err != nil {
		return nil, fmt.Errorf("reading initial frame: %w", err)
	}
	if len(curr.Particles) == 0 {
		return report, nil
	}
	report.FramesChecked = 1
	report.InitialOverlaps = checkInitialOverlaps(curr, v.tolerance)
	if v.hasBounds {
		for _, e := range checkBoundaries(curr, v.bounds, v.tolerance) {
			report.BoundaryViolations = append(report.BoundaryViolations, e)
		}
	}

	for frame := 1; v.maxFrame == 0 || frame <= v.maxFrame; frame++ {
		next, err := pr.ReadFrame(frame)
		if err != nil {
			return nil, fmt.Errorf("reading frame %d: %w", frame, err)
		}
		if len(next.Particles) == 0 {
			break
		}

		events, err := er.ReadFrame(frame)
		if err != nil {
			return nil, fmt.Errorf("reading events for frame %d: %w", frame, err)
		}

		for _, ev := range events {
			if verr := validateEvent(ev, curr, v.tolerance); verr != nil {
				report.FalsePositives = append(report.FalsePositives, verr)
			}
		}

		dt := next.TimeS - curr.TimeS
		report.MissedCollisions = append(report.MissedCollisions, findMissedCollisions(curr, events, dt)...)

		if v.hasBounds {
			for _, e := range checkBoundaries(next, v.bounds, v.tolerance) {
				report.BoundaryViolations = append(report.BoundaryViolations, e)
			}
		}

		verr, keDrift, pDrift := checkConservation(curr, next, v.tolerance)
		if verr != nil {
			report.ConservationViolations = append(report.ConservationViolations, verr)
		}
		report.EnergyDrift = append(report.EnergyDrift, keDrift)
		report.MomentumDrift = append(report.MomentumDrift, pDrift)

		report.FramesChecked++
		curr = next
	}

	return report, nil
}
