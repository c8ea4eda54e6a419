// Package validator implements the offline, streaming checker that
// replays a particles/events CSV trace and confirms every collision the
// solver resolved was geometrically and kinematically sound, that none
// were missed, and that energy and momentum hold across every frame.
package validator

import (
	"fmt"

	"github.com/tccd-sim/collider/particle"
)

// ParticleState is a particle's kinematic state as read back from a
// trace, independent of the live simulation types in package particle.
type ParticleState struct {
	Position particle.Vec2
	Velocity particle.Vec2
	Radius   float32
	Mass     float32
}

// FrameWindow holds every particle's state at a single recorded frame.
type FrameWindow struct {
	Frame     int
	TimeS     float32
	Particles map[int]ParticleState
}

// EventKind distinguishes a Pair event from a Wall event within a
// single Event value.
type EventKind string

const (
	EventPair EventKind = "Pair"
	EventWall EventKind = "Wall"
)

// Event is a decoded row from the events trace. J and JX/JY are only
// meaningful for EventPair; Wall is only meaningful for EventWall.
type Event struct {
	Kind  EventKind
	Frame int
	TimeS float32
	Toi   float32
	I     int
	J     int
	Wall  string
	IX    float32
	IY    float32
	JX    float32
	JY    float32
	NX    float32
	NY    float32

	// VRelNBefore/VRelNAfter hold the pre/post-impact normal velocity:
	// the relative normal velocity for a Pair event, the single
	// particle's normal velocity for a Wall event.
	VRelNBefore float32
	VRelNAfter  float32
}

// ErrorKind enumerates the ways a recorded event can fail validation.
type ErrorKind string

const (
	ErrParticleNotFound ErrorKind = "particle_not_found"
	ErrNotTouching      ErrorKind = "not_touching"
	ErrWrongNormal      ErrorKind = "wrong_normal"
	ErrNotElastic       ErrorKind = "not_elastic"
)

// ValidationError reports why a single recorded event failed to check
// out against the particle trace. It implements error.
type ValidationError struct {
	Kind ErrorKind
	I, J int

	IX, IY float32
	JX, JY float32

	Distance, Expected float32
	NX, NY             float32
	Before, After      float32
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrParticleNotFound:
		return fmt.Sprintf("particle not found at index %d", e.I)
	case ErrNotTouching:
		return fmt.Sprintf("particles %d,%d not touching: distance=%.4f expected=%.4f", e.I, e.J, e.Distance, e.Expected)
	case ErrWrongNormal:
		return fmt.Sprintf("particles %d,%d have an inconsistent normal: recorded=(%.4f,%.4f)", e.I, e.J, e.NX, e.NY)
	case ErrNotElastic:
		return fmt.Sprintf("particles %d,%d not elastic: before=%.4f after=%.4f expected=%.4f", e.I, e.J, e.Before, e.After, e.Expected)
	default:
		return "unknown validation error"
	}
}
