package validator

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/tccd-sim/collider/particle"
)

// rawParticleRow mirrors the column names recorder.CSVRecorder writes;
// the two packages never share a type directly so the trace format is
// the only contract between a recording run and a later validation run.
type rawParticleRow struct {
	Frame      int     `csv:"frame"`
	TimeS      float32 `csv:"time_s"`
	ParticleID int     `csv:"particle_id"`
	X          float32 `csv:"x"`
	Y          float32 `csv:"y"`
	VX         float32 `csv:"vx"`
	VY         float32 `csv:"vy"`
	Radius     float32 `csv:"radius"`
	Mass       float32 `csv:"mass"`
}

type rawEventRow struct {
	Type          string  `csv:"type"`
	Frame         int     `csv:"frame"`
	TimeS         float32 `csv:"time_s"`
	Toi           float32 `csv:"toi"`
	I             int     `csv:"i"`
	JOrWall       string  `csv:"j_or_wall"`
	IX            float32 `csv:"ix"`
	IY            float32 `csv:"iy"`
	JX            float32 `csv:"jx"`
	JY            float32 `csv:"jy"`
	NX            float32 `csv:"nx"`
	NY            float32 `csv:"ny"`
	VNBeforeOrRel float32 `csv:"vrel_n_before"`
	VNAfterOrRel  float32 `csv:"vrel_n_after"`
}

func toParticleState(row rawParticleRow) ParticleState {
	return ParticleState{
		Position: particle.Vec2{X: row.X, Y: row.Y},
		Velocity: particle.Vec2{X: row.VX, Y: row.VY},
		Radius:   row.Radius,
		Mass:     row.Mass,
	}
}

func toEvent(row rawEventRow) Event {
	ev := Event{
		Kind: EventKind(row.Type), Frame: row.Frame, TimeS: row.TimeS, Toi: row.Toi,
		I:  row.I,
		IX: row.IX, IY: row.IY, JX: row.JX, JY: row.JY,
		NX: row.NX, NY: row.NY,
		VRelNBefore: row.VNBeforeOrRel, VRelNAfter: row.VNAfterOrRel,
	}
	if ev.Kind == EventPair {
		j, _ := strconv.Atoi(row.JOrWall)
		ev.J = j
	} else {
		ev.Wall = row.JOrWall
	}
	return ev
}

// BufferedParticleReader streams a particles trace file frame by frame,
// decoding rows through gocsv's channel-based unmarshaler so the whole
// file is never held in memory at once. It keeps a single row of
// lookahead: the first row that belongs to a later frame than the one
// just read is held until the next ReadFrame call asks for it.
type BufferedParticleReader struct {
	file   *os.File
	rows   chan rawParticleRow
	errs   chan error
	peeked *rawParticleRow
}

// NewBufferedParticleReader opens path and starts streaming its rows.
func NewBufferedParticleReader(path string) (*BufferedParticleReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening particles trace: %w", err)
	}

	rows := make(chan rawParticleRow)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		if err := gocsv.UnmarshalToChan(f, rows); err != nil {
			errs <- err
		}
	}()

	return &BufferedParticleReader{file: f, rows: rows, errs: errs}, nil
}

func (r *BufferedParticleReader) next() (*rawParticleRow, error) {
	row, ok := <-r.rows
	if !ok {
		if err := <-r.errs; err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &row, nil
}

// ReadFrame returns every particle state recorded for frame. It returns
// a window with no particles, and no error, once the stream is
// exhausted without ever reaching frame.
func (r *BufferedParticleReader) ReadFrame(frame int) (FrameWindow, error) {
	window := FrameWindow{Frame: frame, Particles: make(map[int]ParticleState)}

	if r.peeked != nil {
		if r.peeked.Frame != frame {
			return window, nil
		}
		window.TimeS = r.peeked.TimeS
		window.Particles[r.peeked.ParticleID] = toParticleState(*r.peeked)
		r.peeked = nil
	}

	for {
		row, err := r.next()
		if err != nil {
			return window, fmt.Errorf("reading particles trace: %w", err)
		}
		if row == nil {
			return window, nil
		}
		if row.Frame == frame {
			window.TimeS = row.TimeS
			window.Particles[row.ParticleID] = toParticleState(*row)
			continue
		}
		if row.Frame < frame {
			continue
		}
		r.peeked = row
		return window, nil
	}
}

// Close releases the underlying file. The background decode goroutine
// exits once it observes the closed reader.
func (r *BufferedParticleReader) Close() error {
	err := r.file.Close()
	// Drain any row the decoder is still waiting to hand over, so it can
	// reach the closed file and return.
	go func() {
		for range r.rows {
		}
	}()
	return err
}

// BufferedEventReader streams an events trace file frame by frame using
// the same one-row lookahead strategy as BufferedParticleReader. An
// event's Frame is the destination frame of the sub-step it resolved,
// so ReadFrame(frame) returns every event that fired while advancing
// into frame.
type BufferedEventReader struct {
	file   *os.File
	rows   chan rawEventRow
	errs   chan error
	peeked *rawEventRow
}

// NewBufferedEventReader opens path and starts streaming its rows.
func NewBufferedEventReader(path string) (*BufferedEventReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening events trace: %w", err)
	}

	rows := make(chan rawEventRow)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		if err := gocsv.UnmarshalToChan(f, rows); err != nil {
			errs <- err
		}
	}()

	return &BufferedEventReader{file: f, rows: rows, errs: errs}, nil
}

func (r *BufferedEventReader) next() (*rawEventRow, error) {
	row, ok := <-r.rows
	if !ok {
		if err := <-r.errs; err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &row, nil
}

// ReadFrame returns every event recorded for frame, in the order they
// were resolved.
func (r *BufferedEventReader) ReadFrame(frame int) ([]Event, error) {
	var events []Event

	if r.peeked != nil {
		if r.peeked.Frame != frame {
			return events, nil
		}
		events = append(events, toEvent(*r.peeked))
		r.peeked = nil
	}

	for {
		row, err := r.next()
		if err != nil {
			return events, fmt.Errorf("reading events trace: %w", err)
		}
		if row == nil {
			return events, nil
		}
		if row.Frame == frame {
			events = append(events, toEvent(*row))
			continue
		}
		if row.Frame < frame {
			continue
		}
		r.peeked = row
		return events, nil
	}
}

// Close releases the underlying file.
func (r *BufferedEventReader) Close() error { return r.file.Close() }
