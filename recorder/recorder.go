// Package recorder implements the solver's write-only trace sink: CSV
// files of particle snapshots, pair/wall events, and per-frame check
// counts, named after the broadphase method that produced them.
package recorder

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/tccd-sim/collider/particle"
	"github.com/tccd-sim/collider/solver"
)

// flushInterval is the frame cadence at which CSV writers are flushed to
// disk, matching the trace-file cadence the external interface calls for.
const flushInterval = 60

type particleRow struct {
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

// eventRow covers both Pair and Wall events in one schema: for a Wall
// row, JOrWall holds the wall tag and JX/JY are left zero.
type eventRow struct {
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

type checkRow struct {
	Frame int     `csv:"frame"`
	TimeS float32 `csv:"time_s"`
	Iter  int     `csv:"iter"`
	Count int     `csv:"count"`
}

// RecordMode selects which of the three trace files NewCSV opens,
// mirroring the original's RecorderType enum: Snapshots, Events, and
// Checks each enable exactly one file; All enables all three.
type RecordMode int

const (
	RecordSnapshots RecordMode = iota
	RecordEvents
	RecordChecks
	RecordAll
)

// ParseRecordMode parses the CLI -record spelling (snapshots, events,
// checks, all). ok is false for anything else.
func ParseRecordMode(s string) (RecordMode, bool) {
	switch s {
	case "snapshots":
		return RecordSnapshots, true
	case "events":
		return RecordEvents, true
	case "checks":
		return RecordChecks, true
	case "all":
		return RecordAll, true
	default:
		return 0, false
	}
}

func (m RecordMode) hasParticles() bool { return m == RecordSnapshots || m == RecordAll }
func (m RecordMode) hasEvents() bool    { return m == RecordEvents || m == RecordAll }
func (m RecordMode) hasChecks() bool    { return m == RecordChecks || m == RecordAll }

// CSVRecorder implements solver.Recorder by streaming particle
// snapshots, collision events, and optional per-iteration check counts
// to up to three CSV files per run, named particles_<tag>_<n>.csv,
// events_<tag>_<n>.csv and checks_<tag>_<n>.csv. Which files actually
// get created is governed by the RecordMode passed to NewCSV; a file
// whose category wasn't selected has a nil *os.File and every write
// that would touch it is a no-op.
type CSVRecorder struct {
	particlesFile *os.File
	eventsFile    *os.File
	checksFile    *os.File

	particlesHeaderWritten bool
	eventsHeaderWritten    bool
	checksHeaderWritten    bool

	frame int
	iter  int
}

// NewCSV creates a CSVRecorder, opening only the files mode selects
// among dir/{particles,events,checks}_<tag>_<n>.csv.
func NewCSV(dir, tag string, n int, mode RecordMode) (*CSVRecorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	r := &CSVRecorder{}

	if mode.hasParticles() {
		pf, err := os.Create(filepath.Join(dir, fmt.Sprintf("particles_%s_%d.csv", tag, n)))
		if err != nil {
			return nil, fmt.Errorf("creating particles csv: %w", err)
		}
		r.particlesFile = pf
	}
	if mode.hasEvents() {
		ef, err := os.Create(filepath.Join(dir, fmt.Sprintf("events_%s_%d.csv", tag, n)))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("creating events csv: %w", err)
		}
		r.eventsFile = ef
	}
	if mode.hasChecks() {
		cf, err := os.Create(filepath.Join(dir, fmt.Sprintf("checks_%s_%d.csv", tag, n)))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("creating checks csv: %w", err)
		}
		r.checksFile = cf
	}

	return r, nil
}

// Snapshot writes one row per particle for this frame, then flushes
// every flushInterval frames.
func (r *CSVRecorder) Snapshot(frame int, timeS float32, particles []particle.Particle) {
	r.frame = frame
	r.iter = 0

	if r.particlesFile != nil {
		rows := make([]particleRow, len(particles))
		for i, p := range particles {
			rows[i] = particleRow{
				Frame: frame, TimeS: timeS, ParticleID: i,
				X: p.Position.X, Y: p.Position.Y,
				VX: p.Velocity.X, VY: p.Velocity.Y,
				Radius: p.Radius, Mass: p.Mass,
			}
		}

		if err := r.writeParticles(rows); err != nil {
			slog.Error("failed to write particle snapshot", "frame", frame, "error", err)
		}
	}

	if frame%flushInterval == 0 {
		r.Flush()
	}
}

func (r *CSVRecorder) writeParticles(rows []particleRow) error {
	if !r.particlesHeaderWritten {
		r.particlesHeaderWritten = true
		return gocsv.Marshal(rows, r.particlesFile)
	}
	return gocsv.MarshalWithoutHeaders(rows, r.particlesFile)
}

// EventPair writes one Pair row to the events CSV.
func (r *CSVRecorder) EventPair(frame int, timeS, toiT float32, i, j int, posI, posJ, normal particle.Vec2, vRelBefore, vRelAfter float32) {
	r.iter++
	if r.eventsFile == nil {
		return
	}
	row := eventRow{
		Type: "Pair", Frame: frame, TimeS: timeS, Toi: toiT,
		I: i, JOrWall: fmt.Sprintf("%d", j),
		IX: posI.X, IY: posI.Y, JX: posJ.X, JY: posJ.Y,
		NX: normal.X, NY: normal.Y,
		VNBeforeOrRel: vRelBefore, VNAfterOrRel: vRelAfter,
	}
	if err := r.writeEvent(row); err != nil {
		slog.Error("failed to write pair event", "frame", frame, "i", i, "j", j, "error", err)
	}
}

// EventWall writes one Wall row to the events CSV.
func (r *CSVRecorder) EventWall(frame int, timeS, toiT float32, i int, tag solver.WallTag, pos, normal particle.Vec2, vnBefore, vnAfter float32) {
	r.iter++
	if r.eventsFile == nil {
		return
	}
	row := eventRow{
		Type: "Wall", Frame: frame, TimeS: timeS, Toi: toiT,
		I: i, JOrWall: string(tag),
		IX: pos.X, IY: pos.Y,
		NX: normal.X, NY: normal.Y,
		VNBeforeOrRel: vnBefore, VNAfterOrRel: vnAfter,
	}
	if err := r.writeEvent(row); err != nil {
		slog.Error("failed to write wall event", "frame", frame, "i", i, "wall", tag, "error", err)
	}
}

func (r *CSVRecorder) writeEvent(row eventRow) error {
	rows := []eventRow{row}
	if !r.eventsHeaderWritten {
		r.eventsHeaderWritten = true
		return gocsv.Marshal(rows, r.eventsFile)
	}
	return gocsv.MarshalWithoutHeaders(rows, r.eventsFile)
}

// WriteCheck records an optional per-iteration check count for a frame,
// for external validators that want to compare iteration counts against
// the event log without re-deriving them.
func (r *CSVRecorder) WriteCheck(frame int, timeS float32, iter, count int) {
	if r.checksFile == nil {
		return
	}
	rows := []checkRow{{Frame: frame, TimeS: timeS, Iter: iter, Count: count}}
	var err error
	if !r.checksHeaderWritten {
		r.checksHeaderWritten = true
		err = gocsv.Marshal(rows, r.checksFile)
	} else {
		err = gocsv.MarshalWithoutHeaders(rows, r.checksFile)
	}
	if err != nil {
		slog.Error("failed to write check row", "frame", frame, "error", err)
	}
}

// Flush is an advisory checkpoint; os.File writes are unbuffered so this
// only syncs to stable storage.
func (r *CSVRecorder) Flush() {
	for _, f := range []*os.File{r.particlesFile, r.eventsFile, r.checksFile} {
		if f != nil {
			f.Sync()
		}
	}
}

// Close flushes and closes whichever output files were opened.
func (r *CSVRecorder) Close() error {
	var firstErr error
	for _, f := range []*os.File{r.particlesFile, r.eventsFile, r.checksFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NullRecorder discards every snapshot and event. Useful for benchmark
// or preview runs where trace output would only cost I/O time.
type NullRecorder struct{}

func (NullRecorder) Snapshot(int, float32, []particle.Particle) {}

func (NullRecorder) EventPair(int, float32, float32, int, int, particle.Vec2, particle.Vec2, particle.Vec2, float32, float32) {
}

func (NullRecorder) EventWall(int, float32, float32, int, solver.WallTag, particle.Vec2, particle.Vec2, float32, float32) {
}

func (NullRecorder) Flush() {}
