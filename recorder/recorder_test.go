package recorder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/tccd-sim/collider/particle"
	"github.com/tccd-sim/collider/solver"
)

var (
	_ solver.Recorder = (*CSVRecorder)(nil)
	_ solver.Recorder = NullRecorder{}
)

func TestCSVRecorderWritesParticleSnapshot(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewCSV(dir, "cell_list", 0, RecordAll)
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}

	ps := []particle.Particle{
		particle.New(particle.Vec2{X: 1, Y: 2}, particle.Vec2{X: 3, Y: 4}, 5, [3]float32{}),
		particle.New(particle.Vec2{X: 10, Y: 20}, particle.Vec2{}, 2, [3]float32{}),
	}
	rec.Snapshot(0, 0, ps)
	rec.Snapshot(1, 1.0/30, ps)
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "particles_cell_list_0.csv"))
	if err != nil {
		t.Fatalf("reading particles csv: %v", err)
	}

	var rows []particleRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows (2 particles x 2 frames), got %d", len(rows))
	}
	if rows[0].Frame != 0 || rows[0].ParticleID != 0 || rows[0].X != 1 {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[2].Frame != 1 {
		t.Errorf("expected second snapshot at frame 1, got %+v", rows[2])
	}
}

func TestCSVRecorderWritesPairAndWallEvents(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewCSV(dir, "tccd", 3, RecordAll)
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}

	rec.EventPair(0, 0, 0.5, 1, 2, particle.Vec2{X: 10, Y: 0}, particle.Vec2{X: 15, Y: 0}, particle.Vec2{X: 1, Y: 0}, -10, 10)
	rec.EventWall(0, 0, 0.7, 3, solver.WallLeft, particle.Vec2{X: -390, Y: 5}, particle.Vec2{X: -1, Y: 0}, -5, 5)
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "events_tccd_3.csv"))
	if err != nil {
		t.Fatalf("reading events csv: %v", err)
	}

	var rows []eventRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 event rows, got %d", len(rows))
	}
	if rows[0].Type != "Pair" || rows[0].JOrWall != "2" {
		t.Errorf("unexpected pair row: %+v", rows[0])
	}
	if rows[1].Type != "Wall" || rows[1].JOrWall != string(solver.WallLeft) {
		t.Errorf("unexpected wall row: %+v", rows[1])
	}
}

func TestCSVRecorderCreatesAllThreeFiles(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewCSV(dir, "swept_aabb", 7, RecordAll)
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}
	defer rec.Close()

	for _, name := range []string{"particles_swept_aabb_7.csv", "events_swept_aabb_7.csv", "checks_swept_aabb_7.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestCSVRecorderSnapshotsModeOnlyCreatesParticlesFile(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewCSV(dir, "tccd", 1, RecordSnapshots)
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}

	ps := []particle.Particle{particle.New(particle.Vec2{}, particle.Vec2{}, 1, [3]float32{})}
	rec.Snapshot(0, 0, ps)
	rec.EventPair(0, 0, 0.5, 0, 1, particle.Vec2{}, particle.Vec2{}, particle.Vec2{X: 1}, -1, 1)
	rec.WriteCheck(0, 0, 0, 1)
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "particles_tccd_1.csv")); err != nil {
		t.Errorf("expected particles csv to exist: %v", err)
	}
	for _, name := range []string{"events_tccd_1.csv", "checks_tccd_1.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			t.Errorf("expected %s not to be created in snapshots-only mode", name)
		}
	}
}

func TestParseRecordModeRejectsUnknown(t *testing.T) {
	if _, ok := ParseRecordMode("bogus"); ok {
		t.Error("expected ParseRecordMode to reject an unknown mode")
	}
	for _, s := range []string{"snapshots", "events", "checks", "all"} {
		if _, ok := ParseRecordMode(s); !ok {
			t.Errorf("expected ParseRecordMode(%q) to succeed", s)
		}
	}
}

func TestNullRecorderDiscardsEverything(t *testing.T) {
	var r NullRecorder
	r.Snapshot(0, 0, []particle.Particle{particle.New(particle.Vec2{}, particle.Vec2{}, 1, [3]float32{})})
	r.EventPair(0, 0, 0, 0, 1, particle.Vec2{}, particle.Vec2{}, particle.Vec2{}, 0, 0)
	r.EventWall(0, 0, 0, 0, solver.WallTop, particle.Vec2{}, particle.Vec2{}, 0, 0)
	r.Flush()
}
