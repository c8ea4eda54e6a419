package spatial

import (
	"sort"
	"testing"

	"github.com/tccd-sim/collider/particle"
)

func mkParticles(positions [][2]float32, radius float32) []particle.Particle {
	ps := make([]particle.Particle, len(positions))
	for i, pos := range positions {
		ps[i] = particle.New(particle.Vec2{X: pos[0], Y: pos[1]}, particle.Vec2{}, radius, [3]float32{})
	}
	return ps
}

func sorted(xs []int) []int {
	out := append([]int(nil), xs...)
	sort.Ints(out)
	return out
}

func TestCellListFindsNeighbor(t *testing.T) {
	g := New(20)
	ps := mkParticles([][2]float32{{0, 0}, {5, 5}, {1000, 1000}}, 1)
	g.Rebuild(ps)

	got := sorted(g.CellList(ps[0], nil))
	want := []int{0, 1}
	if !equalInts(got, want) {
		t.Errorf("cell list for particle 0 = %v, want %v", got, want)
	}
}

func TestCandidatesSweptAABBExcludesSelf(t *testing.T) {
	g := New(20)
	ps := mkParticles([][2]float32{{0, 0}, {30, 0}}, 5)
	ps[0].Velocity = particle.Vec2{X: 40, Y: 0}
	g.Rebuild(ps)

	visited := make(map[int]struct{})
	got := sorted(g.CandidatesSweptAABB(ps, 0, 1.0, nil, visited))
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("expected candidate [1], got %v", got)
	}
}

func TestCandidatesAlongSweepStationary(t *testing.T) {
	g := New(20)
	ps := mkParticles([][2]float32{{0, 0}, {5, 0}}, 5)
	g.Rebuild(ps)

	visited := make(map[int]struct{})
	got := g.CandidatesAlongSweep(ps, 0, 1.0, nil, visited)
	want := []int{1}
	if !equalInts(sorted(got), want) {
		t.Errorf("stationary ray march = %v, want %v", got, want)
	}
}

func TestCandidatesAlongSweepTravelsFarEnough(t *testing.T) {
	g := New(10)
	ps := mkParticles([][2]float32{{0, 0}, {95, 0}}, 2)
	ps[0].Velocity = particle.Vec2{X: 100, Y: 0}
	g.Rebuild(ps)

	visited := make(map[int]struct{})
	got := g.CandidatesAlongSweep(ps, 0, 1.0, nil, visited)
	if !contains(got, 1) {
		t.Errorf("expected the ray march to reach particle 1, got %v", got)
	}
}

func TestRMaxTracksLargestRadius(t *testing.T) {
	g := New(20)
	ps := mkParticles([][2]float32{{0, 0}}, 3)
	ps = append(ps, particle.New(particle.Vec2{X: 100, Y: 100}, particle.Vec2{}, 9, [3]float32{}))
	g.Rebuild(ps)

	if g.RMax() != 9 {
		t.Errorf("expected rMax=9, got %v", g.RMax())
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
