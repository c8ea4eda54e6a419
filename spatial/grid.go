// Package spatial provides a uniform hash grid used to narrow the
// pairwise collision search space from O(N^2) down to a small candidate
// set per particle.
package spatial

import (
	"github.com/tccd-sim/collider/particle"
)

// CellCoord is an integer grid cell coordinate.
type CellCoord struct {
	X, Y int32
}

// Grid maps cell coordinates to the particle indices currently inside
// them. It tracks rMax, the largest radius seen across any Rebuild, so
// that candidate neighborhoods can be widened enough to never miss a
// disk larger than the cell size.
type Grid struct {
	cellSize float32
	cells    map[CellCoord][]int
	rMax     float32
}

// New creates an empty grid with the given cell size.
func New(cellSize float32) *Grid {
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[CellCoord][]int),
	}
}

// CellSize returns the grid's cell size.
func (g *Grid) CellSize() float32 { return g.cellSize }

// RMax returns the largest particle radius seen across any Rebuild call.
func (g *Grid) RMax() float32 { return g.rMax }

// Rebuild clears the grid and reinserts every particle at its current
// cell coordinate. O(N). Also refreshes rMax from the current particle
// set, which subsumes the "largest radius ever seen" invariant since
// particle radii never change after creation.
func (g *Grid) Rebuild(particles []particle.Particle) {
	clear(g.cells)

	for i, p := range particles {
		c := g.cellCoord(p.Position)
		g.cells[c] = append(g.cells[c], i)
		if p.Radius > g.rMax {
			g.rMax = p.Radius
		}
	}
}

// neighborOffsets is the 3x3 block of relative cell offsets centered on
// (0,0), ordered the same way the original t-ccd implementation iterates
// them.
var neighborOffsets = [9]CellCoord{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 0}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// CellList appends to dst the particle indices in the 3x3 block of cells
// centered on p's cell, and returns the updated slice. The caller (the
// detector) is responsible for excluding p's own index and for the j > i
// ordering.
func (g *Grid) CellList(p particle.Particle, dst []int) []int {
	base := g.cellCoord(p.Position)
	for _, d := range neighborOffsets {
		c := CellCoord{base.X + d.X, base.Y + d.Y}
		dst = append(dst, g.cells[c]...)
	}
	return dst
}

// CandidatesSweptAABB computes the axis-aligned bounding box of particle
// i's trajectory over [0, dt], inflated by (r_i + r_max), and appends the
// deduplicated, self-excluded indices of every particle in any cell that
// box intersects. visited is caller-owned scratch, cleared by this call.
func (g *Grid) CandidatesSweptAABB(particles []particle.Particle, i int, dt float32, dst []int, visited map[int]struct{}) []int {
	clear(visited)

	p := particles[i]
	p1 := p.Position
	p2 := p.Position.Add(p.Velocity.Scale(dt))

	r := p.Radius + g.rMax
	minX, maxX := minF(p1.X, p2.X)-r, maxF(p1.X, p2.X)+r
	minY, maxY := minF(p1.Y, p2.Y)-r, maxF(p1.Y, p2.Y)+r

	cMin := g.cellCoord(particle.Vec2{X: minX, Y: minY})
	cMax := g.cellCoord(particle.Vec2{X: maxX, Y: maxY})

	for cy := cMin.Y; cy <= cMax.Y; cy++ {
		for cx := cMin.X; cx <= cMax.X; cx++ {
			for _, j := range g.cells[CellCoord{cx, cy}] {
				if j == i {
					continue
				}
				if _, seen := visited[j]; seen {
					continue
				}
				visited[j] = struct{}{}
				dst = append(dst, j)
			}
		}
	}
	return dst
}

// CandidatesAlongSweep performs a 2-D grid ray march (Amanatides-Woo
// style) from particle i's position along its velocity for duration dt.
// At each stepped cell it widens to a (2k+1)x(2k+1) neighborhood, where
// k = ceil((r_i + r_max) / cellSize), appending deduplicated, self-excluded
// candidate indices to dst. visited is caller-owned scratch, cleared by
// this call.
func (g *Grid) CandidatesAlongSweep(particles []particle.Particle, i int, dt float32, dst []int, visited map[int]struct{}) []int {
	clear(visited)

	p := particles[i]
	k := ceilDiv(p.Radius+g.rMax, g.cellSize)

	ray := newRayMarch(p.Position, p.Velocity, dt, g.cellSize)
	for {
		c, more := ray.next()

		for dy := -k; dy <= k; dy++ {
			for dx := -k; dx <= k; dx++ {
				cell := CellCoord{c.X + dx, c.Y + dy}
				for _, j := range g.cells[cell] {
					if j == i {
						continue
					}
					if _, seen := visited[j]; seen {
						continue
					}
					visited[j] = struct{}{}
					dst = append(dst, j)
				}
			}
		}

		if !more {
			break
		}
	}
	return dst
}

func (g *Grid) cellCoord(pos particle.Vec2) CellCoord {
	return CellCoord{
		X: floorDiv(pos.X, g.cellSize),
		Y: floorDiv(pos.Y, g.cellSize),
	}
}

func floorDiv(v, cellSize float32) int32 {
	q := v / cellSize
	f := int32(q)
	if q < 0 && float32(f) != q {
		f--
	}
	return f
}

func ceilDiv(v, cellSize float32) int32 {
	k := v / cellSize
	f := int32(k)
	if float32(f) < k {
		f++
	}
	if f < 1 {
		f = 1
	}
	return f
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
