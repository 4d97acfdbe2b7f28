// Package geom holds the supporting geometry types that sit between
// the CSG algebra and the external tessellation/Boolean backends: the
// snap grid used to weld near-coincident vertices (spec.md §4.8), the
// Polyset triangle-soup representation, 4x4 transforms, and the
// content-addressed polyhedron cache (spec.md §4.7).
//
// Grounded on original_source/openscad.h's Grid2d<T>/Grid3d<T>
// templates, reimplemented with Go generics; and on
// smasonuk-sicpu's pkg/grid coordinate-quantizing display grid, which
// is the pack's other example of a welding/snapping grid structure.
package geom

import "math"

const DefaultGridResolution = 1e-3

func quantize(v, res float64) int {
	return int(math.Round(v / res))
}

func iabs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Grid2D quantizes 2D coordinates to a resolution and welds points
// that land in neighboring cells, per spec.md §4.8's invariants:
// align(x,y) quantizes to the nearest res-multiple; if a populated
// cell lies within Chebyshev distance 1 it is reused (nearest-in-L1
// wins, ties broken by insertion order); otherwise a new cell is
// created at the quantized coordinate.
type Grid2D[T any] struct {
	Res   float64
	cells map[[2]int]T
	order [][2]int
}

func NewGrid2D[T any](res float64) *Grid2D[T] {
	if res == 0 {
		res = DefaultGridResolution
	}
	return &Grid2D[T]{Res: res, cells: map[[2]int]T{}}
}

// Align quantizes (x, y) and welds to a nearby cell if one exists,
// auto-creating the cell at the (possibly welded) coordinate
// otherwise. Returns the welded coordinate and the cell's payload.
func (g *Grid2D[T]) Align(x, y float64) (qx, qy float64, cell T) {
	ix, iy := quantize(x, g.Res), quantize(y, g.Res)
	if v, ok := g.cells[[2]int{ix, iy}]; ok {
		return float64(ix) * g.Res, float64(iy) * g.Res, v
	}

	bestDist := 10
	found := false
	var bestKey [2]int
	for _, k := range g.order {
		dx, dy := iabs(ix-k[0]), iabs(iy-k[1])
		if dx <= 1 && dy <= 1 {
			if d := dx + dy; d < bestDist {
				bestDist, bestKey, found = d, k, true
			}
		}
	}
	if found {
		return float64(bestKey[0]) * g.Res, float64(bestKey[1]) * g.Res, g.cells[bestKey]
	}

	key := [2]int{ix, iy}
	var zero T
	g.cells[key] = zero
	g.order = append(g.order, key)
	return float64(ix) * g.Res, float64(iy) * g.Res, zero
}

// Set overwrites the payload at the exact (unquantized) coordinate's
// cell; call after Align to fill in a freshly created cell.
func (g *Grid2D[T]) Set(x, y float64, v T) {
	key := [2]int{quantize(x, g.Res), quantize(y, g.Res)}
	if _, ok := g.cells[key]; !ok {
		g.order = append(g.order, key)
	}
	g.cells[key] = v
}

// Has reports whether a populated cell exists within Chebyshev
// distance 1 of (x, y), without creating one.
func (g *Grid2D[T]) Has(x, y float64) bool {
	ix, iy := quantize(x, g.Res), quantize(y, g.Res)
	if _, ok := g.cells[[2]int{ix, iy}]; ok {
		return true
	}
	for _, k := range g.order {
		if iabs(ix-k[0]) <= 1 && iabs(iy-k[1]) <= 1 {
			return true
		}
	}
	return false
}

// Eq reports whether two points weld to the same cell.
func (g *Grid2D[T]) Eq(x1, y1, x2, y2 float64) bool {
	qx1, qy1, _ := g.Align(x1, y1)
	qx2, qy2, _ := g.Align(x2, y2)
	return math.Abs(qx1-qx2) < g.Res && math.Abs(qy1-qy2) < g.Res
}

// Grid3D is Grid2D's 3D sibling.
type Grid3D[T any] struct {
	Res   float64
	cells map[[3]int]T
	order [][3]int
}

func NewGrid3D[T any](res float64) *Grid3D[T] {
	if res == 0 {
		res = DefaultGridResolution
	}
	return &Grid3D[T]{Res: res, cells: map[[3]int]T{}}
}

func (g *Grid3D[T]) Align(x, y, z float64) (qx, qy, qz float64, cell T) {
	ix, iy, iz := quantize(x, g.Res), quantize(y, g.Res), quantize(z, g.Res)
	if v, ok := g.cells[[3]int{ix, iy, iz}]; ok {
		return float64(ix) * g.Res, float64(iy) * g.Res, float64(iz) * g.Res, v
	}

	bestDist := 10
	found := false
	var bestKey [3]int
	for _, k := range g.order {
		dx, dy, dz := iabs(ix-k[0]), iabs(iy-k[1]), iabs(iz-k[2])
		if dx <= 1 && dy <= 1 && dz <= 1 {
			if d := dx + dy + dz; d < bestDist {
				bestDist, bestKey, found = d, k, true
			}
		}
	}
	if found {
		return float64(bestKey[0]) * g.Res, float64(bestKey[1]) * g.Res, float64(bestKey[2]) * g.Res, g.cells[bestKey]
	}

	key := [3]int{ix, iy, iz}
	var zero T
	g.cells[key] = zero
	g.order = append(g.order, key)
	return float64(ix) * g.Res, float64(iy) * g.Res, float64(iz) * g.Res, zero
}

func (g *Grid3D[T]) Set(x, y, z float64, v T) {
	key := [3]int{quantize(x, g.Res), quantize(y, g.Res), quantize(z, g.Res)}
	if _, ok := g.cells[key]; !ok {
		g.order = append(g.order, key)
	}
	g.cells[key] = v
}

func (g *Grid3D[T]) Has(x, y, z float64) bool {
	ix, iy, iz := quantize(x, g.Res), quantize(y, g.Res), quantize(z, g.Res)
	if _, ok := g.cells[[3]int{ix, iy, iz}]; ok {
		return true
	}
	for _, k := range g.order {
		if iabs(ix-k[0]) <= 1 && iabs(iy-k[1]) <= 1 && iabs(iz-k[2]) <= 1 {
			return true
		}
	}
	return false
}

func (g *Grid3D[T]) Eq(x1, y1, z1, x2, y2, z2 float64) bool {
	qx1, qy1, qz1, _ := g.Align(x1, y1, z1)
	qx2, qy2, qz2, _ := g.Align(x2, y2, z2)
	return math.Abs(qx1-qx2) < g.Res && math.Abs(qy1-qy2) < g.Res && math.Abs(qz1-qz2) < g.Res
}
