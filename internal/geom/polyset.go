package geom

import "fmt"

// Point3 is a vertex in a Polyset.
type Point3 struct {
	X, Y, Z float64
}

// Polygon is an ordered ring of vertices (a face).
type Polygon []Point3

// ColorMode mirrors original_source/openscad.h's PolySet::colormode_e,
// used by the (out-of-scope) renderer to pick a draw color. Nothing in
// this module reads it.
type ColorMode int

const (
	ColorNone ColorMode = iota
	ColorMaterial
	ColorCutout
	ColorHighlight
	ColorBackground
)

// Polyset is grid-welded triangle (or polygon) soup, the common
// currency between primitive tessellation and the exact-arithmetic
// polyhedron backend (spec.md GLOSSARY). Immutable once built:
// AppendVertex/InsertVertex are only ever called while building one
// polygon at a time, never concurrently with a read.
type Polyset struct {
	Polygons  []Polygon
	Convexity int

	grid *Grid3D[struct{}]
}

func NewPolyset() *Polyset {
	return &Polyset{grid: NewGrid3D[struct{}](DefaultGridResolution), Convexity: 1}
}

// AppendPoly starts a new, empty polygon.
func (p *Polyset) AppendPoly() {
	p.Polygons = append(p.Polygons, Polygon{})
}

// AppendVertex appends a vertex to the current (last) polygon without
// grid welding.
func (p *Polyset) AppendVertex(x, y, z float64) {
	if len(p.Polygons) == 0 {
		p.AppendPoly()
	}
	last := len(p.Polygons) - 1
	p.Polygons[last] = append(p.Polygons[last], Point3{x, y, z})
}

// InsertVertex welds (x, y, z) to a nearby already-seen vertex before
// appending, so that triangles sharing an edge in the tessellator's
// output share exact floating-point coordinates in the Polyset
// (spec.md §4.8, §9 "Dynamic-typed Value" sibling note on grid
// welding).
func (p *Polyset) InsertVertex(x, y, z float64) {
	qx, qy, qz, _ := p.grid.Align(x, y, z)
	p.grid.Set(qx, qy, qz, struct{}{})
	p.AppendVertex(qx, qy, qz)
}

// VertexCount totals vertices across all polygons; used as the
// polyhedron cache's cost metric (spec.md §4.7).
func (p *Polyset) VertexCount() int {
	n := 0
	for _, poly := range p.Polygons {
		n += len(poly)
	}
	return n
}

// Transform returns a new Polyset with m applied to every vertex.
// Polysets are immutable after construction (spec.md §5), so
// transforming always produces a fresh copy rather than mutating.
func (p *Polyset) Transform(m Mat4) *Polyset {
	out := &Polyset{grid: NewGrid3D[struct{}](DefaultGridResolution), Convexity: p.Convexity}
	out.Polygons = make([]Polygon, len(p.Polygons))
	for i, poly := range p.Polygons {
		np := make(Polygon, len(poly))
		for j, pt := range poly {
			x, y, z := m.Apply(pt.X, pt.Y, pt.Z)
			np[j] = Point3{x, y, z}
		}
		out.Polygons[i] = np
	}
	return out
}

func (p *Polyset) String() string {
	return fmt.Sprintf("polyset(%d polygons, %d vertices)", len(p.Polygons), p.VertexCount())
}
