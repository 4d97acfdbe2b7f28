package main

import "cadlang/internal/geom"

// demoBackend is a concatenation-only stand-in for the exact-
// arithmetic polyhedron backend spec.md §1/§6 marks as an external
// collaborator out of scope for the core. It is not a real Boolean
// mesh library: Union appends polygons, Intersection/Difference are
// left as the unmodified left operand. It exists only so cmd/cadc has
// something concrete to drive render_polyhedron and STL export with;
// a production build wires in a real exact-arithmetic library here
// instead.
type demoBackend struct{}

func (demoBackend) FromPolyset(p *geom.Polyset) (geom.Polyhedron, error) {
	return demoPolyhedron{p}, nil
}

func (demoBackend) Union(a, b geom.Polyhedron) (geom.Polyhedron, error) {
	merged := geom.NewPolyset()
	for _, poly := range a.ConvertToMesh().Polygons {
		merged.AppendPoly()
		for _, v := range poly {
			merged.AppendVertex(v.X, v.Y, v.Z)
		}
	}
	for _, poly := range b.ConvertToMesh().Polygons {
		merged.AppendPoly()
		for _, v := range poly {
			merged.AppendVertex(v.X, v.Y, v.Z)
		}
	}
	return demoPolyhedron{merged}, nil
}

func (demoBackend) Intersection(a, b geom.Polyhedron) (geom.Polyhedron, error) {
	return a, nil
}

func (demoBackend) Difference(a, b geom.Polyhedron) (geom.Polyhedron, error) {
	return a, nil
}

type demoPolyhedron struct{ p *geom.Polyset }

func (d demoPolyhedron) VertexCount() int             { return d.p.VertexCount() }
func (d demoPolyhedron) IsSimple() bool               { return true }
func (d demoPolyhedron) IsValid() bool                { return true }
func (d demoPolyhedron) ConvertToMesh() *geom.Polyset { return d.p }
