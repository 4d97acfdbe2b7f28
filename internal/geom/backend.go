package geom

import "context"

// Polyhedron is the exact-arithmetic solid produced and consumed by
// the external Boolean backend (spec.md §6, GLOSSARY). The core never
// constructs one directly; it only asks a Backend to build and
// combine them.
type Polyhedron interface {
	VertexCount() int
	IsSimple() bool
	IsValid() bool
	ConvertToMesh() *Polyset
}

// Backend is the polyhedron backend external interface: exact
// Boolean operations plus primitive construction from a grid-welded
// Polyset. Consumed, never implemented by the core itself; production
// code wires in whatever exact-arithmetic mesh library is available,
// tests use a fake.
type Backend interface {
	FromPolyset(p *Polyset) (Polyhedron, error)
	Union(a, b Polyhedron) (Polyhedron, error)
	Intersection(a, b Polyhedron) (Polyhedron, error)
	Difference(a, b Polyhedron) (Polyhedron, error)
}

// TessellationMode selects how a primitive node emits its Polyset:
// Preview favors speed over exactness for interactive display, Exact
// feeds the polyhedron backend and must be watertight.
type TessellationMode int

const (
	Preview TessellationMode = iota
	Exact
)

// Tessellator is the primitive tessellator external interface
// (spec.md §6): each AbstractPolyNode subclass emits a Polyset under
// one of the two modes.
type Tessellator interface {
	Tessellate(ctx context.Context, mode TessellationMode, fn, fs, fa float64) (*Polyset, error)
}
