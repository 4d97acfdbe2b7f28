package csg

import (
	"fmt"
	"strings"

	"cadlang/internal/geom"
)

// SafeChainLength is the reference cap from spec.md §4.6: chains
// longer than this should have the preview renderer disabled by
// caller policy. The core only exposes Length(); it never enforces
// the cap itself.
const SafeChainLength = 1000

// ChainEntry is one step of a linearized chain: a primitive's
// polyset and transform, the operator joining it to the accumulator,
// and its debug label.
type ChainEntry struct {
	Polyset   *geom.Polyset
	Transform geom.Mat4
	Op        Op
	Label     string
}

// Chain is the flattened, render-order form of a normalized term
// (spec.md §4.6). Entries[0].Op is always Union by construction (the
// first primitive visited has nothing to combine against).
type Chain struct {
	Entries []ChainEntry
}

// Import walks term (expected to be normalized) and appends its
// primitives in render order. parentOp is the operator that should
// join the first entry appended by this call to whatever precedes it
// in the caller's chain; Union at the top level.
func (c *Chain) Import(term *Term, parentOp Op) {
	if term == nil {
		return
	}
	if term.IsPrimitive {
		c.Entries = append(c.Entries, ChainEntry{
			Polyset:   term.Polyset,
			Transform: term.Transform,
			Op:        parentOp,
			Label:     term.Label,
		})
		return
	}
	c.Import(term.Left, parentOp)
	c.Import(term.Right, term.Kind)
}

// Length reports the entry count, for the caller's safety-cap policy
// decision (spec.md §4.6).
func (c *Chain) Length() int { return len(c.Entries) }

// Dump renders one line per entry as "<op> <label> (<vertices> verts)",
// the Go-idiomatic equivalent of mainwin.cc's CSG Products Dump panel
// (which lists each chain element's operator and object pointer).
func (c *Chain) Dump() string {
	var b strings.Builder
	for _, e := range c.Entries {
		fmt.Fprintf(&b, "%s %s (%d verts)\n", e.Op, e.Label, e.Polyset.VertexCount())
	}
	return b.String()
}
