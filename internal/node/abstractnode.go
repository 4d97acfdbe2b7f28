// Package node implements AbstractNode (spec.md §3-§4.4, §4.7), the
// module-call dispatch table (spec.md §4.3's ModuleCallable variants),
// and the recursion-guarded evaluation orchestration that turns a
// ModuleInstanciation tree into an AbstractNode tree and, from there,
// into a CSGTerm (preview) or Polyhedron (exact, cached).
//
// Grounded on original_source/module.cc's AbstractNode::dump/index
// bookkeeping and on the teacher's (sentra-language-sentra)
// internal/compiler/compiler.go visitor-dispatch idiom, generalized
// from "visit one Stmt type" to "evaluate one ModuleCallable kind".
package node

import (
	"fmt"
	"strings"

	"cadlang/internal/csg"
	"cadlang/internal/geom"
	"cadlang/internal/modsys"
)

// AbstractNode is one node of the evaluated scene tree: either a pure
// group (Tessellator nil) whose Children fold together under FoldOp,
// or a primitive-producing leaf (Tessellator set) that tessellates
// itself into a Polyset when rendered.
type AbstractNode struct {
	// Index is assigned by progress_prepare in a single pre-order walk
	// (spec.md §5 "idx_counter: per-compilation counter, reset at the
	// start of each compile()"); -1 until stamped.
	Index int

	// ModInst is the instantiation that produced this node, carrying
	// the root/highlight/background tags (spec.md §3). Nil for the
	// synthetic root group node that internal/compile creates around
	// the script's top-level instantiations.
	ModInst *modsys.ModuleInstanciation

	Children []*AbstractNode

	// LocalTransform is this node's own contribution to the
	// accumulated transform passed to its children and, if this node
	// is itself primitive-producing, to its own tessellation
	// (spec.md §9 open question 2: value-typed, owned here).
	LocalTransform geom.Mat4

	// FoldOp selects how Children combine in RenderCSGTerm. Nil means
	// the spec's default: fold with Union in left-to-right order
	// (spec.md §4.4). A CSG operator node (union/intersection/
	// difference) sets this explicitly.
	FoldOp *csg.Op

	// Tessellator is set only on primitive-producing leaves
	// (cube/sphere/... ); such nodes are tessellated instead of
	// recursing into Children.
	Tessellator geom.Tessellator
	Label       string

	// FN, FS, FA are the $fn/$fs/$fa tessellation-fineness values in
	// effect at this node's instantiation, captured at evaluation time
	// so later rendering doesn't need a live Context.
	FN, FS, FA float64
}

func NewGroupNode(inst *modsys.ModuleInstanciation) *AbstractNode {
	return &AbstractNode{Index: -1, ModInst: inst, LocalTransform: geom.Identity()}
}

func NewPrimitiveNode(inst *modsys.ModuleInstanciation, label string, t geom.Tessellator, fn, fs, fa float64) *AbstractNode {
	return &AbstractNode{
		Index:          -1,
		ModInst:        inst,
		LocalTransform: geom.Identity(),
		Tessellator:    t,
		Label:          label,
		FN:             fn, FS: fs, FA: fa,
	}
}

func foldOp(op csg.Op) *csg.Op { return &op }

// NewCSGOpNode builds a group node whose children combine with op
// rather than the default Union.
func NewCSGOpNode(inst *modsys.ModuleInstanciation, op csg.Op) *AbstractNode {
	n := NewGroupNode(inst)
	n.FoldOp = foldOp(op)
	return n
}

// Dump renders the node tree in the label-prefixed form the
// polyhedron cache key canonicalizer strips (spec.md §9 "Cache key
// canonicalisation"): `n<index>: name(args) { children }`.
func (n *AbstractNode) Dump(indent string) string {
	name, args := "group", ""
	if n.ModInst != nil {
		name = n.ModInst.ModName
		args = dumpArgs(n.ModInst)
	} else if n.Label != "" {
		name = n.Label
	}

	head := fmt.Sprintf("%sn%d: %s(%s)", indent, n.Index, name, args)
	if len(n.Children) == 0 {
		return head + ";\n"
	}
	var b strings.Builder
	b.WriteString(head + " {\n")
	for _, c := range n.Children {
		b.WriteString(c.Dump(indent + "\t"))
	}
	b.WriteString(indent + "}\n")
	return b.String()
}

func dumpArgs(inst *modsys.ModuleInstanciation) string {
	parts := make([]string, 0, len(inst.ArgNames))
	for i, name := range inst.ArgNames {
		var expr string
		if i < len(inst.ArgExprs) && inst.ArgExprs[i] != nil {
			expr = inst.ArgExprs[i].Dump()
		}
		if name != "" {
			parts = append(parts, name+" = "+expr)
		} else {
			parts = append(parts, expr)
		}
	}
	return strings.Join(parts, ", ")
}

// ProgressPrepare walks root in pre-order, stamping each node's Index
// starting at 0, and returns the total node count (spec.md §6
// "progress_prepare(root) walks the node tree and stamps each with a
// sequence number; total count is exposed").
func ProgressPrepare(root *AbstractNode) int {
	n := 0
	var walk func(*AbstractNode)
	walk = func(node *AbstractNode) {
		if node == nil {
			return
		}
		node.Index = n
		n++
		for _, c := range node.Children {
			walk(c)
		}
	}
	walk(root)
	return n
}

// ProgressCallback mirrors spec.md §6's caller-registered progress
// hook: invoked with the node just finished, its mark (Index+1), and
// the total node count; returns true to request cancellation.
type ProgressCallback func(node *AbstractNode, mark, total int) (cancel bool)

// ProgressReport invokes cb for node, translating Index to a 1-based
// mark. A nil callback is a no-op (progress reporting is optional).
func ProgressReport(node *AbstractNode, total int, cb ProgressCallback) (cancel bool) {
	if cb == nil || node == nil {
		return false
	}
	return cb(node, node.Index+1, total)
}
