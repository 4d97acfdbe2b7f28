package compile

import (
	"cadlang/internal/csg"
	"cadlang/internal/diag"
	"cadlang/internal/evalctx"
	"cadlang/internal/geom"
	"cadlang/internal/modsys"
	"cadlang/internal/node"
	"cadlang/internal/value"
)

// PrimitiveFactory is the external collaborator that turns a
// primitive module's already-evaluated parameters into a
// geom.Tessellator. spec.md §1 lists "the primitive tessellation
// routines" as out of scope for the core, an external collaborator
// whose interface is specified where it touches the core (§6) —
// exactly like Parser and geom.Backend. Production code wires in a
// real mesh-generation library here; tests supply a fake, the same
// way node_test.go's fakeCubeTessellator stands in for one primitive.
type PrimitiveFactory interface {
	Cube(x, y, z float64, center bool) (geom.Tessellator, error)
	Sphere(r float64) (geom.Tessellator, error)
	Cylinder(h, r1, r2 float64, center bool) (geom.Tessellator, error)
}

// registerBuiltins installs the builtin module table into root
// (spec.md §3 SUPPLEMENTED FEATURES #3 "group() as a no-op builtin
// module", plus the CSG operators and transform/primitive modules
// spec.md's GLOSSARY names). primitives may be nil, in which case no
// primitive modules are registered (a compiler only ever asked to
// fold transforms/operators over a caller-supplied AbstractNode tree
// has no need for one).
func registerBuiltins(root *evalctx.Context, primitives PrimitiveFactory) {
	root.DefineModule("group", node.GroupModule{})
	root.DefineModule("union", csgOpModule{op: csg.Union})
	root.DefineModule("intersection", csgOpModule{op: csg.Intersection})
	root.DefineModule("difference", csgOpModule{op: csg.Difference})
	root.DefineModule("translate", transformModule{build: func(inst *modsys.ModuleInstanciation, argValues []value.Value) geom.Mat4 {
		x, y, z := vec3Arg(inst, argValues, "v", 0, 0)
		return geom.Translate(x, y, z)
	}})
	root.DefineModule("scale", transformModule{build: func(inst *modsys.ModuleInstanciation, argValues []value.Value) geom.Mat4 {
		x, y, z := vec3Arg(inst, argValues, "v", 0, 1)
		return geom.Scale(x, y, z)
	}})

	if primitives == nil {
		return
	}
	root.DefineModule("cube", cubeModule{factory: primitives})
	root.DefineModule("sphere", sphereModule{factory: primitives})
	root.DefineModule("cylinder", cylinderModule{factory: primitives})
}

// namedOrPositional resolves one call argument by name first, falling
// back to the pos'th argument among those passed positionally
// (unnamed) at the call site — the same binding spec.md §4.2
// describes for user modules, applied here to builtins directly since
// they have no declared parameter list of their own to run BindArgs
// against.
func namedOrPositional(inst *modsys.ModuleInstanciation, argValues []value.Value, name string, pos int) (value.Value, bool) {
	for i, n := range inst.ArgNames {
		if n == name && i < len(argValues) {
			return argValues[i], true
		}
	}
	seen := 0
	for i, n := range inst.ArgNames {
		if n != "" {
			continue
		}
		if seen == pos && i < len(argValues) {
			return argValues[i], true
		}
		seen++
	}
	return value.Undef, false
}

func numberArg(inst *modsys.ModuleInstanciation, argValues []value.Value, name string, pos int, fallback float64) float64 {
	v, ok := namedOrPositional(inst, argValues, name, pos)
	if !ok {
		return fallback
	}
	n, ok := v.NumberValue()
	if !ok {
		return fallback
	}
	return n
}

func boolArg(inst *modsys.ModuleInstanciation, argValues []value.Value, name string, pos int, fallback bool) bool {
	v, ok := namedOrPositional(inst, argValues, name, pos)
	if !ok {
		return fallback
	}
	b, ok := v.BoolValue()
	if !ok {
		return fallback
	}
	return b
}

// vec3Arg resolves a size/vector argument that may be given as a
// single scalar (uniform on all three axes) or a 3-element vector,
// matching cube/scale/translate's `size`/`v` argument shape.
func vec3Arg(inst *modsys.ModuleInstanciation, argValues []value.Value, name string, pos int, fallback float64) (x, y, z float64) {
	x, y, z = fallback, fallback, fallback
	v, ok := namedOrPositional(inst, argValues, name, pos)
	if !ok {
		return
	}
	if elems, ok := v.VectorValue(); ok {
		if len(elems) > 0 {
			x, _ = elems[0].NumberValue()
		}
		if len(elems) > 1 {
			y, _ = elems[1].NumberValue()
		}
		if len(elems) > 2 {
			z, _ = elems[2].NumberValue()
		}
		return
	}
	if n, ok := v.NumberValue(); ok {
		x, y, z = n, n, n
	}
	return
}

func configFns(ctx *evalctx.Context) (fn, fs, fa float64) {
	fn, _ = ctx.Lookup("$fn", true).NumberValue()
	fs, _ = ctx.Lookup("$fs", true).NumberValue()
	fa, _ = ctx.Lookup("$fa", true).NumberValue()
	return
}

// csgOpModule implements the three Boolean operator builtins
// (spec.md §3 "AbstractIntersectionNode"/Union/Difference): a group
// node whose FoldOp overrides render_csg_term's default Union fold.
type csgOpModule struct{ op csg.Op }

func (m csgOpModule) Evaluate(callerCtx *evalctx.Context, inst *modsys.ModuleInstanciation, _ []value.Value) *node.AbstractNode {
	n := node.NewCSGOpNode(inst, m.op)
	for _, c := range inst.Children {
		if kid := node.EvaluateInstanciation(callerCtx, c); kid != nil {
			n.Children = append(n.Children, kid)
		}
	}
	return n
}

var _ node.ModuleCallable = csgOpModule{}

// transformModule implements translate()/scale(): a group node whose
// LocalTransform composes into the accumulated transform seen by its
// children (spec.md §4.4).
type transformModule struct {
	build func(inst *modsys.ModuleInstanciation, argValues []value.Value) geom.Mat4
}

func (m transformModule) Evaluate(callerCtx *evalctx.Context, inst *modsys.ModuleInstanciation, argValues []value.Value) *node.AbstractNode {
	n := node.NewGroupNode(inst)
	n.LocalTransform = m.build(inst, argValues)
	for _, c := range inst.Children {
		if kid := node.EvaluateInstanciation(callerCtx, c); kid != nil {
			n.Children = append(n.Children, kid)
		}
	}
	return n
}

var _ node.ModuleCallable = transformModule{}

type cubeModule struct{ factory PrimitiveFactory }

func (m cubeModule) Evaluate(callerCtx *evalctx.Context, inst *modsys.ModuleInstanciation, argValues []value.Value) *node.AbstractNode {
	x, y, z := vec3Arg(inst, argValues, "size", 0, 1)
	center := boolArg(inst, argValues, "center", 1, false)
	t, err := m.factory.Cube(x, y, z, center)
	if err != nil {
		diag.Warnf(callerCtx.Sink(), diag.KindBackend, err, "cube tessellation failed")
		return nil
	}
	fn, fs, fa := configFns(callerCtx)
	return node.NewPrimitiveNode(inst, "cube", t, fn, fs, fa)
}

var _ node.ModuleCallable = cubeModule{}

type sphereModule struct{ factory PrimitiveFactory }

func (m sphereModule) Evaluate(callerCtx *evalctx.Context, inst *modsys.ModuleInstanciation, argValues []value.Value) *node.AbstractNode {
	r := numberArg(inst, argValues, "r", 0, 1)
	t, err := m.factory.Sphere(r)
	if err != nil {
		diag.Warnf(callerCtx.Sink(), diag.KindBackend, err, "sphere tessellation failed")
		return nil
	}
	fn, fs, fa := configFns(callerCtx)
	return node.NewPrimitiveNode(inst, "sphere", t, fn, fs, fa)
}

var _ node.ModuleCallable = sphereModule{}

type cylinderModule struct{ factory PrimitiveFactory }

func (m cylinderModule) Evaluate(callerCtx *evalctx.Context, inst *modsys.ModuleInstanciation, argValues []value.Value) *node.AbstractNode {
	h := numberArg(inst, argValues, "h", 0, 1)
	r1 := numberArg(inst, argValues, "r1", 1, 1)
	r1 = numberArg(inst, argValues, "r", 1, r1)
	r2 := numberArg(inst, argValues, "r2", 2, r1)
	center := boolArg(inst, argValues, "center", 3, false)
	t, err := m.factory.Cylinder(h, r1, r2, center)
	if err != nil {
		diag.Warnf(callerCtx.Sink(), diag.KindBackend, err, "cylinder tessellation failed")
		return nil
	}
	fn, fs, fa := configFns(callerCtx)
	return node.NewPrimitiveNode(inst, "cylinder", t, fn, fs, fa)
}

var _ node.ModuleCallable = cylinderModule{}
