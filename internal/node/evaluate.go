package node

import (
	"cadlang/internal/diag"
	"cadlang/internal/evalctx"
	"cadlang/internal/modsys"
	"cadlang/internal/value"
)

// ModuleCallable is anything the module table can dispatch to:
// builtin groups/CSG operators/primitives, or a user-defined Module.
// Concrete implementations live in this package and in internal/compile
// (which registers builtins); evalctx stores them as opaque
// interface{} values to avoid importing this package (spec.md §4.2
// "evaluate_module").
type ModuleCallable interface {
	Evaluate(callerCtx *evalctx.Context, inst *modsys.ModuleInstanciation, argValues []value.Value) *AbstractNode
}

// EvaluateInstanciation implements ModuleInstanciation.evaluate
// (spec.md §4.3's recursion guard plus module dispatch): checks the
// recursion guard, evaluates argument expressions in callerCtx,
// resolves the module by name, and dispatches.
func EvaluateInstanciation(callerCtx *evalctx.Context, inst *modsys.ModuleInstanciation) *AbstractNode {
	if inst.TryEnter(callerCtx) {
		diag.Warnf(callerCtx.Sink(), diag.KindRecursion, nil, "ignoring recursive module instantiation of '%s'", inst.ModName)
		return nil
	}
	defer inst.Exit()

	argValues := make([]value.Value, len(inst.ArgExprs))
	for i, e := range inst.ArgExprs {
		argValues[i] = e.Evaluate(callerCtx)
	}

	modAny, ok := callerCtx.LookupModule(inst.ModName)
	if !ok {
		diag.Warnf(callerCtx.Sink(), diag.KindName, nil, "ignoring unknown module %q", inst.ModName)
		return nil
	}
	callable, ok := modAny.(ModuleCallable)
	if !ok {
		diag.Warnf(callerCtx.Sink(), diag.KindName, nil, "module %q is not callable", inst.ModName)
		return nil
	}
	return callable.Evaluate(callerCtx, inst, argValues)
}

// GroupModule is the builtin no-op "group" module and the fallback
// behavior for any node whose only job is to union its children
// (spec.md §3 supplement): it introduces no transform and no CSG
// operator of its own.
type GroupModule struct{}

func (GroupModule) Evaluate(callerCtx *evalctx.Context, inst *modsys.ModuleInstanciation, _ []value.Value) *AbstractNode {
	n := NewGroupNode(inst)
	for _, c := range inst.Children {
		if child := EvaluateInstanciation(callerCtx, c); child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

var _ ModuleCallable = GroupModule{}

// UserModule wraps a user-defined Module, implementing the six-step
// evaluation procedure of spec.md §4.3 verbatim, including step 6's
// "inherited" children: the call site's own children (inst.Children)
// are evaluated in the call site's (caller's) context, not the
// module's child context, which is how implicit children()
// composition works.
type UserModule struct {
	Def *modsys.Module
}

func (u *UserModule) Evaluate(callerCtx *evalctx.Context, inst *modsys.ModuleInstanciation, argValues []value.Value) *AbstractNode {
	child := evalctx.New(callerCtx)
	defer child.Release()

	argNames := make([]string, len(inst.ArgExprs))
	copy(argNames, inst.ArgNames)
	child.BindArgs(u.Def.ArgNames, u.Def.Defaults, argNames, argValues)

	for name, fn := range u.Def.Functions {
		child.DefineFunction(name, fn)
	}
	for name, m := range u.Def.Modules {
		child.DefineModule(name, m)
	}

	for i, name := range u.Def.AssignmentNames {
		child.Set(name, u.Def.AssignmentExprs[i].Evaluate(child))
	}

	n := NewGroupNode(inst)
	for _, c := range u.Def.Children {
		if kid := EvaluateInstanciation(child, c); kid != nil {
			n.Children = append(n.Children, kid)
		}
	}
	for _, c := range inst.Children {
		if kid := EvaluateInstanciation(callerCtx, c); kid != nil {
			n.Children = append(n.Children, kid)
		}
	}
	return n
}

var _ ModuleCallable = (*UserModule)(nil)
