// Package modsys implements the static, parsed-script-shaped data
// that the script evaluator consumes: callable functions
// (builtin/user), module definitions, and module instantiations
// (call sites). It deliberately holds no evaluation logic for module
// instantiation itself — producing an AbstractNode crosses into
// internal/node, which depends on this package instead of the other
// way around, to avoid a cycle back from "what a module is" to "what
// evaluating one produces". See internal/node's package doc for the
// orchestration this package's types feed into.
//
// Grounded on original_source/module.cc and openscad.h's
// AbstractFunction/BuiltinFunction/Function/AbstractModule/
// ModuleInstanciation/Module classes.
package modsys

import (
	"fmt"
	"strings"

	"cadlang/internal/ast"
	"cadlang/internal/evalctx"
	"cadlang/internal/value"
)

// BuiltinFunction wraps a native Go function as a callable
// (spec.md §3 "AbstractFunction, AbstractModule", Builtin variant).
type BuiltinFunction struct {
	Name string
	Fn   func(argNames []string, argValues []value.Value) value.Value
}

func (b *BuiltinFunction) Call(_ *evalctx.Context, argNames []string, argValues []value.Value) value.Value {
	return b.Fn(argNames, argValues)
}

func (b *BuiltinFunction) Dump(indent, name string) string {
	return fmt.Sprintf("%sbuiltin function %s();\n", indent, name)
}

var _ evalctx.Function = (*BuiltinFunction)(nil)

// UserFunction is a script-defined `function f(a, b=1) = expr;`
// (spec.md §3, UserFunction variant).
type UserFunction struct {
	ArgNames []string
	Defaults []*ast.Expression
	Body     *ast.Expression
}

// Call binds arguments into a fresh child scope and evaluates Body
// there, per spec.md §4.2's binding rule.
func (f *UserFunction) Call(callerCtx *evalctx.Context, argNames []string, argValues []value.Value) value.Value {
	callee := evalctx.New(callerCtx)
	defer callee.Release()
	callee.BindArgs(f.ArgNames, f.Defaults, argNames, argValues)
	return f.Body.Evaluate(callee)
}

func (f *UserFunction) Dump(indent, name string) string {
	parts := make([]string, len(f.ArgNames))
	for i, n := range f.ArgNames {
		if i < len(f.Defaults) && f.Defaults[i] != nil {
			parts[i] = n + " = " + f.Defaults[i].Dump()
		} else {
			parts[i] = n
		}
	}
	return fmt.Sprintf("%sfunction %s(%s) = %s;\n", indent, name, strings.Join(parts, ", "), f.Body.Dump())
}

var _ evalctx.Function = (*UserFunction)(nil)
