// Package evalctx implements the lexical scope chain that
// Expression.Evaluate and module instantiation run against: variable
// and function/module tables, argument binding, and the dynamic
// context stack used for `$`-prefixed configuration variables
// (spec.md §3 "Context", §4.2).
//
// Grounded on original_source/openscad.h's Context class and the
// teacher's internal/vm.Environment-style scope-chain idiom, adapted
// from a single enclosing-pointer chain to an explicit parent-walk
// that also resolves functions/modules by walking parent links
// (spec.md §4.1: "Call resolves the function name through the
// Context's function table by walking parent links").
package evalctx

import (
	"strings"

	"cadlang/internal/ast"
	"cadlang/internal/diag"
	"cadlang/internal/value"
)

// Function is implemented by anything callable through `name(...)`
// expression syntax: builtins and user-defined functions
// (internal/modsys.BuiltinFunction, internal/modsys.UserFunction).
type Function interface {
	Call(ctx *Context, argNames []string, argValues []value.Value) value.Value
}

// Stack is the process- (or, here, compilation-) wide stack of
// currently active Contexts used for dynamic `$`-variable resolution
// (spec.md §4.1, §4.3). Each compilation owns its own Stack: two
// independent compilations must not share Contexts (spec.md §5).
type Stack struct {
	frames []*Context
}

func NewStack() *Stack { return &Stack{} }

func (s *Stack) push(c *Context) { s.frames = append(s.frames, c) }

func (s *Stack) pop() {
	if len(s.frames) == 0 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Context is one lexical scope. Contexts form a tree rooted at a
// single global context created per compilation (spec.md §3
// invariant); Release must be called exactly once, in LIFO order with
// any Context created after it, when the scope goes out of use.
type Context struct {
	parent *Context
	stack  *Stack
	sink   diag.Sink

	vars       map[string]value.Value
	configVars map[string]value.Value
	functions  map[string]Function
	modules    map[string]interface{}
}

// NewRoot creates the single global context for one compilation, with
// the default configuration variables from spec.md §6.
func NewRoot(stack *Stack, sink diag.Sink) *Context {
	c := &Context{
		stack:      stack,
		sink:       sink,
		vars:       map[string]value.Value{},
		configVars: map[string]value.Value{"$fn": value.NewNumber(0), "$fs": value.NewNumber(1.0), "$fa": value.NewNumber(12.0), "$t": value.NewNumber(0.0)},
		functions:  map[string]Function{},
		modules:    map[string]interface{}{},
	}
	stack.push(c)
	return c
}

// New creates a child of parent, inheriting its sink and dynamic
// stack, and pushes itself onto that stack.
func New(parent *Context) *Context {
	c := &Context{
		parent:     parent,
		stack:      parent.stack,
		sink:       parent.sink,
		vars:       map[string]value.Value{},
		configVars: map[string]value.Value{},
		functions:  map[string]Function{},
		modules:    map[string]interface{}{},
	}
	c.stack.push(c)
	return c
}

// Release pops this Context from the dynamic stack. Evaluation is
// single-threaded and strictly LIFO (spec.md §5): callers must Release
// child contexts before releasing their parent.
func (c *Context) Release() { c.stack.pop() }

func (c *Context) Sink() diag.Sink { return c.sink }

// Set defines or replaces name in the current scope only
// (spec.md §4.2). `$`-prefixed names are stored as configuration
// variables; everything else as a regular local.
func (c *Context) Set(name string, v value.Value) {
	if strings.HasPrefix(name, "$") {
		c.configVars[name] = v
	} else {
		c.vars[name] = v
	}
}

// LookupVar implements ast.Scope: `$`-names walk the dynamic stack
// (most recent active context first), everything else walks the
// lexical parent chain. Misses are reported as warnings and resolve
// to Undefined, matching spec.md §4.1/§7 ("Name resolution miss").
func (c *Context) LookupVar(name string) value.Value {
	return c.Lookup(name, false)
}

// Lookup is the non-ast.Scope-constrained form that lets callers
// suppress the diagnostic (e.g. speculative existence checks), per
// spec.md §4.2's `silent` parameter.
func (c *Context) Lookup(name string, silent bool) value.Value {
	if strings.HasPrefix(name, "$") {
		for i := len(c.stack.frames) - 1; i >= 0; i-- {
			if v, ok := c.stack.frames[i].configVars[name]; ok {
				return v
			}
		}
		if !silent {
			diag.Warnf(c.sink, diag.KindName, nil, "ignoring unknown configuration variable '%s'", name)
		}
		return value.Undef
	}
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if v, ok := ctx.vars[name]; ok {
			return v
		}
	}
	if !silent {
		diag.Warnf(c.sink, diag.KindName, nil, "ignoring unknown variable '%s'", name)
	}
	return value.Undef
}

// DefineFunction installs a function visible in this scope and any of
// its children (module-locals shadow enclosing definitions of the
// same name, spec.md §4.3).
func (c *Context) DefineFunction(name string, f Function) { c.functions[name] = f }

// DefineModule installs a module definition visible in this scope.
// The stored value is whatever concrete type internal/modsys uses
// (UserModule, BuiltinModule, ...); evalctx only threads it through
// the scope chain so that internal/node/internal/modsys, which know
// the concrete types, can resolve and dispatch it without creating an
// import cycle back into this package.
func (c *Context) DefineModule(name string, m interface{}) { c.modules[name] = m }

// LookupFunction walks the parent chain, returning the first
// definition found (module-locals shadow enclosing, spec.md §4.1).
func (c *Context) LookupFunction(name string) (Function, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if f, ok := ctx.functions[name]; ok {
			return f, true
		}
	}
	return nil, false
}

// LookupModule mirrors LookupFunction for module definitions.
func (c *Context) LookupModule(name string) (interface{}, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if m, ok := ctx.modules[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// CallFunction implements ast.Scope: resolve name and invoke it with
// already-evaluated arguments (call-site arguments are evaluated in
// the caller's context before this is reached, per spec.md §4.2).
func (c *Context) CallFunction(name string, argNames []string, argValues []value.Value) value.Value {
	f, ok := c.LookupFunction(name)
	if !ok {
		diag.Warnf(c.sink, diag.KindName, nil, "ignoring unknown function '%s'", name)
		return value.Undef
	}
	return f.Call(c, argNames, argValues)
}

var _ ast.Scope = (*Context)(nil)

// BindArgs implements spec.md §4.2's binding rule: named arguments
// override; positional arguments fill the next unused parameter in
// declaration order; missing parameters take their default,
// evaluated in this (the callee's) context after all positional/named
// bindings are installed, so earlier parameters are visible to later
// defaults. Unknown argument names are warned and ignored.
func (c *Context) BindArgs(paramNames []string, defaults []*ast.Expression, callArgNames []string, callArgValues []value.Value) {
	used := make([]bool, len(paramNames))
	index := make(map[string]int, len(paramNames))
	for i, n := range paramNames {
		index[n] = i
	}

	for i, n := range callArgNames {
		if n == "" || i >= len(callArgValues) {
			continue
		}
		if idx, ok := index[n]; ok {
			c.vars[n] = callArgValues[i]
			used[idx] = true
		} else {
			diag.Warnf(c.sink, diag.KindName, nil, "ignoring unknown argument '%s'", n)
		}
	}

	pos := 0
	for i, n := range callArgNames {
		if n != "" || i >= len(callArgValues) {
			continue
		}
		for pos < len(paramNames) && used[pos] {
			pos++
		}
		if pos >= len(paramNames) {
			diag.Warnf(c.sink, diag.KindName, nil, "ignoring extra positional argument %d", i)
			continue
		}
		c.vars[paramNames[pos]] = callArgValues[i]
		used[pos] = true
		pos++
	}

	for i, n := range paramNames {
		if used[i] {
			continue
		}
		if i < len(defaults) && defaults[i] != nil {
			c.vars[n] = defaults[i].Evaluate(c)
		} else {
			c.vars[n] = value.Undef
		}
	}
}
