package modsys

import (
	"fmt"
	"strings"

	"cadlang/internal/ast"
	"cadlang/internal/evalctx"
)

// ModuleInstanciation is one call site in the script: a module name,
// its (possibly named) argument expressions, nested child
// instantiations, and the three tags that alter a node's participation
// in rendering (spec.md §3).
//
// activeCtx is the transient back-reference used to detect recursive
// instantiation (spec.md §4.3, §9 "Recursion guard"): it is set while
// this instantiation is being evaluated and cleared on exit, a
// borrowed marker, never a long-lived reference. It is not safe for
// concurrent evaluation of the same ModuleInstanciation from two
// goroutines — evaluation is single-threaded per spec.md §5.
type ModuleInstanciation struct {
	Label   string
	ModName string

	ArgNames []string
	ArgExprs []*ast.Expression

	Children []*ModuleInstanciation

	TagRoot       bool
	TagHighlight  bool
	TagBackground bool

	activeCtx *evalctx.Context
}

// ActiveContext reports the context under which this instantiation is
// currently being evaluated, or nil if it isn't.
func (mi *ModuleInstanciation) ActiveContext() *evalctx.Context { return mi.activeCtx }

func (mi *ModuleInstanciation) enter(ctx *evalctx.Context) { mi.activeCtx = ctx }
func (mi *ModuleInstanciation) exit()                      { mi.activeCtx = nil }

// TryEnter sets the recursion-guard marker and reports whether this
// instantiation was already active (i.e. whether the caller should
// abort). Pair with a deferred Exit on success.
func (mi *ModuleInstanciation) TryEnter(ctx *evalctx.Context) (alreadyActive bool) {
	if mi.activeCtx != nil {
		return true
	}
	mi.enter(ctx)
	return false
}

func (mi *ModuleInstanciation) Exit() { mi.exit() }

// Dump reproduces original_source/module.cc's
// ModuleInstanciation::dump formatting: `label: name(args) { children }`.
func (mi *ModuleInstanciation) Dump(indent string) string {
	var b strings.Builder
	b.WriteString(indent)
	if mi.Label != "" {
		b.WriteString(mi.Label)
		b.WriteString(": ")
	}
	b.WriteString(mi.ModName)
	b.WriteString("(")
	for i, name := range mi.ArgNames {
		if i > 0 {
			b.WriteString(", ")
		}
		if name != "" {
			b.WriteString(name)
			b.WriteString(" = ")
		}
		if i < len(mi.ArgExprs) {
			b.WriteString(mi.ArgExprs[i].Dump())
		}
	}
	b.WriteString(")")

	switch len(mi.Children) {
	case 0:
		b.WriteString(";\n")
	case 1:
		b.WriteString("\n")
		b.WriteString(mi.Children[0].Dump(indent + "\t"))
	default:
		b.WriteString(" {\n")
		for _, c := range mi.Children {
			b.WriteString(c.Dump(indent + "\t"))
		}
		b.WriteString(indent + "}\n")
	}
	return b.String()
}

// Module is a user-defined module's static definition: its own
// parameters, local assignments, the function/module tables visible
// inside it (module-locals shadow enclosing, spec.md §4.3), and its
// lexical child instantiations.
//
// Module carries no Evaluate method: producing an AbstractNode from a
// Module plus a ModuleInstanciation is internal/node's job (it depends
// on this package's types; this package does not depend on node's).
type Module struct {
	ArgNames []string
	Defaults []*ast.Expression

	AssignmentNames []string
	AssignmentExprs []*ast.Expression

	// Functions and Modules hold this module's own definitions only;
	// evalctx.Context.DefineFunction/DefineModule install them into a
	// child scope so that lookups walking the parent chain see
	// enclosing definitions too.
	Functions map[string]evalctx.Function
	Modules   map[string]interface{}

	Children []*ModuleInstanciation
}

func (m *Module) Dump(indent, name string) string {
	var b strings.Builder
	tab := ""
	if name != "" {
		params := make([]string, len(m.ArgNames))
		for i, n := range m.ArgNames {
			if i < len(m.Defaults) && m.Defaults[i] != nil {
				params[i] = n + " = " + m.Defaults[i].Dump()
			} else {
				params[i] = n
			}
		}
		b.WriteString(fmt.Sprintf("%smodule %s(%s) {\n", indent, name, strings.Join(params, ", ")))
		tab = "\t"
	}
	for i, n := range m.AssignmentNames {
		b.WriteString(fmt.Sprintf("%s%s = %s;\n", indent+tab, n, m.AssignmentExprs[i].Dump()))
	}
	for _, c := range m.Children {
		b.WriteString(c.Dump(indent + tab))
	}
	if name != "" {
		b.WriteString(indent + "}\n")
	}
	return b.String()
}
