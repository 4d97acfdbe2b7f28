package modsys

import (
	"strings"
	"testing"

	"cadlang/internal/ast"
	"cadlang/internal/diag"
	"cadlang/internal/evalctx"
	"cadlang/internal/value"
)

func newRoot() *evalctx.Context {
	return evalctx.NewRoot(evalctx.NewStack(), diag.NewCollectingSink())
}

func TestUserFunctionBindsDefaults(t *testing.T) {
	root := newRoot()
	defer root.Release()

	fn := &UserFunction{
		ArgNames: []string{"n"},
		Defaults: []*ast.Expression{ast.Constant(value.NewNumber(5))},
		Body:     ast.Binary(ast.OpMul, ast.LookupVar("n"), ast.Constant(value.NewNumber(2))),
	}
	got := fn.Call(root, nil, nil)
	if n, _ := got.NumberValue(); n != 10 {
		t.Fatalf("f() = %v, want 10 (default n=5, body n*2)", n)
	}

	got = fn.Call(root, []string{""}, []value.Value{value.NewNumber(3)})
	if n, _ := got.NumberValue(); n != 6 {
		t.Fatalf("f(3) = %v, want 6", n)
	}
}

func TestBuiltinFunctionDispatch(t *testing.T) {
	root := newRoot()
	defer root.Release()

	bf := &BuiltinFunction{Name: "double", Fn: func(_ []string, args []value.Value) value.Value {
		n, _ := args[0].NumberValue()
		return value.NewNumber(n * 2)
	}}
	got := bf.Call(root, nil, []value.Value{value.NewNumber(21)})
	if n, _ := got.NumberValue(); n != 42 {
		t.Fatalf("double(21) = %v, want 42", n)
	}
}

func TestRecursionGuard(t *testing.T) {
	root := newRoot()
	defer root.Release()

	inst := &ModuleInstanciation{ModName: "r"}
	if inst.TryEnter(root) {
		t.Fatal("first entry should not be flagged recursive")
	}
	if !inst.TryEnter(root) {
		t.Fatal("second entry while still active should be flagged recursive")
	}
	inst.Exit()
	if inst.ActiveContext() != nil {
		t.Fatal("Exit should clear the active-context marker")
	}
	if inst.TryEnter(root) {
		t.Fatal("entry after Exit should not be flagged recursive")
	}
	inst.Exit()
}

func TestModuleInstanciationDump(t *testing.T) {
	inst := &ModuleInstanciation{
		ModName:  "cube",
		ArgNames: []string{"", "center"},
		ArgExprs: []*ast.Expression{ast.Constant(value.NewNumber(10)), ast.Constant(value.NewBool(true))},
	}
	got := inst.Dump("")
	want := "cube(10, center = true);\n"
	if got != want {
		t.Fatalf("Dump() = %q, want %q", got, want)
	}
}

func TestModuleInstanciationDumpWithChildren(t *testing.T) {
	child := &ModuleInstanciation{ModName: "sphere", ArgNames: []string{""}, ArgExprs: []*ast.Expression{ast.Constant(value.NewNumber(5))}}
	parent := &ModuleInstanciation{ModName: "union", Children: []*ModuleInstanciation{child, child}}
	got := parent.Dump("")
	if !strings.Contains(got, "union() {\n") {
		t.Fatalf("Dump() = %q, missing multi-child brace form", got)
	}
}

func TestModuleDumpIncludesAssignmentsAndChildren(t *testing.T) {
	m := &Module{
		ArgNames:        []string{"n"},
		AssignmentNames: []string{"half"},
		AssignmentExprs: []*ast.Expression{ast.Binary(ast.OpDiv, ast.LookupVar("n"), ast.Constant(value.NewNumber(2)))},
		Children:        []*ModuleInstanciation{{ModName: "cube", ArgNames: []string{""}, ArgExprs: []*ast.Expression{ast.LookupVar("half")}}},
	}
	got := m.Dump("", "halfcube")
	if !strings.Contains(got, "module halfcube(n) {") {
		t.Fatalf("Dump() missing header: %q", got)
	}
	if !strings.Contains(got, "half = (n / 2);") {
		t.Fatalf("Dump() missing assignment: %q", got)
	}
}
