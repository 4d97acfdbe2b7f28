package ast

import (
	"testing"

	"cadlang/internal/value"
)

// fakeScope is a minimal Scope for expression-level tests; the real
// lexical/dynamic resolution is exercised in internal/evalctx.
type fakeScope struct {
	vars  map[string]value.Value
	calls map[string]func([]string, []value.Value) value.Value
}

func (s *fakeScope) LookupVar(name string) value.Value {
	if v, ok := s.vars[name]; ok {
		return v
	}
	return value.Undef
}

func (s *fakeScope) CallFunction(name string, argNames []string, argValues []value.Value) value.Value {
	if f, ok := s.calls[name]; ok {
		return f(argNames, argValues)
	}
	return value.Undef
}

func TestEvaluateArithmetic(t *testing.T) {
	e := Binary(OpAdd, Constant(value.NewNumber(1)), Constant(value.NewNumber(2)))
	got := e.Evaluate(&fakeScope{})
	if n, _ := got.NumberValue(); n != 3 {
		t.Fatalf("1+2 = %v, want 3", n)
	}
}

func TestShortCircuitAnd(t *testing.T) {
	called := false
	scope := &fakeScope{calls: map[string]func([]string, []value.Value) value.Value{
		"boom": func([]string, []value.Value) value.Value {
			called = true
			return value.NewBool(true)
		},
	}}
	e := Binary(OpAnd, Constant(value.NewBool(false)), Call("boom", nil, nil))
	got := e.Evaluate(scope)
	if b, _ := got.BoolValue(); b != false {
		t.Fatalf("false && x = %v, want false", got.Dump())
	}
	if called {
		t.Fatal("right operand of && should not be evaluated when left is false")
	}
}

func TestShortCircuitOr(t *testing.T) {
	called := false
	scope := &fakeScope{calls: map[string]func([]string, []value.Value) value.Value{
		"boom": func([]string, []value.Value) value.Value {
			called = true
			return value.NewBool(false)
		},
	}}
	e := Binary(OpOr, Constant(value.NewBool(true)), Call("boom", nil, nil))
	got := e.Evaluate(scope)
	if b, _ := got.BoolValue(); b != true {
		t.Fatalf("true || x = %v, want true", got.Dump())
	}
	if called {
		t.Fatal("right operand of || should not be evaluated when left is true")
	}
}

func TestIndexOutOfRangeIsUndefined(t *testing.T) {
	vec := Constant(value.NewVector([]value.Value{value.NewNumber(1)}))
	e := Binary(OpIndex, vec, Constant(value.NewNumber(5)))
	if !e.Evaluate(&fakeScope{}).IsUndefined() {
		t.Fatal("out-of-range index should evaluate to Undefined")
	}
}

func TestRangeTwoAndThreeOperands(t *testing.T) {
	two := &Expression{Op: OpRange, Children: []*Expression{Constant(value.NewNumber(0)), Constant(value.NewNumber(4))}}
	begin, step, end, ok := two.Evaluate(&fakeScope{}).RangeValue()
	if !ok || begin != 0 || step != 1 || end != 4 {
		t.Fatalf("two-operand range = %v %v %v", begin, step, end)
	}

	three := &Expression{Op: OpRange, Children: []*Expression{
		Constant(value.NewNumber(0)), Constant(value.NewNumber(2)), Constant(value.NewNumber(10)),
	}}
	begin, step, end, ok = three.Evaluate(&fakeScope{}).RangeValue()
	if !ok || begin != 0 || step != 2 || end != 10 {
		t.Fatalf("three-operand range = %v %v %v", begin, step, end)
	}
}

func TestTernary(t *testing.T) {
	e := &Expression{Op: OpTernary, Children: []*Expression{
		Constant(value.NewBool(true)), Constant(value.NewNumber(1)), Constant(value.NewNumber(2)),
	}}
	if n, _ := e.Evaluate(&fakeScope{}).NumberValue(); n != 1 {
		t.Fatalf("ternary(true) = %v, want 1", n)
	}
}

func TestLookupVarDelegatesToScope(t *testing.T) {
	scope := &fakeScope{vars: map[string]value.Value{"$fn": value.NewNumber(32)}}
	e := LookupVar("$fn")
	if n, _ := e.Evaluate(scope).NumberValue(); n != 32 {
		t.Fatalf("$fn = %v, want 32", n)
	}
}

func TestCallPassesArgNamesAndValues(t *testing.T) {
	scope := &fakeScope{calls: map[string]func([]string, []value.Value) value.Value{
		"f": func(names []string, vals []value.Value) value.Value {
			if len(names) != 2 || names[1] != "h" {
				t.Fatalf("unexpected argnames %v", names)
			}
			a, _ := vals[0].NumberValue()
			b, _ := vals[1].NumberValue()
			return value.NewNumber(a + b)
		},
	}}
	e := Call("f", []string{"", "h"}, []*Expression{Constant(value.NewNumber(1)), Constant(value.NewNumber(2))})
	if n, _ := e.Evaluate(scope).NumberValue(); n != 3 {
		t.Fatalf("f(1, h=2) = %v, want 3", n)
	}
}

func TestDumpIsStable(t *testing.T) {
	e := Binary(OpAdd, Constant(value.NewNumber(1)), Constant(value.NewNumber(2)))
	if got, want := e.Dump(), "(1 + 2)"; got != want {
		t.Fatalf("Dump() = %q, want %q", got, want)
	}
}

func TestMemberLookup(t *testing.T) {
	vec := Constant(value.NewVector([]value.Value{value.NewNumber(1), value.NewNumber(2), value.NewNumber(3)}))
	e := &Expression{Op: OpLookupMember, Children: []*Expression{vec}, Name: "z"}
	if n, _ := e.Evaluate(&fakeScope{}).NumberValue(); n != 3 {
		t.Fatalf(".z = %v, want 3", n)
	}
}
