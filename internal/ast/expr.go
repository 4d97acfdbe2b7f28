// Package ast implements the expression tree evaluated against a
// lexical Scope: arithmetic, relational, vector/matrix/range
// construction, indexing, member access and calls. Expression.Evaluate
// is total — malformed operand combinations fall through to
// value.Undef rather than panicking (spec.md §4.1).
//
// The parser that produces these trees is out of scope (spec.md §1);
// this package only consumes them.
package ast

import (
	"fmt"
	"strings"

	"cadlang/internal/value"
)

// Op tags an Expression node. Constant carries an owned Value;
// LookupVar/LookupMember/Call carry Name; Call additionally carries
// ArgNames aligned with Children (empty string = positional).
type Op int

const (
	OpNot Op = iota
	OpAnd
	OpOr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpEq
	OpNe
	OpGe
	OpGt
	OpIndex
	OpTernary
	OpNegate
	OpConstant
	OpRange
	OpVector
	OpMatrix
	OpLookupVar
	OpLookupMember
	OpCall
)

var opNames = map[Op]string{
	OpNot: "!", OpAnd: "&&", OpOr: "||",
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpLt: "<", OpLe: "<=", OpEq: "==", OpNe: "!=", OpGe: ">=", OpGt: ">",
	OpIndex: "[]", OpTernary: "?:", OpNegate: "-(u)", OpConstant: "C",
	OpRange: "R", OpVector: "V", OpMatrix: "M",
	OpLookupVar: "L", OpLookupMember: "N", OpCall: "F",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Scope is everything Expression.Evaluate needs from its evaluation
// context. evalctx.Context implements it; keeping it as an interface
// here (rather than importing evalctx) avoids an import cycle, since
// Context in turn needs to evaluate Expressions.
type Scope interface {
	// LookupVar resolves a name, routing `$`-prefixed configuration
	// variables through the dynamic context stack and all other names
	// through the lexical parent chain (spec.md §4.1, §4.2).
	LookupVar(name string) value.Value
	// CallFunction resolves name through the function table (walking
	// parent links, spec.md §4.1) and invokes it with the already-
	// evaluated argument values/names.
	CallFunction(name string, argNames []string, argValues []value.Value) value.Value
}

// Expression is a single node in the evaluated tree: an operator tag
// plus an ordered list of children.
type Expression struct {
	Op       Op
	Children []*Expression

	Const    value.Value // OpConstant
	Name     string      // OpLookupVar, OpLookupMember, OpCall
	ArgNames []string     // OpCall, aligned with Children
}

func Constant(v value.Value) *Expression { return &Expression{Op: OpConstant, Const: v} }

func LookupVar(name string) *Expression { return &Expression{Op: OpLookupVar, Name: name} }

func Binary(op Op, left, right *Expression) *Expression {
	return &Expression{Op: op, Children: []*Expression{left, right}}
}

func Unary(op Op, operand *Expression) *Expression {
	return &Expression{Op: op, Children: []*Expression{operand}}
}

func Call(name string, argNames []string, args []*Expression) *Expression {
	return &Expression{Op: OpCall, Name: name, ArgNames: argNames, Children: args}
}

// Evaluate walks the tree against scope. It is single-pass,
// recursive, and holds no state beyond scope: the same Expression can
// be evaluated any number of times against different scopes.
func (e *Expression) Evaluate(scope Scope) value.Value {
	if e == nil {
		return value.Undef
	}
	switch e.Op {
	case OpConstant:
		return e.Const

	case OpLookupVar:
		return scope.LookupVar(e.Name)

	case OpLookupMember:
		return e.child(scope, 0).Member(e.Name)

	case OpNot:
		return e.child(scope, 0).Not()

	case OpNegate:
		return e.child(scope, 0).Negate()

	case OpAnd:
		left := e.child(scope, 0)
		if b, ok := left.BoolValue(); ok && !b {
			return value.NewBool(false)
		}
		right := e.child(scope, 1)
		return left.And(right)

	case OpOr:
		left := e.child(scope, 0)
		if b, ok := left.BoolValue(); ok && b {
			return value.NewBool(true)
		}
		right := e.child(scope, 1)
		return left.Or(right)

	case OpAdd:
		return e.child(scope, 0).Add(e.child(scope, 1))
	case OpSub:
		return e.child(scope, 0).Sub(e.child(scope, 1))
	case OpMul:
		return e.child(scope, 0).Mul(e.child(scope, 1))
	case OpDiv:
		return e.child(scope, 0).Div(e.child(scope, 1))
	case OpMod:
		return e.child(scope, 0).Mod(e.child(scope, 1))

	case OpLt:
		return e.child(scope, 0).Lt(e.child(scope, 1))
	case OpLe:
		return e.child(scope, 0).Le(e.child(scope, 1))
	case OpEq:
		return e.child(scope, 0).Eq(e.child(scope, 1))
	case OpNe:
		return e.child(scope, 0).Ne(e.child(scope, 1))
	case OpGe:
		return e.child(scope, 0).Ge(e.child(scope, 1))
	case OpGt:
		return e.child(scope, 0).Gt(e.child(scope, 1))

	case OpIndex:
		idxVal := e.child(scope, 1)
		n, ok := idxVal.NumberValue()
		if !ok {
			return value.Undef
		}
		return e.child(scope, 0).Index(int(n))

	case OpTernary:
		cond := e.child(scope, 0)
		if b, ok := cond.BoolValue(); ok {
			if b {
				return e.child(scope, 1)
			}
			return e.child(scope, 2)
		}
		return value.Undef

	case OpRange:
		return e.evalRange(scope)

	case OpVector, OpMatrix:
		elems := make([]value.Value, len(e.Children))
		for i, c := range e.Children {
			elems[i] = c.Evaluate(scope)
		}
		return value.NewVector(elems)

	case OpCall:
		args := make([]value.Value, len(e.Children))
		for i, c := range e.Children {
			args[i] = c.Evaluate(scope)
		}
		return scope.CallFunction(e.Name, e.ArgNames, args)

	default:
		return value.Undef
	}
}

// child evaluates the i-th child, returning Undef if absent.
func (e *Expression) child(scope Scope, i int) value.Value {
	if i >= len(e.Children) {
		return value.Undef
	}
	return e.Children[i].Evaluate(scope)
}

// evalRange accepts either two operands (begin, end, step=1) or three
// (begin, step, end), per spec.md §4.1.
func (e *Expression) evalRange(scope Scope) value.Value {
	switch len(e.Children) {
	case 2:
		begin, ok1 := e.child(scope, 0).NumberValue()
		end, ok2 := e.child(scope, 1).NumberValue()
		if !ok1 || !ok2 {
			return value.Undef
		}
		return value.NewRange(begin, 1, end)
	case 3:
		begin, ok1 := e.child(scope, 0).NumberValue()
		step, ok2 := e.child(scope, 1).NumberValue()
		end, ok3 := e.child(scope, 2).NumberValue()
		if !ok1 || !ok2 || !ok3 {
			return value.Undef
		}
		return value.NewRange(begin, step, end)
	default:
		return value.Undef
	}
}

// Dump produces the canonical textual form used by cache-key
// canonicalization and round-trip tests (spec.md §3 "Expression",
// §8.6).
func (e *Expression) Dump() string {
	if e == nil {
		return ""
	}
	switch e.Op {
	case OpConstant:
		return e.Const.Dump()
	case OpLookupVar:
		return e.Name
	case OpLookupMember:
		return e.Children[0].Dump() + "." + e.Name
	case OpNot:
		return "!" + e.Children[0].Dump()
	case OpNegate:
		return "-" + e.Children[0].Dump()
	case OpAnd, OpOr, OpAdd, OpSub, OpMul, OpDiv, OpMod, OpLt, OpLe, OpEq, OpNe, OpGe, OpGt:
		return fmt.Sprintf("(%s %s %s)", e.Children[0].Dump(), e.Op, e.Children[1].Dump())
	case OpIndex:
		return fmt.Sprintf("%s[%s]", e.Children[0].Dump(), e.Children[1].Dump())
	case OpTernary:
		return fmt.Sprintf("(%s ? %s : %s)", e.Children[0].Dump(), e.Children[1].Dump(), e.Children[2].Dump())
	case OpRange:
		parts := make([]string, len(e.Children))
		for i, c := range e.Children {
			parts[i] = c.Dump()
		}
		return "[" + strings.Join(parts, ":") + "]"
	case OpVector, OpMatrix:
		parts := make([]string, len(e.Children))
		for i, c := range e.Children {
			parts[i] = c.Dump()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case OpCall:
		parts := make([]string, len(e.Children))
		for i, c := range e.Children {
			if i < len(e.ArgNames) && e.ArgNames[i] != "" {
				parts[i] = e.ArgNames[i] + " = " + c.Dump()
			} else {
				parts[i] = c.Dump()
			}
		}
		return e.Name + "(" + strings.Join(parts, ", ") + ")"
	default:
		return "undef"
	}
}
