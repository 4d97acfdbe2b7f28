package main

import (
	"encoding/json"

	"github.com/pkg/errors"

	"cadlang/internal/ast"
	"cadlang/internal/modsys"
	"cadlang/internal/value"
)

// jsonArg is one call-site argument: Name is empty for a positional
// argument, set for a named one (the same ArgNames/ArgExprs shape
// evalctx.Context.BindArgs expects).
type jsonArg struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// jsonInst is the on-disk shape of one module instantiation. A real
// cadlang lexer/parser is an external collaborator out of scope for
// this module (spec.md §1, §6); jsonParser stands in for one so the
// CLI has something to drive compile.Compiler end to end with.
type jsonInst struct {
	Module     string     `json:"module"`
	Args       []jsonArg  `json:"args"`
	Children   []jsonInst `json:"children"`
	Highlight  bool       `json:"highlight,omitempty"`
	Background bool       `json:"background,omitempty"`
}

// jsonParser implements compile.Parser by decoding source as a JSON
// array of jsonInst trees instead of lexing cadlang syntax.
type jsonParser struct{}

func (jsonParser) Parse(source string) ([]*modsys.ModuleInstanciation, error) {
	var roots []jsonInst
	if err := json.Unmarshal([]byte(source), &roots); err != nil {
		return nil, errors.Wrap(err, "decode instantiation tree")
	}
	insts := make([]*modsys.ModuleInstanciation, len(roots))
	for i, r := range roots {
		insts[i] = toInstanciation(r)
	}
	return insts, nil
}

func toInstanciation(j jsonInst) *modsys.ModuleInstanciation {
	inst := &modsys.ModuleInstanciation{
		ModName:       j.Module,
		TagHighlight:  j.Highlight,
		TagBackground: j.Background,
	}
	for _, a := range j.Args {
		inst.ArgNames = append(inst.ArgNames, a.Name)
		inst.ArgExprs = append(inst.ArgExprs, ast.Constant(jsonToValue(a.Value)))
	}
	for _, c := range j.Children {
		inst.Children = append(inst.Children, toInstanciation(c))
	}
	return inst
}

func jsonToValue(v interface{}) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Undef
	case bool:
		return value.NewBool(t)
	case float64:
		return value.NewNumber(t)
	case string:
		return value.NewString(t)
	case []interface{}:
		elems := make([]value.Value, len(t))
		for i, e := range t {
			elems[i] = jsonToValue(e)
		}
		return value.NewVector(elems)
	default:
		return value.Undef
	}
}
