package compile

import (
	"cadlang/internal/ast"
	"cadlang/internal/modsys"
	"cadlang/internal/value"

	"github.com/pkg/errors"
)

// fakeScriptParser maps a fixed set of literal script strings to
// hand-built instantiation trees. A real script parser is an external
// collaborator out of scope for this module (spec.md §1, §6); these
// fixtures stand in for it the way node_test.go's fake modules stand
// in for the primitive tessellator.
type fakeScriptParser struct {
	scripts map[string]func() []*modsys.ModuleInstanciation
}

func (p fakeScriptParser) Parse(source string) ([]*modsys.ModuleInstanciation, error) {
	build, ok := p.scripts[source]
	if !ok {
		return nil, errors.Errorf("fakeScriptParser: no fixture for %q", source)
	}
	return build(), nil
}

func newFixtureParser() fakeScriptParser {
	return fakeScriptParser{scripts: map[string]func() []*modsys.ModuleInstanciation{
		scriptCube:              func() []*modsys.ModuleInstanciation { return []*modsys.ModuleInstanciation{cubeInst(10)} },
		scriptDifference:        buildScriptDifference,
		scriptUnionTranslate:    buildScriptUnionTranslate,
		scriptIntersectionThree: buildScriptIntersectionThree,
	}}
}

const (
	scriptCube              = "cube(10);"
	scriptDifference        = "difference() { cube(10); sphere(6); }"
	scriptUnionTranslate    = "union() { cube(10); translate([20,0,0]) cube(10); }"
	scriptIntersectionThree = "intersection() { union() { cube(1); cube(2); } cube(3); }"
)

// fixtureSources names each scenario fixture for the testscript golden
// suite (golden_test.go), since a .txtar script needs a short token
// rather than the literal cadlang source text.
var fixtureSources = map[string]string{
	"cube":               scriptCube,
	"difference":         scriptDifference,
	"union_translate":    scriptUnionTranslate,
	"intersection_three": scriptIntersectionThree,
}

func numberArgInst(v float64) *ast.Expression { return ast.Constant(value.NewNumber(v)) }

func cubeInst(size float64) *modsys.ModuleInstanciation {
	return &modsys.ModuleInstanciation{
		ModName:  "cube",
		ArgNames: []string{""},
		ArgExprs: []*ast.Expression{numberArgInst(size)},
	}
}

func sphereInst(r float64) *modsys.ModuleInstanciation {
	return &modsys.ModuleInstanciation{
		ModName:  "sphere",
		ArgNames: []string{""},
		ArgExprs: []*ast.Expression{numberArgInst(r)},
	}
}

func buildScriptDifference() []*modsys.ModuleInstanciation {
	return []*modsys.ModuleInstanciation{{
		ModName:  "difference",
		Children: []*modsys.ModuleInstanciation{cubeInst(10), sphereInst(6)},
	}}
}

func translateInst(x, y, z float64, children ...*modsys.ModuleInstanciation) *modsys.ModuleInstanciation {
	vec := value.NewVector([]value.Value{value.NewNumber(x), value.NewNumber(y), value.NewNumber(z)})
	return &modsys.ModuleInstanciation{
		ModName:  "translate",
		ArgNames: []string{""},
		ArgExprs: []*ast.Expression{ast.Constant(vec)},
		Children: children,
	}
}

func buildScriptUnionTranslate() []*modsys.ModuleInstanciation {
	return []*modsys.ModuleInstanciation{{
		ModName: "union",
		Children: []*modsys.ModuleInstanciation{
			cubeInst(10),
			translateInst(20, 0, 0, cubeInst(10)),
		},
	}}
}

func buildScriptIntersectionThree() []*modsys.ModuleInstanciation {
	return []*modsys.ModuleInstanciation{{
		ModName: "intersection",
		Children: []*modsys.ModuleInstanciation{
			{
				ModName:  "union",
				Children: []*modsys.ModuleInstanciation{cubeInst(1), cubeInst(2)},
			},
			cubeInst(3),
		},
	}}
}
