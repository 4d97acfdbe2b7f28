package compile

import "cadlang/internal/modsys"

// Parser is the external collaborator that turns cadlang source text
// into the root-level module instantiations it describes (spec.md §1:
// "the script parser" is explicitly out of scope for the core,
// consumed via this interface exactly where it touches compilation,
// per §6). The core never parses; tests drive Compile with a fake
// that returns a hand-built instantiation tree instead of lexing text.
type Parser interface {
	Parse(source string) ([]*modsys.ModuleInstanciation, error)
}
