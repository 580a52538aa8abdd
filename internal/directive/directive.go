// Package directive holds the shape of per-binding inlining overrides.
// Loading a directives file and merging it against a module's exported
// defaults is out of scope here — see cmd/nbeopt for a minimal loader
// that reads one into these types without claiming to implement that
// precedence merge.
package directive

import "github.com/corefn-dev/nbeopt/internal/coreir"

// EvalRef names either a top-level binding or a path of accessors
// projected off one, the two shapes a directive can target. Path holds
// the accessor names joined with "." (empty for a bare binding), so
// EvalRef stays comparable and usable as a map key.
type EvalRef struct {
	Qual coreir.Qualified
	Path string
}

// InlineKind tags an InlineDirective's variant.
type InlineKind int

const (
	InlineDefault InlineKind = iota
	InlineNever
	InlineAlways
	InlineArityN
)

// InlineDirective overrides the builder's usual shouldInlineExternApp
// heuristic for one EvalRef: Default defers to the heuristic, Never/
// Always force the decision outright, and ArityN forces inlining only
// once a call site supplies at least N arguments.
type InlineDirective struct {
	Kind  InlineKind
	Arity int
}

// Default defers entirely to the builder's own cost heuristic.
func Default() InlineDirective { return InlineDirective{Kind: InlineDefault} }

// Never forbids inlining this binding regardless of cost.
func Never() InlineDirective { return InlineDirective{Kind: InlineNever} }

// Always forces inlining this binding regardless of cost.
func Always() InlineDirective { return InlineDirective{Kind: InlineAlways} }

// ArityN forces inlining once a call applies at least n arguments to
// this binding. n must be at least 1.
func ArityN(n int) InlineDirective {
	if n < 1 {
		panic("directive: ArityN requires n >= 1")
	}
	return InlineDirective{Kind: InlineArityN, Arity: n}
}
