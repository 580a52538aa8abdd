// Package extern resolves references to externs: bindings whose
// implementation lives outside the term the optimizer is looking at.
package extern

import "github.com/corefn-dev/nbeopt/internal/coreir"

// Impl is the sum of ways an extern can be implemented.
type Impl interface{ implNode() }

// ImplExpr is an extern whose body is an ordinary core expression,
// parameterized over Params. EvalExternFromImpl resolves it in three
// cases only: an empty spine when Params is empty; a single GetProp
// projection when Body is syntactically a record literal holding that
// key; and one ExternApp of exactly len(Params) arguments that passes
// coreir.ShouldInlineExternApp. A curried under-application, or
// trailing operations past saturation, are left for the caller to retry
// once more context is available.
type ImplExpr struct {
	Params []coreir.Ident
	Body   coreir.Expr
}

func (ImplExpr) implNode() {}

// ImplCtor is an extern that's really a data constructor: applying it to
// its fields always produces data, whether or not the fields themselves
// are fully known.
type ImplCtor struct {
	Tag    string
	Fields []coreir.Ident
}

func (ImplCtor) implNode() {}

// DictMethod is one named method of an ImplDict: its own cost metadata
// and body, parameterized the same way an ImplExpr is. A method only
// ever inlines as part of a projection immediately followed by a
// saturating application — a bare projection (no application, or one
// followed by another accessor) stays stuck, since there is no Expr to
// substitute a method's parameters into otherwise.
type DictMethod struct {
	Analysis coreir.Analysis
	Params   []coreir.Ident
	Body     coreir.Expr
}

// ImplDict is an extern standing for a dictionary of named methods.
// Unlike ImplExpr/ImplCtor, projecting a method alone never produces a
// value: only `dict.method(args)`, spine exactly [GetProp method,
// ExternApp args] with args saturating the method's own Params and
// passing its own cost heuristic, inlines to the method's body.
type ImplDict struct {
	Methods map[string]DictMethod
}

func (ImplDict) implNode() {}

// ImplRec marks an extern as a primitive the optimizer must never
// unfold into its definition, regardless of how it's applied — the
// declared Analysis is still available for the builder's cost
// heuristics, but EvalExternFromImpl always declines to produce a value
// for it.
type ImplRec struct {
	Arity int
}

func (ImplRec) implNode() {}

// AnalysisImpl pairs an extern's static cost metadata with how it's
// implemented; this is what Table stores per qualified name.
type AnalysisImpl struct {
	Analysis coreir.Analysis
	Impl     Impl
}
