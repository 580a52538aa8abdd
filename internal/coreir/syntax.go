package coreir

// Syntax is the IR node functor, generic in the subterm type T so the
// same shape describes both IR-over-IR (T = Expr, during building and
// quoting) and the degenerate IR-over-nothing-further shape Freeze
// produces (T = *NeutralExpr). Every concrete node below implements it.
type Syntax[T any] interface {
	syntaxNode()
}

// Var is a reference to an imported, qualified binding.
type Var struct{ Qual Qualified }

func (Var) syntaxNode() {}

// Local is a reference to a binder introduced within the current term,
// identified by its de Bruijn level. Ident is retained only for
// diagnostics/pretty-printing; binding is by Level.
type Local struct {
	Ident *Ident
	Level Level
}

func (Local) syntaxNode() {}

// LitNode wraps a Literal as a syntax node.
type LitNode[T any] struct{ Lit Literal[T] }

func (LitNode[T]) syntaxNode() {}

// App is function application; Args is always non-empty.
type App[T any] struct {
	Head T
	Args []T
}

func (App[T]) syntaxNode() {}

// Param is one parameter of an Abs: an optional name for diagnostics
// plus the fresh level it binds.
type Param struct {
	Ident *Ident
	Level Level
}

// Abs is a lambda; Params is always non-empty.
type Abs[T any] struct {
	Params []Param
	Body   T
}

func (Abs[T]) syntaxNode() {}

// Let is a non-recursive, non-effectful binding.
type Let[T any] struct {
	Ident   *Ident
	Level   Level
	Binding T
	Body    T
}

func (Let[T]) syntaxNode() {}

// RecBinding is one member of a LetRec group.
type RecBinding[T any] struct {
	Ident Ident
	Level Level
	Value T
}

// LetRec is a group of mutually recursive bindings, all introduced at
// the same Level: within the group, a member is looked up by Ident.
type LetRec[T any] struct {
	Level    Level
	Bindings []RecBinding[T]
	Body     T
}

func (LetRec[T]) syntaxNode() {}

// EffectBind sequences a monadic action into a binder; syntactically
// similar to Let but never subject to the let-floating or inlining
// rewrites that Let is (see internal/nbe's effect-ordering rules).
type EffectBind[T any] struct {
	Ident   *Ident
	Level   Level
	Binding T
	Body    T
}

func (EffectBind[T]) syntaxNode() {}

// EffectPure lifts a pure value into the effectful position.
type EffectPure[T any] struct{ Value T }

func (EffectPure[T]) syntaxNode() {}

// AccessorNode projects a field out of lhs.
type AccessorNode[T any] struct {
	Lhs T
	Acc Accessor
}

func (AccessorNode[T]) syntaxNode() {}

// UpdateProp is one field of a record Update.
type UpdateProp[T any] struct {
	Key   string
	Value T
}

// Update produces a new record from lhs with Props overlaid.
type Update[T any] struct {
	Lhs   T
	Props []UpdateProp[T]
}

func (Update[T]) syntaxNode() {}

// BranchCase is one (predicate, body) arm of a Branch.
type BranchCase[T any] struct {
	Pred T
	Body T
}

// Branch is a multi-arm conditional; Default, when present, is taken
// if no case's predicate is true.
type Branch[T any] struct {
	Cases   []BranchCase[T]
	Default *T
}

func (Branch[T]) syntaxNode() {}

// Test applies a Guard to lhs, producing a boolean.
type Test[T any] struct {
	Lhs   T
	Guard Guard
}

func (Test[T]) syntaxNode() {}

// CtorDef introduces a data constructor's shape: its tag and the
// declared names of its fields (field position is what GetOffset
// indexes).
type CtorDef struct {
	Tag    string
	Fields []Ident
}

func (CtorDef) syntaxNode() {}

// CtorSaturated applies a fully-saturated constructor to its fields.
type CtorSaturated[T any] struct {
	Qual   Qualified
	Tag    string
	Fields []T
}

func (CtorSaturated[T]) syntaxNode() {}

// Fail is an explicit failure node: a user-visible program error that
// the optimizer preserves verbatim into its output (see spec §7).
type Fail struct{ Message string }

func (Fail) syntaxNode() {}
