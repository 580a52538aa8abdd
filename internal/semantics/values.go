// Package semantics holds the evaluator's target domain: the Sem values
// an evaluated term reduces to, and the Neutral sub-domain of values
// that are stuck on something the evaluator can't see through (a free
// variable, an unresolved extern, a user-visible failure).
package semantics

import "github.com/corefn-dev/nbeopt/internal/coreir"

// Sem is any value the evaluator can produce. Most variants below exist
// because full reduction can't proceed without information the
// evaluator doesn't have at this point — an unresolved extern, an
// effect that can only run at actual execution time, or a branch whose
// predicate isn't known. Quote walks a Sem back into an Expr; which of
// these variants it sees determines which IR shape it reconstructs.
type Sem interface{ semNode() }

// SemLam is a single-argument function value: applying it runs a host
// closure over the environment the lambda was built in. A multi-param
// Abs evaluates to a right-folded chain of SemLam, one per parameter —
// evalApp peels arguments off one at a time (see internal/nbe), and the
// builder's Abs-of-Abs rewrite is what re-merges the chain back into one
// multi-param syntax node during quoting. Apply takes the argument as a
// *Thunk rather than an already-forced Sem so a parameter the body never
// looks up is never evaluated.
type SemLam struct {
	Ident *coreir.Ident
	Apply func(arg *Thunk) Sem
}

func (SemLam) semNode() {}

// SemExtern accumulates a spine of operations (ExternApp/ExternAccessor)
// applied to a qualified extern reference that hasn't been resolved
// against an extern.Table yet, either because it isn't saturated or
// because the evaluator has no table entry for it in this context.
// Quoting a SemExtern reconstructs Var/App/AccessorNode nodes from Qual
// and Spine; resolving it against a table is internal/extern's job.
type SemExtern struct {
	Qual  coreir.Qualified
	Spine []ExternOp
}

func (SemExtern) semNode() {}

// SemLet is the semantic form of a Let: Binding has already been
// evaluated, and Cont is the host closure that continues evaluating the
// body once a value for the binder is supplied. Quote calls Cont with a
// fresh neutral placeholder to reconstruct the body abstractly, the same
// technique used to quote a SemLam.
type SemLet struct {
	Ident   *coreir.Ident
	Binding Sem
	Cont    func(bound Sem) Sem
}

func (SemLet) semNode() {}

// SemLetRec mirrors SemLet for a mutually recursive group. EvalBindings
// computes every member's value given a slot per member (a *Thunk, so a
// member whose value is itself a function can close over siblings that
// aren't resolved yet — forcing only happens once that function is
// later applied). Quote, its only caller, passes slots pre-resolved to
// fresh neutral placeholders; nothing in this tree calls it with
// pending slots (NewPendingThunk/Resolve) to tie the knot over the
// group's real values. Cont continues the body once
// the group's values (real or placeholder) are available.
type SemLetRec struct {
	Idents       []coreir.Ident
	EvalBindings func(group []*Thunk) []Sem
	Cont         func(group []Sem) Sem
}

func (SemLetRec) semNode() {}

// SemEffectBind reifies a monadic sequencing point: effects can't be run
// by the evaluator, so Action is carried opaquely and Cont resumes once
// a bound value is available, exactly like SemLet but never subject to
// the let-inlining or re-association rewrites Let is.
type SemEffectBind struct {
	Ident  *coreir.Ident
	Action Sem
	Cont   func(bound Sem) Sem
}

func (SemEffectBind) semNode() {}

// SemEffectPure lifts an already-known value into effectful position.
type SemEffectPure struct{ Value Sem }

func (SemEffectPure) semNode() {}

// SemBranchCase is one evaluated (predicate, deferred body) pair. Body
// is deferred so bodies that aren't definitely taken are never forced,
// preserving effect and failure behavior.
type SemBranchCase struct {
	Pred Sem
	Body func() Sem
}

// SemBranch is an assembled multi-case branch the evaluator could not
// collapse to a single value. Cases holds, in order, the arms whose Pred
// is not a known boolean; it is empty when an arm committed before any
// stuck one, and Default then yields the committed SemBranchTry. Cases
// and Default are both empty when no arm can match and there is no
// default. Produced by internal/nbe's runBranches; Quote reconstructs a
// Branch node from it.
type SemBranch struct {
	Cases   []SemBranchCase
	Default func() Sem
}

func (SemBranch) semNode() {}

// SemBranchTry packages a branch body that evalBranches has already
// committed to (Body) together with the sibling cases and default it
// left unexamined (Cases, Default). It sits in a SemBranch's Default
// slot: if Body, once quoted, turns out to itself need further case
// analysis (it was embedded in a nested pattern match with no default
// of its own), the quoter's resumeBranches context lets that inner
// analysis absorb Cases/Default instead of losing them. This is the
// only non-local control-flow interaction in the package.
type SemBranchTry struct {
	Body    Sem
	Cases   []SemBranchCase
	Default func() Sem
}

func (SemBranchTry) semNode() {}

// SemAccessor is a field projection that couldn't be resolved against
// known data because its base is itself deferred in a way no commuting
// rule can see through and has no Neutral form (a lambda, a recursive
// group, an effect bind, a branch, or another pending accessor/update;
// an unresolved extern extends its own spine instead). Quote reconstructs an AccessorNode directly from it.
type SemAccessor struct {
	Base Sem
	Acc  coreir.Accessor
}

func (SemAccessor) semNode() {}

// SemUpdateProp is one overridden field of a SemUpdate.
type SemUpdateProp struct {
	Key   string
	Value Sem
}

// SemUpdate mirrors SemAccessor for record updates whose base resists
// every commuting rule.
type SemUpdate struct {
	Base  Sem
	Props []SemUpdateProp
}

func (SemUpdate) semNode() {}

// SemNeutral wraps a fully stuck (or fully known, in the case of data
// constructors and literals — see Neutral's doc comment) computation.
type SemNeutral struct{ Neutral Neutral }

func (SemNeutral) semNode() {}
