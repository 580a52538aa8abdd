package semantics

import "github.com/corefn-dev/nbeopt/internal/coreir"

// Neutral is the sub-domain of Sem values reachable without needing a
// host closure: free variables, fully-applied constructors, literals,
// and computations stuck on any of those. Literals and saturated
// constructors are Neutral too (not a separate "known value" case)
// because Test and AccessorNode dispatch on them the same way whether
// their fields happen to be fully concrete or still contain a Local —
// a constructor's tag is always known the moment it's built, so a Test
// against it can always resolve even when some field can't.
type Neutral interface{ neutNode() }

// NeutLocal is an unresolved reference to a binder: the placeholder
// Quote substitutes for a SemLam/SemLet/SemLetRec continuation's
// parameter while walking its body abstractly.
type NeutLocal struct {
	Ident *coreir.Ident
	Level coreir.Level
}

func (NeutLocal) neutNode() {}

// NeutVar is a qualified reference that stays stuck: either the
// environment's EvalExternFunc had no entry for it, or its extern spine
// was resolved and found genuinely unresolvable. Distinct from
// SemExtern, which still carries a spine that might yet resolve.
type NeutVar struct{ Qual coreir.Qualified }

func (NeutVar) neutNode() {}

// NeutData is a fully-applied data constructor. Fields are *Thunk rather
// than Sem so a field that's never projected out (e.g. a constructor
// built but then only tag-tested) is never forced; the constructor's own
// shape (Tag) is always known regardless.
type NeutData struct {
	Qual   coreir.Qualified
	Tag    string
	Fields []*Thunk
}

func (NeutData) neutNode() {}

// NeutCtorDef is a constructor declaration evaluated as a first-class
// value (e.g. referenced without being immediately saturated).
type NeutCtorDef struct{ Def coreir.CtorDef }

func (NeutCtorDef) neutNode() {}

// NeutApp is a stuck application: Head can't be reduced further (it's
// not a SemLam and not a resolvable SemExtern), so the application
// itself is carried forward with its arguments. Args stay *Thunk, not
// Sem: the head being stuck doesn't mean every argument was actually
// needed to discover that, so forcing them still only happens on demand
// (when Quote walks this node back into an Expr).
type NeutApp struct {
	Head Neutral
	Args []*Thunk
}

func (NeutApp) neutNode() {}

// NeutAccessor is a field projection stuck on a neutral base.
type NeutAccessor struct {
	Base Neutral
	Acc  coreir.Accessor
}

func (NeutAccessor) neutNode() {}

// NeutUpdate is a record update stuck on a neutral base.
type NeutUpdate struct {
	Base  Neutral
	Props []SemUpdateProp
}

func (NeutUpdate) neutNode() {}

// NeutTest is a guard test stuck on a neutral scrutinee.
type NeutTest struct {
	Lhs   Neutral
	Guard coreir.Guard
}

func (NeutTest) neutNode() {}

// NeutLit is a literal value; array/record members are Sem so a literal
// can carry neutral subterms without losing its own known shape.
type NeutLit struct{ Lit coreir.Literal[Sem] }

func (NeutLit) neutNode() {}

// NeutFail is an explicit program failure, preserved verbatim rather
// than collapsed or optimized away.
type NeutFail struct{ Message string }

func (NeutFail) neutNode() {}
