package semantics

import "github.com/corefn-dev/nbeopt/internal/coreir"

// EvalExternFunc resolves a qualified extern reference carrying an
// accumulated spine into a Sem, or reports it can't (false) so the
// caller falls back to a stuck NeutVar/SemExtern. The func
// internal/extern's Table.ResolveFunc returns has this shape; Env only needs the shape, not the
// package, to avoid an import cycle between semantics and extern.
type EvalExternFunc func(qual coreir.Qualified, spine []ExternOp) (Sem, bool)

type envEntry struct {
	single *Thunk
	group  map[coreir.Ident]*Thunk
}

// Env is the evaluator's environment: the enclosing module (for
// resolving unqualified externs), the extern-lookup callback, and one
// entry per de Bruijn level introduced so far. Env is immutable —
// Extend/ExtendGroup return a new Env holding its own copy of the old
// one's entries, so a binder's scope never leaks into a sibling branch that
// extended the same base Env differently.
type Env struct {
	Module     coreir.ModuleName
	EvalExtern EvalExternFunc
	locals     []envEntry
}

// NewEnv builds the empty environment for module, evaluating externs
// through evalExtern.
func NewEnv(module coreir.ModuleName, evalExtern EvalExternFunc) Env {
	return Env{Module: module, EvalExtern: evalExtern}
}

// NextLevel returns the level a newly-introduced binder would receive
// if extended onto env right now.
func (e Env) NextLevel() coreir.Level {
	return coreir.Level(len(e.locals))
}

// Extend returns env with one more single-binder entry for thunk at
// NextLevel.
func (e Env) Extend(thunk *Thunk) Env {
	out := e
	out.locals = append(append([]envEntry{}, e.locals...), envEntry{single: thunk})
	return out
}

// ExtendGroup returns env with one more recursive-group entry at
// NextLevel, whose members are looked up by ident.
func (e Env) ExtendGroup(group map[coreir.Ident]*Thunk) Env {
	out := e
	out.locals = append(append([]envEntry{}, e.locals...), envEntry{group: group})
	return out
}

// Lookup resolves a Local's (level, ident) pair. ident is only
// consulted when the entry at level is a recursive group, to select
// which member; for a plain single-binder entry it's ignored. ok is
// false when level is out of range (an unbound Local — a programmer
// error the caller should raise as a diagnostic, not silently stub out)
// or when ident doesn't name a member of the group at level.
func (e Env) Lookup(level coreir.Level, ident *coreir.Ident) (*Thunk, bool) {
	if int(level) < 0 || int(level) >= len(e.locals) {
		return nil, false
	}
	entry := e.locals[level]
	if entry.group != nil {
		if ident == nil {
			return nil, false
		}
		t, ok := entry.group[*ident]
		return t, ok
	}
	return entry.single, entry.single != nil
}
