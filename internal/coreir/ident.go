// Package coreir defines the algebraic intermediate representation the
// optimizer consumes and produces: identifiers, literals, the syntax
// functor, and the per-node usage/size analysis attached to every term.
package coreir

import "golang.org/x/text/unicode/norm"

// Ident names a local or top-level binding. Two Idents that differ only
// by Unicode normal form must compare equal once qualified names start
// flowing through extern-table lookups and usage-map keys, so every
// constructor below normalizes to NFC at the boundary.
type Ident string

// NewIdent normalizes s to NFC before wrapping it.
func NewIdent(s string) Ident {
	return Ident(normalizeNFC(s))
}

func (i Ident) String() string { return string(i) }

// ModuleName is an opaque identifier for a compilation unit.
type ModuleName string

// NewModuleName normalizes m to NFC before wrapping it.
func NewModuleName(m string) ModuleName {
	return ModuleName(normalizeNFC(m))
}

func (m ModuleName) String() string { return string(m) }

// Qualified identifies a binding exported by a module.
type Qualified struct {
	Module ModuleName
	Name   Ident
}

// NewQualified builds a Qualified reference, normalizing both parts.
func NewQualified(module string, name string) Qualified {
	return Qualified{Module: NewModuleName(module), Name: NewIdent(name)}
}

func (q Qualified) String() string {
	return string(q.Module) + "." + string(q.Name)
}

// Equal reports whether two qualified names refer to the same binding.
func (q Qualified) Equal(other Qualified) bool {
	return q.Module == other.Module && q.Name == other.Name
}

// Level is a de Bruijn level: a binder's position counted from the
// outermost binder, assigned once and never renumbered. Equality is
// identity, so Level is safe to use as a map key.
type Level int

func normalizeNFC(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
