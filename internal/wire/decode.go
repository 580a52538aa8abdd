// Package wire decodes the optimizer's JSON input format: a module
// expression plus the table of extern implementations it calls out to.
// Locals are named in the wire format rather than carrying raw levels —
// decode resolves each name against its lexical scope and assigns the
// de Bruijn level itself, the same job a real frontend's name resolver
// would do just before handing a tree to this optimizer.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/corefn-dev/nbeopt/internal/coreir"
	"github.com/corefn-dev/nbeopt/internal/extern"
)

// rawAnalysis carries only the fields the builder's extern-inlining
// heuristic actually consults (ShouldInlineExternApp reads Complexity,
// Size, and the argument count). Usages and Rewrite don't apply to a
// standalone declared cost and are left at their zero values.
type rawAnalysis struct {
	Size       int    `json:"size"`
	Complexity string `json:"complexity"`
	ArgCount   int    `json:"arg_count"`
}

func (r rawAnalysis) resolve() (coreir.Analysis, error) {
	var c coreir.Complexity
	switch r.Complexity {
	case "trivial":
		c = coreir.Trivial
	case "deref":
		c = coreir.Deref
	case "knownsize":
		c = coreir.KnownSize
	case "nontrivial":
		c = coreir.NonTrivial
	default:
		return coreir.Analysis{}, fmt.Errorf("wire: unknown complexity %q", r.Complexity)
	}
	args := make([]coreir.ArgShape, r.ArgCount)
	for i := range args {
		args[i] = coreir.ArgShapeKnown
	}
	return coreir.Analysis{Size: r.Size, Complexity: c, Args: args}, nil
}

// rawDictMethod mirrors the "expr" impl shape (its own cost metadata,
// params, and body) since a dict method inlines exactly like a
// zero-extra-indirection ImplExpr once it's both projected and applied.
type rawDictMethod struct {
	Analysis rawAnalysis     `json:"analysis"`
	Params   []string        `json:"params,omitempty"`
	Body     json.RawMessage `json:"body,omitempty"`
}

type rawImpl struct {
	Kind    string                   `json:"kind"`
	Params  []string                 `json:"params,omitempty"`
	Body    json.RawMessage          `json:"body,omitempty"`
	Tag     string                   `json:"tag,omitempty"`
	Fields  []string                 `json:"fields,omitempty"`
	Methods map[string]rawDictMethod `json:"methods,omitempty"`
	Arity   int                      `json:"arity,omitempty"`
}

// resolve decodes an extern's implementation. ImplExpr bodies get their
// own fresh decoder: an extern's Params are its only binders, numbered
// from level 0 the same way EvalExternFromImpl's evalImplExpr extends a
// brand new Env for the body rather than reusing the call site's.
func (r rawImpl) resolve() (extern.Impl, error) {
	switch r.Kind {
	case "expr":
		body := &decoder{}
		params := make([]coreir.Ident, len(r.Params))
		for i, p := range r.Params {
			param := body.pushSingle(p)
			params[i] = *param.Ident
		}
		bodyExpr, err := body.decode(r.Body)
		if err != nil {
			return nil, err
		}
		return extern.ImplExpr{Params: params, Body: bodyExpr}, nil

	case "ctor":
		fields := make([]coreir.Ident, len(r.Fields))
		for i, f := range r.Fields {
			fields[i] = coreir.NewIdent(f)
		}
		return extern.ImplCtor{Tag: r.Tag, Fields: fields}, nil

	case "dict":
		methods := make(map[string]extern.DictMethod, len(r.Methods))
		for name, m := range r.Methods {
			analysis, err := m.Analysis.resolve()
			if err != nil {
				return nil, fmt.Errorf("wire: dict method %q: %w", name, err)
			}
			body := &decoder{}
			params := make([]coreir.Ident, len(m.Params))
			for i, p := range m.Params {
				param := body.pushSingle(p)
				params[i] = *param.Ident
			}
			bodyExpr, err := body.decode(m.Body)
			if err != nil {
				return nil, fmt.Errorf("wire: dict method %q: %w", name, err)
			}
			methods[name] = extern.DictMethod{Analysis: analysis, Params: params, Body: bodyExpr}
		}
		return extern.ImplDict{Methods: methods}, nil

	case "rec":
		return extern.ImplRec{Arity: r.Arity}, nil

	default:
		return nil, fmt.Errorf("wire: unknown extern impl kind %q", r.Kind)
	}
}

type rawExternEntry struct {
	Qual     rawQual     `json:"qual"`
	Analysis rawAnalysis `json:"analysis"`
	Impl     rawImpl     `json:"impl"`
}

type rawModule struct {
	Module  string           `json:"module"`
	Expr    json.RawMessage  `json:"expr"`
	Externs []rawExternEntry `json:"externs"`
}

// DecodeModule parses the optimizer's JSON input format into a Module
// ready to hand to internal/nbe.Optimize.
func DecodeModule(data []byte) (*Module, error) {
	var raw rawModule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	d := &decoder{}
	expr, err := d.decode(raw.Expr)
	if err != nil {
		return nil, fmt.Errorf("wire: decoding module expr: %w", err)
	}

	table := extern.NewTable()
	for _, e := range raw.Externs {
		analysis, err := e.Analysis.resolve()
		if err != nil {
			return nil, fmt.Errorf("wire: extern %s.%s: %w", e.Qual.Module, e.Qual.Name, err)
		}
		impl, err := e.Impl.resolve()
		if err != nil {
			return nil, fmt.Errorf("wire: extern %s.%s: %w", e.Qual.Module, e.Qual.Name, err)
		}
		table.Register(e.Qual.resolve(), analysis, impl)
	}

	return &Module{Name: coreir.NewModuleName(raw.Module), Expr: expr, Table: table}, nil
}

// Module is a fully decoded optimizer input: the expression to optimize
// and the table of extern implementations it may call into.
type Module struct {
	Name  coreir.ModuleName
	Expr  coreir.Expr
	Table *extern.Table
}

type rawQual struct {
	Module string `json:"module"`
	Name   string `json:"name"`
}

func (q rawQual) resolve() coreir.Qualified { return coreir.NewQualified(q.Module, q.Name) }

type rawAccessor struct {
	Kind  string `json:"kind"`
	Prop  string `json:"prop,omitempty"`
	Index int    `json:"index,omitempty"`
}

func (a rawAccessor) resolve() (coreir.Accessor, error) {
	switch a.Kind {
	case "prop":
		return coreir.GetProp(a.Prop), nil
	case "index":
		return coreir.GetIndex(a.Index), nil
	case "offset":
		return coreir.GetOffset(a.Index), nil
	default:
		return coreir.Accessor{}, fmt.Errorf("wire: unknown accessor kind %q", a.Kind)
	}
}

type rawGuard struct {
	Kind  string  `json:"kind"`
	Int   int64   `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
	Str   string  `json:"str,omitempty"`
	Char  string  `json:"char,omitempty"`
	Bool  bool    `json:"bool,omitempty"`
	Tag   string  `json:"tag,omitempty"`
	Len   int     `json:"len,omitempty"`
}

func (g rawGuard) resolve() (coreir.Guard, error) {
	switch g.Kind {
	case "int":
		return coreir.TestInt(g.Int), nil
	case "float":
		return coreir.TestFloat(g.Float), nil
	case "string":
		return coreir.TestString(g.Str), nil
	case "char":
		return coreir.TestChar(runeOf(g.Char)), nil
	case "bool":
		return coreir.TestBool(g.Bool), nil
	case "tag":
		return coreir.TestTag(g.Tag), nil
	case "arraylen":
		return coreir.TestArrayLen(g.Len), nil
	default:
		return coreir.Guard{}, fmt.Errorf("wire: unknown guard kind %q", g.Kind)
	}
}

func runeOf(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

type rawRecordProp struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type rawLit struct {
	Kind   string          `json:"kind"`
	Int    int64           `json:"int,omitempty"`
	Float  float64         `json:"float,omitempty"`
	Str    string          `json:"str,omitempty"`
	Char   string          `json:"char,omitempty"`
	Bool   bool            `json:"bool,omitempty"`
	Array  []json.RawMessage `json:"array,omitempty"`
	Record []rawRecordProp `json:"record,omitempty"`
}

type rawParam struct {
	Name string `json:"name"`
}

type rawRecBinding struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type rawUpdateProp struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type rawBranchCase struct {
	Pred json.RawMessage `json:"pred"`
	Body json.RawMessage `json:"body"`
}

type rawExpr struct {
	Kind string `json:"kind"`

	// var
	Qual *rawQual `json:"qual,omitempty"`

	// local
	Name string `json:"name,omitempty"`

	// lit
	Lit *rawLit `json:"lit,omitempty"`

	// app
	Head json.RawMessage   `json:"head,omitempty"`
	Args []json.RawMessage `json:"args,omitempty"`

	// abs
	Params []rawParam      `json:"params,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`

	// let / effectbind
	Binding json.RawMessage `json:"binding,omitempty"`
	// Body reused above

	// letrec
	Bindings []rawRecBinding `json:"bindings,omitempty"`

	// effectpure
	Value json.RawMessage `json:"value,omitempty"`

	// accessor
	Lhs json.RawMessage `json:"lhs,omitempty"`
	Acc *rawAccessor    `json:"acc,omitempty"`

	// update
	Props []rawUpdateProp `json:"props,omitempty"`

	// branch
	Cases   []rawBranchCase `json:"cases,omitempty"`
	Default json.RawMessage `json:"default,omitempty"`

	// test
	Guard *rawGuard `json:"guard,omitempty"`

	// ctordef
	Tag    string   `json:"tag,omitempty"`
	Fields []string `json:"fields,omitempty"`

	// ctorsaturated
	// Tag reused above; Fields reused below with different shape
	FieldExprs []json.RawMessage `json:"field_exprs,omitempty"`

	// fail
	Message string `json:"message,omitempty"`
}

type scopeEntry struct {
	name  string
	level coreir.Level
	ident *coreir.Ident
}

// decoder resolves wire-format names to de Bruijn levels, assigning a
// fresh level to every binder in decode order and never reusing one, so
// equal Levels always name the same binder. A let or effectbind binder
// is numbered after any binders inside its binding, which is decoded
// first.
type decoder struct {
	scope []scopeEntry
	next  coreir.Level
}

func (d *decoder) pushSingle(name string) coreir.Param {
	lvl := d.next
	d.next++
	id := coreir.NewIdent(name)
	d.scope = append(d.scope, scopeEntry{name: name, level: lvl, ident: &id})
	return coreir.Param{Ident: &id, Level: lvl}
}

func (d *decoder) popN(n int) {
	d.scope = d.scope[:len(d.scope)-n]
}

func (d *decoder) pushGroup(names []string) (coreir.Level, []coreir.Ident) {
	lvl := d.next
	d.next++
	idents := make([]coreir.Ident, len(names))
	for i, n := range names {
		idents[i] = coreir.NewIdent(n)
		d.scope = append(d.scope, scopeEntry{name: n, level: lvl, ident: &idents[i]})
	}
	return lvl, idents
}

func (d *decoder) resolveLocal(name string) (coreir.Local, bool) {
	for i := len(d.scope) - 1; i >= 0; i-- {
		if d.scope[i].name == name {
			return coreir.Local{Ident: d.scope[i].ident, Level: d.scope[i].level}, true
		}
	}
	return coreir.Local{}, false
}

func parseRaw(data json.RawMessage) (rawExpr, error) {
	var r rawExpr
	if err := json.Unmarshal(data, &r); err != nil {
		return rawExpr{}, err
	}
	return r, nil
}

func (d *decoder) decode(data json.RawMessage) (coreir.Expr, error) {
	r, err := parseRaw(data)
	if err != nil {
		return nil, err
	}
	return d.decodeNode(r)
}

func (d *decoder) decodeNode(r rawExpr) (coreir.Expr, error) {
	switch r.Kind {
	case "var":
		if r.Qual == nil {
			return nil, fmt.Errorf("wire: var node missing qual")
		}
		return build(coreir.Var{Qual: r.Qual.resolve()}), nil

	case "local":
		loc, ok := d.resolveLocal(r.Name)
		if !ok {
			return nil, fmt.Errorf("wire: local %q referenced out of scope", r.Name)
		}
		return build(loc), nil

	case "lit":
		if r.Lit == nil {
			return nil, fmt.Errorf("wire: lit node missing lit")
		}
		lit, err := d.decodeLit(*r.Lit)
		if err != nil {
			return nil, err
		}
		return build(coreir.LitNode[coreir.Expr]{Lit: lit}), nil

	case "app":
		head, err := d.decode(r.Head)
		if err != nil {
			return nil, err
		}
		args, err := d.decodeList(r.Args)
		if err != nil {
			return nil, err
		}
		return build(coreir.App[coreir.Expr]{Head: head, Args: args}), nil

	case "abs":
		if len(r.Params) == 0 {
			return nil, fmt.Errorf("wire: abs node needs at least one param")
		}
		params := make([]coreir.Param, len(r.Params))
		for i, p := range r.Params {
			params[i] = d.pushSingle(p.Name)
		}
		body, err := d.decode(r.Body)
		d.popN(len(r.Params))
		if err != nil {
			return nil, err
		}
		return build(coreir.Abs[coreir.Expr]{Params: params, Body: body}), nil

	case "let":
		binding, err := d.decode(r.Binding)
		if err != nil {
			return nil, err
		}
		param := d.pushSingle(r.Name)
		body, err := d.decode(r.Body)
		d.popN(1)
		if err != nil {
			return nil, err
		}
		return build(coreir.Let[coreir.Expr]{Ident: param.Ident, Level: param.Level, Binding: binding, Body: body}), nil

	case "letrec":
		names := make([]string, len(r.Bindings))
		for i, b := range r.Bindings {
			names[i] = b.Name
		}
		level, idents := d.pushGroup(names)
		bindings := make([]coreir.RecBinding[coreir.Expr], len(r.Bindings))
		for i, b := range r.Bindings {
			val, err := d.decode(b.Value)
			if err != nil {
				d.popN(len(names))
				return nil, err
			}
			bindings[i] = coreir.RecBinding[coreir.Expr]{Ident: idents[i], Level: level, Value: val}
		}
		body, err := d.decode(r.Body)
		d.popN(len(names))
		if err != nil {
			return nil, err
		}
		return build(coreir.LetRec[coreir.Expr]{Level: level, Bindings: bindings, Body: body}), nil

	case "effectbind":
		binding, err := d.decode(r.Binding)
		if err != nil {
			return nil, err
		}
		param := d.pushSingle(r.Name)
		body, err := d.decode(r.Body)
		d.popN(1)
		if err != nil {
			return nil, err
		}
		return build(coreir.EffectBind[coreir.Expr]{Ident: param.Ident, Level: param.Level, Binding: binding, Body: body}), nil

	case "effectpure":
		v, err := d.decode(r.Value)
		if err != nil {
			return nil, err
		}
		return build(coreir.EffectPure[coreir.Expr]{Value: v}), nil

	case "accessor":
		if r.Acc == nil {
			return nil, fmt.Errorf("wire: accessor node missing acc")
		}
		lhs, err := d.decode(r.Lhs)
		if err != nil {
			return nil, err
		}
		acc, err := r.Acc.resolve()
		if err != nil {
			return nil, err
		}
		return build(coreir.AccessorNode[coreir.Expr]{Lhs: lhs, Acc: acc}), nil

	case "update":
		lhs, err := d.decode(r.Lhs)
		if err != nil {
			return nil, err
		}
		props := make([]coreir.UpdateProp[coreir.Expr], len(r.Props))
		for i, p := range r.Props {
			v, err := d.decode(p.Value)
			if err != nil {
				return nil, err
			}
			props[i] = coreir.UpdateProp[coreir.Expr]{Key: p.Key, Value: v}
		}
		return build(coreir.Update[coreir.Expr]{Lhs: lhs, Props: props}), nil

	case "branch":
		cases := make([]coreir.BranchCase[coreir.Expr], len(r.Cases))
		for i, c := range r.Cases {
			pred, err := d.decode(c.Pred)
			if err != nil {
				return nil, err
			}
			body, err := d.decode(c.Body)
			if err != nil {
				return nil, err
			}
			cases[i] = coreir.BranchCase[coreir.Expr]{Pred: pred, Body: body}
		}
		var def *coreir.Expr
		if len(r.Default) > 0 {
			d2, err := d.decode(r.Default)
			if err != nil {
				return nil, err
			}
			def = &d2
		}
		return build(coreir.Branch[coreir.Expr]{Cases: cases, Default: def}), nil

	case "test":
		if r.Guard == nil {
			return nil, fmt.Errorf("wire: test node missing guard")
		}
		lhs, err := d.decode(r.Lhs)
		if err != nil {
			return nil, err
		}
		guard, err := r.Guard.resolve()
		if err != nil {
			return nil, err
		}
		return build(coreir.Test[coreir.Expr]{Lhs: lhs, Guard: guard}), nil

	case "ctordef":
		fields := make([]coreir.Ident, len(r.Fields))
		for i, f := range r.Fields {
			fields[i] = coreir.NewIdent(f)
		}
		return build(coreir.CtorDef{Tag: r.Tag, Fields: fields}), nil

	case "ctorsaturated":
		if r.Qual == nil {
			return nil, fmt.Errorf("wire: ctorsaturated node missing qual")
		}
		fields, err := d.decodeList(r.FieldExprs)
		if err != nil {
			return nil, err
		}
		return build(coreir.CtorSaturated[coreir.Expr]{Qual: r.Qual.resolve(), Tag: r.Tag, Fields: fields}), nil

	case "fail":
		return build(coreir.Fail{Message: r.Message}), nil

	default:
		return nil, fmt.Errorf("wire: unknown expr kind %q", r.Kind)
	}
}

func (d *decoder) decodeList(items []json.RawMessage) ([]coreir.Expr, error) {
	out := make([]coreir.Expr, len(items))
	for i, it := range items {
		e, err := d.decode(it)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (d *decoder) decodeLit(r rawLit) (coreir.Literal[coreir.Expr], error) {
	switch r.Kind {
	case "int":
		return coreir.Literal[coreir.Expr]{Kind: coreir.LitInt, IntVal: r.Int}, nil
	case "float":
		return coreir.Literal[coreir.Expr]{Kind: coreir.LitFloat, FloatVal: r.Float}, nil
	case "string":
		return coreir.Literal[coreir.Expr]{Kind: coreir.LitString, StringVal: r.Str}, nil
	case "char":
		return coreir.Literal[coreir.Expr]{Kind: coreir.LitChar, CharVal: runeOf(r.Char)}, nil
	case "bool":
		return coreir.Literal[coreir.Expr]{Kind: coreir.LitBool, BoolVal: r.Bool}, nil
	case "array":
		items, err := d.decodeList(r.Array)
		if err != nil {
			return coreir.Literal[coreir.Expr]{}, err
		}
		return coreir.Literal[coreir.Expr]{Kind: coreir.LitArray, ArrayVal: items}, nil
	case "record":
		props := make([]coreir.RecordProp[coreir.Expr], len(r.Record))
		for i, p := range r.Record {
			v, err := d.decode(p.Value)
			if err != nil {
				return coreir.Literal[coreir.Expr]{}, err
			}
			props[i] = coreir.RecordProp[coreir.Expr]{Key: p.Key, Value: v}
		}
		return coreir.Literal[coreir.Expr]{Kind: coreir.LitRecord, RecordVal: props}, nil
	default:
		return coreir.Literal[coreir.Expr]{}, fmt.Errorf("wire: unknown literal kind %q", r.Kind)
	}
}

// build wraps a freshly decoded syntax node as an ordinary, analysed
// ExprSyntax. Input trees are naive by construction — the structural
// rewrites Build applies during optimization only make sense once
// evaluation has actually run, so decoding never calls internal/nbe's
// Build.
func build(s coreir.Syntax[coreir.Expr]) coreir.Expr {
	return coreir.NewExprSyntax(s, coreir.Analyze(s))
}
