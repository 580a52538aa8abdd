package wire

import (
	"fmt"

	"github.com/corefn-dev/nbeopt/internal/coreir"
)

// encoder assigns each de Bruijn level a stable synthetic name the
// first time it's quoted past, so the JSON it emits round-trips
// through decode without the reader needing to understand levels.
type encoder struct {
	names map[coreir.Level]string
	next  int
}

func newEncoder() *encoder {
	return &encoder{names: map[coreir.Level]string{}}
}

func (e *encoder) nameFor(level coreir.Level, ident *coreir.Ident) string {
	if n, ok := e.names[level]; ok {
		return n
	}
	n := fmt.Sprintf("_l%d", e.next)
	if ident != nil && *ident != "" {
		n = string(*ident)
	}
	e.next++
	e.names[level] = n
	return n
}

// EncodeNeutral renders a frozen NeutralExpr as the same JSON shape
// DecodeModule's expr field accepts.
func EncodeNeutral(expr *coreir.NeutralExpr) map[string]any {
	return newEncoder().node(expr)
}

func (e *encoder) node(expr *coreir.NeutralExpr) map[string]any {
	switch n := expr.Syntax.(type) {
	case coreir.Var:
		return map[string]any{"kind": "var", "qual": e.qual(n.Qual)}

	case coreir.Local:
		return map[string]any{"kind": "local", "name": e.nameFor(n.Level, n.Ident)}

	case coreir.LitNode[*coreir.NeutralExpr]:
		return map[string]any{"kind": "lit", "lit": e.lit(n.Lit)}

	case coreir.App[*coreir.NeutralExpr]:
		return map[string]any{"kind": "app", "head": e.node(n.Head), "args": e.nodes(n.Args)}

	case coreir.Abs[*coreir.NeutralExpr]:
		params := make([]map[string]any, len(n.Params))
		for i, p := range n.Params {
			params[i] = map[string]any{"name": e.nameFor(p.Level, p.Ident)}
		}
		return map[string]any{"kind": "abs", "params": params, "body": e.node(n.Body)}

	case coreir.Let[*coreir.NeutralExpr]:
		return map[string]any{
			"kind": "let", "name": e.nameFor(n.Level, n.Ident),
			"binding": e.node(n.Binding), "body": e.node(n.Body),
		}

	case coreir.LetRec[*coreir.NeutralExpr]:
		bindings := make([]map[string]any, len(n.Bindings))
		for i, b := range n.Bindings {
			ident := b.Ident
			bindings[i] = map[string]any{"name": e.nameFor(n.Level, &ident), "value": e.node(b.Value)}
		}
		return map[string]any{"kind": "letrec", "bindings": bindings, "body": e.node(n.Body)}

	case coreir.EffectBind[*coreir.NeutralExpr]:
		return map[string]any{
			"kind": "effectbind", "name": e.nameFor(n.Level, n.Ident),
			"binding": e.node(n.Binding), "body": e.node(n.Body),
		}

	case coreir.EffectPure[*coreir.NeutralExpr]:
		return map[string]any{"kind": "effectpure", "value": e.node(n.Value)}

	case coreir.AccessorNode[*coreir.NeutralExpr]:
		return map[string]any{"kind": "accessor", "lhs": e.node(n.Lhs), "acc": e.accessor(n.Acc)}

	case coreir.Update[*coreir.NeutralExpr]:
		props := make([]map[string]any, len(n.Props))
		for i, p := range n.Props {
			props[i] = map[string]any{"key": p.Key, "value": e.node(p.Value)}
		}
		return map[string]any{"kind": "update", "lhs": e.node(n.Lhs), "props": props}

	case coreir.Branch[*coreir.NeutralExpr]:
		cases := make([]map[string]any, len(n.Cases))
		for i, c := range n.Cases {
			cases[i] = map[string]any{"pred": e.node(c.Pred), "body": e.node(c.Body)}
		}
		out := map[string]any{"kind": "branch", "cases": cases}
		if n.Default != nil {
			out["default"] = e.node(*n.Default)
		}
		return out

	case coreir.Test[*coreir.NeutralExpr]:
		return map[string]any{"kind": "test", "lhs": e.node(n.Lhs), "guard": e.guard(n.Guard)}

	case coreir.CtorDef:
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = string(f)
		}
		return map[string]any{"kind": "ctordef", "tag": n.Tag, "fields": fields}

	case coreir.CtorSaturated[*coreir.NeutralExpr]:
		return map[string]any{"kind": "ctorsaturated", "qual": e.qual(n.Qual), "tag": n.Tag, "field_exprs": e.nodes(n.Fields)}

	case coreir.Fail:
		return map[string]any{"kind": "fail", "message": n.Message}

	default:
		panic(fmt.Sprintf("wire: EncodeNeutral: unhandled syntax shape %T", n))
	}
}

func (e *encoder) nodes(items []*coreir.NeutralExpr) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, it := range items {
		out[i] = e.node(it)
	}
	return out
}

func (e *encoder) qual(q coreir.Qualified) map[string]any {
	return map[string]any{"module": string(q.Module), "name": string(q.Name)}
}

func (e *encoder) accessor(a coreir.Accessor) map[string]any {
	switch a.Kind {
	case coreir.AccProp:
		return map[string]any{"kind": "prop", "prop": a.Prop}
	case coreir.AccIndex:
		return map[string]any{"kind": "index", "index": a.Index}
	default:
		return map[string]any{"kind": "offset", "index": a.Index}
	}
}

func (e *encoder) guard(g coreir.Guard) map[string]any {
	switch g.Kind {
	case coreir.GuardInt:
		return map[string]any{"kind": "int", "int": g.IntVal}
	case coreir.GuardFloat:
		return map[string]any{"kind": "float", "float": g.FloatVal}
	case coreir.GuardString:
		return map[string]any{"kind": "string", "str": g.StringVal}
	case coreir.GuardChar:
		return map[string]any{"kind": "char", "char": string(g.CharVal)}
	case coreir.GuardBool:
		return map[string]any{"kind": "bool", "bool": g.BoolVal}
	case coreir.GuardTag:
		return map[string]any{"kind": "tag", "tag": g.Tag}
	default:
		return map[string]any{"kind": "arraylen", "len": g.Len}
	}
}

func (e *encoder) lit(l coreir.Literal[*coreir.NeutralExpr]) map[string]any {
	switch l.Kind {
	case coreir.LitInt:
		return map[string]any{"kind": "int", "int": l.IntVal}
	case coreir.LitFloat:
		return map[string]any{"kind": "float", "float": l.FloatVal}
	case coreir.LitString:
		return map[string]any{"kind": "string", "str": l.StringVal}
	case coreir.LitChar:
		return map[string]any{"kind": "char", "char": string(l.CharVal)}
	case coreir.LitBool:
		return map[string]any{"kind": "bool", "bool": l.BoolVal}
	case coreir.LitArray:
		return map[string]any{"kind": "array", "array": e.nodes(l.ArrayVal)}
	default:
		props := make([]map[string]any, len(l.RecordVal))
		for i, p := range l.RecordVal {
			props[i] = map[string]any{"key": p.Key, "value": e.node(p.Value)}
		}
		return map[string]any{"kind": "record", "record": props}
	}
}
