package emit

import (
	"github.com/quanta-lang/quantac/internal/ast"
	"github.com/quanta-lang/quantac/internal/diag"
	"github.com/quanta-lang/quantac/internal/ir"
	"github.com/quanta-lang/quantac/internal/sema"
)

// lowerCall implements spec.md §4.6's call-binding algorithm: a
// missing-sentinel slot per declared parameter, filled first by position
// then by keyword, defaults lowered fresh at this call site for whatever's
// still missing, every slot coerced to its declared type, then the call
// itself emitted.
func (e *Emitter) lowerCall(n *ast.Call) sema.TypedValue {
	schema, ok := e.registry.Lookup(n.Callee)
	if !ok {
		e.bag.Add(diag.Resolve, n.Line(), "call to undefined function %q", n.Callee)
		return e.zeroTyped(sema.KindInt, 8)
	}
	f, ok := e.funcs[n.Callee]
	if !ok {
		e.bag.Add(diag.Resolve, n.Line(), "call to undefined function %q", n.Callee)
		return e.zeroTyped(sema.KindInt, 8)
	}

	slots := make([]ast.Expr, len(schema.Params))
	filled := make([]bool, len(schema.Params))

	pos := 0
	sawKeyword := false
	for _, arg := range n.Args {
		if arg.Name == "" {
			if sawKeyword {
				e.bag.Add(diag.Semantic, n.Line(), "positional argument after keyword argument in call to %q", n.Callee)
				continue
			}
			if pos >= len(schema.Params) {
				e.bag.Add(diag.Semantic, n.Line(), "too many arguments in call to %q", n.Callee)
				pos++
				continue
			}
			slots[pos] = arg.Value
			filled[pos] = true
			pos++
			continue
		}
		sawKeyword = true
		idx := sema.ParamIndex(schema, arg.Name)
		if idx < 0 {
			e.bag.Add(diag.Semantic, n.Line(), "unknown parameter %q in call to %q", arg.Name, n.Callee)
			continue
		}
		if filled[idx] {
			e.bag.Add(diag.Semantic, n.Line(), "duplicate argument %q in call to %q", arg.Name, n.Callee)
			continue
		}
		slots[idx] = arg.Value
		filled[idx] = true
	}

	argVals := make([]ir.Value, len(schema.Params))
	for i, p := range schema.Params {
		var expr ast.Expr
		if filled[i] {
			expr = slots[i]
		} else if p.Default != nil {
			expr = p.Default
		} else {
			e.bag.Add(diag.Semantic, n.Line(), "missing required argument %q in call to %q", p.Name, n.Callee)
			kind, width := typeKind(p.TypeName, p.Width)
			argVals[i] = e.zeroValue(kind, e.irType(kind, width))
			continue
		}
		av := e.lowerExpr(expr)
		kind, width := typeKind(p.TypeName, p.Width)
		t := e.irType(kind, width)
		coerced, err := sema.Coerce(e.sink, av, t, kind, width)
		if err != nil {
			e.bag.Add(diag.Type, n.Line(), "%v", err)
			coerced = e.zeroValue(kind, t)
		}
		argVals[i] = coerced
	}

	retKind, retWidth := typeKind(schema.ReturnType, 0)
	result := e.sink.Call(f, argVals)
	return sema.TypedValue{Value: result, Type: e.irType(retKind, retWidth), Kind: retKind, Width: retWidth}
}
