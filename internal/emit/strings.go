package emit

import (
	"github.com/quanta-lang/quantac/internal/ast"
	"github.com/quanta-lang/quantac/internal/diag"
	"github.com/quanta-lang/quantac/internal/ir"
	"github.com/quanta-lang/quantac/internal/sema"
)

// lowerStringConcat implements spec.md §4.4's "String +": a buffer of
// length len(L)+len(R)+1, L copied in, R appended, tracked.
func (e *Emitter) lowerStringConcat(lhs, rhs sema.TypedValue) sema.TypedValue {
	i64 := e.sink.IntType(64)
	strlenFn, _ := e.shim.Func("strlen")
	mallocFn, _ := e.shim.Func("malloc")
	strcpyFn, _ := e.shim.Func("strcpy")
	strcatFn, _ := e.shim.Func("strcat")

	lenL := e.sink.Call(strlenFn, []ir.Value{lhs.Value})
	lenR := e.sink.Call(strlenFn, []ir.Value{rhs.Value})
	total := e.sink.Arith(ir.ArithAdd, false, lenL, lenR)
	total = e.sink.Arith(ir.ArithAdd, false, total, e.sink.ConstInt(i64, 1))

	buf := e.sink.Call(mallocFn, []ir.Value{total})
	e.sink.Call(strcpyFn, []ir.Value{buf, lhs.Value})
	e.sink.Call(strcatFn, []ir.Value{buf, rhs.Value})
	tracked := e.track(buf)
	return sema.TypedValue{Value: tracked, Type: e.sink.PointerType(), Kind: sema.KindPointer, Width: 0}
}

// lowerStringCompare implements spec.md §4.4's "String comparisons call a
// C-style strcmp helper and compare to zero per operator."
func (e *Emitter) lowerStringCompare(op ast.BinaryOp, lhs, rhs sema.TypedValue, line int) sema.TypedValue {
	strcmpFn, _ := e.shim.Func("strcmp")
	res := e.sink.Call(strcmpFn, []ir.Value{lhs.Value, rhs.Value})
	i32 := e.sink.IntType(32)
	zero := e.sink.ConstInt(i32, 0)
	cmp := e.sink.Cmp(cmpPred(op), false, res, zero)
	widened := e.sink.ZExt(cmp, e.sink.BoolType(), i32)
	return sema.TypedValue{Value: widened, Type: i32, Kind: sema.KindBool, Width: 4}
}

// lowerIndexRead dispatches IndexRead's base to the dynamic-list, fixed-
// array, or string indexing rule (spec.md §4.4's three index shapes).
func (e *Emitter) lowerIndexRead(n *ast.IndexRead) sema.TypedValue {
	if id, ok := n.Base.(*ast.Ident); ok {
		if lv, ok2 := e.lists[id.Name]; ok2 {
			return e.lowerListIndex(lv, n.Index, n.Line())
		}
		if slot, ok2 := e.syms.Lookup(id.Name); ok2 && slot.ElementType != "" {
			return e.lowerArrayIndex(slot, n.Index, n.Line())
		}
	}
	base := e.lowerExpr(n.Base)
	if base.Kind != sema.KindPointer {
		e.bag.Add(diag.Type, n.Line(), "indexing requires a string, array, or list")
		return e.zeroTyped(sema.KindChar, 1)
	}
	return e.lowerStringIndex(base, n.Index)
}

// lowerStringIndex implements spec.md §4.4: "index is sign-extended to
// 64-bit; if negative, len+index is used; the byte at that offset is
// loaded as an 8-bit character."
func (e *Emitter) lowerStringIndex(base sema.TypedValue, indexExpr ast.Expr) sema.TypedValue {
	i64 := e.sink.IntType(64)
	idx := e.lowerExpr(indexExpr)
	idx64, _ := sema.Coerce(e.sink, idx, i64, sema.KindInt, 8)

	strlenFn, _ := e.shim.Func("strlen")
	length := e.sink.Call(strlenFn, []ir.Value{base.Value})
	zero := e.sink.ConstInt(i64, 0)
	isNeg := e.sink.Cmp(ir.CmpLt, false, idx64, zero)
	adjusted := e.sink.Arith(ir.ArithAdd, false, length, idx64)
	final := e.sink.Select(isNeg, adjusted, idx64)

	i8 := e.sink.IntType(8)
	ptr := e.sink.GEP(i8, base.Value, final)
	v := e.sink.Load(i8, ptr)
	return sema.TypedValue{Value: v, Type: i8, Kind: sema.KindChar, Width: 1}
}

// lowerArrayIndex implements spec.md §4.4's fixed-array rule: "the offset
// GEP uses element-type stride; no negative index support."
func (e *Emitter) lowerArrayIndex(slot sema.Slot, indexExpr ast.Expr, line int) sema.TypedValue {
	elemKind, elemWidth := typeKind(slot.ElementType, 0)
	elemT := e.irType(elemKind, elemWidth)
	i64 := e.sink.IntType(64)
	idx := e.lowerExpr(indexExpr)
	idx64, _ := sema.Coerce(e.sink, idx, i64, sema.KindInt, 8)

	base := e.sink.Load(e.sink.PointerType(), slot.Value)
	ptr := e.sink.GEP(elemT, base, idx64)
	v := e.sink.Load(elemT, ptr)
	return sema.TypedValue{Value: v, Type: elemT, Kind: elemKind, Width: elemWidth}
}

// lowerSlice delegates to the runtime slice(base, start, end, step) helper,
// spec.md §4.4's half-open/negative-index/step semantics living entirely on
// the runtime side; the emitter just supplies i32 defaults and tracks the
// always-fresh returned buffer.
func (e *Emitter) lowerSlice(n *ast.Slice) sema.TypedValue {
	base := e.lowerExpr(n.Base)
	if base.Kind != sema.KindPointer {
		e.bag.Add(diag.Type, n.Line(), "slicing requires a string")
		return e.zeroTyped(sema.KindPointer, 0)
	}
	i32 := e.sink.IntType(32)

	startV := e.sink.ConstInt(i32, 0)
	if n.Start != nil {
		sv := e.lowerExpr(n.Start)
		startV, _ = sema.Coerce(e.sink, sv, i32, sema.KindInt, 4)
	}

	var endV ir.Value
	if n.End != nil {
		ev := e.lowerExpr(n.End)
		endV, _ = sema.Coerce(e.sink, ev, i32, sema.KindInt, 4)
	} else {
		strlenFn, _ := e.shim.Func("strlen")
		length := e.sink.Call(strlenFn, []ir.Value{base.Value})
		endV = e.sink.Cast(length, e.sink.IntType(64), i32)
	}

	stepV := e.sink.ConstInt(i32, 1)
	if n.Step != nil {
		if lit, ok := n.Step.(*ast.IntLit); ok && lit.Value == 0 {
			// DESIGN.md open-question #4: a constant-zero step is a
			// compile-time diagnostic rather than the runtime's silent
			// correction to 1.
			e.bag.Add(diag.Semantic, n.Line(), "slice step is a known-zero constant")
		}
		stv := e.lowerExpr(n.Step)
		stepV, _ = sema.Coerce(e.sink, stv, i32, sema.KindInt, 4)
	}

	sliceFn, _ := e.shim.Func("slice")
	res := e.sink.Call(sliceFn, []ir.Value{base.Value, startV, endV, stepV})
	tracked := e.track(res)
	return sema.TypedValue{Value: tracked, Type: e.sink.PointerType(), Kind: sema.KindPointer, Width: 0}
}

// stringAllocating is the set of single-argument string methods that
// allocate a fresh buffer and must be tracked (spec.md §4.4).
var stringAllocating = map[string]bool{
	"upper": true, "lower": true, "reverse": true, "strip": true,
	"lstrip": true, "rstrip": true, "capitalize": true, "title": true,
}

// stringPredicate is the set of non-allocating single-argument string
// methods returning an i32 boolean.
var stringPredicate = map[string]bool{
	"isupper": true, "islower": true, "isalpha": true, "isdigit": true,
	"isspace": true, "isalnum": true,
}

// stringSearch is the set of non-allocating two-argument string methods
// returning an i32 (index or boolean).
var stringSearch = map[string]bool{
	"find": true, "count": true, "startswith": true, "endswith": true,
}

// lowerMethodCall routes a dynamic-list receiver to list method lowering
// and everything else to the string method dispatch table (spec.md §4.4).
func (e *Emitter) lowerMethodCall(n *ast.MethodCall) sema.TypedValue {
	if id, ok := n.Receiver.(*ast.Ident); ok {
		if lv, ok2 := e.lists[id.Name]; ok2 {
			return e.lowerListMethod(lv, n)
		}
	}
	recv := e.lowerExpr(n.Receiver)
	return e.lowerStringMethod(recv, n)
}

func (e *Emitter) lowerStringMethod(recv sema.TypedValue, n *ast.MethodCall) sema.TypedValue {
	i32 := e.sink.IntType(32)
	switch {
	case n.Method == "len":
		strlenFn, _ := e.shim.Func("strlen")
		l := e.sink.Call(strlenFn, []ir.Value{recv.Value})
		v := e.sink.Cast(l, e.sink.IntType(64), i32)
		return sema.TypedValue{Value: v, Type: i32, Kind: sema.KindInt, Width: 4}
	case stringAllocating[n.Method]:
		fn, ok := e.shim.Func(n.Method)
		if !ok {
			e.bag.Add(diag.Resolve, n.Line(), "unknown method %q", n.Method)
			return e.zeroTyped(sema.KindPointer, 0)
		}
		res := e.sink.Call(fn, []ir.Value{recv.Value})
		tracked := e.track(res)
		return sema.TypedValue{Value: tracked, Type: e.sink.PointerType(), Kind: sema.KindPointer, Width: 0}
	case n.Method == "replace":
		if len(n.Args) != 2 {
			e.bag.Add(diag.Semantic, n.Line(), "replace expects 2 arguments")
			return e.zeroTyped(sema.KindPointer, 0)
		}
		fn, _ := e.shim.Func("replace")
		oldV := e.coerceToString(e.lowerExpr(n.Args[0]))
		newV := e.coerceToString(e.lowerExpr(n.Args[1]))
		res := e.sink.Call(fn, []ir.Value{recv.Value, oldV, newV})
		tracked := e.track(res)
		return sema.TypedValue{Value: tracked, Type: e.sink.PointerType(), Kind: sema.KindPointer, Width: 0}
	case stringSearch[n.Method]:
		if len(n.Args) != 1 {
			e.bag.Add(diag.Semantic, n.Line(), "%s expects 1 argument", n.Method)
			return e.zeroTyped(sema.KindInt, 4)
		}
		fn, _ := e.shim.Func(n.Method)
		arg := e.coerceToString(e.lowerExpr(n.Args[0]))
		res := e.sink.Call(fn, []ir.Value{recv.Value, arg})
		return sema.TypedValue{Value: res, Type: i32, Kind: sema.KindInt, Width: 4}
	case stringPredicate[n.Method]:
		fn, _ := e.shim.Func(n.Method)
		res := e.sink.Call(fn, []ir.Value{recv.Value})
		return sema.TypedValue{Value: res, Type: i32, Kind: sema.KindBool, Width: 4}
	default:
		e.bag.Add(diag.Resolve, n.Line(), "unknown method %q", n.Method)
		return e.zeroTyped(sema.KindInt, 4)
	}
}

func (e *Emitter) coerceToString(v sema.TypedValue) ir.Value {
	coerced, err := sema.Coerce(e.sink, v, e.sink.PointerType(), sema.KindPointer, 0)
	if err != nil {
		return v.Value
	}
	return coerced
}
