package emit

import (
	"fmt"

	"github.com/quanta-lang/quantac/internal/ast"
	"github.com/quanta-lang/quantac/internal/diag"
	"github.com/quanta-lang/quantac/internal/ir"
	"github.com/quanta-lang/quantac/internal/sema"
)

// elemByteWidth is the malloc/GEP stride, in bytes, for a list/array element
// kind+width pair (spec.md §4.3's dynamic-list buffer is sized in bytes,
// unlike the bit-oriented IR types Sink builds).
func elemByteWidth(kind sema.Kind, width int) int {
	switch kind {
	case sema.KindPointer:
		return 8
	case sema.KindBool:
		return 4
	case sema.KindChar:
		return 1
	default:
		if width > 0 {
			return width
		}
		return 8
	}
}

// label returns a fresh, unique basic-block label, shared by control-flow
// lowering (stmt.go) and the list-growth branch below.
func (e *Emitter) label(prefix string) string {
	e.seq++
	return fmt.Sprintf("%s%d", prefix, e.seq)
}

// lowerDynamicListDecl implements spec.md §4.3's dynamic-list layout: a
// heap buffer with initial capacity 8 (or large enough for a literal
// initializer), tracked, plus 32-bit length/capacity stack slots.
func (e *Emitter) lowerDynamicListDecl(n *ast.DynamicListDecl) {
	elemKind, elemWidth := typeKind(n.ElementType, 0)
	elemT := e.irType(elemKind, elemWidth)
	i32 := e.sink.IntType(32)
	i64 := e.sink.IntType(64)

	ptrSlot := e.sink.Alloca(e.sink.PointerType(), n.Name+".buf")
	lenSlot := e.sink.Alloca(i32, n.Name+".len")
	capSlot := e.sink.Alloca(i32, n.Name+".cap")

	cap0 := initialListCap
	if len(n.Init) > cap0 {
		cap0 = len(n.Init)
	}
	stride := elemByteWidth(elemKind, elemWidth)
	mallocFn, _ := e.shim.Func("malloc")
	buf := e.sink.Call(mallocFn, []ir.Value{e.sink.ConstInt(i64, uint64(cap0*stride))})
	tracked := e.track(buf)

	e.sink.Store(ptrSlot, tracked)
	e.sink.Store(capSlot, e.sink.ConstInt(i32, uint64(cap0)))
	e.sink.Store(lenSlot, e.sink.ConstInt(i32, 0))

	lv := &listVal{ptrSlot: ptrSlot, lenSlot: lenSlot, capSlot: capSlot,
		elemName: n.ElementType, elemKind: elemKind, elemW: elemWidth, elemType: elemT}
	e.lists[n.Name] = lv

	for _, initExpr := range n.Init {
		e.listPush(lv, e.lowerExpr(initExpr))
	}
}

// listPush implements spec.md §4.3's "push doubles capacity on full
// (reallocating and re-tracking the new pointer)": a runtime capacity check
// with real control flow, since len==cap is only known at run time.
func (e *Emitter) listPush(lv *listVal, val sema.TypedValue) {
	i32 := e.sink.IntType(32)
	i64 := e.sink.IntType(64)

	length := e.sink.Load(i32, lv.lenSlot)
	capacity := e.sink.Load(i32, lv.capSlot)
	isFull := e.sink.Cmp(ir.CmpGe, false, length, capacity)

	growBlk := e.sink.CreateBlock(e.fn, e.label("push.grow"))
	contBlk := e.sink.CreateBlock(e.fn, e.label("push.cont"))
	e.sink.CondBr(isFull, growBlk, contBlk)

	e.setBlock(growBlk)
	newCap := e.sink.Arith(ir.ArithMul, false, capacity, e.sink.ConstInt(i32, 2))
	stride := elemByteWidth(lv.elemKind, lv.elemW)
	newCap64 := e.sink.Cast(newCap, i32, i64)
	newBytes := e.sink.Arith(ir.ArithMul, false, newCap64, e.sink.ConstInt(i64, uint64(stride)))
	reallocFn, _ := e.shim.Func("realloc")
	oldPtr := e.sink.Load(e.sink.PointerType(), lv.ptrSlot)
	newPtr := e.sink.Call(reallocFn, []ir.Value{oldPtr, newBytes})
	// realloc has released oldPtr: null out any tracker slot still holding
	// it, so the exit sweep frees only the new buffer.
	for _, slot := range e.tracker {
		cur := e.sink.Load(e.sink.PointerType(), slot)
		isOld := e.sink.Cmp(ir.CmpEq, false, cur, oldPtr)
		e.sink.Store(slot, e.sink.Select(isOld, e.sink.ConstNullPtr(), cur))
	}
	trackedNew := e.track(newPtr)
	e.sink.Store(lv.ptrSlot, trackedNew)
	e.sink.Store(lv.capSlot, newCap)
	e.sink.Br(contBlk)

	e.setBlock(contBlk)
	buf := e.sink.Load(e.sink.PointerType(), lv.ptrSlot)
	idx64 := e.sink.Cast(length, i32, i64)
	elemPtr := e.sink.GEP(lv.elemType, buf, idx64)
	coerced, _ := sema.Coerce(e.sink, val, lv.elemType, lv.elemKind, lv.elemW)
	e.sink.Store(elemPtr, coerced)
	newLen := e.sink.Arith(ir.ArithAdd, false, length, e.sink.ConstInt(i32, 1))
	e.sink.Store(lv.lenSlot, newLen)
}

// listPop implements spec.md §4.3's "pop decrements length and returns the
// removed element."
func (e *Emitter) listPop(lv *listVal) sema.TypedValue {
	i32 := e.sink.IntType(32)
	i64 := e.sink.IntType(64)
	length := e.sink.Load(i32, lv.lenSlot)
	newLen := e.sink.Arith(ir.ArithSub, false, length, e.sink.ConstInt(i32, 1))
	e.sink.Store(lv.lenSlot, newLen)
	buf := e.sink.Load(e.sink.PointerType(), lv.ptrSlot)
	idx64 := e.sink.Cast(newLen, i32, i64)
	elemPtr := e.sink.GEP(lv.elemType, buf, idx64)
	v := e.sink.Load(lv.elemType, elemPtr)
	return sema.TypedValue{Value: v, Type: lv.elemType, Kind: lv.elemKind, Width: lv.elemW}
}

func (e *Emitter) lowerListIndex(lv *listVal, indexExpr ast.Expr, line int) sema.TypedValue {
	i64 := e.sink.IntType(64)
	idx := e.lowerExpr(indexExpr)
	idx64, _ := sema.Coerce(e.sink, idx, i64, sema.KindInt, 8)
	buf := e.sink.Load(e.sink.PointerType(), lv.ptrSlot)
	ptr := e.sink.GEP(lv.elemType, buf, idx64)
	v := e.sink.Load(lv.elemType, ptr)
	return sema.TypedValue{Value: v, Type: lv.elemType, Kind: lv.elemKind, Width: lv.elemW}
}

// lowerListMethod implements spec.md §4.4's "Method calls on dynamic
// lists": push/pop/len/clear; anything else is a diagnostic.
func (e *Emitter) lowerListMethod(lv *listVal, n *ast.MethodCall) sema.TypedValue {
	switch n.Method {
	case "push":
		if len(n.Args) != 1 {
			e.bag.Add(diag.Semantic, n.Line(), "push expects 1 argument")
			return e.zeroTyped(sema.KindVoid, 0)
		}
		e.listPush(lv, e.lowerExpr(n.Args[0]))
		return e.zeroTyped(sema.KindVoid, 0)
	case "pop":
		return e.listPop(lv)
	case "len":
		i32 := e.sink.IntType(32)
		v := e.sink.Load(i32, lv.lenSlot)
		return sema.TypedValue{Value: v, Type: i32, Kind: sema.KindInt, Width: 4}
	case "clear":
		i32 := e.sink.IntType(32)
		e.sink.Store(lv.lenSlot, e.sink.ConstInt(i32, 0))
		return e.zeroTyped(sema.KindVoid, 0)
	default:
		e.bag.Add(diag.Resolve, n.Line(), "unknown list method %q", n.Method)
		return e.zeroTyped(sema.KindInt, 4)
	}
}

// lowerArrayLitExpr handles a bare array literal used outside a
// T[N]/T[] declaration initializer. The closed AST set (spec.md §3)
// requires every variant to lower somehow; this materializes an anonymous
// fixed-size stack array sized and typed from its first element.
func (e *Emitter) lowerArrayLitExpr(n *ast.ArrayLit) sema.TypedValue {
	if len(n.Elems) == 0 {
		return e.zeroTyped(sema.KindPointer, 0)
	}
	first := e.lowerExpr(n.Elems[0])
	elemT := e.irType(first.Kind, first.Width)
	buf := e.sink.AllocaArray(elemT, len(n.Elems), e.label("arrlit"))
	i64 := e.sink.IntType(64)
	for i, el := range n.Elems {
		v := first.Value
		if i > 0 {
			tv := e.lowerExpr(el)
			cv, _ := sema.Coerce(e.sink, tv, elemT, first.Kind, first.Width)
			v = cv
		}
		ptr := e.sink.GEP(elemT, buf, e.sink.ConstInt(i64, uint64(i)))
		e.sink.Store(ptr, v)
	}
	return sema.TypedValue{Value: buf, Type: e.sink.PointerType(), Kind: sema.KindPointer, Width: 0}
}
