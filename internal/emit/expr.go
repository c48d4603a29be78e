package emit

import (
	"github.com/quanta-lang/quantac/internal/ast"
	"github.com/quanta-lang/quantac/internal/diag"
	"github.com/quanta-lang/quantac/internal/ir"
	"github.com/quanta-lang/quantac/internal/sema"
)

// lowerExpr dispatches on the closed ast.Expr variant set (spec.md §3),
// returning a TypedValue every caller can feed straight into Coerce or
// PromoteArith.
func (e *Emitter) lowerExpr(x ast.Expr) sema.TypedValue {
	switch n := x.(type) {
	case *ast.IntLit:
		t := e.sink.IntType(64)
		if n.Width > 0 {
			t = e.sink.IntType(n.Width * 8)
		}
		return sema.TypedValue{Value: e.sink.ConstInt(t, n.Value), Type: t, Kind: sema.KindInt, Width: maxInt(n.Width, 8)}
	case *ast.FloatLit:
		t := e.sink.FloatType(64)
		return sema.TypedValue{Value: e.sink.ConstFloat(t, n.Value), Type: t, Kind: sema.KindFloat, Width: 8}
	case *ast.BoolLit:
		t := e.sink.IntType(32)
		v := uint64(0)
		if n.Value {
			v = 1
		}
		return sema.TypedValue{Value: e.sink.ConstInt(t, v), Type: t, Kind: sema.KindBool, Width: 4}
	case *ast.CharLit:
		t := e.sink.IntType(8)
		return sema.TypedValue{Value: e.sink.ConstInt(t, uint64(n.Value)), Type: t, Kind: sema.KindChar, Width: 1}
	case *ast.StrLit:
		t := e.sink.PointerType()
		return sema.TypedValue{Value: e.sink.ConstString(n.Value), Type: t, Kind: sema.KindPointer, Width: 0}
	case *ast.Ident:
		return e.lowerIdent(n)
	case *ast.Assign:
		return e.lowerAssign(n)
	case *ast.Binary:
		return e.lowerBinary(n)
	case *ast.UpdateInPlace:
		return e.lowerUpdateInPlace(n)
	case *ast.IndexRead:
		return e.lowerIndexRead(n)
	case *ast.Slice:
		return e.lowerSlice(n)
	case *ast.Call:
		return e.lowerCall(n)
	case *ast.MethodCall:
		return e.lowerMethodCall(n)
	case *ast.TypeOf:
		return e.lowerTypeOf(n)
	case *ast.ByteSize:
		return e.lowerByteSize(n)
	case *ast.ArrayLit:
		return e.lowerArrayLitExpr(n)
	default:
		e.bag.Add(diag.Codegen, x.Line(), "unsupported expression node %T", x)
		return e.zeroTyped(sema.KindInt, 8)
	}
}

func (e *Emitter) zeroTyped(kind sema.Kind, width int) sema.TypedValue {
	t := e.irType(kind, width)
	return sema.TypedValue{Value: e.zeroValue(kind, t), Type: t, Kind: kind, Width: width}
}

func (e *Emitter) lowerIdent(n *ast.Ident) sema.TypedValue {
	if lv, ok := e.lists[n.Name]; ok {
		ptr := e.sink.Load(e.sink.PointerType(), lv.ptrSlot)
		return sema.TypedValue{Value: ptr, Type: e.sink.PointerType(), Kind: sema.KindPointer, Width: 0}
	}
	slot, ok := e.syms.Lookup(n.Name)
	if !ok {
		// An unknown variable is recorded as a Resolve diagnostic and
		// lowered as a zero i64 so emission goes on; the recorded error
		// keeps Compile from serializing the module.
		e.bag.Add(diag.Resolve, n.Line(), "unknown variable %q", n.Name)
		return e.zeroTyped(sema.KindInt, 8)
	}
	kind, width := slotKind(slot)
	v := e.sink.Load(slot.Type, slot.Value)
	return sema.TypedValue{Value: v, Type: slot.Type, Kind: kind, Width: width}
}

// slotKind recovers the (Kind, width) a Slot was declared with. A non-empty
// ElementType marks a FixedArrayDecl slot (spec.md §4.4: arrays always
// index as pointers with no negative-index support, unlike strings).
func slotKind(slot sema.Slot) (sema.Kind, int) {
	if slot.ElementType != "" {
		return sema.KindPointer, 0
	}
	return typeKind(slot.TypeName, slot.Width)
}

func (e *Emitter) lowerAssign(n *ast.Assign) sema.TypedValue {
	rhs := e.lowerExpr(n.Rhs)
	slot, ok := e.syms.Lookup(n.Name)
	if !ok {
		// spec.md §4.3: infer the new slot's type from the rhs IR value.
		width := inferredWidthFor(rhs.Kind)
		t := e.irType(rhs.Kind, width)
		addr := e.sink.Alloca(t, n.Name)
		typeName := "string"
		if rhs.Kind != sema.KindPointer {
			typeName, _ = kindTypeName(rhs.Kind, width)
		}
		slot = sema.Slot{Value: addr, Type: t, TypeName: typeName, Width: width}
		e.syms.Declare(n.Name, slot)
		e.sink.Store(addr, rhs.Value)
		return rhs
	}
	kind, width := slotKind(slot)
	coerced, err := sema.Coerce(e.sink, rhs, slot.Type, kind, width)
	if err != nil {
		e.bag.Add(diag.Type, n.Line(), "%v", err)
		return rhs
	}
	e.sink.Store(slot.Value, coerced)
	return sema.TypedValue{Value: coerced, Type: slot.Type, Kind: kind, Width: width}
}

// kindTypeName is the inverse of typeKind for the handful of kinds an
// inferred assignment can produce (spec.md §4.3's inference list), used so
// a later re-assignment's slotKind lookup round-trips correctly.
func kindTypeName(kind sema.Kind, width int) (string, int) {
	switch kind {
	case sema.KindBool:
		return "bool", 4
	case sema.KindChar:
		return "char", 1
	case sema.KindFloat:
		return "float", width
	default:
		return "int", width
	}
}

func (e *Emitter) lowerBinary(n *ast.Binary) sema.TypedValue {
	lhs := e.lowerExpr(n.Lhs)
	rhs := e.lowerExpr(n.Rhs)

	if n.Op == ast.OpAdd && lhs.Kind == sema.KindPointer && rhs.Kind == sema.KindPointer {
		return e.lowerStringConcat(lhs, rhs)
	}
	if isComparable(n.Op) && lhs.Kind == sema.KindPointer && rhs.Kind == sema.KindPointer {
		return e.lowerStringCompare(n.Op, lhs, rhs, n.Line())
	}

	if n.Op == ast.OpMod && (lhs.Kind == sema.KindFloat) != (rhs.Kind == sema.KindFloat) {
		e.bag.Add(diag.Type, n.Line(), "modulo on mixed numeric kinds is not allowed")
		return e.zeroTyped(sema.KindInt, 8)
	}

	if isZeroDivisor(n.Op, n.Rhs) {
		e.bag.Add(diag.Semantic, n.Line(), "division by a known-zero constant")
	}

	kind, width := sema.PromoteArith(lhs.Kind, lhs.Width, rhs.Kind, rhs.Width)
	t := e.irType(kind, width)
	lv, err1 := sema.Coerce(e.sink, lhs, t, kind, width)
	rv, err2 := sema.Coerce(e.sink, rhs, t, kind, width)
	if err1 != nil || err2 != nil {
		e.bag.Add(diag.Type, n.Line(), "incompatible operand types")
		return e.zeroTyped(kind, width)
	}

	isFloat := kind == sema.KindFloat
	if op, ok := arithOp(n.Op); ok {
		v := e.sink.Arith(op, isFloat, lv, rv)
		return sema.TypedValue{Value: v, Type: t, Kind: kind, Width: width}
	}

	pred := cmpPred(n.Op)
	cmp := e.sink.Cmp(pred, isFloat, lv, rv)
	widened := e.sink.ZExt(cmp, e.sink.BoolType(), e.sink.IntType(32))
	return sema.TypedValue{Value: widened, Type: e.sink.IntType(32), Kind: sema.KindBool, Width: 4}
}

func isComparable(op ast.BinaryOp) bool {
	switch op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe:
		return true
	default:
		return false
	}
}

func arithOp(op ast.BinaryOp) (ir.ArithOp, bool) {
	switch op {
	case ast.OpAdd:
		return ir.ArithAdd, true
	case ast.OpSub:
		return ir.ArithSub, true
	case ast.OpMul:
		return ir.ArithMul, true
	case ast.OpDiv:
		return ir.ArithDiv, true
	case ast.OpMod:
		return ir.ArithRem, true
	default:
		return 0, false
	}
}

func cmpPred(op ast.BinaryOp) ir.CmpPred {
	switch op {
	case ast.OpEq:
		return ir.CmpEq
	case ast.OpNe:
		return ir.CmpNe
	case ast.OpLt:
		return ir.CmpLt
	case ast.OpGt:
		return ir.CmpGt
	case ast.OpLe:
		return ir.CmpLe
	default:
		return ir.CmpGe
	}
}

// isZeroDivisor reports whether op is a division/modulo whose rhs is a
// literal constant known to be zero (spec.md §4.4's diagnostic for
// known-zero-divisor constants; non-constant divisors are a runtime
// concern outside this spec's scope).
func isZeroDivisor(op ast.BinaryOp, rhs ast.Expr) bool {
	if op != ast.OpDiv && op != ast.OpMod {
		return false
	}
	switch r := rhs.(type) {
	case *ast.IntLit:
		return r.Value == 0
	case *ast.FloatLit:
		return r.Value == 0
	default:
		return false
	}
}

func (e *Emitter) lowerUpdateInPlace(n *ast.UpdateInPlace) sema.TypedValue {
	slot, ok := e.syms.Lookup(n.Name)
	if !ok {
		e.bag.Add(diag.Resolve, n.Line(), "unknown variable %q", n.Name)
		return e.zeroTyped(sema.KindInt, 8)
	}
	kind, width := slotKind(slot)
	old := e.sink.Load(slot.Type, slot.Value)
	one := e.sink.ConstInt(slot.Type, 1)
	if kind == sema.KindFloat {
		one = e.sink.ConstFloat(slot.Type, 1)
	}
	op := ir.ArithAdd
	if !n.Increment {
		op = ir.ArithSub
	}
	updated := e.sink.Arith(op, kind == sema.KindFloat, old, one)
	e.sink.Store(slot.Value, updated)
	result := old
	if n.Prefix {
		result = updated
	}
	return sema.TypedValue{Value: result, Type: slot.Type, Kind: kind, Width: width}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
