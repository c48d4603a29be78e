package emit

import (
	"strings"

	"github.com/quanta-lang/quantac/internal/ast"
	"github.com/quanta-lang/quantac/internal/diag"
	"github.com/quanta-lang/quantac/internal/ir"
	"github.com/quanta-lang/quantac/internal/sema"
)

// lowerStmt dispatches on the closed ast.Stmt variant set (spec.md §3).
// Once a block has emitted a terminator (blockTerminated), further
// statements in the same block are unreachable and skipped outright,
// keeping the one-terminator-per-block invariant (spec.md §8).
func (e *Emitter) lowerStmt(s ast.Stmt) {
	if e.blockTerminated {
		return
	}
	switch n := s.(type) {
	case *ast.VarDecl:
		e.lowerVarDecl(n)
	case *ast.FixedStringDecl:
		e.lowerFixedStringDecl(n)
	case *ast.FixedArrayDecl:
		e.lowerFixedArrayDecl(n)
	case *ast.DynamicListDecl:
		e.lowerDynamicListDecl(n)
	case *ast.IndexWrite:
		e.lowerIndexWrite(n)
	case *ast.Block:
		for _, stmt := range n.Stmts {
			if e.blockTerminated {
				break
			}
			e.lowerStmt(stmt)
		}
	case *ast.If:
		e.lowerIf(n)
	case *ast.Loop:
		e.lowerLoop(n)
	case *ast.LoopIndexOverString:
		e.lowerLoopIndexOverString(n)
	case *ast.Return:
		e.lowerReturn(n)
	case *ast.Print:
		e.lowerPrint(n)
	case *ast.ExprStmt:
		e.lowerExpr(n.X)
	default:
		e.bag.Add(diag.Codegen, s.Line(), "unsupported statement node %T", s)
	}
}

// inferVarType implements spec.md §4.2's `var` inference rule: the AST
// variant of the initializer picks the type, not its runtime value.
func inferVarType(init ast.Expr) (string, int) {
	switch init.(type) {
	case *ast.StrLit:
		return "string", 0
	case *ast.FloatLit:
		return "float", 8
	case *ast.BoolLit:
		return "bool", 4
	case *ast.CharLit:
		return "char", 1
	default:
		return "int", 8
	}
}

func (e *Emitter) lowerVarDecl(n *ast.VarDecl) {
	typeName, width := n.TypeName, n.Width
	if typeName == "var" {
		if n.Init != nil {
			typeName, width = inferVarType(n.Init)
		} else {
			typeName, width = "int", 8
		}
	}
	kind, w := typeKind(typeName, width)
	t := e.irType(kind, w)

	// spec.md §3's shadow-or-reuse rule: a re-declaration that does not
	// narrow the storage reuses the existing slot's address rather than
	// allocating a fresh one, as long as the two declarations produced the
	// same concrete IR type (an alloca's type is fixed at creation, so a
	// kind change still forces a fresh slot even when ShouldReuseSlot says
	// the width allows it).
	var addr ir.Value
	if old, reuse := e.syms.ShouldReuseSlot(n.Name, w); reuse && old.TypeName == typeName && old.Type.TypeName() == t.TypeName() {
		addr = old.Value
	} else {
		addr = e.sink.Alloca(t, n.Name)
	}
	e.syms.Declare(n.Name, sema.Slot{Value: addr, Type: t, TypeName: typeName, Width: w})

	if n.Init == nil {
		e.sink.Store(addr, e.zeroValue(kind, t))
		return
	}
	iv := e.lowerExpr(n.Init)
	coerced, err := sema.Coerce(e.sink, iv, t, kind, w)
	if err != nil {
		e.bag.Add(diag.Type, n.Line(), "%v", err)
		coerced = e.zeroValue(kind, t)
	}
	e.sink.Store(addr, coerced)
}

// lowerFixedStringDecl implements spec.md §4.3's fixed-capacity string
// buffer: a stack array of N bytes, raw-copied into (the runtime bank has
// no bounded strncpy, so this uses strcpy then forces the terminator byte,
// even though an overlong initializer could still overrun it), terminator
// forced at byte N-1.
func (e *Emitter) lowerFixedStringDecl(n *ast.FixedStringDecl) {
	i8 := e.sink.IntType(8)
	buf := e.sink.AllocaArray(i8, n.Capacity, n.Name+".buf")
	addr := e.sink.Alloca(e.sink.PointerType(), n.Name)
	e.sink.Store(addr, buf)
	e.syms.Declare(n.Name, sema.Slot{Value: addr, Type: e.sink.PointerType(), TypeName: "string"})

	if n.Init != nil {
		iv := e.lowerExpr(n.Init)
		src, _ := sema.Coerce(e.sink, iv, e.sink.PointerType(), sema.KindPointer, 0)
		strcpyFn, _ := e.shim.Func("strcpy")
		e.sink.Call(strcpyFn, []ir.Value{buf, src})
	}
	i64 := e.sink.IntType(64)
	term := e.sink.GEP(i8, buf, e.sink.ConstInt(i64, uint64(n.Capacity-1)))
	e.sink.Store(term, e.sink.ConstInt(i8, 0))
}

func (e *Emitter) lowerFixedArrayDecl(n *ast.FixedArrayDecl) {
	elemKind, elemWidth := typeKind(n.ElementType, 0)
	elemT := e.irType(elemKind, elemWidth)
	buf := e.sink.AllocaArray(elemT, n.Size, n.Name+".buf")
	addr := e.sink.Alloca(e.sink.PointerType(), n.Name)
	e.sink.Store(addr, buf)
	e.syms.Declare(n.Name, sema.Slot{
		Value: addr, Type: e.sink.PointerType(), TypeName: n.ElementType,
		ElementType: n.ElementType, Width: elemWidth,
	})

	i64 := e.sink.IntType(64)
	for i, initExpr := range n.Init {
		if i >= n.Size {
			e.bag.Add(diag.Semantic, n.Line(), "array initializer has more elements than declared size")
			break
		}
		iv := e.lowerExpr(initExpr)
		coerced, err := sema.Coerce(e.sink, iv, elemT, elemKind, elemWidth)
		if err != nil {
			e.bag.Add(diag.Type, n.Line(), "%v", err)
			continue
		}
		ptr := e.sink.GEP(elemT, buf, e.sink.ConstInt(i64, uint64(i)))
		e.sink.Store(ptr, coerced)
	}
}

// lowerIndexWrite implements spec.md §4.4's index-assignment counterpart to
// IndexRead: the same three base shapes (list / fixed array / string).
func (e *Emitter) lowerIndexWrite(n *ast.IndexWrite) {
	if id, ok := n.Base.(*ast.Ident); ok {
		if lv, ok2 := e.lists[id.Name]; ok2 {
			i64 := e.sink.IntType(64)
			idx := e.lowerExpr(n.Index)
			idx64, _ := sema.Coerce(e.sink, idx, i64, sema.KindInt, 8)
			val := e.lowerExpr(n.Rhs)
			coerced, _ := sema.Coerce(e.sink, val, lv.elemType, lv.elemKind, lv.elemW)
			buf := e.sink.Load(e.sink.PointerType(), lv.ptrSlot)
			ptr := e.sink.GEP(lv.elemType, buf, idx64)
			e.sink.Store(ptr, coerced)
			return
		}
		if slot, ok2 := e.syms.Lookup(id.Name); ok2 && slot.ElementType != "" {
			elemKind, elemWidth := typeKind(slot.ElementType, 0)
			elemT := e.irType(elemKind, elemWidth)
			i64 := e.sink.IntType(64)
			idx := e.lowerExpr(n.Index)
			idx64, _ := sema.Coerce(e.sink, idx, i64, sema.KindInt, 8)
			val := e.lowerExpr(n.Rhs)
			coerced, _ := sema.Coerce(e.sink, val, elemT, elemKind, elemWidth)
			base := e.sink.Load(e.sink.PointerType(), slot.Value)
			ptr := e.sink.GEP(elemT, base, idx64)
			e.sink.Store(ptr, coerced)
			return
		}
	}

	base := e.lowerExpr(n.Base)
	if base.Kind != sema.KindPointer {
		e.bag.Add(diag.Type, n.Line(), "indexed assignment requires a string, array, or list")
		return
	}
	val := e.lowerExpr(n.Rhs)
	if val.Kind != sema.KindChar {
		e.bag.Add(diag.Semantic, n.Line(), "assigning non-character to a string index")
	}
	charVal, _ := sema.Coerce(e.sink, val, e.sink.IntType(8), sema.KindChar, 1)

	i64 := e.sink.IntType(64)
	idx := e.lowerExpr(n.Index)
	idx64, _ := sema.Coerce(e.sink, idx, i64, sema.KindInt, 8)
	strlenFn, _ := e.shim.Func("strlen")
	length := e.sink.Call(strlenFn, []ir.Value{base.Value})
	zero := e.sink.ConstInt(i64, 0)
	isNeg := e.sink.Cmp(ir.CmpLt, false, idx64, zero)
	adjusted := e.sink.Arith(ir.ArithAdd, false, length, idx64)
	final := e.sink.Select(isNeg, adjusted, idx64)
	ptr := e.sink.GEP(e.sink.IntType(8), base.Value, final)
	e.sink.Store(ptr, charVal)
}

// toBoolCond implements spec.md §4.5's condition-to-branch rule:
// "compare-not-zero for ints, ordered-not-equal-zero for floats."
func (e *Emitter) toBoolCond(tv sema.TypedValue) ir.Value {
	if tv.Kind == sema.KindFloat {
		zero := e.sink.ConstFloat(tv.Type, 0)
		return e.sink.Cmp(ir.CmpNe, true, tv.Value, zero)
	}
	zero := e.sink.ConstInt(tv.Type, 0)
	return e.sink.Cmp(ir.CmpNe, false, tv.Value, zero)
}

// lowerIf implements spec.md §4.5: both arms re-converge at a merge block;
// a terminated arm (ends in return) skips its branch to merge. elif
// desugars to a nested If in the else arm (parser.go's parseElif).
func (e *Emitter) lowerIf(n *ast.If) {
	cond := e.lowerExpr(n.Cond)
	condBool := e.toBoolCond(cond)

	thenBlk := e.sink.CreateBlock(e.fn, e.label("if.then"))
	hasElse := n.Else != nil || n.ElseIf != nil
	var elseBlk ir.Block
	if hasElse {
		elseBlk = e.sink.CreateBlock(e.fn, e.label("if.else"))
	}
	mergeBlk := e.sink.CreateBlock(e.fn, e.label("if.merge"))

	if hasElse {
		e.sink.CondBr(condBool, thenBlk, elseBlk)
	} else {
		e.sink.CondBr(condBool, thenBlk, mergeBlk)
	}

	e.setBlock(thenBlk)
	e.blockTerminated = false
	e.lowerStmt(n.Then)
	thenFalls := !e.blockTerminated
	if thenFalls {
		e.sink.Br(mergeBlk)
	}

	elseFalls := !hasElse
	if hasElse {
		e.setBlock(elseBlk)
		e.blockTerminated = false
		if n.ElseIf != nil {
			e.lowerIf(n.ElseIf)
		} else {
			e.lowerStmt(n.Else)
		}
		elseFalls = !e.blockTerminated
		if elseFalls {
			e.sink.Br(mergeBlk)
		}
	}

	e.setBlock(mergeBlk)
	if thenFalls || elseFalls {
		e.blockTerminated = false
		return
	}
	// Both arms terminated: mergeBlk is unreachable. Give it a terminator
	// anyway (spec.md §8's one-terminator-per-block invariant) via the same
	// fall-off return every function uses at its own end.
	e.emitFallOffReturn()
}

// lowerLoop implements spec.md §4.5's plain `loop cond { body }`: head
// evaluates cond, body jumps back to head, exit is the after-block.
func (e *Emitter) lowerLoop(n *ast.Loop) {
	headBlk := e.sink.CreateBlock(e.fn, e.label("loop.head"))
	bodyBlk := e.sink.CreateBlock(e.fn, e.label("loop.body"))
	exitBlk := e.sink.CreateBlock(e.fn, e.label("loop.exit"))

	e.sink.Br(headBlk)
	e.setBlock(headBlk)
	e.blockTerminated = false
	cond := e.lowerExpr(n.Cond)
	e.sink.CondBr(e.toBoolCond(cond), bodyBlk, exitBlk)
	e.blockTerminated = true

	e.setBlock(bodyBlk)
	e.blockTerminated = false
	e.lowerStmt(n.Body)
	if !e.blockTerminated {
		e.sink.Br(headBlk)
	}

	e.setBlock(exitBlk)
	e.blockTerminated = false
}

// lowerLoopIndexOverString implements spec.md §4.5's `loop id in expr`
// specialization: a 32-bit induction variable over [0, len(expr)).
func (e *Emitter) lowerLoopIndexOverString(n *ast.LoopIndexOverString) {
	exprVal := e.lowerExpr(n.Expr)
	i32 := e.sink.IntType(32)
	var length ir.Value
	if exprVal.Kind == sema.KindPointer {
		strlenFn, _ := e.shim.Func("strlen")
		l := e.sink.Call(strlenFn, []ir.Value{exprVal.Value})
		length = e.sink.Cast(l, e.sink.IntType(64), i32)
	} else {
		e.bag.Add(diag.Type, n.Line(), "loop ... in requires a string")
		length = e.sink.ConstInt(i32, 0)
	}

	indSlot := e.sink.Alloca(i32, n.IndVar)
	e.sink.Store(indSlot, e.sink.ConstInt(i32, 0))
	e.syms.Declare(n.IndVar, sema.Slot{Value: indSlot, Type: i32, TypeName: "int", Width: 4})

	headBlk := e.sink.CreateBlock(e.fn, e.label("loop.head"))
	bodyBlk := e.sink.CreateBlock(e.fn, e.label("loop.body"))
	exitBlk := e.sink.CreateBlock(e.fn, e.label("loop.exit"))

	e.sink.Br(headBlk)
	e.setBlock(headBlk)
	e.blockTerminated = false
	cur := e.sink.Load(i32, indSlot)
	e.sink.CondBr(e.sink.Cmp(ir.CmpLt, false, cur, length), bodyBlk, exitBlk)
	e.blockTerminated = true

	e.setBlock(bodyBlk)
	e.blockTerminated = false
	e.lowerStmt(n.Body)
	if !e.blockTerminated {
		cur2 := e.sink.Load(i32, indSlot)
		next := e.sink.Arith(ir.ArithAdd, false, cur2, e.sink.ConstInt(i32, 1))
		e.sink.Store(indSlot, next)
		e.sink.Br(headBlk)
	}

	e.setBlock(exitBlk)
	e.blockTerminated = false
}

// lowerReturn implements spec.md §4.5: evaluate, reconcile against the
// declared return type, sweep the tracker (masking the returned pointer out
// via select-against-null), then terminate.
func (e *Emitter) lowerReturn(n *ast.Return) {
	if e.retKind == sema.KindVoid {
		e.sweepTracker(nil)
		e.sink.RetVoid()
		e.blockTerminated = true
		return
	}
	if n.Expr == nil {
		e.bag.Add(diag.Type, n.Line(), "missing return value in a non-void function")
		e.sweepTracker(nil)
		e.sink.Ret(e.zeroValue(e.retKind, e.retType))
		e.blockTerminated = true
		return
	}

	tv := e.lowerExpr(n.Expr)
	coerced, err := sema.Coerce(e.sink, tv, e.retType, e.retKind, e.retWidth)
	if err != nil {
		e.bag.Add(diag.Type, n.Line(), "%v", err)
		coerced = e.zeroValue(e.retKind, e.retType)
	}
	var exclude ir.Value
	if e.retKind == sema.KindPointer {
		exclude = coerced
	}
	e.sweepTracker(exclude)
	e.sink.Ret(coerced)
	e.blockTerminated = true
}

// lowerPrint builds one combined printf format string for the whole
// argument list (spec.md §8 scenario 1: "print(1+2*3)" -> a single line),
// dispatching each argument's format verb off its lowered Kind.
func (e *Emitter) lowerPrint(n *ast.Print) {
	printfFn, _ := e.shim.Func("printf")
	if len(n.Args) == 0 {
		e.sink.Call(printfFn, []ir.Value{e.sink.ConstString("\n")})
		return
	}

	vals := make([]sema.TypedValue, len(n.Args))
	for i, a := range n.Args {
		vals[i] = e.lowerExpr(a)
	}

	var format strings.Builder
	for i, v := range vals {
		if i > 0 {
			format.WriteString(" ")
		}
		switch v.Kind {
		case sema.KindFloat:
			format.WriteString("%f")
		case sema.KindPointer:
			format.WriteString("%s")
		case sema.KindChar:
			format.WriteString("%c")
		default:
			format.WriteString("%d")
		}
	}
	format.WriteString("\n")

	args := make([]ir.Value, 0, len(vals)+1)
	args = append(args, e.sink.ConstString(format.String()))
	for _, v := range vals {
		val := v.Value
		if v.Kind == sema.KindFloat && v.Width < 8 {
			val = e.sink.Cast(val, v.Type, e.sink.FloatType(64))
		}
		args = append(args, val)
	}
	e.sink.Call(printfFn, args)
}

func (e *Emitter) lowerTypeOf(n *ast.TypeOf) sema.TypedValue {
	name := "unknown"
	if slot, ok := e.syms.Lookup(n.Name); ok {
		name = slot.TypeName
	} else if _, ok := e.lists[n.Name]; ok {
		name = "list"
	} else {
		e.bag.Add(diag.Resolve, n.Line(), "unknown variable in type(): %q", n.Name)
	}
	return sema.TypedValue{Value: e.sink.ConstString(name), Type: e.sink.PointerType(), Kind: sema.KindPointer}
}

// lowerByteSize mirrors the original implementation's ByteSizeAST::codegen
// (original_source/QuantaLanguage/src/codegen.cpp): pointers (strings,
// fixed buffers, lists) report 8, everything else reports its declared
// width in bytes.
func (e *Emitter) lowerByteSize(n *ast.ByteSize) sema.TypedValue {
	i64 := e.sink.IntType(64)
	var bytes uint64 = 8
	if slot, ok := e.syms.Lookup(n.Name); ok {
		kind, width := slotKind(slot)
		if kind == sema.KindPointer {
			bytes = 8
		} else if width > 0 {
			bytes = uint64(width)
		}
	} else if _, ok := e.lists[n.Name]; !ok {
		e.bag.Add(diag.Resolve, n.Line(), "unknown variable in bytesize: %q", n.Name)
	}
	return sema.TypedValue{Value: e.sink.ConstInt(i64, bytes), Type: i64, Kind: sema.KindInt, Width: 8}
}
