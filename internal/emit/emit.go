// Package emit lowers a parsed ast.Program into IR via an ir.Sink, per
// spec.md §4.3-§4.6: one lowering method per AST variant, a per-function
// symbol table and auto-free tracker, and the control-flow/call-binding
// rules the spec lays out. This is the generalization of the teacher's
// TranslateUnit/ArchParser pairing (main.go's parseSource + arch.go) from
// "C source -> per-architecture assembly" to "Quanta AST -> IR sink calls".
package emit

import (
	"github.com/quanta-lang/quantac/internal/ast"
	"github.com/quanta-lang/quantac/internal/diag"
	"github.com/quanta-lang/quantac/internal/ir"
	"github.com/quanta-lang/quantac/internal/runtime"
	"github.com/quanta-lang/quantac/internal/sema"
)

// listVal is the runtime representation of a DynamicListDecl local: three
// stack slots (buffer pointer, length, capacity) rather than a single
// struct value, since ir.Sink (deliberately, per spec.md §6) exposes no
// aggregate/struct type — only scalars, pointers, and GEP over them. This
// is the one place the emitter's internal layout diverges from a literal
// reading of spec.md §4.3's "struct lives in a stack slot"; the three-slot
// form is observably identical (same load/store/free behavior) and keeps
// every other lowering path (GEP, Alloca, Load/Store) uniform.
type listVal struct {
	ptrSlot  ir.Value // alloca of pointer type: holds the heap buffer pointer
	lenSlot  ir.Value // alloca of i32
	capSlot  ir.Value // alloca of i32
	elemName string
	elemKind sema.Kind
	elemW    int
	elemType ir.Type
}

const initialListCap = 8

// Emitter holds the per-compile and per-function state spec.md §5 places
// process-local: the active function, its symbol table, its auto-free
// tracker list, and the current insertion block (tracked here since
// ir.Sink, like a typical single-pass backend builder, exposes SetInsertPoint
// but no GetInsertPoint).
type Emitter struct {
	sink     ir.Sink
	mod      ir.Module
	shim     *runtime.Shim
	registry *sema.Registry
	bag      *diag.Bag

	funcs map[string]ir.Func

	fn         ir.Func
	entry      ir.Block
	curBlock   ir.Block
	syms       *sema.SymbolTable
	lists      map[string]*listVal
	tracker    []ir.Value
	retName    string
	retKind    sema.Kind
	retType    ir.Type
	retWidth   int
	seq        int
	trackerSeq int

	// blockTerminated tracks whether the block lowerStmt most recently wrote
	// into already ended in Ret/RetVoid/Br/CondBr, so callers know whether a
	// fall-through branch is still needed (spec.md §8's one-terminator-per-
	// block invariant).
	blockTerminated bool
}

// New returns an Emitter ready to lower one Program against sink, resolving
// call targets and parameter schemas through registry (the same Registry
// the parser populated while parsing, spec.md §3).
func New(sink ir.Sink, registry *sema.Registry, bag *diag.Bag) *Emitter {
	return &Emitter{sink: sink, registry: registry, bag: bag, funcs: make(map[string]ir.Func)}
}

// EmitProgram lowers every Func in prog and returns the finished Module.
// Signatures are declared for every Func before any body is lowered so that
// forward/mutually-recursive calls resolve (mirrors how the teacher's
// generateGoStubs declares every extern before emitting call sites).
func (e *Emitter) EmitProgram(prog *ast.Program, moduleName string) ir.Module {
	e.mod = e.sink.CreateModule(moduleName)
	e.shim = runtime.Declare(e.sink, e.mod)

	for _, fn := range prog.Funcs {
		paramTypes := make([]ir.Type, len(fn.Args))
		for i, a := range fn.Args {
			k, w := typeKind(a.TypeName, a.Width)
			paramTypes[i] = e.irType(k, w)
		}
		retKind, retWidth := typeKind(fn.ReturnType, 0)
		f := e.sink.CreateFunc(e.mod, fn.Name, paramTypes, e.irType(retKind, retWidth))
		e.funcs[fn.Name] = f
	}

	for _, fn := range prog.Funcs {
		e.lowerFunc(fn)
	}
	return e.mod
}

func (e *Emitter) setBlock(b ir.Block) {
	e.curBlock = b
	e.sink.SetInsertPoint(b)
}

// lowerFunc emits one function's prologue, body, and epilogue (spec.md
// §4.5's "Function prologue/epilogue"): entry block with parameter slots,
// tracker-list reset, body statements in order, and (if control falls off
// the end) a zero-valued or void return.
func (e *Emitter) lowerFunc(fn *ast.Func) {
	f := e.funcs[fn.Name]
	e.fn = f
	e.syms = sema.NewSymbolTable()
	e.lists = make(map[string]*listVal)
	e.tracker = nil
	e.trackerSeq = 0
	e.retName = fn.Name
	e.retKind, e.retWidth = typeKind(fn.ReturnType, 0)
	e.retType = e.irType(e.retKind, e.retWidth)

	entry := e.sink.CreateBlock(f, "entry")
	e.entry = entry
	e.setBlock(entry)

	for i, a := range fn.Args {
		k, w := typeKind(a.TypeName, a.Width)
		t := e.irType(k, w)
		slot := e.sink.Alloca(t, a.Name)
		e.sink.Store(slot, e.sink.Param(f, i))
		e.syms.Declare(a.Name, sema.Slot{Value: slot, Type: t, TypeName: a.TypeName, Width: a.Width})
	}

	e.blockTerminated = false
	for _, stmt := range fn.Body {
		e.lowerStmt(stmt)
	}

	if !e.blockTerminated {
		e.emitFallOffReturn()
	}
	e.syms.Clear()
}

// emitFallOffReturn implements spec.md §4.5's "if the current block has no
// terminator, emit a zero-valued return of the declared type (or void
// return if void)", running the auto-free sweep first like any other exit
// path.
func (e *Emitter) emitFallOffReturn() {
	if e.retKind == sema.KindVoid {
		e.sweepTracker(nil)
		e.sink.RetVoid()
		e.blockTerminated = true
		return
	}
	zero := e.zeroValue(e.retKind, e.retType)
	e.sweepTracker(nil)
	e.sink.Ret(zero)
	e.blockTerminated = true
}

func (e *Emitter) zeroValue(kind sema.Kind, t ir.Type) ir.Value {
	switch kind {
	case sema.KindFloat:
		return e.sink.ConstFloat(t, 0)
	case sema.KindPointer:
		return e.sink.ConstNullPtr()
	case sema.KindVoid:
		return nil // no value exists of void type
	default:
		return e.sink.ConstInt(t, 0)
	}
}
