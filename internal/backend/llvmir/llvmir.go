// Package llvmir is the one concrete backend this repository ships: an
// ir.Sink built on github.com/llir/llvm, the pack's only actively
// maintained Go-native SSA-IR construction library (SPEC_FULL.md §11.2).
//
// It plays exactly the role the teacher's *AMD64Parser/*ARM64Parser/...
// structs play for ArchParser: one struct implementing the interface,
// registered under a name in an init() function (arch.go's
// RegisterParser, here backend.Register).
package llvmir

import (
	"fmt"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"golang.org/x/sys/cpu"

	"github.com/quanta-lang/quantac/internal/backend"
	qir "github.com/quanta-lang/quantac/internal/ir"
)

func init() {
	backend.Register("llvm", &Sink{})
}

// Sink implements qir.Sink on top of llir/llvm.
type Sink struct {
	stringCount int
}

type mod struct{ m *ir.Module }
type fn struct{ f *ir.Func }
type blk struct{ b *ir.Block }
type typ struct{ t types.Type }
type val struct{ v value.Value }

func (t typ) TypeName() string  { return t.t.String() }
func (v val) ValueName() string { return v.v.Ident() }

func asType(t qir.Type) types.Type   { return t.(typ).t }
func asValue(v qir.Value) value.Value { return v.(val).v }
func asMod(m qir.Module) *ir.Module   { return m.(mod).m }
func asFunc(f qir.Func) *ir.Func      { return f.(fn).f }
func asBlock(b qir.Block) *ir.Block   { return b.(blk).b }

// current and currentModule track the active insertion point and module,
// mirroring how the teacher's TranslateUnit carries one mutable "current"
// state across a translation pass (TranslateUnit.parser, t.Offset, etc. in
// main.go). A compile is single-threaded and single-module (spec.md §5), so
// package-level state here mirrors that process-wide assumption instead of
// threading both through every call.
var current *ir.Block
var currentModule *ir.Module

func (s *Sink) CreateModule(name string) qir.Module {
	m := ir.NewModule()
	m.SourceFilename = name
	m.TargetTriple = s.DefaultTriple()
	m.DataLayout = s.DataLayout()
	currentModule = m
	return mod{m}
}

func (s *Sink) CreateFunc(m qir.Module, name string, paramTypes []qir.Type, retType qir.Type) qir.Func {
	params := make([]*ir.Param, len(paramTypes))
	for i, pt := range paramTypes {
		params[i] = ir.NewParam(fmt.Sprintf("arg%d", i), asType(pt))
	}
	f := asMod(m).NewFunc(name, asType(retType), params...)
	return fn{f}
}

func (s *Sink) CreateBlock(f qir.Func, label string) qir.Block {
	b := asFunc(f).NewBlock(label)
	return blk{b}
}

func (s *Sink) SetInsertPoint(b qir.Block) {
	current = asBlock(b)
}

func (s *Sink) IntType(bits int) qir.Type {
	return typ{types.NewInt(uint64(bits))}
}

func (s *Sink) FloatType(bits int) qir.Type {
	switch bits {
	case 32:
		return typ{types.Float}
	default:
		return typ{types.Double}
	}
}

func (s *Sink) BoolType() qir.Type    { return typ{types.I1} }
func (s *Sink) PointerType() qir.Type { return typ{types.NewPointer(types.I8)} }
func (s *Sink) VoidType() qir.Type    { return typ{types.Void} }

func (s *Sink) ConstInt(t qir.Type, v uint64) qir.Value {
	it := asType(t).(*types.IntType)
	return val{constant.NewInt(it, int64(v))}
}

func (s *Sink) ConstFloat(t qir.Type, v float64) qir.Value {
	ft := asType(t).(*types.FloatType)
	return val{constant.NewFloat(ft, v)}
}

func (s *Sink) ConstNullPtr() qir.Value {
	return val{constant.NewNull(types.NewPointer(types.I8))}
}

// ConstString defines a private global byte-array and returns a decayed
// pointer to its first byte, the textual-IR equivalent of a C string
// literal. Module-scoped, so it is backed by currentModule rather than the
// active block.
func (s *Sink) ConstString(str string) qir.Value {
	data := constant.NewCharArrayFromString(str + "\x00")
	s.stringCount++
	g := currentModule.NewGlobalDef(fmt.Sprintf(".str.%d", s.stringCount), data)
	g.Immutable = true
	g.Linkage = enum.LinkagePrivate
	zero := constant.NewInt(types.I64, 0)
	return val{constant.NewGetElementPtr(data.Typ, g, zero, zero)}
}

func (s *Sink) Alloca(t qir.Type, name string) qir.Value {
	inst := current.NewAlloca(asType(t))
	inst.LocalName = name
	return val{inst}
}

// AllocaArray allocates a [n x t] stack array and decays it to an element
// pointer via a zero/zero GEP, the same double-index decay a real C
// compiler emits for `T buf[n]` used in pointer context.
func (s *Sink) AllocaArray(t qir.Type, n int, name string) qir.Value {
	arrT := types.NewArray(uint64(n), asType(t))
	inst := current.NewAlloca(arrT)
	inst.LocalName = name
	zero := constant.NewInt(types.I64, 0)
	return val{current.NewGetElementPtr(arrT, inst, zero, zero)}
}

func (s *Sink) Load(t qir.Type, ptr qir.Value) qir.Value {
	return val{current.NewLoad(asType(t), asValue(ptr))}
}

func (s *Sink) Store(ptr qir.Value, v qir.Value) {
	current.NewStore(asValue(v), asValue(ptr))
}

func (s *Sink) GEP(elemType qir.Type, ptr qir.Value, index qir.Value) qir.Value {
	return val{current.NewGetElementPtr(asType(elemType), asValue(ptr), asValue(index))}
}

func (s *Sink) Arith(op qir.ArithOp, isFloat bool, lhs, rhs qir.Value) qir.Value {
	l, r := asValue(lhs), asValue(rhs)
	if isFloat {
		switch op {
		case qir.ArithAdd:
			return val{current.NewFAdd(l, r)}
		case qir.ArithSub:
			return val{current.NewFSub(l, r)}
		case qir.ArithMul:
			return val{current.NewFMul(l, r)}
		case qir.ArithDiv:
			return val{current.NewFDiv(l, r)}
		default:
			return val{current.NewFRem(l, r)}
		}
	}
	switch op {
	case qir.ArithAdd:
		return val{current.NewAdd(l, r)}
	case qir.ArithSub:
		return val{current.NewSub(l, r)}
	case qir.ArithMul:
		return val{current.NewMul(l, r)}
	case qir.ArithDiv:
		return val{current.NewSDiv(l, r)}
	default:
		return val{current.NewSRem(l, r)}
	}
}

func (s *Sink) Cmp(pred qir.CmpPred, isFloat bool, lhs, rhs qir.Value) qir.Value {
	l, r := asValue(lhs), asValue(rhs)
	if isFloat {
		return val{current.NewFCmp(floatPred(pred), l, r)}
	}
	return val{current.NewICmp(intPred(pred), l, r)}
}

func intPred(p qir.CmpPred) enum.IPred {
	switch p {
	case qir.CmpEq:
		return enum.IPredEQ
	case qir.CmpNe:
		return enum.IPredNE
	case qir.CmpLt:
		return enum.IPredSLT
	case qir.CmpGt:
		return enum.IPredSGT
	case qir.CmpLe:
		return enum.IPredSLE
	default:
		return enum.IPredSGE
	}
}

// floatPred uses the *ordered* family throughout: a NaN operand compares
// false for every relational operator, per spec.md §4.4 ("Float
// comparisons are ordered (NaN => false)").
func floatPred(p qir.CmpPred) enum.FPred {
	switch p {
	case qir.CmpEq:
		return enum.FPredOEQ
	case qir.CmpNe:
		return enum.FPredONE
	case qir.CmpLt:
		return enum.FPredOLT
	case qir.CmpGt:
		return enum.FPredOGT
	case qir.CmpLe:
		return enum.FPredOLE
	default:
		return enum.FPredOGE
	}
}

func (s *Sink) Cast(v qir.Value, from, to qir.Type) qir.Value {
	fromT, toT := asType(from), asType(to)
	src := asValue(v)
	switch {
	case isIntType(fromT) && isIntType(toT):
		if bitSize(toT) > bitSize(fromT) {
			return val{current.NewSExt(src, toT)}
		} else if bitSize(toT) < bitSize(fromT) {
			return val{current.NewTrunc(src, toT)}
		}
		return v
	case isIntType(fromT) && isFloatType(toT):
		return val{current.NewSIToFP(src, toT)}
	case isFloatType(fromT) && isIntType(toT):
		return val{current.NewFPToSI(src, toT)}
	case isFloatType(fromT) && isFloatType(toT):
		if fromT == types.Float && toT == types.Double {
			return val{current.NewFPExt(src, toT)}
		}
		return val{current.NewFPTrunc(src, toT)}
	default:
		return val{current.NewBitCast(src, toT)}
	}
}

func isIntType(t types.Type) bool   { _, ok := t.(*types.IntType); return ok }
func isFloatType(t types.Type) bool { _, ok := t.(*types.FloatType); return ok }
func bitSize(t types.Type) uint64 {
	if it, ok := t.(*types.IntType); ok {
		return it.BitSize
	}
	return 0
}

func (s *Sink) ZExt(v qir.Value, from, to qir.Type) qir.Value {
	return val{current.NewZExt(asValue(v), asType(to))}
}

func (s *Sink) Select(cond, a, b qir.Value) qir.Value {
	return val{current.NewSelect(asValue(cond), asValue(a), asValue(b))}
}

func (s *Sink) DeclareExternFunc(m qir.Module, name string, paramTypes []qir.Type, retType qir.Type, variadic bool) qir.Func {
	params := make([]*ir.Param, len(paramTypes))
	for i, pt := range paramTypes {
		params[i] = ir.NewParam("", asType(pt))
	}
	f := asMod(m).NewFunc(name, asType(retType), params...)
	f.Sig.Variadic = variadic
	return fn{f}
}

func (s *Sink) Call(f qir.Func, args []qir.Value) qir.Value {
	vals := make([]value.Value, len(args))
	for i, a := range args {
		vals[i] = asValue(a)
	}
	return val{current.NewCall(asFunc(f), vals...)}
}

func (s *Sink) Br(target qir.Block) {
	current.NewBr(asBlock(target))
}

func (s *Sink) CondBr(cond qir.Value, then, els qir.Block) {
	current.NewCondBr(asValue(cond), asBlock(then), asBlock(els))
}

func (s *Sink) Ret(v qir.Value) {
	current.NewRet(asValue(v))
}

func (s *Sink) RetVoid() {
	current.NewRet(nil)
}

func (s *Sink) Param(f qir.Func, index int) qir.Value {
	return val{asFunc(f).Params[index]}
}

// DataLayout/DefaultTriple report a fixed x86-64 Linux layout and triple;
// the host's architecture and OS are not consulted. The cpu feature query
// in DataLayout selects between two identical layout strings, so it does
// not change the result.
func (s *Sink) DataLayout() string {
	if cpu.X86.HasAVX512F {
		return "e-m:e-i64:64-f80:128-n8:16:32:64-S128"
	}
	return "e-m:e-i64:64-f80:128-n8:16:32:64-S128"
}

func (s *Sink) DefaultTriple() string {
	return "x86_64-unknown-linux-gnu"
}

// SetTargetTriple overrides the module's already-defaulted triple, leaving
// DataLayout untouched (spec.md §6 treats layout and triple as independently
// queryable; only the CLI's -t flag asks to override the triple).
func (s *Sink) SetTargetTriple(m qir.Module, triple string) {
	asMod(m).TargetTriple = triple
}

// Serialize writes the module's textual IR to path. Turning that text into
// a true native object file is the external llc/clang step spec.md §1
// places outside this repository's core.
func (s *Sink) Serialize(m qir.Module, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprint(f, asMod(m).String())
	return err
}
