// Package ir defines the abstract backend contract spec.md §6 calls the
// "IR sink": the small interface a concrete code-generator backend
// implements so the emitter never depends on a specific target. This is
// the direct generalization of the teacher's ArchParser interface
// (arch.go) from "translate C to per-architecture Go assembly" to
// "translate Quanta IR to a target object/IR module".
package ir

// Type is an opaque handle to a backend-specific type (integer of N bits,
// float of N bits, pointer, void, ...). The emitter never inspects it; it
// only threads Types it got from the Sink back into other Sink calls.
type Type interface {
	TypeName() string
}

// Value is an opaque handle to a backend-specific SSA value, constant, or
// stack slot.
type Value interface {
	ValueName() string
}

// Module is an opaque handle to a whole compiled translation unit.
type Module interface{}

// Func is an opaque handle to one backend function.
type Func interface{}

// Block is an opaque handle to one basic block inside a Func.
type Block interface{}

// CmpPred enumerates the comparison predicates the emitter needs, both
// integer (signed) and ordered-floating per spec.md §4.4.
type CmpPred int

const (
	CmpEq CmpPred = iota
	CmpNe
	CmpLt
	CmpGt
	CmpLe
	CmpGe
)

// ArithOp enumerates the arithmetic operators the emitter lowers.
type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
	ArithRem
)

// Sink is the retargetable backend contract. One concrete implementation
// per backend is registered in package backend, the way ArchParser
// implementations are registered via RegisterParser in the teacher.
type Sink interface {
	// Module / function / block structure.
	CreateModule(name string) Module
	CreateFunc(mod Module, name string, paramTypes []Type, retType Type) Func
	CreateBlock(fn Func, label string) Block
	SetInsertPoint(b Block)

	// Types.
	IntType(bits int) Type
	FloatType(bits int) Type
	BoolType() Type
	PointerType() Type
	VoidType() Type

	// Constants.
	ConstInt(t Type, v uint64) Value
	ConstFloat(t Type, v float64) Value
	ConstNullPtr() Value
	ConstString(s string) Value // byte-array global, null-terminated

	// Locals / memory.
	Alloca(t Type, name string) Value
	// AllocaArray reserves a contiguous stack array of n elements of t and
	// returns a decayed pointer to its first element — the single stack
	// shape spec.md §4.3 needs for both fixed arrays and fixed-capacity
	// string buffers, so GEP below can address either uniformly.
	AllocaArray(t Type, n int, name string) Value
	Load(t Type, ptr Value) Value
	Store(ptr Value, v Value)
	GEP(elemType Type, ptr Value, index Value) Value

	// Computation.
	Arith(op ArithOp, isFloat bool, lhs, rhs Value) Value
	Cmp(pred CmpPred, isFloat bool, lhs, rhs Value) Value
	Cast(v Value, from, to Type) Value
	// ZExt zero-extends a narrower integer to a wider one, preserving 0/1
	// semantics for a comparison's i1 result (spec.md §4.4: "Comparisons
	// produce a 1-bit result widened to 32 bits for storage/use"). Cast's
	// int-widen path sign-extends, which would turn a true (all-ones i1)
	// into -1 rather than 1.
	ZExt(v Value, from, to Type) Value
	Select(cond Value, a, b Value) Value

	// External declarations & calls.
	DeclareExternFunc(mod Module, name string, paramTypes []Type, retType Type, variadic bool) Func
	Call(fn Func, args []Value) Value

	// Control flow.
	Br(target Block)
	CondBr(cond Value, then, els Block)
	Ret(v Value)
	RetVoid()

	// Parameters.
	Param(fn Func, index int) Value

	// Target metadata.
	DataLayout() string
	DefaultTriple() string
	// SetTargetTriple overrides mod's target triple, e.g. from the CLI's
	// -t/--target flag (SPEC_FULL.md §10.1); a no-op is a valid
	// implementation for a backend with exactly one supported target.
	SetTargetTriple(mod Module, triple string)

	// Serialize writes the compiled module to path. Per spec.md §1, the
	// concrete linker/object-emission step beyond this point is an
	// external collaborator; Serialize's job ends at producing the
	// artifact a linker would consume.
	Serialize(mod Module, path string) error
}
