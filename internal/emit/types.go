package emit

import (
	"strconv"
	"strings"

	"github.com/quanta-lang/quantac/internal/ir"
	"github.com/quanta-lang/quantac/internal/sema"
)

// typeKind resolves a source type name (as carried on VarDecl/FuncArg/Func)
// plus its parsed byte-width suffix to the (Kind, byte-width) pair Coerce
// and PromoteArith operate on (spec.md §7, §4.4). "var" is handled by
// callers that have an init expression to infer from (lowerVarDecl); here it
// falls back to int64, matching an uninitialized var's never-reachable
// default.
func typeKind(name string, width int) (sema.Kind, int) {
	switch {
	case name == "void":
		return sema.KindVoid, 0
	case name == "bool":
		return sema.KindBool, 4 // comparisons store as 32-bit, spec.md §4.4
	case name == "char":
		return sema.KindChar, 1
	case name == "string":
		return sema.KindPointer, 0
	case strings.HasPrefix(name, "float"):
		w := width
		if w == 0 {
			w = suffixWidth(name, "float", 8)
		}
		if w < 4 {
			w = 4
		}
		return sema.KindFloat, w
	case name == "var":
		return sema.KindInt, 8
	default: // "int" or intN
		w := width
		if w == 0 {
			w = suffixWidth(name, "int", 8)
		}
		return sema.KindInt, w
	}
}

// suffixWidth parses the numeric suffix of a type name like "int32" or
// "float8" (byte width per spec.md §4.2), falling back to def when the name
// carries no suffix.
func suffixWidth(name, prefix string, def int) int {
	if !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
		return def
	}
	n, err := strconv.Atoi(name[len(prefix):])
	if err != nil {
		return def
	}
	return n
}

// irType builds the concrete Sink Type for a (Kind, byte-width) pair.
func (e *Emitter) irType(kind sema.Kind, widthBytes int) ir.Type {
	switch kind {
	case sema.KindVoid:
		return e.sink.VoidType()
	case sema.KindPointer:
		return e.sink.PointerType()
	case sema.KindFloat:
		bits := widthBytes * 8
		if bits == 0 {
			bits = 64
		}
		return e.sink.FloatType(bits)
	case sema.KindBool:
		return e.sink.IntType(32)
	case sema.KindChar:
		return e.sink.IntType(8)
	default: // KindInt
		bits := widthBytes * 8
		if bits == 0 {
			bits = 64
		}
		return e.sink.IntType(bits)
	}
}

// inferredWidthFor returns the byte width of the slot created when a name is
// assigned without a prior declaration (spec.md §4.3: "an assignment to an
// undeclared name creates one whose type is inferred from the rhs IR
// value"), given the Kind already known from lowering the rhs expression:
// see lowerAssign in expr.go for the call site.
func inferredWidthFor(kind sema.Kind) int {
	switch kind {
	case sema.KindBool:
		return 4
	case sema.KindChar:
		return 1
	case sema.KindFloat, sema.KindInt:
		return 8
	default:
		return 0
	}
}
