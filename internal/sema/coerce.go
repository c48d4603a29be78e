package sema

import (
	"fmt"

	"github.com/quanta-lang/quantac/internal/ir"
)

// Kind classifies an IR value's source-level numeric/pointer category, the
// dispatch key for the implicit-coercion table in spec.md §7.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindChar
	KindPointer
	KindVoid
)

// TypedValue pairs an IR value with the bookkeeping Coerce needs: its kind,
// its IR type, and (for ints/floats) its bit width.
type TypedValue struct {
	Value ir.Value
	Type  ir.Type
	Kind  Kind
	Width int
}

// Coerce applies spec.md §7's implicit numeric coercion table to convert v
// to the (toKind, toWidth) target, emitting the necessary cast/sext/trunc
// instructions via sink. pointer<->numeric conversions are rejected with an
// error; a void target discards the value and returns (nil, nil), the
// discard-only void-return path of spec.md §7's "any -> void" row.
func Coerce(sink ir.Sink, v TypedValue, toType ir.Type, toKind Kind, toWidth int) (ir.Value, error) {
	if v.Kind == toKind && v.Width == toWidth {
		return v.Value, nil
	}
	switch {
	case v.Kind == KindPointer && toKind != KindPointer && toKind != KindVoid,
		toKind == KindPointer && v.Kind != KindPointer:
		return nil, fmt.Errorf("cannot coerce between pointer and numeric type")
	case toKind == KindVoid:
		return nil, nil // discard, void-return path only
	case (v.Kind == KindInt || v.Kind == KindBool || v.Kind == KindChar) &&
		(toKind == KindInt || toKind == KindBool || toKind == KindChar):
		return sink.Cast(v.Value, v.Type, toType), nil
	case (v.Kind == KindInt || v.Kind == KindBool || v.Kind == KindChar) && toKind == KindFloat:
		return sink.Cast(v.Value, v.Type, toType), nil
	case v.Kind == KindFloat && (toKind == KindInt || toKind == KindBool || toKind == KindChar):
		return sink.Cast(v.Value, v.Type, toType), nil
	case v.Kind == KindFloat && toKind == KindFloat:
		return sink.Cast(v.Value, v.Type, toType), nil
	case v.Kind == KindPointer && toKind == KindPointer:
		return v.Value, nil
	default:
		return v.Value, nil
	}
}

// PromoteArith implements spec.md §4.4's mixed-arithmetic promotion rule:
// mixed-width ints promote to the wider signed width; mixed int/float
// promotes the int operand to the float's type. Returns the common kind
// and width the caller should coerce both operands to.
func PromoteArith(aKind Kind, aWidth int, bKind Kind, bWidth int) (Kind, int) {
	if aKind == KindFloat || bKind == KindFloat {
		switch {
		case aKind == KindFloat && bKind == KindFloat:
			if aWidth >= bWidth {
				return KindFloat, aWidth
			}
			return KindFloat, bWidth
		case aKind == KindFloat:
			return KindFloat, aWidth
		default:
			return KindFloat, bWidth
		}
	}
	if aWidth >= bWidth {
		return KindInt, aWidth
	}
	return KindInt, bWidth
}
