package sema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quanta-lang/quantac/internal/ir"
)

// fakeType/fakeValue stand in for a concrete Sink's opaque handles; Coerce
// only threads them through sink.Cast without inspecting them itself.
type fakeType struct{ name string }

func (t fakeType) TypeName() string { return t.name }

type fakeValue struct{ name string }

func (v fakeValue) ValueName() string { return v.name }

// fakeSink implements just enough of ir.Sink for Coerce's Cast calls.
type fakeSink struct {
	castCalls int
}

func (s *fakeSink) CreateModule(string) ir.Module                                { return nil }
func (s *fakeSink) CreateFunc(ir.Module, string, []ir.Type, ir.Type) ir.Func      { return nil }
func (s *fakeSink) CreateBlock(ir.Func, string) ir.Block                         { return nil }
func (s *fakeSink) SetInsertPoint(ir.Block)                                      {}
func (s *fakeSink) IntType(bits int) ir.Type                                     { return fakeType{"i"} }
func (s *fakeSink) FloatType(bits int) ir.Type                                   { return fakeType{"f"} }
func (s *fakeSink) BoolType() ir.Type                                            { return fakeType{"b"} }
func (s *fakeSink) PointerType() ir.Type                                         { return fakeType{"p"} }
func (s *fakeSink) VoidType() ir.Type                                            { return fakeType{"v"} }
func (s *fakeSink) ConstInt(ir.Type, uint64) ir.Value                            { return fakeValue{"c"} }
func (s *fakeSink) ConstFloat(ir.Type, float64) ir.Value                        { return fakeValue{"c"} }
func (s *fakeSink) ConstNullPtr() ir.Value                                       { return fakeValue{"null"} }
func (s *fakeSink) ConstString(string) ir.Value                                 { return fakeValue{"str"} }
func (s *fakeSink) Alloca(ir.Type, string) ir.Value                             { return fakeValue{"a"} }
func (s *fakeSink) AllocaArray(ir.Type, int, string) ir.Value                   { return fakeValue{"aa"} }
func (s *fakeSink) Load(ir.Type, ir.Value) ir.Value                             { return fakeValue{"l"} }
func (s *fakeSink) Store(ir.Value, ir.Value)                                    {}
func (s *fakeSink) GEP(ir.Type, ir.Value, ir.Value) ir.Value                    { return fakeValue{"g"} }
func (s *fakeSink) Arith(ir.ArithOp, bool, ir.Value, ir.Value) ir.Value         { return fakeValue{"ar"} }
func (s *fakeSink) Cmp(ir.CmpPred, bool, ir.Value, ir.Value) ir.Value           { return fakeValue{"cmp"} }
func (s *fakeSink) Cast(v ir.Value, from, to ir.Type) ir.Value {
	s.castCalls++
	return fakeValue{"cast"}
}
func (s *fakeSink) ZExt(ir.Value, ir.Type, ir.Type) ir.Value { return fakeValue{"zext"} }
func (s *fakeSink) Select(ir.Value, ir.Value, ir.Value) ir.Value { return fakeValue{"sel"} }
func (s *fakeSink) DeclareExternFunc(ir.Module, string, []ir.Type, ir.Type, bool) ir.Func {
	return nil
}
func (s *fakeSink) Call(ir.Func, []ir.Value) ir.Value { return fakeValue{"call"} }
func (s *fakeSink) Br(ir.Block)                       {}
func (s *fakeSink) CondBr(ir.Value, ir.Block, ir.Block) {}
func (s *fakeSink) Ret(ir.Value)                      {}
func (s *fakeSink) RetVoid()                          {}
func (s *fakeSink) Param(ir.Func, int) ir.Value       { return fakeValue{"p"} }
func (s *fakeSink) DataLayout() string                { return "" }
func (s *fakeSink) DefaultTriple() string             { return "" }
func (s *fakeSink) SetTargetTriple(ir.Module, string) {}
func (s *fakeSink) Serialize(ir.Module, string) error { return nil }

func TestCoerce_SameKindAndWidthIsNoop(t *testing.T) {
	s := &fakeSink{}
	v := TypedValue{Value: fakeValue{"x"}, Type: fakeType{"i"}, Kind: KindInt, Width: 8}
	out, err := Coerce(s, v, fakeType{"i"}, KindInt, 8)
	require.NoError(t, err)
	require.Equal(t, v.Value, out)
	require.Equal(t, 0, s.castCalls)
}

func TestCoerce_IntWidenCallsCast(t *testing.T) {
	s := &fakeSink{}
	v := TypedValue{Value: fakeValue{"x"}, Type: fakeType{"i32"}, Kind: KindInt, Width: 4}
	_, err := Coerce(s, v, fakeType{"i64"}, KindInt, 8)
	require.NoError(t, err)
	require.Equal(t, 1, s.castCalls)
}

func TestCoerce_PointerToIntIsRejected(t *testing.T) {
	s := &fakeSink{}
	v := TypedValue{Value: fakeValue{"x"}, Type: fakeType{"p"}, Kind: KindPointer}
	_, err := Coerce(s, v, fakeType{"i64"}, KindInt, 8)
	require.Error(t, err)
}

func TestCoerce_IntToVoidDiscards(t *testing.T) {
	s := &fakeSink{}
	v := TypedValue{Value: fakeValue{"x"}, Type: fakeType{"i"}, Kind: KindInt, Width: 8}
	out, err := Coerce(s, v, fakeType{"v"}, KindVoid, 0)
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestPromoteArith(t *testing.T) {
	tests := []struct {
		name                   string
		aKind                  Kind
		aWidth                 int
		bKind                  Kind
		bWidth                 int
		wantKind               Kind
		wantWidth              int
	}{
		{"both int, widen to wider", KindInt, 4, KindInt, 8, KindInt, 8},
		{"int and float promotes to float", KindInt, 8, KindFloat, 8, KindFloat, 8},
		{"both float, widen to wider", KindFloat, 4, KindFloat, 8, KindFloat, 8},
		{"float operand first", KindFloat, 8, KindInt, 4, KindFloat, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, w := PromoteArith(tt.aKind, tt.aWidth, tt.bKind, tt.bWidth)
			require.Equal(t, tt.wantKind, k)
			require.Equal(t, tt.wantWidth, w)
		})
	}
}

func TestSymbolTable_ShouldReuseSlot(t *testing.T) {
	st := NewSymbolTable()
	st.Declare("x", Slot{Width: 4, TypeName: "int32"})

	_, reuse := st.ShouldReuseSlot("x", 8)
	require.True(t, reuse, "widening should reuse the slot")

	_, reuse = st.ShouldReuseSlot("x", 2)
	require.False(t, reuse, "narrowing should not reuse the slot")

	_, ok := st.ShouldReuseSlot("unknown", 8)
	require.False(t, ok)
}

func TestSymbolTable_LookupAndClear(t *testing.T) {
	st := NewSymbolTable()
	st.Declare("y", Slot{Width: 8})
	_, ok := st.Lookup("y")
	require.True(t, ok)
	st.Clear()
	_, ok = st.Lookup("y")
	require.False(t, ok)
}

func TestRegistry_DefineLookupDelete(t *testing.T) {
	r := NewRegistry()
	r.Define("add", FuncSchema{ReturnType: "int", Params: []ParamSchema{{Name: "a", TypeName: "int"}}})
	schema, ok := r.Lookup("add")
	require.True(t, ok)
	require.Equal(t, 0, ParamIndex(schema, "a"))
	require.Equal(t, -1, ParamIndex(schema, "b"))

	r.Delete("add")
	_, ok = r.Lookup("add")
	require.False(t, ok)
}
