package llvmir_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quanta-lang/quantac/internal/backend"
	"github.com/quanta-lang/quantac/internal/backend/llvmir"
	"github.com/quanta-lang/quantac/internal/ir"
)

func TestRegister_RegistersLLVMBackend(t *testing.T) {
	s, err := backend.Get("llvm")
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestSink_CreateModuleSetsTargetMetadata(t *testing.T) {
	s := &llvmir.Sink{}
	mod := s.CreateModule("m")

	path := filepath.Join(t.TempDir(), "m.ll")
	require.NoError(t, s.Serialize(mod, path))
	out, err := os.ReadFile(path)
	require.NoError(t, err)

	require.Contains(t, string(out), s.DefaultTriple())
	require.Contains(t, string(out), s.DataLayout())
}

func TestSink_SetTargetTripleOverridesDefault(t *testing.T) {
	s := &llvmir.Sink{}
	mod := s.CreateModule("m")
	s.SetTargetTriple(mod, "riscv64-unknown-linux-gnu")

	path := filepath.Join(t.TempDir(), "m.ll")
	require.NoError(t, s.Serialize(mod, path))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(out), "riscv64-unknown-linux-gnu")
	require.NotContains(t, string(out), s.DefaultTriple())
}

func TestSink_ArithRoundtrip(t *testing.T) {
	s := &llvmir.Sink{}
	mod := s.CreateModule("m")
	i32 := s.IntType(32)
	f := s.CreateFunc(mod, "f", nil, i32)
	b := s.CreateBlock(f, "entry")
	s.SetInsertPoint(b)

	lhs := s.ConstInt(i32, 2)
	rhs := s.ConstInt(i32, 3)
	sum := s.Arith(ir.ArithAdd, false, lhs, rhs)
	s.Ret(sum)

	path := filepath.Join(t.TempDir(), "m.ll")
	require.NoError(t, s.Serialize(mod, path))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(out), "add i32 2, 3")
}

func TestSink_AllocaArrayDecaysToElementPointer(t *testing.T) {
	s := &llvmir.Sink{}
	mod := s.CreateModule("m")
	i32 := s.IntType(32)
	f := s.CreateFunc(mod, "f", nil, s.VoidType())
	b := s.CreateBlock(f, "entry")
	s.SetInsertPoint(b)

	ptr := s.AllocaArray(i32, 3, "xs")
	require.NotNil(t, ptr)
	s.RetVoid()

	path := filepath.Join(t.TempDir(), "m.ll")
	require.NoError(t, s.Serialize(mod, path))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(out), "alloca [3 x i32]")
}

func TestSink_ConstStringDefinesPrivateGlobal(t *testing.T) {
	s := &llvmir.Sink{}
	mod := s.CreateModule("m")
	f := s.CreateFunc(mod, "f", nil, s.VoidType())
	b := s.CreateBlock(f, "entry")
	s.SetInsertPoint(b)

	str := s.ConstString("hi")
	require.NotNil(t, str)
	s.RetVoid()

	path := filepath.Join(t.TempDir(), "m.ll")
	require.NoError(t, s.Serialize(mod, path))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(out), ".str.1")
}

func TestSink_ZExtPreservesBoolAsOneNotAllOnes(t *testing.T) {
	s := &llvmir.Sink{}
	mod := s.CreateModule("m")
	i1 := s.BoolType()
	i32 := s.IntType(32)
	f := s.CreateFunc(mod, "f", nil, i32)
	b := s.CreateBlock(f, "entry")
	s.SetInsertPoint(b)

	c := s.ConstInt(i1, 1)
	widened := s.ZExt(c, i1, i32)
	s.Ret(widened)

	path := filepath.Join(t.TempDir(), "m.ll")
	require.NoError(t, s.Serialize(mod, path))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(out), "zext")
}
