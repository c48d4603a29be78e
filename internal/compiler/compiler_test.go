package compiler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/quanta-lang/quantac/internal/backend/llvmir"
	"github.com/quanta-lang/quantac/internal/compiler"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCompile_WritesSerializedModule(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "hello.qnt", `void main() { print("hi") }`)

	err := compiler.Compile(compiler.Options{Source: src})
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "hello.ll"))
	require.NoError(t, err)
	require.Contains(t, string(out), "define void @main()")
}

func TestCompile_EmitIRWritesDebugCopy(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "hello.qnt", `void main() { print("hi") }`)

	err := compiler.Compile(compiler.Options{Source: src, EmitIR: true})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "hello.emit.ll"))
	require.NoError(t, err)
}

func TestCompile_OutputDirOverride(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	src := writeSource(t, dir, "hello.qnt", `void main() { print("hi") }`)

	err := compiler.Compile(compiler.Options{Source: src, Output: outDir})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "hello.ll"))
	require.NoError(t, err)
}

func TestCompile_ParseErrorSkipsSerialization(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "bad.qnt", `void main() { print(1)`)

	err := compiler.Compile(compiler.Options{Source: src})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "bad.ll"))
	require.True(t, os.IsNotExist(statErr))
}

func TestCompile_TargetOverrideAppearsInOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "hello.qnt", `void main() { print("hi") }`)

	err := compiler.Compile(compiler.Options{Source: src, Target: "aarch64-unknown-linux-gnu"})
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "hello.ll"))
	require.NoError(t, err)
	require.Contains(t, string(out), "aarch64-unknown-linux-gnu")
}

func TestCompile_ImportResolvesModuleFromSourceDir(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "mathutil.qnt", `int square(int x) { return x * x }`)
	src := writeSource(t, dir, "hello.qnt", `import mathutil
void main() { print(square(3)) }`)

	err := compiler.Compile(compiler.Options{Source: src})
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "hello.ll"))
	require.NoError(t, err)
	require.Contains(t, string(out), "define i64 @square(i64")
}

func TestCompile_ImportResolvesFromIncludePath(t *testing.T) {
	srcDir := t.TempDir()
	includeDir := t.TempDir()
	writeSource(t, includeDir, "mathutil.qnt", `int square(int x) { return x * x }`)
	src := writeSource(t, srcDir, "hello.qnt", `import mathutil
void main() { print(square(3)) }`)

	err := compiler.Compile(compiler.Options{Source: src, IncludePaths: []string{includeDir}})
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(srcDir, "hello.ll"))
	require.NoError(t, err)
	require.Contains(t, string(out), "define i64 @square(i64")
}

func TestCompile_UnknownBackendErrors(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "hello.qnt", `void main() { print("hi") }`)

	err := compiler.Compile(compiler.Options{Source: src, Backend: "nonexistent"})
	require.Error(t, err)
}

func TestCompile_MissingSourceFileErrors(t *testing.T) {
	err := compiler.Compile(compiler.Options{Source: filepath.Join(t.TempDir(), "missing.qnt")})
	require.Error(t, err)
}
