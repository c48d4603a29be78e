package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quanta-lang/quantac/internal/ast"
	"github.com/quanta-lang/quantac/internal/diag"
	"github.com/quanta-lang/quantac/internal/lexer"
	"github.com/quanta-lang/quantac/internal/sema"
)

func parse(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	bag := &diag.Bag{}
	toks := lexer.Lex([]byte(src), bag)
	prog := New(toks, bag, sema.NewRegistry(), nil, nil).Parse()
	return prog, bag
}

// fakeLoader is an in-memory Loader keyed by module name, standing in for
// internal/compiler.FileLoader so the import sub-parser (parseImport) can be
// exercised without touching a real filesystem.
type fakeLoader map[string]string

func (f fakeLoader) Load(name string) ([]byte, string, error) {
	src, ok := f[name]
	if !ok {
		return nil, "", fmt.Errorf("no such module %q", name)
	}
	return []byte(src), name, nil
}

func parseWithLoader(t *testing.T, src string, loader Loader) (*ast.Program, *diag.Bag) {
	t.Helper()
	bag := &diag.Bag{}
	toks := lexer.Lex([]byte(src), bag)
	prog := New(toks, bag, sema.NewRegistry(), nil, loader).Parse()
	return prog, bag
}

func TestParse_ImportHarvestsModuleFuncs(t *testing.T) {
	loader := fakeLoader{"mathutil": `int square(int x) { return x * x }`}
	prog, bag := parseWithLoader(t, `import mathutil
void main() { print(square(3)) }`, loader)
	require.False(t, bag.HasErrors())
	require.Len(t, prog.Funcs, 2)
	require.Equal(t, "square", prog.Funcs[0].Name)
	require.Equal(t, "main", prog.Funcs[1].Name)
}

func TestParse_SelectiveImportFiltersByName(t *testing.T) {
	loader := fakeLoader{"mathutil": `int square(int x) { return x * x }
int cube(int x) { return x * x * x }`}
	prog, bag := parseWithLoader(t, `import mathutil.square
void main() { print(square(3)) }`, loader)
	require.False(t, bag.HasErrors())
	require.Len(t, prog.Funcs, 2)
	names := []string{prog.Funcs[0].Name, prog.Funcs[1].Name}
	require.Contains(t, names, "square")
	require.NotContains(t, names, "cube")
}

func TestParse_RepeatedImportIsANoOp(t *testing.T) {
	loads := 0
	loader := countingLoader{fakeLoader{"mathutil": `int square(int x) { return x * x }`}, &loads}
	prog, bag := parseWithLoader(t, `import mathutil
import mathutil
void main() { print(square(3)) }`, loader)
	require.False(t, bag.HasErrors())
	require.Equal(t, 1, loads)
	require.Len(t, prog.Funcs, 2)
}

type countingLoader struct {
	fakeLoader
	n *int
}

func (c countingLoader) Load(name string) ([]byte, string, error) {
	*c.n++
	return c.fakeLoader.Load(name)
}

func TestParse_BareStatementsBecomeImplicitMain(t *testing.T) {
	prog, bag := parse(t, `int x = 1; print(x)`)
	require.False(t, bag.HasErrors())
	require.Len(t, prog.Funcs, 1)
	require.Equal(t, "main", prog.Funcs[0].Name)
	require.Len(t, prog.Funcs[0].Body, 2)
}

func TestParse_ExplicitMainAndTopLevelStatementsConflict(t *testing.T) {
	_, bag := parse(t, `void main() { } int x = 1`)
	require.True(t, bag.HasErrors())
}

func TestParse_FuncWithDefaultArg(t *testing.T) {
	prog, bag := parse(t, `int add(int a, int b = 2) { return a + b }`)
	require.False(t, bag.HasErrors())
	require.Len(t, prog.Funcs, 1)
	fn := prog.Funcs[0]
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Args, 2)
	require.Nil(t, fn.Args[0].Default)
	require.NotNil(t, fn.Args[1].Default)
}

func TestParse_IfElifElse(t *testing.T) {
	prog, bag := parse(t, `void main() {
		if x == 1 { print(1) }
		elif x == 2 { print(2) }
		else { print(3) }
	}`)
	require.False(t, bag.HasErrors())
	body := prog.Funcs[0].Body
	require.Len(t, body, 1)
	ifStmt, ok := body[0].(*ast.If)
	require.True(t, ok)
	require.NotNil(t, ifStmt.ElseIf)
	require.NotNil(t, ifStmt.ElseIf.Else)
}

func TestParse_FixedArrayAndDynamicListDecls(t *testing.T) {
	prog, bag := parse(t, `void main() {
		int[3] xs = [1, 2, 3]
		int[] ys = [4, 5]
	}`)
	require.False(t, bag.HasErrors())
	body := prog.Funcs[0].Body
	require.Len(t, body, 2)
	arr, ok := body[0].(*ast.FixedArrayDecl)
	require.True(t, ok)
	require.Equal(t, 3, arr.Size)
	require.Len(t, arr.Init, 3)
	list, ok := body[1].(*ast.DynamicListDecl)
	require.True(t, ok)
	require.Len(t, list.Init, 2)
}

func TestParse_FixedStringDecl(t *testing.T) {
	prog, bag := parse(t, `void main() { string[8] name = "abc" }`)
	require.False(t, bag.HasErrors())
	decl, ok := prog.Funcs[0].Body[0].(*ast.FixedStringDecl)
	require.True(t, ok)
	require.Equal(t, 8, decl.Capacity)
}

func TestParse_TypeOfAndByteSize(t *testing.T) {
	prog, bag := parse(t, `void main() {
		int x = 1
		print(type(x), bytesize(x))
	}`)
	require.False(t, bag.HasErrors())
	printStmt, ok := prog.Funcs[0].Body[1].(*ast.Print)
	require.True(t, ok)
	require.Len(t, printStmt.Args, 2)
	_, ok = printStmt.Args[0].(*ast.TypeOf)
	require.True(t, ok)
	_, ok = printStmt.Args[1].(*ast.ByteSize)
	require.True(t, ok)
}

func TestParse_LoopIndexOverString(t *testing.T) {
	prog, bag := parse(t, `void main() {
		loop i in "hello" { print(i) }
	}`)
	require.False(t, bag.HasErrors())
	_, ok := prog.Funcs[0].Body[0].(*ast.LoopIndexOverString)
	require.True(t, ok)
}

func TestParse_CallWithKeywordArgs(t *testing.T) {
	prog, bag := parse(t, `void main() { print(add(a = 1, b = 2)) }`)
	require.False(t, bag.HasErrors())
	printStmt := prog.Funcs[0].Body[0].(*ast.Print)
	call := printStmt.Args[0].(*ast.Call)
	require.Equal(t, "add", call.Callee)
	require.Equal(t, "a", call.Args[0].Name)
	require.Equal(t, "b", call.Args[1].Name)
}

func TestParse_MethodCallAndIndexing(t *testing.T) {
	prog, bag := parse(t, `void main() {
		string s = "hi"
		print(s.upper(), s[0])
	}`)
	require.False(t, bag.HasErrors())
	printStmt := prog.Funcs[0].Body[1].(*ast.Print)
	_, ok := printStmt.Args[0].(*ast.MethodCall)
	require.True(t, ok)
	_, ok = printStmt.Args[1].(*ast.IndexRead)
	require.True(t, ok)
}

func TestParse_BinaryPrecedence(t *testing.T) {
	prog, bag := parse(t, `void main() { int x = 1 + 2 * 3 }`)
	require.False(t, bag.HasErrors())
	decl := prog.Funcs[0].Body[0].(*ast.VarDecl)
	bin, ok := decl.Init.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, bin.Op)
	rhs, ok := bin.Rhs.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.OpMul, rhs.Op)
}

func TestParse_MissingClosingBraceIsDiagnosed(t *testing.T) {
	_, bag := parse(t, `void main() { print(1)`)
	require.True(t, bag.HasErrors())
}
