package emit_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quanta-lang/quantac/internal/backend/llvmir"
	"github.com/quanta-lang/quantac/internal/diag"
	"github.com/quanta-lang/quantac/internal/emit"
	"github.com/quanta-lang/quantac/internal/lexer"
	"github.com/quanta-lang/quantac/internal/parser"
	"github.com/quanta-lang/quantac/internal/sema"
)

// compile runs src through the full lex/parse/emit pipeline against a real
// llvmir.Sink and returns the rendered module text, the way a reader would
// inspect the .ll a `quantac` invocation produces. Serialize is the only
// exported way to get at the module's textual form, so we round-trip
// through a temp file rather than reach into the Sink's unexported module
// wrapper.
func compile(t *testing.T, src string) (string, *diag.Bag) {
	t.Helper()
	bag := &diag.Bag{}
	registry := sema.NewRegistry()
	toks := lexer.Lex([]byte(src), bag)
	prog := parser.New(toks, bag, registry, nil, nil).Parse()
	require.False(t, bag.HasErrors(), "parse errors: %v", bag)

	sink := &llvmir.Sink{}
	mod := emit.New(sink, registry, bag).EmitProgram(prog, "test")

	path := filepath.Join(t.TempDir(), "test.ll")
	require.NoError(t, sink.Serialize(mod, path))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(out), bag
}

func TestEmit_SimpleReturn(t *testing.T) {
	ir, bag := compile(t, `int add(int a, int b) { return a + b }`)
	require.False(t, bag.HasErrors())
	require.Contains(t, ir, "define i64 @add(i64 %arg0, i64 %arg1)")
	require.Contains(t, ir, "add")
}

func TestEmit_VarDeclAndPrint(t *testing.T) {
	ir, bag := compile(t, `void main() {
		int x = 5
		print(x)
	}`)
	require.False(t, bag.HasErrors())
	require.Contains(t, ir, "define void @main()")
	require.Contains(t, ir, "call")
}

func TestEmit_IfElseBothReturnStillTerminatesMergeBlock(t *testing.T) {
	ir, bag := compile(t, `int pick(int a) {
		if a == 1 {
			return 1
		} else {
			return 2
		}
	}`)
	require.False(t, bag.HasErrors())
	// every basic block must end in a terminator: both arms keep their own
	// returns, and the merge block gets the zero-valued fall-off return.
	require.Contains(t, ir, "ret i64 1")
	require.Contains(t, ir, "ret i64 2")
	require.Contains(t, ir, "ret i64 0")
}

func TestEmit_LoopOverRange(t *testing.T) {
	ir, bag := compile(t, `void main() {
		int i = 0
		loop i < 3 {
			print(i)
			i = i + 1
		}
	}`)
	require.False(t, bag.HasErrors())
	require.True(t, strings.Contains(ir, "br"))
}

func TestEmit_CallBindingFillsDefaultArgument(t *testing.T) {
	ir, bag := compile(t, `int inc(int a, int step = 1) { return a + step }
	void main() { print(inc(a = 5)) }`)
	require.False(t, bag.HasErrors())
	require.Contains(t, ir, "define i64 @inc(i64 %arg0, i64 %arg1)")
}

func TestEmit_UnknownCalleeIsDiagnosed(t *testing.T) {
	_, bag := compile(t, `void main() { print(missing(1)) }`)
	require.True(t, bag.HasErrors())
}

func TestEmit_TooManyPositionalArgumentsIsDiagnosed(t *testing.T) {
	_, bag := compile(t, `int add(int a, int b) { return a + b }
	void main() { print(add(1, 2, 3)) }`)
	require.True(t, bag.HasErrors())
}

func TestEmit_FixedArrayDecl(t *testing.T) {
	ir, bag := compile(t, `void main() {
		int[3] xs = [1, 2, 3]
		print(xs[0])
	}`)
	require.False(t, bag.HasErrors())
	require.Contains(t, ir, "alloca [3 x i64]")
}

// TestEmit_StringConcatIsTrackedAndFreed covers spec.md §8 scenario 2: a
// concatenated string's buffer is freed on the allocating function's exit.
func TestEmit_StringConcatIsTrackedAndFreed(t *testing.T) {
	ir, bag := compile(t, `void main() {
		string s = "hi" + " there"
		print(s)
	}`)
	require.False(t, bag.HasErrors())
	require.Contains(t, ir, "call i8* @strcat")
	require.Contains(t, ir, "call void @free")
}

// TestEmit_DynamicListPushPopLen covers spec.md §8 scenario 4.
func TestEmit_DynamicListPushPopLen(t *testing.T) {
	ir, bag := compile(t, `void main() {
		int[] xs = [1, 2]
		xs.push(3)
		xs.push(4)
		print(xs.len())
		print(xs.pop())
		print(xs.len())
	}`)
	require.False(t, bag.HasErrors())
	require.Contains(t, ir, "call i8* @malloc")
	require.Contains(t, ir, "call i8* @realloc")
}

// TestEmit_StringUpperAndFind covers spec.md §8 scenario 5.
func TestEmit_StringUpperAndFind(t *testing.T) {
	ir, bag := compile(t, `void main() {
		string s = "Hello, World"
		print(s.upper())
		print(s.find("World"))
	}`)
	require.False(t, bag.HasErrors())
	require.Contains(t, ir, "call i8* @upper")
	require.Contains(t, ir, "call i32 @find")
}

// TestEmit_ReturnedPointerSurvivesFreeSweep covers spec.md §4.3/§8's
// double-free/leak-safety guarantee: a function returning a tracked buffer
// must not free that same buffer before returning it.
func TestEmit_ReturnedPointerSurvivesFreeSweep(t *testing.T) {
	ir, bag := compile(t, `string shout(string s) {
		return s.upper()
	}
	void main() { print(shout("hi")) }`)
	require.False(t, bag.HasErrors())
	require.Contains(t, ir, "select")
	require.Contains(t, ir, "call void @free")
}
