package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quanta-lang/quantac/internal/diag"
	"github.com/quanta-lang/quantac/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLex_Operators(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{"arith", "1 + 2 * 3", []token.Kind{token.Int, token.Plus, token.Int, token.Star, token.Int, token.EOF}},
		{"compare", "a <= b", []token.Kind{token.Ident, token.LtEq, token.Ident, token.EOF}},
		{"increment", "i++", []token.Kind{token.Ident, token.PlusPlus, token.EOF}},
		{"not-equal", "x != y", []token.Kind{token.Ident, token.NotEq, token.Ident, token.EOF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := &diag.Bag{}
			got := kinds(Lex([]byte(tt.src), bag))
			require.Equal(t, tt.want, got)
			require.False(t, bag.HasErrors())
		})
	}
}

func TestLex_Keywords(t *testing.T) {
	bag := &diag.Bag{}
	toks := Lex([]byte("type(x) bytesize(y)"), bag)
	require.False(t, bag.HasErrors())
	require.Equal(t, []token.Kind{
		token.KwType, token.LParen, token.Ident, token.RParen,
		token.KwBytesize, token.LParen, token.Ident, token.RParen,
		token.EOF,
	}, kinds(toks))
}

func TestLex_StringAndChar(t *testing.T) {
	bag := &diag.Bag{}
	toks := Lex([]byte(`"hi" 'a'`), bag)
	require.False(t, bag.HasErrors())
	require.Len(t, toks, 3)
	require.Equal(t, token.Str, toks[0].Kind)
	require.Equal(t, "hi", toks[0].Lexeme)
	require.Equal(t, token.Char, toks[1].Kind)
	require.Equal(t, "a", toks[1].Lexeme)
}

func TestLex_UnterminatedString(t *testing.T) {
	bag := &diag.Bag{}
	Lex([]byte(`"never closes`), bag)
	require.True(t, bag.HasErrors())
}

func TestLex_IntegerOverflow(t *testing.T) {
	bag := &diag.Bag{}
	toks := Lex([]byte("99999999999999999999999"), bag)
	require.True(t, bag.HasErrors())
	require.Equal(t, token.EOF, toks[len(toks)-1].Kind)
}

func TestLex_IdentStartingWithDigitIsDiagnosedAndSkipped(t *testing.T) {
	bag := &diag.Bag{}
	toks := Lex([]byte("1foo bar"), bag)
	require.True(t, bag.HasErrors())
	require.Equal(t, []token.Kind{token.Ident, token.EOF}, kinds(toks))
}

func TestLex_IntSuffixType(t *testing.T) {
	bag := &diag.Bag{}
	toks := Lex([]byte("int32 x = 1"), bag)
	require.False(t, bag.HasErrors())
	require.Equal(t, token.KwInt, toks[0].Kind)
	require.Equal(t, "int32", toks[0].Lexeme)
}

func TestLex_LineCommentsAreSkipped(t *testing.T) {
	bag := &diag.Bag{}
	toks := Lex([]byte("x @ trailing comment\ny"), bag)
	require.False(t, bag.HasErrors())
	require.Equal(t, []token.Kind{token.Ident, token.Ident, token.EOF}, kinds(toks))
}

func TestLex_BlockCommentsAreSkipped(t *testing.T) {
	bag := &diag.Bag{}
	toks := Lex([]byte(`x '''block comment''' y`), bag)
	require.False(t, bag.HasErrors())
	require.Equal(t, []token.Kind{token.Ident, token.Ident, token.EOF}, kinds(toks))
}
