// Package token defines the closed set of lexical token kinds the Quanta
// lexer produces.
package token

import "github.com/samber/lo"

// Kind tags a Token with its lexical category.
type Kind int

const (
	EOF Kind = iota

	// Literals.
	Int
	Float
	Char
	Str
	True
	False

	Ident

	// Type keywords. Lexeme is preserved verbatim so the parser can recover
	// the byte-width suffix on intN/floatN.
	KwInt
	KwFloat
	KwBool
	KwChar
	KwString
	KwVoid
	KwVar

	// Control/structure keywords.
	KwPrint
	KwIf
	KwElif
	KwElse
	KwLoop
	KwReturn
	KwImport
	KwIn
	KwAll
	KwType
	KwBytesize

	// String-operation method keywords.
	KwLen
	KwUpper
	KwLower
	KwReverse
	KwIsupper
	KwIslower
	KwStrip
	KwLstrip
	KwRstrip
	KwCapitalize
	KwTitle
	KwIsalpha
	KwIsdigit
	KwIsspace
	KwIsalnum
	KwFind
	KwCount
	KwStartswith
	KwEndswith
	KwReplace

	// Operators and punctuation.
	Plus
	Minus
	Star
	Slash
	Percent
	Assign
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semicolon
	Colon
	Dot
	Lt
	Gt
	PlusPlus
	MinusMinus
	EqEq
	NotEq
	GtEq
	LtEq
)

// reserved maps identifier spellings to their reserved-word kind. Type
// keywords with a numeric suffix (intN, floatN) are matched separately by
// the lexer since they are not fixed strings.
var reserved = map[string]Kind{
	"int":         KwInt,
	"float":       KwFloat,
	"bool":        KwBool,
	"char":        KwChar,
	"string":      KwString,
	"void":        KwVoid,
	"var":         KwVar,
	"print":       KwPrint,
	"if":          KwIf,
	"elif":        KwElif,
	"else":        KwElse,
	"loop":        KwLoop,
	"return":      KwReturn,
	"import":      KwImport,
	"in":          KwIn,
	"all":         KwAll,
	"type":        KwType,
	"bytesize":    KwBytesize,
	"true":        True,
	"false":       False,
	"len":         KwLen,
	"upper":       KwUpper,
	"lower":       KwLower,
	"reverse":     KwReverse,
	"isupper":     KwIsupper,
	"islower":     KwIslower,
	"strip":       KwStrip,
	"lstrip":      KwLstrip,
	"rstrip":      KwRstrip,
	"capitalize":  KwCapitalize,
	"title":       KwTitle,
	"isalpha":     KwIsalpha,
	"isdigit":     KwIsdigit,
	"isspace":     KwIsspace,
	"isalnum":     KwIsalnum,
	"find":        KwFind,
	"count":       KwCount,
	"startswith":  KwStartswith,
	"endswith":    KwEndswith,
	"replace":     KwReplace,
}

// Lookup returns the reserved-word kind for an identifier spelling, and
// whether it is reserved at all.
func Lookup(ident string) (Kind, bool) {
	k, ok := reserved[ident]
	return k, ok
}

// Token is a tagged lexical unit: a kind, its source spelling, and the
// 1-based source line it came from.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
}

func (t Token) String() string {
	return t.Lexeme
}

// IsStatementStart reports whether kind begins a new statement, the set
// synchronize() scans forward for after a parse error (spec.md §4.2).
var statementStartKinds = []Kind{
	KwInt, KwFloat, KwBool, KwChar, KwString, KwVar,
	KwPrint, KwIf, KwReturn, KwLoop,
}

func IsStatementStart(k Kind) bool {
	return lo.Contains(statementStartKinds, k)
}
