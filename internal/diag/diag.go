// Package diag accumulates compiler diagnostics across the lex/parse/emit
// pipeline and renders them the way spec.md §6 describes: one line per
// diagnostic, tagged with the stage that raised it and the source line
// where known.
package diag

import (
	"fmt"
	"io"
)

// Stage names a pipeline stage that can raise a diagnostic.
type Stage string

const (
	Lexer    Stage = "lexer"
	Parser   Stage = "parser"
	Resolve  Stage = "resolve"
	Type     Stage = "type"
	Semantic Stage = "semantic"
	Codegen  Stage = "codegen"
	IO       Stage = "io"
)

// Diagnostic is a single accumulated error.
type Diagnostic struct {
	Stage   Stage
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", d.Stage, d.Line, d.Message)
	}
	return fmt.Sprintf("[%s] %s", d.Stage, d.Message)
}

// Bag accumulates diagnostics and tracks the global error flag spec.md §4.2
// and §7 describe: parsing and codegen keep going past most errors, but the
// backend stage is skipped once the flag is set.
type Bag struct {
	items []Diagnostic
	err   bool
}

// Add records a diagnostic and sets the error flag.
func (b *Bag) Add(stage Stage, line int, format string, args ...any) {
	b.items = append(b.items, Diagnostic{Stage: stage, Line: line, Message: fmt.Sprintf(format, args...)})
	b.err = true
}

// HasErrors reports whether any diagnostic has been recorded.
func (b *Bag) HasErrors() bool {
	return b.err
}

// All returns every accumulated diagnostic in recording order.
func (b *Bag) All() []Diagnostic {
	return b.items
}

// Fprint renders every diagnostic to w, one per line.
func (b *Bag) Fprint(w io.Writer) {
	for _, d := range b.items {
		fmt.Fprintln(w, d.String())
	}
}
