// Package runtime declares the external, C-ABI runtime helper functions
// spec.md §6 lists: libc primitives plus the Quanta string-operation bank.
// This package only declares signatures against an ir.Sink; the actual
// bodies live in the runtime support library spec.md §1 places out of
// scope for this repository.
package runtime

import "github.com/quanta-lang/quantac/internal/ir"

// Decl is one external function's declared signature.
type Decl struct {
	Name     string
	Params   []string // type tags: "ptr", "i64", "i32", "void" — resolved against a Sink by Declare
	Ret      string
	Variadic bool
}

// Signatures is the fixed bank spec.md §6 requires the emitter to be able
// to call. Order matches the spec's listing: libc primitives first, then
// the language-specific string helpers.
var Signatures = []Decl{
	{Name: "malloc", Params: []string{"i64"}, Ret: "ptr"},
	{Name: "free", Params: []string{"ptr"}, Ret: "void"},
	{Name: "realloc", Params: []string{"ptr", "i64"}, Ret: "ptr"},
	{Name: "strlen", Params: []string{"ptr"}, Ret: "i64"},
	{Name: "strcpy", Params: []string{"ptr", "ptr"}, Ret: "ptr"},
	{Name: "strcat", Params: []string{"ptr", "ptr"}, Ret: "ptr"},
	{Name: "strcmp", Params: []string{"ptr", "ptr"}, Ret: "i32"},
	{Name: "printf", Params: []string{"ptr"}, Ret: "i32", Variadic: true},
	{Name: "fflush", Params: []string{"ptr"}, Ret: "i32"},

	{Name: "upper", Params: []string{"ptr"}, Ret: "ptr"},
	{Name: "lower", Params: []string{"ptr"}, Ret: "ptr"},
	{Name: "reverse", Params: []string{"ptr"}, Ret: "ptr"},
	{Name: "strip", Params: []string{"ptr"}, Ret: "ptr"},
	{Name: "lstrip", Params: []string{"ptr"}, Ret: "ptr"},
	{Name: "rstrip", Params: []string{"ptr"}, Ret: "ptr"},
	{Name: "capitalize", Params: []string{"ptr"}, Ret: "ptr"},
	{Name: "title", Params: []string{"ptr"}, Ret: "ptr"},
	{Name: "replace", Params: []string{"ptr", "ptr", "ptr"}, Ret: "ptr"},
	{Name: "slice", Params: []string{"ptr", "i32", "i32", "i32"}, Ret: "ptr"},
	{Name: "isupper", Params: []string{"ptr"}, Ret: "i32"},
	{Name: "islower", Params: []string{"ptr"}, Ret: "i32"},
	{Name: "isalpha", Params: []string{"ptr"}, Ret: "i32"},
	{Name: "isdigit", Params: []string{"ptr"}, Ret: "i32"},
	{Name: "isspace", Params: []string{"ptr"}, Ret: "i32"},
	{Name: "isalnum", Params: []string{"ptr"}, Ret: "i32"},
	{Name: "find", Params: []string{"ptr", "ptr"}, Ret: "i32"},
	{Name: "count", Params: []string{"ptr", "ptr"}, Ret: "i32"},
	{Name: "startswith", Params: []string{"ptr", "ptr"}, Ret: "i32"},
	{Name: "endswith", Params: []string{"ptr", "ptr"}, Ret: "i32"},
}

// Shim holds the declared ir.Func handle for every Signatures entry,
// looked up by name when the emitter needs to call one.
type Shim struct {
	funcs map[string]ir.Func
}

// Declare registers every Signatures entry as an external declaration
// against mod, the way the teacher's generateGoStubs emits one
// "//go:noescape" stub per C function it found (main.go) — here, one
// DeclareExternFunc per runtime helper, unconditionally, since the whole
// bank is always potentially callable.
func Declare(sink ir.Sink, mod ir.Module) *Shim {
	sh := &Shim{funcs: make(map[string]ir.Func, len(Signatures))}
	for _, d := range Signatures {
		params := make([]ir.Type, len(d.Params))
		for i, p := range d.Params {
			params[i] = resolveType(sink, p)
		}
		ret := resolveType(sink, d.Ret)
		sh.funcs[d.Name] = sink.DeclareExternFunc(mod, d.Name, params, ret, d.Variadic)
	}
	return sh
}

// Func returns the declared handle for a runtime helper name.
func (s *Shim) Func(name string) (ir.Func, bool) {
	f, ok := s.funcs[name]
	return f, ok
}

func resolveType(sink ir.Sink, tag string) ir.Type {
	switch tag {
	case "ptr":
		return sink.PointerType()
	case "i32":
		return sink.IntType(32)
	case "i64":
		return sink.IntType(64)
	default:
		return sink.VoidType()
	}
}
