// Package sema holds the cross-function compile-time state spec.md §3
// describes: the global function registry and the per-function symbol
// table, plus the numeric-coercion rules of spec.md §7.
package sema

import (
	"github.com/samber/lo"

	"github.com/quanta-lang/quantac/internal/ast"
)

// ParamSchema is one entry in a function's parameter schema: its name,
// declared type name, byte width (if intN/floatN), and optional default
// value expression.
type ParamSchema struct {
	Name     string
	TypeName string
	Width    int
	Default  ast.Expr // nil if required
}

// FuncSchema is a function registry entry: the ordered parameter schema
// and declared return type.
type FuncSchema struct {
	ReturnType string
	Params     []ParamSchema
}

// Registry is the global function-name -> schema map (spec.md §3).
// Registering the same name again overwrites the earlier schema silently
// (spec.md §5).
type Registry struct {
	funcs map[string]FuncSchema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]FuncSchema)}
}

// Define adds or overwrites the schema for name.
func (r *Registry) Define(name string, schema FuncSchema) {
	r.funcs[name] = schema
}

// Lookup returns the schema for name and whether it is defined.
func (r *Registry) Lookup(name string) (FuncSchema, bool) {
	s, ok := r.funcs[name]
	return s, ok
}

// Delete removes name from the registry. Selective imports (`import
// mod.name`) do not call it: parseImport filters at harvest time, so a
// non-selected function is never registered (DESIGN.md open-question #2).
func (r *Registry) Delete(name string) {
	delete(r.funcs, name)
}

// Names returns every registered function name.
func (r *Registry) Names() []string {
	return lo.Keys(r.funcs)
}

// ParamIndex returns the slot index of a named parameter in schema, or -1.
func ParamIndex(schema FuncSchema, name string) int {
	for i, p := range schema.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}
