package sema

import "github.com/quanta-lang/quantac/internal/ir"

// Slot describes one local variable's storage in the owning function: its
// IR stack slot, IR type, source-level type name, and (for arrays/lists)
// the element type name.
type Slot struct {
	Value       ir.Value // stack-allocated pointer (alloca) holding the local
	Type        ir.Type
	TypeName    string
	ElementType string // non-"" for FixedArrayDecl/DynamicListDecl
	Width       int
}

// SymbolTable is the per-function local-name -> Slot map (spec.md §3). All
// locals in a function share one flat scope; a new declaration of an
// already-used name either reuses the existing slot (if the new storage
// width is >= the old one) or allocates a fresh one, per spec.md §3's
// shadowing rule (DESIGN.md open-question #1: this is the rule we keep).
type SymbolTable struct {
	slots map[string]Slot
}

// NewSymbolTable returns an empty table, as required at entry to each Func
// (spec.md's invariant: "Symbol table is empty before and after each Func
// lowering except during its body").
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{slots: make(map[string]Slot)}
}

// Declare records name's slot, applying the shadow-or-reuse rule: if name
// already has a slot and newWidth < old width, a fresh slot is always
// allocated by the caller and passed in here; this method just records
// whichever slot the caller decided to keep.
func (s *SymbolTable) Declare(name string, slot Slot) {
	s.slots[name] = slot
}

// ShouldReuseSlot reports whether re-declaring name with newWidth can reuse
// the existing slot (new width >= old width), per spec.md §3.
func (s *SymbolTable) ShouldReuseSlot(name string, newWidth int) (Slot, bool) {
	old, ok := s.slots[name]
	if !ok {
		return Slot{}, false
	}
	if newWidth >= old.Width {
		return old, true
	}
	return Slot{}, false
}

// Lookup returns name's slot and whether it is declared.
func (s *SymbolTable) Lookup(name string) (Slot, bool) {
	sl, ok := s.slots[name]
	return sl, ok
}

// Clear empties the table (called at Func exit).
func (s *SymbolTable) Clear() {
	s.slots = make(map[string]Slot)
}
