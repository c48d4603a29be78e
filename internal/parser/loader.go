package parser

// Loader resolves an imported module name (e.g. "strings" for `import
// strings`) to source bytes. Reading from disk is an external collaborator
// per spec.md §1 ("out of scope: ...reading files from disk"), so the
// parser never touches os itself — internal/compiler wires a concrete
// filesystem-backed Loader, the same boundary the teacher draws around
// clang/objdump invocations (goat's main.go calls exec.Command, never the
// core translation logic).
type Loader interface {
	// Load returns the source bytes for the module named name (without the
	// ".qnt" extension) and a canonical path used to dedupe the
	// loaded-module set.
	Load(name string) (src []byte, canonicalPath string, err error)
}
