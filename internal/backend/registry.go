// Package backend is the registry of concrete ir.Sink implementations,
// looked up by name. This is a direct rename of the teacher's
// RegisterParser/GetParser/ListArchitectures (arch.go): there, a map from
// architecture name to ArchParser; here, a map from backend name to
// ir.Sink.
package backend

import "fmt"

import "github.com/quanta-lang/quantac/internal/ir"

var sinks = map[string]ir.Sink{}

// Register registers a backend under name. Concrete backends call this
// from an init() function, mirroring the teacher's per-architecture
// RegisterParser calls.
func Register(name string, s ir.Sink) {
	sinks[name] = s
}

// Get returns the registered backend for name.
func Get(name string) (ir.Sink, error) {
	if s, ok := sinks[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("unsupported backend: %s (available: %v)", name, List())
}

// List returns every registered backend name.
func List() []string {
	names := make([]string, 0, len(sinks))
	for name := range sinks {
		names = append(names, name)
	}
	return names
}
