// Package compiler drives the lex -> parse -> emit -> serialize pipeline
// spec.md §1 and SPEC_FULL.md §10.3 describe, the direct analogue of the
// teacher's TranslateUnit/Translate pairing (main.go, arch.go): one struct
// carrying the flag-derived options, one method that runs every stage in
// order and stops at the first boundary the core intentionally doesn't
// cross (reading files is this package's job, not the lexer/parser's; the
// actual object/link step is an external collaborator beyond Serialize).
package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quanta-lang/quantac/internal/backend"
	"github.com/quanta-lang/quantac/internal/diag"
	"github.com/quanta-lang/quantac/internal/emit"
	"github.com/quanta-lang/quantac/internal/lexer"
	"github.com/quanta-lang/quantac/internal/parser"
	"github.com/quanta-lang/quantac/internal/sema"
)

// Options mirrors SPEC_FULL.md §10.3's single flags-in struct, the
// direct analogue of the teacher's TranslateUnit fields.
type Options struct {
	Source       string
	Output       string // output directory; defaults to Source's own directory
	Backend      string // registered ir.Sink name; defaults to "llvm"
	Target       string // target triple override; "" uses the backend's default triple
	IncludePaths []string
	Verbose      bool
	EmitIR       bool // also write the textual IR next to the serialized artifact
}

// stage logs one pipeline stage name when Verbose is set, mirroring the
// teacher's own practice of printing each clang/objdump invocation it
// shells out to when -v is passed.
func (o Options) stage(name string) {
	if o.Verbose {
		fmt.Fprintf(os.Stderr, "quantac: %s\n", name)
	}
}

// Compile runs the full pipeline for opts.Source and writes the resulting
// module. Diagnostics accumulate across lexing, parsing, and emission per
// spec.md §7's policy; the only stage skipped once the bag has recorded an
// error is serialization, since an IR module built over bad input isn't a
// safe artifact to hand to a linker.
func Compile(opts Options) error {
	src, err := os.ReadFile(opts.Source)
	if err != nil {
		return fmt.Errorf("reading %s: %w", opts.Source, err)
	}

	bag := &diag.Bag{}

	opts.stage("lexing " + opts.Source)
	toks := lexer.Lex(src, bag)

	opts.stage("parsing")
	registry := sema.NewRegistry()
	loader := NewFileLoader(filepath.Dir(opts.Source), opts.IncludePaths)
	prog := parser.New(toks, bag, registry, nil, loader).Parse()

	backendName := opts.Backend
	if backendName == "" {
		backendName = "llvm"
	}
	sink, err := backend.Get(backendName)
	if err != nil {
		return err
	}

	opts.stage("emitting IR")
	moduleName := strings.TrimSuffix(filepath.Base(opts.Source), filepath.Ext(opts.Source))
	mod := emit.New(sink, registry, bag).EmitProgram(prog, moduleName)
	if opts.Target != "" {
		sink.SetTargetTriple(mod, opts.Target)
	}

	if bag.HasErrors() {
		bag.Fprint(os.Stderr)
		return fmt.Errorf("compilation failed with %d diagnostic(s)", len(bag.All()))
	}

	outDir := opts.Output
	if outDir == "" {
		outDir, err = filepath.Abs(filepath.Dir(opts.Source))
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	outPath := filepath.Join(outDir, moduleName+".ll")
	opts.stage("serializing to " + outPath)
	if err := sink.Serialize(mod, outPath); err != nil {
		return fmt.Errorf("serializing %s: %w", outPath, err)
	}

	if opts.EmitIR {
		debugPath := filepath.Join(outDir, moduleName+".emit.ll")
		if err := sink.Serialize(mod, debugPath); err != nil {
			return fmt.Errorf("writing debug IR %s: %w", debugPath, err)
		}
		opts.stage("wrote debug IR to " + debugPath)
	}
	return nil
}
