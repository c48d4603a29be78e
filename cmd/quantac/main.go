// Command quantac is the ahead-of-time Quanta compiler's CLI shell. It is
// kept as thin as the teacher's own main.go: argument plumbing into
// internal/compiler.Options, nothing else, per spec.md §1's exclusion of
// "a CLI" from the core itself (SPEC_FULL.md §10.1).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quanta-lang/quantac/internal/compiler"

	_ "github.com/quanta-lang/quantac/internal/backend/llvmir"
)

var command = &cobra.Command{
	Use:  "quantac source.qnt [-o output_directory]",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		target, _ := cmd.Flags().GetString("target")
		backendName, _ := cmd.Flags().GetString("backend")
		includePaths, _ := cmd.Flags().GetStringSlice("include-path")
		verbose, _ := cmd.Flags().GetBool("verbose")
		emitIR, _ := cmd.Flags().GetBool("emit-ir")

		return compiler.Compile(compiler.Options{
			Source:       args[0],
			Output:       output,
			Backend:      backendName,
			Target:       target,
			IncludePaths: includePaths,
			Verbose:      verbose,
			EmitIR:       emitIR,
		})
	},
}

func init() {
	command.Flags().StringP("output", "o", "", "output directory of generated files (default: source's own directory)")
	command.Flags().StringP("target", "t", "", "target triple override (default: the backend's default triple)")
	command.Flags().String("backend", "llvm", "registered ir.Sink backend to compile against")
	command.Flags().StringSliceP("include-path", "I", nil, "additional import search directory")
	command.Flags().BoolP("verbose", "v", false, "print each compilation stage as it runs")
	command.Flags().Bool("emit-ir", false, "also write the textual IR module next to the output artifact")
}

func main() {
	if err := command.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
