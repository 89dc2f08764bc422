package main

import (
	"fmt"
	"io"
	"os"

	"github.com/simplec/scc/pkg/ast"
	"github.com/simplec/scc/pkg/codegen"
	"github.com/simplec/scc/pkg/parser"
	"github.com/simplec/scc/pkg/semantic"
	"github.com/simplec/scc/pkg/version"
	"github.com/spf13/cobra"
)

var (
	outputFile  string
	emitAsm     bool
	dumpAST     bool
	debug       bool
	showVersion bool
)

var rootCmd = &cobra.Command{
	Use:   "scc [source file]",
	Short: "Simple C compiler " + version.GetVersion(),
	Long: `scc compiles a Simple C source file to x86-64 System V assembly.

With no source file, scc reads from stdin. With no -o, it writes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Println(version.GetFullVersion())
			return nil
		}

		var src []byte
		var err error
		if len(args) == 0 {
			src, err = io.ReadAll(os.Stdin)
		} else {
			src, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		return compile(string(src))
	},
}

func init() {
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.Flags().BoolVarP(&emitAsm, "S", "S", true, "emit assembly (the only supported output form)")
	rootCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the resolved AST instead of compiling")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "trace each codegen emission to stderr")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show version")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// compile runs the lexer, parser, semantic analyzer, and code generator in
// sequence. A nonzero semantic error count aborts before codegen ever runs;
// an internal invariant violation inside codegen panics, which is recovered
// here and reported distinctly from an ordinary compile error.
func compile(src string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	prog, err := parser.Parse(src)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	analysis := semantic.Analyze(prog)
	if analysis.ErrorCount() > 0 {
		for _, e := range analysis.Errors() {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("%d error(s)", analysis.ErrorCount())
	}

	if dumpAST {
		return ast.Fprint(os.Stdout, prog)
	}

	emitter := codegen.NewEmitter()
	if debug {
		emitter.Debug = func(line string) { fmt.Fprintln(os.Stderr, line) }
	}
	asm := emitter.Generate(prog)

	out := os.Stdout
	if outputFile != "" {
		f, ferr := os.Create(outputFile)
		if ferr != nil {
			return fmt.Errorf("creating output file: %w", ferr)
		}
		defer f.Close()
		out = f
	}
	_, err = io.WriteString(out, asm)
	return err
}
