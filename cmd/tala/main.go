// Command tala is the thin CLI shell around the core pipeline (spec.md §6):
// flags select which phase to stop at, an optional debug flag drops into
// the step debugger, and AST persistence flags let a caller skip the
// earlier phases entirely. None of this dispatch logic is part of the core
// pipeline itself — spec.md §1 treats the CLI, AST persistence, and stdio
// plumbing as thin external collaborators around it.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tala-lang/tala/internal/analyzer"
	"github.com/tala-lang/tala/internal/ast"
	"github.com/tala-lang/tala/internal/debugger"
	"github.com/tala-lang/tala/internal/diag"
	"github.com/tala-lang/tala/internal/eval"
	"github.com/tala-lang/tala/internal/lexer"
	"github.com/tala-lang/tala/internal/parser"
	"github.com/tala-lang/tala/internal/token"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

type flags struct {
	verbose      bool
	tokenizeOnly bool
	parseOnly    bool
	analyzeOnly  bool
	debug        bool
	saveASTPath  string
	loadASTPath  string
}

func run(argv []string) int {
	var f flags
	exitCode := 0

	rootCmd := &cobra.Command{
		Use:           "tala [flags] <source> [program-args...]",
		Short:         "Tokenize, parse, analyze and evaluate a tala program",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = dispatch(f, args)
			return nil
		},
	}
	rootCmd.SetArgs(argv)

	rootCmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "emit pipeline trace logging to stderr")
	rootCmd.Flags().BoolVar(&f.tokenizeOnly, "tokenize", false, "stop after lexical analysis")
	rootCmd.Flags().BoolVar(&f.parseOnly, "parse", false, "stop after syntactic analysis")
	rootCmd.Flags().BoolVar(&f.analyzeOnly, "analyze", false, "stop after semantic analysis")
	rootCmd.Flags().BoolVar(&f.debug, "debug", false, "run under the interactive step debugger (implies evaluate)")
	rootCmd.Flags().StringVarP(&f.saveASTPath, "save-ast", "s", "", "persist the parsed tree to this path and skip analysis/evaluation")
	rootCmd.Flags().StringVarP(&f.loadASTPath, "load-ast", "l", "", "load a previously saved tree, skipping tokenize/parse")

	// Everything after the source file (and any flags preceding it) is the
	// interpreted program's own argv, per spec.md §6 — cobra must not treat
	// `-n` in `tala prog.tala -n` as a flag of its own.
	rootCmd.Flags().SetInterspersed(false)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode
}

// dispatch runs the pipeline according to f and returns the process exit
// code: the evaluated program's own return value on a successful run
// (spec.md §6), or 1 for any pipeline error, a runtime error included.
func dispatch(f flags, args []string) int {
	var sourcePath string
	programArgs := args

	if f.loadASTPath == "" {
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "tala: missing source file argument")
			return 1
		}
		sourcePath = args[0]
		programArgs = args[1:]
	}

	logOut := io.Discard
	if f.verbose {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logOut, nil))

	var prog *ast.Program

	if f.loadASTPath != "" {
		loaded, err := LoadAST(f.loadASTPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, diag.Render(diag.PhasePreparation, err))
			return 1
		}
		prog = loaded
	} else {
		src, err := os.Open(sourcePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, diag.Render(diag.PhasePreparation, err))
			return 1
		}
		defer src.Close()

		if f.tokenizeOnly {
			toks, err := lexer.Tokenize(src, lexer.WithLogger(logger))
			if err != nil {
				fmt.Fprintln(os.Stderr, diag.Render(diag.PhaseLexical, err))
				return 1
			}
			printTokens(toks)
			return 0
		}

		lx := lexer.New(src, lexer.WithLogger(logger))
		parsed, err := parser.Parse(lx)
		if err != nil {
			fmt.Fprintln(os.Stderr, diag.Render(diag.PhaseSyntactic, err))
			return 1
		}
		prog = parsed

		if f.saveASTPath != "" {
			if err := SaveAST(f.saveASTPath, prog); err != nil {
				fmt.Fprintln(os.Stderr, diag.Render(diag.PhasePreparation, err))
				return 1
			}
			return 0
		}

		if f.parseOnly {
			return 0
		}
	}

	if err := analyzer.Analyze(prog); err != nil {
		fmt.Fprintln(os.Stderr, diag.Render(diag.PhaseSemantic, err))
		return 1
	}
	if f.analyzeOnly {
		return 0
	}

	var frontend eval.Frontend
	if f.debug {
		frontend = debugger.New(programArgs, os.Stdin, os.Stdout)
	} else {
		frontend = eval.NewStdFrontend(programArgs, os.Stdin, os.Stdout)
	}

	result, err := eval.Interpret(prog, frontend)
	if err != nil {
		fmt.Fprintln(os.Stderr, diag.Render(diag.PhaseRuntime, err))
		return 1
	}
	return int(result)
}

// printTokens renders the raw token kind sequence, one per line — plain
// diagnostic output, not the AST pretty-printing spec.md §1 keeps external.
func printTokens(toks []token.Token) {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.String())
		b.WriteByte('\n')
	}
	fmt.Print(b.String())
}
