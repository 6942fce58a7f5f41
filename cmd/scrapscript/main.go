// Command scrapscript is the CLI driver for the Scrapscript toolchain:
// an interactive REPL, a file runner, and a line-oriented REPL server.
//
// Grounded on the teacher's main/main.go (os.Args dispatch: REPL vs.
// file vs. "server <port>" modes, panic-recovery-wrapped execution,
// colorized error/result output) and repl/repl.go, restructured onto
// github.com/spf13/cobra subcommands per SPEC_FULL §10/§11 (the
// teacher's hand-rolled os.Args[1] switch and showHelp/showVersion are
// replaced by cobra's builtin --help/--version machinery).
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/scrapscript/scrapscript-go/builtin"
	"github.com/scrapscript/scrapscript-go/eval"
	"github.com/scrapscript/scrapscript-go/parser"
	"github.com/scrapscript/scrapscript-go/print"
	"github.com/scrapscript/scrapscript-go/repl"
	"github.com/scrapscript/scrapscript-go/types"
)

const (
	version = "v1.0.0"
	author  = "the scrapscript-go authors"
	license = "MIT"
	prompt  = "scrap >>> "
	line    = "----------------------------------------------------------------"
	banner  = `
   ____                       _____           _       _
  / ___|  ___ _ __ __ _ _ __ / ____|___ _ __ (_)_ __ | |_
  \___ \ / __| '__/ _| | '_ \\___ \ / __| '__| | '_ \| __|
   ___) | (__| | | (_| | |_) |___) | (__| |  | | |_) | |_
  |____/ \___|_|  \__,_| .__/_____/ \___|_|  |_| .__/ \__|
                       |_|                     |_|
`
)

var (
	redColor    = color.New(color.FgRed)
	yellowColor = color.New(color.FgYellow)
	cyanColor   = color.New(color.FgCyan)
)

func main() {
	root := &cobra.Command{
		Use:     "scrapscript",
		Short:   "Scrapscript language toolchain",
		Version: version,
	}

	var showType bool
	runCmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Execute a Scrapscript source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0], showType)
		},
	}
	runCmd.Flags().BoolVar(&showType, "type", false, "print the inferred type before evaluating")

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive REPL",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := repl.New(banner, version, author, line, license, prompt)
			return r.Start(os.Stdin, os.Stdout)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve <port>",
		Short: "Start a line-oriented REPL server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(args[0])
		},
	}

	fmtCmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Parse a source file and print it back in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmtFile(args[0])
		},
	}

	root.AddCommand(runCmd, replCmd, serveCmd, fmtCmd)

	if len(os.Args) == 1 {
		r := repl.New(banner, version, author, line, license, prompt)
		if err := r.Start(os.Stdin, os.Stdout); err != nil {
			redColor.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// runFile reads, parses, optionally type-checks, and evaluates a
// Scrapscript source file, mirroring the teacher's
// executeFileWithRecovery (panic recovery, colorized error reporting,
// process exit code 1 on failure).
func runFile(path string, showType bool) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			redColor.Fprintf(os.Stderr, "[RUNTIME ERROR] %v\n", rec)
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	src, readErr := os.ReadFile(path)
	if readErr != nil {
		redColor.Fprintf(os.Stderr, "[FILE ERROR] could not read %q: %v\n", path, readErr)
		return readErr
	}

	tree, parseErr := parser.Parse(string(src))
	if parseErr != nil {
		redColor.Fprintf(os.Stderr, "%v\n", parseErr)
		return parseErr
	}

	if showType {
		ty, inferErr := types.Infer(tree, types.DefaultOperatorContext(), nil)
		if inferErr != nil {
			redColor.Fprintf(os.Stderr, "%v\n", inferErr)
			return inferErr
		}
		cyanColor.Fprintf(os.Stdout, ":: %s\n", ty.Find().String())
	}

	env, bootErr := builtin.Boot()
	if bootErr != nil {
		redColor.Fprintf(os.Stderr, "[BOOT ERROR] %v\n", bootErr)
		return bootErr
	}

	result, evalErr := eval.New().Eval(env, tree)
	if evalErr != nil {
		redColor.Fprintf(os.Stderr, "%v\n", evalErr)
		return evalErr
	}
	yellowColor.Fprintf(os.Stdout, "%s\n", print.Print(result))
	return nil
}

// fmtFile parses path and writes its canonical pretty-printed form to
// stdout, without evaluating it — a thin drive of the print package,
// useful for normalizing source layout.
func fmtFile(path string) error {
	src, readErr := os.ReadFile(path)
	if readErr != nil {
		redColor.Fprintf(os.Stderr, "[FILE ERROR] could not read %q: %v\n", path, readErr)
		return readErr
	}

	tree, parseErr := parser.Parse(string(src))
	if parseErr != nil {
		redColor.Fprintf(os.Stderr, "%v\n", parseErr)
		return parseErr
	}

	fmt.Fprintln(os.Stdout, print.Print(tree))
	return nil
}

// serve starts a TCP listener, handing each connection its own REPL
// session (grounded on the teacher's main.startServer/handleClient:
// one goroutine per connection, the connection itself doubling as
// stdin/stdout for that session's REPL).
func serve(port string) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		redColor.Fprintf(os.Stderr, "[SERVER ERROR] failed to listen on %s: %v\n", port, err)
		return err
	}
	defer listener.Close()
	cyanColor.Fprintf(os.Stdout, "scrapscript REPL server listening on :%s\n", port)

	for {
		conn, err := listener.Accept()
		if err != nil {
			redColor.Fprintf(os.Stderr, "[SERVER ERROR] accept failed: %v\n", err)
			continue
		}
		go func() {
			defer conn.Close()
			r := repl.New(banner, version, author, line, license, prompt)
			_ = r.Start(conn, conn)
		}()
	}
}
