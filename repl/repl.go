// Package repl implements the interactive Read-Eval-Print Loop for the
// Scrapscript toolchain.
//
// Grounded on the teacher's repl/repl.go (banner/color/readline-loop
// shape, Repl{Banner,Version,Author,Line,License,Prompt} struct,
// executeWithRecovery panic-recovery convention), regrounded onto
// Scrapscript semantics: the teacher's Evaluator carried a mutable
// Scope threaded through a session; this REPL instead threads an
// immutable *ast.Env forward across lines, replacing it with the
// merged result whenever a line evaluates to an EnvObject (i.e. the
// user entered a bare `name = value` binding), so later lines can
// refer to names bound by earlier ones.
package repl

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/scrapscript/scrapscript-go/ast"
	"github.com/scrapscript/scrapscript-go/builtin"
	"github.com/scrapscript/scrapscript-go/eval"
	"github.com/scrapscript/scrapscript-go/parser"
	"github.com/scrapscript/scrapscript-go/print"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl holds the session's cosmetic configuration (banner, version
// info, prompt) — no evaluator state, since that is rebuilt fresh each
// Start call and threaded locally through the read loop.
type Repl struct {
	Banner  string
	Version string
	Author  string
	Line    string
	License string
	Prompt  string
}

// New constructs a Repl.
func New(banner, version, author, line, license, prompt string) *Repl {
	return &Repl{Banner: banner, Version: version, Author: author, Line: line, License: license, Prompt: prompt}
}

func (r *Repl) printBanner(w io.Writer) {
	blueColor.Fprintf(w, "%s\n", r.Line)
	greenColor.Fprintf(w, "%s\n", r.Banner)
	blueColor.Fprintf(w, "%s\n", r.Line)
	yellowColor.Fprintln(w, "Version: "+r.Version+" | Author: "+r.Author+" | License: "+r.License)
	blueColor.Fprintf(w, "%s\n", r.Line)
	cyanColor.Fprintf(w, "%s\n", "Welcome to scrapscript!")
	cyanColor.Fprintf(w, "%s\n", "Type an expression and press enter.")
	cyanColor.Fprintf(w, "%s\n", "Type '.exit' to quit.")
	blueColor.Fprintf(w, "%s\n", r.Line)
}

// Start runs the interactive loop, reading from rd via readline and
// writing results/errors to w. rd is typically os.Stdin for a local
// session or a net.Conn for a served one (both satisfy io.ReadCloser).
func (r *Repl) Start(rd io.ReadCloser, w io.Writer) error {
	r.printBanner(w)

	rl, err := readline.NewEx(&readline.Config{Prompt: r.Prompt, Stdin: rd, Stdout: w})
	if err != nil {
		return err
	}
	defer rl.Close()

	env, err := builtin.Boot()
	if err != nil {
		redColor.Fprintf(w, "[BOOT ERROR] %v\n", err)
		env = builtin.Stdlib()
	}
	ev := eval.New()

	for {
		line, err := rl.Readline()
		if err != nil {
			w.Write([]byte("Goodbye!\n"))
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ".exit" {
			w.Write([]byte("Goodbye!\n"))
			return nil
		}
		rl.SaveHistory(line)
		env = r.evalLine(w, ev, env, line)
	}
}

// evalLine parses and evaluates one line of input against env,
// returning the environment subsequent lines should use: unchanged on
// error, or merged with the EnvObject's bindings if the line was a
// bare assignment.
func (r *Repl) evalLine(w io.Writer, ev *eval.Evaluator, env *ast.Env, line string) (next *ast.Env) {
	next = env
	defer func() {
		if rec := recover(); rec != nil {
			redColor.Fprintf(w, "[RUNTIME ERROR] %v\n", rec)
		}
	}()

	tree, err := parser.Parse(line)
	if err != nil {
		redColor.Fprintf(w, "%v\n", err)
		return env
	}
	result, err := ev.Eval(env, tree)
	if err != nil {
		redColor.Fprintf(w, "%v\n", err)
		return env
	}
	if envObj, ok := result.(*ast.EnvObject); ok {
		yellowColor.Fprintf(w, "%s\n", print.Print(result))
		return env.Merge(envObj.Env)
	}
	yellowColor.Fprintf(w, "%s\n", print.Print(result))
	return env
}
