package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/internal/history"
)

// errEvalFailed reports that at least one input failed to evaluate. The
// errors themselves have already been printed.
var errEvalFailed = errors.New("evaluation failed")

type evalOptions struct {
	exprs  []string
	givens []string
	lines  bool
	echo   bool
}

func newEvalCmd(a *app) *cobra.Command {
	var o evalOptions
	cmd := &cobra.Command{
		Use:   "eval [FILE|-]...",
		Short: "Evaluate expressions from files, arguments, or standard input",
		Long: `Evaluate each input as one expression with a fresh set of variables and
print its result. Inputs are the named files ("-" is standard input) followed
by any -x expressions. With no inputs, standard input is read.

Errors are printed to standard error, and mee exits with status 1 if any
input failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			return a.runEval(cmd, args, &o)
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&o.exprs, "expr", "x", nil, "expression to evaluate (any number of times)")
	f.StringArrayVar(&o.givens, "given", nil, "name=value variable definition (any number of times)")
	f.BoolVarP(&o.lines, "lines", "n", false, "evaluate separate input lines as separate expressions")
	f.BoolVar(&o.echo, "echo", false, "print parse trees")
	return cmd
}

// source is one input to evaluate.
type source struct {
	name string
	open func() (io.ReadCloser, error)
}

func (a *app) runEval(cmd *cobra.Command, args []string, o *evalOptions) error {
	prec := a.cfg.Precision
	vars, err := parseGivens(o.givens, prec)
	if err != nil {
		return err
	}
	srcs := sources(cmd, args, o.exprs)
	store, err := a.recorder(cmd.Context())
	if err != nil {
		return err
	}

	ev := evaluator{
		app:   a,
		out:   cmd.OutOrStdout(),
		errw:  cmd.ErrOrStderr(),
		store: store,
		echo:  o.echo,
	}
	failed := false
	for _, src := range srcs {
		ctx := mathexpr.NewContext(mathexpr.Prec(prec), mathexpr.SetVars(vars))
		ok, err := ev.run(cmd.Context(), ctx, src, o.lines)
		if err != nil {
			// An unreadable input is reported like a failed expression so
			// the rest of the inputs still run.
			a.log.Debug().Err(err).Str("source", src.name).Msg("unreadable input")
			fmt.Fprintln(ev.errw, err)
		}
		failed = failed || !ok
	}
	if failed {
		return errEvalFailed
	}
	return nil
}

// sources lists the inputs in the order they are evaluated.
func sources(cmd *cobra.Command, files, exprs []string) []source {
	stdin := func() (io.ReadCloser, error) { return io.NopCloser(cmd.InOrStdin()), nil }
	var r []source
	for _, name := range files {
		name := name
		if name == "-" {
			r = append(r, source{name: "<stdin>", open: stdin})
			continue
		}
		r = append(r, source{name: name, open: func() (io.ReadCloser, error) { return os.Open(name) }})
	}
	for i, x := range exprs {
		x := x
		r = append(r, source{
			name: fmt.Sprintf("<expr %d>", i+1),
			open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(x)), nil },
		})
	}
	if len(r) == 0 {
		r = append(r, source{name: "<stdin>", open: stdin})
	}
	return r
}

// parseGivens evaluates name=value definitions at the given precision.
func parseGivens(givens []string, prec uint) (map[string]mathexpr.Value, error) {
	if len(givens) == 0 {
		return nil, nil
	}
	consts := mathexpr.NewContext(mathexpr.Prec(prec)).Constants()
	vars := make(map[string]mathexpr.Value, len(givens))
	for _, s := range givens {
		name, val, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		name, val = strings.TrimSpace(name), strings.TrimSpace(val)
		if slices.Contains(consts, name) {
			return nil, fmt.Errorf("setting %s: cannot assign to constant %q", name, name)
		}
		r, err := mathexpr.EvalString(val, mathexpr.Prec(prec))
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", name, err)
		}
		vars[name] = r
	}
	return vars, nil
}

// evaluator evaluates sources and prints their results.
type evaluator struct {
	app   *app
	out   io.Writer
	errw  io.Writer
	store *history.Store
	echo  bool
}

// run evaluates one input. ok is false if any expression in it failed.
// err is non-nil only if the input couldn't be read.
func (ev *evaluator) run(cx context.Context, ctx *mathexpr.Context, src source, lines bool) (ok bool, err error) {
	rc, err := src.open()
	if err != nil {
		return false, err
	}
	defer rc.Close()
	start := time.Now()
	ev.app.log.Debug().Str("source", src.name).Uint("prec", ctx.Prec()).Bool("lines", lines).Msg("evaluating")
	defer func() {
		ev.app.log.Debug().Str("source", src.name).Dur("elapsed", time.Since(start)).Bool("ok", ok).Msg("evaluated")
	}()
	if lines {
		return ev.lines(cx, ctx, src.name, rc)
	}
	b, err := io.ReadAll(rc)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", src.name, err)
	}
	text := strings.TrimSpace(string(b))
	e, err := mathexpr.ParseString(string(b))
	if err != nil {
		ev.report(cx, text, "", nil, err)
		return false, nil
	}
	v, err := ctx.Eval(e)
	ev.report(cx, text, e.String(), v, err)
	return err == nil, nil
}

// lines evaluates each line of r as its own expression in ctx. An expression
// continues onto the next line when the line ends where a term is expected.
func (ev *evaluator) lines(cx context.Context, ctx *mathexpr.Context, name string, r io.Reader) (bool, error) {
	in := newLineScanner(bufio.NewReader(r))
	ok := true
	for {
		// First check whether we're done with the input.
		if _, _, err := in.ReadRune(); err != nil {
			if errors.Is(err, io.EOF) {
				return ok, nil
			}
			return false, fmt.Errorf("reading %s: %w", name, err)
		}
		in.UnreadRune()
		line := in.line
		in.mark()
		e, err := mathexpr.Parse(in, mathexpr.StopOn('\n'))
		if err != nil {
			in.skipLine()
		}
		text, line := trimInput(in.taken(), line)
		if err != nil {
			ev.report(cx, text, "", nil, fmt.Errorf("%s:%d: %w", name, line, err))
			ok = false
			continue
		}
		if text == "" {
			continue
		}
		v, err := ctx.Eval(e)
		if err != nil {
			err = fmt.Errorf("%s:%d: %w", name, line, err)
			ok = false
		}
		ev.report(cx, text, e.String(), v, err)
	}
}

// trimInput trims whitespace around an expression's text and advances line
// past any blank lines before it.
func trimInput(text string, line int) (string, int) {
	t := strings.TrimLeftFunc(text, unicode.IsSpace)
	line += strings.Count(text[:len(text)-len(t)], "\n")
	return strings.TrimRightFunc(t, unicode.IsSpace), line
}

// report prints the result of one evaluation and records it in the history.
func (ev *evaluator) report(cx context.Context, input, tree string, v mathexpr.Value, err error) {
	if ev.echo && tree != "" {
		fmt.Fprintf(ev.out, "%s : ", tree)
	}
	if input != "" {
		ev.app.record(cx, ev.store, input, v, err)
	}
	if err != nil {
		if ev.echo && tree != "" {
			fmt.Fprintln(ev.out)
		}
		fmt.Fprintln(ev.errw, err)
		return
	}
	if s := mathexpr.Format(v, nil); s != "" || ev.echo && tree != "" {
		fmt.Fprintln(ev.out, s)
	}
}

// lineScanner is an io.RuneScanner that tracks line numbers and remembers the
// text read since the last mark.
type lineScanner struct {
	src io.RuneScanner
	// line is the line number of the next rune.
	line int
	// last is the last rune read, or -1 before any or after an unread.
	last rune
	buf  strings.Builder
}

func newLineScanner(src io.RuneScanner) *lineScanner {
	return &lineScanner{src: src, line: 1, last: -1}
}

func (s *lineScanner) ReadRune() (rune, int, error) {
	r, sz, err := s.src.ReadRune()
	if err != nil {
		return r, sz, err
	}
	s.last = r
	if r == '\n' {
		s.line++
	}
	s.buf.WriteRune(r)
	return r, sz, nil
}

func (s *lineScanner) UnreadRune() error {
	if err := s.src.UnreadRune(); err != nil {
		return err
	}
	if s.last == '\n' {
		s.line--
	}
	if t := s.buf.String(); t != "" {
		_, n := utf8.DecodeLastRuneInString(t)
		t = t[:len(t)-n]
		s.buf.Reset()
		s.buf.WriteString(t)
	}
	s.last = -1
	return nil
}

// mark starts recording read text anew.
func (s *lineScanner) mark() {
	s.buf.Reset()
}

// taken returns the text read since the last mark.
func (s *lineScanner) taken() string {
	return s.buf.String()
}

// skipLine discards the rest of the current line, unless the last rune read
// ended it.
func (s *lineScanner) skipLine() {
	if s.last == '\n' {
		return
	}
	for {
		r, _, err := s.ReadRune()
		if err != nil || r == '\n' {
			return
		}
	}
}
