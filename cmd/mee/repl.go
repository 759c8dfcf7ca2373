package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/internal/history"
)

const replHelp = `Enter an expression to evaluate it. Variables persist between lines.
Commands:
  :vars         list variables and their values
  :consts       list constants and their values
  :reset        forget all variables
  :history [N]  show the last N recorded evaluations (default 20)
  :help         show this help
  :quit         exit (also Ctrl-D)`

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Evaluate expressions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			store, err := a.recorder(cmd.Context())
			if err != nil {
				return err
			}

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)
			ln.SetCompleter(completer(mathexpr.DefaultFuncs()))
			loadLineHistory(ln, a.cfg.LineHistory)
			defer saveLineHistory(ln, a.cfg.LineHistory, a)

			s := newSession(a, cmd.OutOrStdout(), cmd.ErrOrStderr(), store)
			fmt.Fprintln(s.out, "mee", version, "- :help for commands")
			return s.run(cmd.Context(), ln)
		},
	}
}

// prompter reads input lines. *liner.State implements it.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// session is the state of an interactive evaluation session.
type session struct {
	app    *app
	ctx    *mathexpr.Context
	out    io.Writer
	errw   io.Writer
	store  *history.Store
	prompt string
}

func newSession(a *app, out, errw io.Writer, store *history.Store) *session {
	return &session{
		app:    a,
		ctx:    mathexpr.NewContext(mathexpr.Prec(a.cfg.Precision)),
		out:    out,
		errw:   errw,
		store:  store,
		prompt: a.cfg.Prompt,
	}
}

// run reads and evaluates lines until EOF or :quit.
func (s *session) run(cx context.Context, p prompter) error {
	for {
		line, err := p.Prompt(s.prompt)
		switch {
		case errors.Is(err, io.EOF):
			fmt.Fprintln(s.out)
			return nil
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case err != nil:
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		p.AppendHistory(line)
		if strings.HasPrefix(line, ":") {
			if s.command(cx, line) {
				return nil
			}
			continue
		}
		s.eval(cx, line)
	}
}

func (s *session) eval(cx context.Context, line string) {
	v, err := s.ctx.EvalString(line)
	s.app.record(cx, s.store, line, v, err)
	if err != nil {
		fmt.Fprintln(s.errw, err)
		return
	}
	if r := mathexpr.Format(v, nil); r != "" {
		fmt.Fprintln(s.out, r)
	}
}

// command runs a REPL command and reports whether the session should end.
func (s *session) command(cx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, replHelp)
	case ":vars":
		s.list(s.ctx.Vars())
	case ":consts":
		s.list(s.ctx.Constants())
	case ":reset":
		s.ctx = mathexpr.NewContext(mathexpr.Prec(s.ctx.Prec()))
	case ":history":
		s.history(cx, fields[1:])
	default:
		fmt.Fprintf(s.errw, "unknown command %s; try :help\n", fields[0])
	}
	return false
}

func (s *session) list(names []string) {
	for _, name := range names {
		fmt.Fprintf(s.out, "%s = %v\n", name, s.ctx.Lookup(name))
	}
}

func (s *session) history(cx context.Context, args []string) {
	if s.store == nil {
		fmt.Fprintln(s.errw, "history is disabled; enable it with --history or history.enabled in config.yaml")
		return
	}
	n := 20
	if len(args) > 0 {
		k, err := strconv.Atoi(args[0])
		if err != nil || k <= 0 {
			fmt.Fprintf(s.errw, "usage: :history [N], not %q\n", strings.Join(args, " "))
			return
		}
		n = k
	}
	entries, err := s.store.Recent(cx, n)
	if err != nil {
		fmt.Fprintln(s.errw, err)
		return
	}
	printEntries(s.out, entries)
}

// completer completes function names at the end of the line.
func completer(names []string) liner.Completer {
	return func(line string) []string {
		i := strings.LastIndexFunc(line, func(r rune) bool {
			return !(r == '_' || r == '.' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9')
		})
		prefix, word := line[:i+1], line[i+1:]
		if word == "" {
			return nil
		}
		var r []string
		for _, name := range names {
			if strings.HasPrefix(name, word) {
				r = append(r, prefix+name)
			}
		}
		return r
	}
}

func loadLineHistory(ln *liner.State, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	ln.ReadHistory(f)
}

func saveLineHistory(ln *liner.State, path string, a *app) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		a.log.Warn().Err(err).Msg("couldn't save line history")
		return
	}
	f, err := os.Create(path)
	if err != nil {
		a.log.Warn().Err(err).Msg("couldn't save line history")
		return
	}
	defer f.Close()
	if _, err := ln.WriteHistory(f); err != nil {
		a.log.Warn().Err(err).Msg("couldn't save line history")
	}
}
