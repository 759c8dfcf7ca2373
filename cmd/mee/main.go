// Command mee evaluates arbitrary-precision math expressions from files,
// arguments, standard input, or an interactive prompt.
//
// Usage:
//
//	mee eval [FILE|-]... [-x EXPR]... [-n] [--given name=value]...
//	mee repl
//	mee history [-n N] [--clear]
//	mee version
package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Evaluation errors were already printed next to their inputs.
		if !errors.Is(err, errEvalFailed) {
			fmt.Fprintln(os.Stderr, "mee:", err)
		}
		os.Exit(exitUserError)
	}
	os.Exit(exitSuccess)
}
