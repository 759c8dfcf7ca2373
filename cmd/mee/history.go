package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathexpr/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		n    int
		wipe bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear recorded evaluations",
		Long: `Show recorded evaluations, oldest first. Evaluations are recorded when
history is enabled with --history or history.enabled in config.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			store, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			if wipe {
				return store.Clear(cmd.Context())
			}
			entries, err := store.Recent(cmd.Context(), n)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "number", "n", 20, "number of entries to show; 0 shows all")
	cmd.Flags().BoolVar(&wipe, "clear", false, "delete all entries")
	return cmd
}

// printEntries writes history entries one per line. Failed evaluations are
// marked with "!".
func printEntries(w io.Writer, entries []history.Entry) {
	for _, e := range entries {
		mark := "="
		if e.Failed {
			mark = "!"
		}
		in := strings.ReplaceAll(e.Input, "\n", " ")
		fmt.Fprintf(w, "%s  %s  %s %s\n", e.At.Local().Format(time.DateTime), in, mark, e.Output)
	}
}
