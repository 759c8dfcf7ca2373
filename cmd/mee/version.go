package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is the mee release. Builds may override it with
// -ldflags "-X main.version=...".
var version = "v0.3.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mee version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "mee", version)
		},
	}
}
