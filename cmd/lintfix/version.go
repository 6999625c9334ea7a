package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkoosis/lintfix/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "lintfix %s (commit %s, built %s)\n", version.Version, version.CommitHash, version.BuildDate)
		},
	}
}
