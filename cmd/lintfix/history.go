package main

import (
	"github.com/spf13/cobra"

	"github.com/dkoosis/lintfix/internal/config"
	"github.com/dkoosis/lintfix/internal/history"
	"github.com/dkoosis/lintfix/pkg/mapper"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [dir]",
		Short: "Show recorded runs for a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := a.cliFlags(cmd)
			if len(args) == 1 {
				cli.Root = args[0]
			}
			cfg, err := config.ResolveConfig(cli)
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.ResolvePath(cfg.HistoryFile))
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(projectRoot(cfg), limit)
			if err != nil {
				return err
			}
			a.render(cfg, mapper.FromHistory(runs))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", historyDepth, "number of runs to show")
	return cmd
}
