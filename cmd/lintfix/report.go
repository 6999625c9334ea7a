package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkoosis/lintfix/internal/config"
	"github.com/dkoosis/lintfix/internal/report"
	"github.com/dkoosis/lintfix/pkg/mapper"
)

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report [file]",
		Short: "Re-render a run's summary report",
		Long: `report reads a summary log written by a previous run, or stdin, and
renders it again. It exits 1 when any section failed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.ResolveConfig(a.cliFlags(cmd))
			if err != nil {
				return err
			}
			data, err := a.readInput(args)
			if err != nil {
				return err
			}
			sections, err := report.Parse(data)
			if err != nil {
				return fmt.Errorf("parse report: %w", err)
			}
			patterns, err := mapper.FromReport(sections)
			if err != nil {
				return fmt.Errorf("map report: %w", err)
			}
			a.render(cfg, patterns)
			for _, s := range sections {
				if s.Status == report.StatusFail {
					return exitCode(1)
				}
			}
			return nil
		},
	}
}
