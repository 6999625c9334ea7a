package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dkoosis/lintfix/internal/config"
	"github.com/dkoosis/lintfix/pkg/patch"
)

func newPatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Apply a single fix to a source file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "unused <file> <line> <name>",
		Short: "Mark an unused binding as intentionally unused",
		Long: `unused removes name from an import list, drops an unused default import,
or prefixes the binding with an underscore, whichever applies on line.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := parseLine(args[1])
			if err != nil {
				return err
			}
			p, err := a.patcher(cmd)
			if err != nil {
				return err
			}
			if !p.FixUnusedBinding(args[0], line, args[2]) {
				return fmt.Errorf("%s:%d: no fix for %q", args[0], line, args[2])
			}
			fmt.Fprintf(a.stdout, "patched %s:%d\n", args[0], line)
			return nil
		},
	})

	var near bool
	errCmd := &cobra.Command{
		Use:   "error <file> <line>",
		Short: "Rename an unused caught error binding",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := parseLine(args[1])
			if err != nil {
				return err
			}
			p, err := a.patcher(cmd)
			if err != nil {
				return err
			}
			var ok bool
			if near {
				ok = p.FixErrorBindingNear(args[0], line)
			} else {
				ok = p.FixUnusedErrorBinding(args[0], line)
			}
			if !ok {
				return fmt.Errorf("%s:%d: no error binding to rename", args[0], line)
			}
			fmt.Fprintf(a.stdout, "patched %s:%d\n", args[0], line)
			return nil
		},
	}
	errCmd.Flags().BoolVar(&near, "near", false, "also try the lines just above")
	cmd.AddCommand(errCmd)
	return cmd
}

func (a *app) patcher(cmd *cobra.Command) (*patch.Patcher, error) {
	cfg, err := config.ResolveConfig(a.cliFlags(cmd))
	if err != nil {
		return nil, err
	}
	return patch.New(
		patch.WithLookback(cfg.Lookback),
		patch.WithErrorNames(cfg.Rules.ErrorNames...),
		patch.WithLogger(a.logger(cfg)),
	), nil
}

func parseLine(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid line %q: must be a positive number", s)
	}
	return n, nil
}
