package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkoosis/lintfix/internal/config"
	"github.com/dkoosis/lintfix/pkg/classify"
	"github.com/dkoosis/lintfix/pkg/diagnostic"
	"github.com/dkoosis/lintfix/pkg/mapper"
)

var errNoInput = errors.New("no input")

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Analyze saved lint output (stylish text, ESLint JSON, SARIF or a run report)",
		Long: `parse reads lint output from file, or from stdin when no file is given,
and prints the classified issues. It exits 1 when any error-severity
issue is present.`,
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

			res, format, err := diagnostic.ParseOutput(data, diagnostic.Options{Extensions: cfg.Extensions})
			if err != nil {
				return fmt.Errorf("parse %s: %w", format, err)
			}
			a.logger(cfg).Debug("parsed input", "format", format, "diagnostics", res.Total(), "files", len(res.Files))

			analysis := classify.Analyze(res.Diagnostics, cfg.Rules)
			a.render(cfg, mapper.FromAnalysis(analysis, res.Diagnostics))
			if analysis.ErrorCount > 0 {
				return exitCode(1)
			}
			return nil
		},
	}
}

// readInput reads the named file, or stdin when args is empty.
func (a *app) readInput(args []string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(a.stdin)
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errNoInput
	}
	return data, nil
}
