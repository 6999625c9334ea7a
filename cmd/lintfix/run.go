package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkoosis/lintfix/internal/config"
	"github.com/dkoosis/lintfix/internal/history"
	"github.com/dkoosis/lintfix/internal/pipeline"
	"github.com/dkoosis/lintfix/internal/progress"
	"github.com/dkoosis/lintfix/pkg/mapper"
	"github.com/dkoosis/lintfix/pkg/pattern"
)

type runOptions struct {
	skipTypecheck bool
	skipSecondary bool
	logDir        string
	maxIterations int
	timeout       time.Duration
	noTUI         bool
	noHistory     bool
}

func newRunCmd(a *app) *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Run the full detect, fix and report pipeline",
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return a.runPipeline(cmd, args, o)
	}

	f := cmd.Flags()
	f.BoolVar(&o.skipTypecheck, "skip-typecheck", false, "skip the type-check phase")
	f.BoolVar(&o.skipSecondary, "skip-secondary", false, "skip the secondary analysis phase")
	f.StringVar(&o.logDir, "log-dir", "", "directory for run logs (default .lintfix/logs)")
	f.IntVar(&o.maxIterations, "max-iterations", config.DefaultMaxIterations, "maximum fix and re-detect passes")
	f.DurationVar(&o.timeout, "timeout", config.DefaultTimeout, "timeout for each external command")
	f.BoolVar(&o.noTUI, "no-tui", false, "print plain progress lines instead of the interactive view")
	f.BoolVar(&o.noHistory, "no-history", false, "do not record this run in the history database")
	return cmd
}

func (a *app) runPipeline(cmd *cobra.Command, args []string, o runOptions) error {
	cli := a.cliFlags(cmd)
	if len(args) == 1 {
		cli.Root = args[0]
	}
	cli.LogDir = o.logDir
	cli.MaxIterations, cli.MaxIterationsSet = o.maxIterations, cmd.Flags().Changed("max-iterations")
	cli.Timeout, cli.TimeoutSet = o.timeout, cmd.Flags().Changed("timeout")
	cli.NoTUI = o.noTUI
	cli.SkipTypecheck = o.skipTypecheck
	cli.SkipSecondary = o.skipSecondary
	cli.NoHistory = o.noHistory

	cfg, err := config.ResolveConfig(cli)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := a.logger(cfg)
	debugConfig(log, cfg)

	var obs pipeline.Observer
	var tui *progress.TUI
	if !cfg.NoTUI && isTTYWriter(a.stderr) {
		tui = progress.NewTUI("lintfix "+cfg.Root, a.stderr, cancel)
		tui.Start()
		obs = tui
		// The view owns the terminal; events still reach the run's log file.
		log = slog.New(slog.DiscardHandler)
	} else {
		obs = progress.NewPlain(progress.NewConsole(a.stderr, cfg.NoColor), cfg.Debug)
	}

	sum, err := pipeline.New(cfg, pipeline.WithObserver(obs), pipeline.WithLogger(log)).Run(ctx)
	if tui != nil {
		if terr := tui.Stop(); terr != nil {
			a.logger(cfg).Warn("progress view failed", "err", terr)
		}
	}
	if err != nil {
		return err
	}

	patterns := mapper.FromRun(sum)
	if trend := a.recordRun(cfg, sum, log); trend != nil {
		patterns = append(patterns, trend)
	}
	a.render(cfg, patterns)
	if code := sum.ExitCode(); code != 0 {
		return exitCode(code)
	}
	return nil
}

// historyDepth is how many past runs the trend covers.
const historyDepth = 20

// recordRun appends sum to the history database and returns the trend of
// remaining issues. History is best effort: failures are logged, not
// returned.
func (a *app) recordRun(cfg *config.ResolvedConfig, sum *pipeline.RunSummary, log *slog.Logger) *pattern.Sparkline {
	store, err := history.Open(cfg.ResolvePath(cfg.HistoryFile))
	if err != nil {
		log.Warn("history unavailable", "err", err)
		return nil
	}
	defer store.Close()
	if !store.Enabled() {
		return nil
	}

	root := projectRoot(cfg)
	err = store.Record(history.Run{
		Started:         time.Now().Add(-sum.Duration),
		Root:            root,
		Found:           sum.TotalBefore,
		Fixed:           sum.Fixed,
		Remaining:       sum.Remaining,
		Patched:         sum.Patched,
		Iterations:      sum.Iterations,
		TypecheckFailed: sum.TypecheckFailed,
		Duration:        sum.Duration,
		ExitCode:        sum.ExitCode(),
	})
	if err != nil {
		log.Warn("history not recorded", "err", err)
		return nil
	}
	runs, err := store.Recent(root, historyDepth)
	if err != nil {
		log.Warn("history not read", "err", err)
		return nil
	}
	return mapper.HistoryTrend(runs)
}

func projectRoot(cfg *config.ResolvedConfig) string {
	if abs, err := filepath.Abs(cfg.Root); err == nil {
		return abs
	}
	return cfg.Root
}
