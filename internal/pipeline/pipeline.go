// Package pipeline drives one lint-fix run: format, detect, analyze, fix,
// re-detect, reconcile the saved logs, then the optional type-check and
// secondary analysis. Only a lint tool that cannot be run at all stops a
// run; every other failure degrades to a warning.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/dkoosis/lintfix/internal/config"
	"github.com/dkoosis/lintfix/internal/logsink"
	"github.com/dkoosis/lintfix/internal/metrics"
	"github.com/dkoosis/lintfix/internal/report"
	"github.com/dkoosis/lintfix/internal/runner"
	"github.com/dkoosis/lintfix/pkg/classify"
	"github.com/dkoosis/lintfix/pkg/diagnostic"
	"github.com/dkoosis/lintfix/pkg/patch"
	"github.com/dkoosis/lintfix/pkg/reconcile"
)

// ErrNoConfig is returned by Run on a Driver built without configuration.
var ErrNoConfig = errors.New("pipeline: no configuration")

// Driver runs the pipeline over one project.
type Driver struct {
	Config *config.ResolvedConfig
	Runner runner.Runner

	// Sink receives the run's logs. When nil, Run opens one in the
	// configured log directory and closes it before returning.
	Sink *logsink.Sink

	// Patcher and Reconciler are built from Config when nil.
	Patcher    *patch.Patcher
	Reconciler *reconcile.Reconciler

	Observer Observer
	Logger   *slog.Logger
	Now      func() time.Time
}

// Option configures a Driver.
type Option func(*Driver)

// WithRunner replaces the process runner.
func WithRunner(r runner.Runner) Option {
	return func(d *Driver) { d.Runner = r }
}

// WithSink writes logs to s instead of a sink opened by Run.
func WithSink(s *logsink.Sink) Option {
	return func(d *Driver) { d.Sink = s }
}

// WithObserver reports phase progress to o.
func WithObserver(o Observer) Option {
	return func(d *Driver) { d.Observer = o }
}

// WithLogger sets the console logger. Run additionally writes every event
// to the sink's events log.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.Logger = l }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.Now = now }
}

// New returns a Driver for cfg.
func New(cfg *config.ResolvedConfig, opts ...Option) *Driver {
	d := &Driver{
		Config:   cfg,
		Observer: nopObserver{},
		Logger:   slog.New(slog.DiscardHandler),
		Now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.Observer == nil {
		d.Observer = nopObserver{}
	}
	if d.Runner == nil {
		d.Runner = runner.New(d.Logger)
	}
	return d
}

// run holds the state of one Run call.
type run struct {
	d        *Driver
	cfg      *config.ResolvedConfig
	root     string
	sink     *logsink.Sink
	log      *slog.Logger
	opts     diagnostic.Options
	patcher  *patch.Patcher
	rec      *reconcile.Reconciler
	summary  *RunSummary
	sections []report.Section
}

// Run executes the pipeline. The returned error is non-nil only when the
// run could not complete: the lint tool failed to launch or timed out, the
// log directory is unusable, or ctx was cancelled.
func (d *Driver) Run(ctx context.Context) (_ *RunSummary, err error) {
	cfg := d.Config
	if cfg == nil || cfg.AppConfig == nil {
		return nil, ErrNoConfig
	}
	start := d.Now()

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	sink := d.Sink
	if sink == nil {
		sink, err = logsink.Open(cfg.ResolvePath(cfg.LogDir), start)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := sink.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	events, err := sink.Writer(logsink.Events)
	if err != nil {
		return nil, err
	}
	log := slog.New(teeHandler{
		d.Logger.Handler(),
		slog.NewTextHandler(events, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})

	r := &run{
		d:       d,
		cfg:     cfg,
		root:    root,
		sink:    sink,
		log:     log,
		opts:    diagnostic.Options{Extensions: cfg.Extensions},
		patcher: d.Patcher,
		rec:     d.Reconciler,
		summary: &RunSummary{},
	}
	if r.patcher == nil {
		r.patcher = patch.New(
			patch.WithLookback(cfg.Lookback),
			patch.WithErrorNames(cfg.Rules.ErrorNames...),
			patch.WithLogger(log),
		)
	}
	if r.rec == nil {
		r.rec = reconcile.New(cfg.ResolvePath(cfg.BackupDir), r.opts, log)
	}

	log.Info("run started", "root", root, "log_dir", sink.Dir(), "max_iterations", cfg.MaxIterations)
	if err := r.execute(ctx); err != nil {
		log.Error("run aborted", "err", err)
		return nil, err
	}
	r.summary.Duration = d.Now().Sub(start)
	log.Info("run finished",
		"before", r.summary.TotalBefore,
		"after", r.summary.TotalAfter,
		"patched", r.summary.Patched,
		"exit", r.summary.ExitCode(),
		"duration", r.summary.Duration)
	r.summary.LogFiles = sink.Paths()
	return r.summary, nil
}

func (r *run) execute(ctx context.Context) error {
	r.format(ctx)

	before, output, logPath, err := r.detect(ctx, PhaseDetect, logsink.Detect)
	if err != nil {
		return err
	}
	r.summary.TotalBefore = before.Total()

	t := r.begin(PhaseAnalyze)
	analysis := classify.Analyze(before.Diagnostics, r.cfg.Rules)
	r.summary.Before = analysis
	r.summary.Categories = analysis.Counts()
	r.end(PhaseAnalyze, StatusOK, t, fmt.Sprintf("%d issues, %d fixable", analysis.Total, len(analysis.Fixable())))

	current := before
	if before.Total() == 0 {
		r.skip(PhaseFix, "nothing to fix")
		r.skip(PhaseRedetect, "nothing to fix")
	} else {
		for pass := 1; pass <= r.cfg.MaxIterations; pass++ {
			r.summary.Iterations = pass
			r.fix(ctx, analysis)

			after, out, _, err := r.detect(ctx, PhaseRedetect, logsink.DetectAfter)
			if err != nil {
				return err
			}
			progress := current.Total() - after.Total()
			current, output = after, out
			analysis = classify.Analyze(after.Diagnostics, r.cfg.Rules)
			if progress <= 0 {
				r.log.Info("pass fixed nothing, stopping", "pass", pass)
				break
			}
		}
	}

	r.summary.After = analysis
	r.summary.TotalAfter = current.Total()
	r.summary.Remaining = current.Total()
	r.summary.Fixed = fixedCount(r.summary.TotalBefore, r.summary.TotalAfter)
	r.summary.RemainingDiagnostics = current.Diagnostics
	markResolved(before.Diagnostics, current.Diagnostics)

	r.reconcile(logPath, before.Diagnostics)

	lintStatus := report.StatusPass
	if current.Total() > 0 {
		lintStatus = report.StatusFail
	}
	r.sections = append(r.sections, report.Section{Tool: "lint", Format: report.FormatText, Status: lintStatus, Content: output})

	if err := ctx.Err(); err != nil {
		return err
	}
	r.typecheck(ctx)
	r.secondary(ctx)
	r.finish(current)
	return nil
}

// markResolved settles Resolved on before against the final detection.
// Lines are ignored when matching since an autofix pass may move them: for
// each fingerprint, as many diagnostics stay unresolved as the final
// detection still reports. Unpatched ones still on their original line are
// kept first, patched ones last.
func markResolved(before, after []*diagnostic.Diagnostic) {
	reported := make(map[string]int, len(after))
	exact := make(map[string]bool, len(after))
	for _, d := range after {
		reported[d.Fingerprint()]++
		exact[d.Key()] = true
	}

	groups := make(map[string][]*diagnostic.Diagnostic)
	for _, d := range before {
		fp := d.Fingerprint()
		groups[fp] = append(groups[fp], d)
	}
	rank := func(d *diagnostic.Diagnostic) int {
		switch {
		case d.Resolved:
			return 2
		case exact[d.Key()]:
			return 0
		default:
			return 1
		}
	}
	for fp, ds := range groups {
		slices.SortStableFunc(ds, func(a, b *diagnostic.Diagnostic) int {
			return rank(a) - rank(b)
		})
		keep := reported[fp]
		for i, d := range ds {
			d.Resolved = i >= keep
		}
	}
}

func (r *run) format(ctx context.Context) {
	argv := r.cfg.Commands.Format
	if len(argv) == 0 {
		r.skip(PhaseFormat, "no format command")
		return
	}
	t := r.begin(PhaseFormat)
	res, _, err := r.tool(ctx, PhaseFormat, logsink.Format, argv, nil)
	switch {
	case err != nil:
		r.log.Warn("format failed", "err", err)
		r.end(PhaseFormat, StatusWarn, t, err.Error())
	case !res.OK():
		r.log.Warn("format exited non-zero", "exit", res.ExitCode)
		r.end(PhaseFormat, StatusWarn, t, fmt.Sprintf("exit %d", res.ExitCode))
	default:
		r.end(PhaseFormat, StatusOK, t, "")
	}
}

// detect runs the lint tool and parses its output. The raw output is saved
// unchanged so that diagnostic log lines index into the saved file.
func (r *run) detect(ctx context.Context, phase Phase, cat logsink.Category) (*diagnostic.Result, []byte, string, error) {
	t := r.begin(phase)
	res, path, err := r.tool(ctx, phase, cat, r.cfg.Commands.Lint, nil)
	if err != nil {
		r.end(phase, StatusFail, t, err.Error())
		return nil, nil, "", fmt.Errorf("%s: %w", phase, err)
	}

	parsed, format, perr := diagnostic.ParseOutput(res.Output, r.opts)
	if perr != nil {
		r.log.Warn("lint output did not parse", "format", format.String(), "err", perr, "log", path)
		parsed = diagnostic.ParseWith("", r.opts)
	}
	r.summary.History = append(r.summary.History, parsed.Total())
	if !res.OK() && parsed.Total() == 0 {
		r.log.Warn("lint exited non-zero without reporting diagnostics", "exit", res.ExitCode, "log", path)
	}

	status := StatusOK
	if parsed.Total() > 0 {
		status = StatusWarn
	}
	r.end(phase, status, t, fmt.Sprintf("%d issues in %d files", parsed.Total(), len(parsed.Files)))
	return parsed, res.Output, path, nil
}

func (r *run) fix(ctx context.Context, analysis *classify.Analysis) {
	t := r.begin(PhaseFix)
	status := StatusOK

	if argv := r.cfg.Commands.Autofix; len(argv) > 0 {
		res, _, err := r.tool(ctx, PhaseFix, logsink.Autofix, argv, nil)
		switch {
		case err != nil:
			r.log.Warn("autofix failed", "err", err)
			status = StatusWarn
		case !res.OK():
			// Linters exit non-zero when unfixable issues remain.
			r.log.Debug("autofix exited non-zero", "exit", res.ExitCode)
		}
	}

	targets := diagnostic.Dedupe(analysis.Fixable())
	patched := 0
	for _, d := range targets {
		if ctx.Err() != nil {
			break
		}
		a := r.patcher.Apply(d, classify.Classify(d, r.cfg.Rules), r.root)
		r.summary.Attempts = append(r.summary.Attempts, a)
		if a.Success {
			patched++
		}
	}
	r.summary.Patched += patched
	if patched < len(targets) && status == StatusOK {
		status = StatusWarn
	}
	r.end(PhaseFix, status, t, fmt.Sprintf("%d of %d patched", patched, len(targets)))
}

func (r *run) reconcile(logPath string, all []*diagnostic.Diagnostic) {
	var fixed []*diagnostic.Diagnostic
	for _, d := range all {
		if d.Resolved {
			fixed = append(fixed, d)
		}
	}
	if len(fixed) == 0 {
		r.skip(PhaseReconcile, "nothing resolved")
		return
	}
	if !slices.ContainsFunc(fixed, func(d *diagnostic.Diagnostic) bool { return d.LogLine != diagnostic.NoLogLine }) {
		r.skip(PhaseReconcile, "log rows not tracked")
		return
	}

	t := r.begin(PhaseReconcile)
	backup, err := r.rec.Reconcile(logPath, fixed, all)
	if err != nil {
		r.log.Warn("reconcile failed", "log", logPath, "err", err)
		r.end(PhaseReconcile, StatusWarn, t, err.Error())
		return
	}
	if backup == "" {
		r.end(PhaseReconcile, StatusWarn, t, "log left unchanged")
		return
	}
	r.sink.Track(backup)
	r.summary.Backup = backup
	r.end(PhaseReconcile, StatusOK, t, fmt.Sprintf("%d resolved, backup %s", len(fixed), filepath.Base(backup)))
}

func (r *run) typecheck(ctx context.Context) {
	argv := r.cfg.Commands.Typecheck
	switch {
	case r.cfg.SkipTypecheck:
		r.skip(PhaseTypecheck, "skipped by flag")
		r.sections = append(r.sections, report.Section{Tool: "typecheck", Format: report.FormatText, Status: report.StatusSkip})
		return
	case len(argv) == 0:
		r.skip(PhaseTypecheck, "no typecheck command")
		r.sections = append(r.sections, report.Section{Tool: "typecheck", Format: report.FormatText, Status: report.StatusSkip})
		return
	}

	t := r.begin(PhaseTypecheck)
	res, _, err := r.tool(ctx, PhaseTypecheck, logsink.Typecheck, argv, nil)
	section := report.Section{Tool: "typecheck", Format: report.FormatText, Status: report.StatusPass}
	switch {
	case err != nil:
		r.summary.TypecheckFailed = true
		r.log.Warn("typecheck could not run", "err", err)
		section.Status = report.StatusFail
		section.Content = []byte(err.Error() + "\n")
		r.end(PhaseTypecheck, StatusFail, t, err.Error())
	case !res.OK():
		r.summary.TypecheckFailed = true
		section.Status = report.StatusFail
		section.Content = res.Output
		r.end(PhaseTypecheck, StatusFail, t, fmt.Sprintf("exit %d", res.ExitCode))
	default:
		section.Content = res.Output
		r.end(PhaseTypecheck, StatusOK, t, "")
	}
	r.sections = append(r.sections, section)
}

func (r *run) secondary(ctx context.Context) {
	argv := r.cfg.Commands.Secondary
	skip := func(reason string) {
		r.summary.SecondarySkipped = true
		r.skip(PhaseSecondary, reason)
		r.sections = append(r.sections, report.Section{Tool: "secondary", Format: report.FormatText, Status: report.StatusSkip})
	}
	switch {
	case r.cfg.SkipSecondary:
		skip("skipped by flag")
		return
	case len(argv) == 0:
		skip("no secondary command")
		return
	}
	token := r.cfg.SecondaryToken()
	if token == "" {
		r.log.Info("secondary analysis skipped, token not set", "env", r.cfg.SecondaryTokenEnv)
		skip(r.cfg.SecondaryTokenEnv + " not set")
		return
	}

	t := r.begin(PhaseSecondary)
	env := []string{r.cfg.SecondaryTokenEnv + "=" + token}
	res, _, err := r.tool(ctx, PhaseSecondary, logsink.Secondary, argv, env)
	section := report.Section{Tool: "secondary", Format: report.FormatText, Status: report.StatusPass}
	switch {
	case err != nil:
		r.log.Warn("secondary analysis failed", "err", err)
		section.Status = report.StatusFail
		section.Content = []byte(err.Error() + "\n")
		r.end(PhaseSecondary, StatusWarn, t, err.Error())
	case !res.OK():
		r.log.Warn("secondary analysis exited non-zero", "exit", res.ExitCode)
		section.Status = report.StatusFail
		section.Content = res.Output
		r.end(PhaseSecondary, StatusWarn, t, fmt.Sprintf("exit %d", res.ExitCode))
	default:
		section.Content = res.Output
		r.end(PhaseSecondary, StatusOK, t, "")
	}
	r.sections = append(r.sections, section)
}

// finish exports what remains and writes the summary report.
func (r *run) finish(current *diagnostic.Result) {
	t := r.begin(PhaseSummary)
	status := StatusOK

	if current.Total() > 0 {
		path := r.sink.PathFor("remaining", ".sarif")
		if err := diagnostic.ToSARIF("lint", current.Diagnostics).WriteFile(path); err != nil {
			r.log.Warn("sarif export failed", "path", path, "err", err)
			status = StatusWarn
		} else {
			r.sink.Track(path)
		}
	}

	m := metrics.FromCategories("categories", r.summary.Categories, r.summary.AfterCounts())
	if data, err := m.Marshal(); err != nil {
		r.log.Warn("metrics encode failed", "err", err)
	} else {
		r.sections = append(r.sections, report.Section{Tool: "metrics", Format: report.FormatMetrics, Content: data})
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, r.sections); err != nil {
		r.log.Warn("summary report failed", "err", err)
		r.end(PhaseSummary, StatusWarn, t, err.Error())
		return
	}
	path, err := r.sink.Save(logsink.Summary, buf.Bytes())
	if err != nil {
		r.log.Warn("summary log failed", "err", err)
		r.end(PhaseSummary, StatusWarn, t, err.Error())
		return
	}
	r.summary.Summary = path
	r.end(PhaseSummary, status, t, fmt.Sprintf("%d fixed, %d remaining", r.summary.Fixed, r.summary.Remaining))
}

// tool runs argv in the project root and saves its output under cat.
func (r *run) tool(ctx context.Context, phase Phase, cat logsink.Category, argv, env []string) (*runner.Result, string, error) {
	cmd := runner.Command{
		Name:    phase.String(),
		Argv:    argv,
		Dir:     r.root,
		Env:     env,
		Timeout: r.cfg.Timeout,
	}
	if lo, ok := r.d.Observer.(LineObserver); ok {
		cmd.OnLine = func(line string) { lo.PhaseOutput(phase, line) }
	}
	r.log.Debug("exec", "phase", phase.String(), "cmd", cmd.String())

	res, err := r.d.Runner.Run(ctx, cmd)
	if err != nil {
		if res != nil && len(res.Output) > 0 {
			if _, serr := r.sink.Save(cat, res.Output); serr != nil {
				r.log.Debug("tool output not saved", "phase", phase.String(), "err", serr)
			}
		}
		return res, "", err
	}
	r.log.Info("command finished", "phase", phase.String(), "exit", res.ExitCode, "duration", res.Duration)

	path, err := r.sink.Save(cat, res.Output)
	if err != nil {
		return res, "", err
	}
	return res, path, nil
}

func (r *run) begin(p Phase) time.Time {
	r.d.Observer.PhaseStarted(p)
	return r.d.Now()
}

func (r *run) end(p Phase, s Status, started time.Time, detail string) {
	res := PhaseResult{Phase: p, Status: s, Detail: detail, Duration: r.d.Now().Sub(started)}
	r.summary.Phases = append(r.summary.Phases, res)
	r.d.Observer.PhaseFinished(res)
}

func (r *run) skip(p Phase, reason string) {
	res := PhaseResult{Phase: p, Status: StatusSkipped, Detail: reason}
	r.summary.Phases = append(r.summary.Phases, res)
	r.d.Observer.PhaseFinished(res)
}
