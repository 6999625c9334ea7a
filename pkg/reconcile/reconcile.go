// Package reconcile rewrites a persisted lint log so that it only lists
// diagnostics that still reproduce, keeping a timestamped backup of the log
// as it was before every rewrite.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dkoosis/lintfix/internal/atomicfile"
	"github.com/dkoosis/lintfix/pkg/diagnostic"
)

// BackupTimeFormat is the timestamp embedded in backup file names.
const BackupTimeFormat = "20060102-150405.000"

// Reconciler updates log files after a fix pass.
type Reconciler struct {
	// BackupDir receives backups. Empty means the log's own directory.
	BackupDir string
	Now       func() time.Time
	Options   diagnostic.Options
	Logger    *slog.Logger

	beforeWrite func(path string)
}

// New returns a Reconciler writing backups to backupDir.
func New(backupDir string, opts diagnostic.Options, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{BackupDir: backupDir, Now: time.Now, Options: opts, Logger: logger}
}

// BackupPath returns where the backup of logPath taken at t is written.
func (r *Reconciler) BackupPath(logPath string, t time.Time) string {
	dir := r.BackupDir
	if dir == "" {
		dir = filepath.Dir(logPath)
	}
	base := filepath.Base(logPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, fmt.Sprintf("%s.%s.backup.log", stem, t.Format(BackupTimeFormat)))
}

// Reconcile drops the log lines of fixed diagnostics, and the header line of
// every file none of whose diagnostics in all remain unresolved. It returns
// the backup path, or "" when the log does not exist or was modified by
// someone else while being reconciled.
//
// A fixed diagnostic's line is only dropped if it still parses as a
// diagnostic row at the same position; a LogLine of diagnostic.NoLogLine is
// skipped.
func (r *Reconciler) Reconcile(logPath string, fixed, all []*diagnostic.Diagnostic) (string, error) {
	snap, data, err := atomicfile.Read(logPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", nil
	case errors.Is(err, atomicfile.ErrConcurrentModification):
		r.warnConcurrent(logPath)
		return "", nil
	case err != nil:
		return "", fmt.Errorf("read log: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	drop := r.droppedLines(lines, fixed, all)

	var b strings.Builder
	for i, l := range lines {
		if drop[i] {
			continue
		}
		b.WriteString(l)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	backup := r.BackupPath(logPath, now())
	if err := os.MkdirAll(filepath.Dir(backup), 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	if r.beforeWrite != nil {
		r.beforeWrite(logPath)
	}
	if err := snap.WriteFile([]byte(b.String())); err != nil {
		if errors.Is(err, atomicfile.ErrConcurrentModification) {
			r.warnConcurrent(logPath)
			return "", nil
		}
		return "", fmt.Errorf("write log: %w", err)
	}

	r.logger().Info("log reconciled", "log", logPath, "backup", backup, "dropped", len(drop))
	return backup, nil
}

func (r *Reconciler) droppedLines(lines []string, fixed, all []*diagnostic.Diagnostic) map[int]bool {
	drop := make(map[int]bool)
	for _, d := range fixed {
		if d.LogLine < 0 || d.LogLine >= len(lines) {
			continue
		}
		row, ok := diagnostic.ParseRow(diagnostic.StripANSI(lines[d.LogLine]))
		if !ok || row.Line != d.Line || row.Column != d.Column {
			continue
		}
		drop[d.LogLine] = true
	}

	known := make(map[string]bool)
	open := make(map[string]bool)
	for _, d := range all {
		known[d.File] = true
		if !d.Resolved {
			open[d.File] = true
		}
	}
	exts := r.Options.Extensions
	if len(exts) == 0 {
		exts = diagnostic.DefaultExtensions
	}
	for i, l := range lines {
		file, ok := diagnostic.ParseHeader(diagnostic.StripANSI(l), exts)
		if ok && known[file] && !open[file] {
			drop[i] = true
		}
	}
	return drop
}

func (r *Reconciler) warnConcurrent(logPath string) {
	r.logger().Log(context.Background(), slog.LevelWarn, "log changed during reconcile, skipped", "log", logPath)
}

func (r *Reconciler) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
