package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dkoosis/lintfix/internal/config"
	"github.com/dkoosis/lintfix/pkg/pattern"
	"github.com/dkoosis/lintfix/pkg/render"
)

// cliFlags collects the persistent flags into config.CliFlags. Only
// flags the user actually gave override the environment.
func (a *app) cliFlags(cmd *cobra.Command) config.CliFlags {
	changed := cmd.Flags().Changed
	return config.CliFlags{
		ConfigPath: a.configPath,
		ThemeName:  a.theme,
		Format:     a.format,
		NoColor:    a.noColor,
		CI:         a.ci,
		Debug:      a.debug,
		NoColorSet: changed("no-color"),
		CISet:      changed("ci"),
		DebugSet:   changed("debug"),
	}
}

// logger returns the stderr logger: warnings only unless debugging.
func (a *app) logger(cfg *config.ResolvedConfig) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
}

// debugConfig logs where each setting came from.
func debugConfig(log *slog.Logger, cfg *config.ResolvedConfig) {
	log.Debug("config resolved",
		"file", cfg.Path,
		"env_file", cfg.EnvFile,
		"root", cfg.Root,
		"log_dir", cfg.LogDir, "log_dir_source", cfg.LogDirSource,
		"max_iterations", cfg.MaxIterations, "max_iterations_source", cfg.MaxIterationsSource,
		"theme", cfg.Theme, "theme_source", cfg.ThemeSource,
		"no_color", cfg.NoColor, "no_color_source", cfg.NoColorSource,
		"ci", cfg.CI, "ci_source", cfg.CISource,
		"timeout", cfg.Timeout)
}

// resolveFormat maps "auto" to terminal on a TTY and llm otherwise.
func resolveFormat(format string, w io.Writer) string {
	if format == "" || format == "auto" {
		if isTTYWriter(w) {
			return "terminal"
		}
		return "llm"
	}
	return format
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth returns the terminal width of w, defaulting to 80.
func termWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			return tw
		}
	}
	return 80
}

func (a *app) render(cfg *config.ResolvedConfig, patterns []pattern.Pattern) {
	format := resolveFormat(cfg.Format, a.stdout)
	r := render.ForFormat(format, render.ThemeByName(cfg.Theme), termWidth(a.stdout))
	fmt.Fprint(a.stdout, r.Render(patterns))
}
