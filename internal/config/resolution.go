package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Resolution sources, recorded per field for --debug output.
const (
	SourceCLI     = "cli"
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// CliFlags holds the values of command-line flags. The *Set fields record
// whether the user gave the flag at all, so an explicit false still wins
// over the environment.
type CliFlags struct {
	ConfigPath    string
	Root          string
	LogDir        string
	MaxIterations int
	Timeout       time.Duration
	ThemeName     string
	Format        string
	NoColor       bool
	CI            bool
	Debug         bool
	NoTUI         bool

	SkipTypecheck bool
	SkipSecondary bool
	NoHistory     bool

	MaxIterationsSet bool
	TimeoutSet       bool
	NoColorSet       bool
	CISet            bool
	DebugSet         bool
}

// ResolvedConfig holds the final resolved configuration after applying all priority rules.
type ResolvedConfig struct {
	*AppConfig

	Timeout       time.Duration
	NoTUI         bool
	SkipTypecheck bool
	SkipSecondary bool

	// Resolution metadata (for debugging)
	LogDirSource        string
	MaxIterationsSource string
	ThemeSource         string
	NoColorSource       string
	CISource            string
	DebugSource         string
	EnvFile             string // .env file that was loaded, if any
}

// ValidThemes lists the accepted theme names.
var ValidThemes = map[string]bool{"default": true, "orca": true, "mono": true}

// ValidFormats lists the accepted output formats.
var ValidFormats = map[string]bool{"auto": true, "terminal": true, "llm": true, "json": true}

// ResolveConfig resolves configuration from all sources with explicit priority order.
// This is the single source of truth for config resolution.
func ResolveConfig(cli CliFlags) (*ResolvedConfig, error) {
	root := cli.Root
	if root == "" {
		root = "."
	}

	envFile := filepath.Join(root, ".env")
	loadedEnv := ""
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
		loadedEnv = envFile
	}

	appCfg, err := LoadConfig(root, cli.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cli.Root != "" {
		appCfg.Root = cli.Root
	}

	fileOr := func(set bool) string {
		if set {
			return SourceFile
		}
		return SourceDefault
	}
	fromFile := appCfg.Path != ""

	r := &ResolvedConfig{
		AppConfig:           appCfg,
		Timeout:             time.Duration(appCfg.Timeout),
		NoTUI:               cli.NoTUI,
		SkipTypecheck:       cli.SkipTypecheck,
		SkipSecondary:       cli.SkipSecondary,
		LogDirSource:        fileOr(fromFile && appCfg.LogDir != DefaultLogDir),
		MaxIterationsSource: fileOr(fromFile && appCfg.MaxIterations != DefaultMaxIterations),
		ThemeSource:         fileOr(fromFile && appCfg.Theme != DefaultTheme),
		NoColorSource:       fileOr(appCfg.NoColor),
		CISource:            fileOr(appCfg.CI),
		DebugSource:         fileOr(appCfg.Debug),
		EnvFile:             loadedEnv,
	}

	// LogDir: CLI > ENV > file > default
	if cli.LogDir != "" {
		r.LogDir, r.LogDirSource = cli.LogDir, SourceCLI
	} else if v := os.Getenv("LINTFIX_LOG_DIR"); v != "" {
		r.LogDir, r.LogDirSource = v, SourceEnv
	}

	// MaxIterations: CLI > ENV > file > default
	if cli.MaxIterationsSet {
		r.MaxIterations, r.MaxIterationsSource = cli.MaxIterations, SourceCLI
	} else if v := os.Getenv("LINTFIX_MAX_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("LINTFIX_MAX_ITERATIONS: %w", err)
		}
		r.MaxIterations, r.MaxIterationsSource = n, SourceEnv
	}

	if cli.TimeoutSet {
		r.Timeout = cli.Timeout
	}

	// Theme: CLI > ENV > file > default
	if cli.ThemeName != "" {
		r.Theme, r.ThemeSource = cli.ThemeName, SourceCLI
	} else if v := os.Getenv("LINTFIX_THEME"); v != "" {
		r.Theme, r.ThemeSource = v, SourceEnv
	}

	if cli.Format != "" {
		r.Format = cli.Format
	}

	if cli.NoHistory || os.Getenv("LINTFIX_NO_HISTORY") != "" {
		r.HistoryFile = ""
	}

	if cli.NoColorSet {
		r.NoColor, r.NoColorSource = cli.NoColor, SourceCLI
	} else if b := getEnvBool("LINTFIX_NO_COLOR", "NO_COLOR"); b != nil {
		r.NoColor, r.NoColorSource = *b, SourceEnv
	}

	if cli.CISet {
		r.CI, r.CISource = cli.CI, SourceCLI
	} else if b := getEnvBool("LINTFIX_CI", "CI"); b != nil {
		r.CI, r.CISource = *b, SourceEnv
	}

	if cli.DebugSet {
		r.Debug, r.DebugSource = cli.Debug, SourceCLI
	} else if os.Getenv("LINTFIX_DEBUG") != "" {
		r.Debug, r.DebugSource = true, SourceEnv
	}

	// CI mode implies plain, uncoloured output.
	if r.CI {
		r.NoColor = true
		r.NoTUI = true
	}
	if r.NoColor && r.Theme == DefaultTheme && r.ThemeSource == SourceDefault {
		r.Theme = "mono"
	}

	if err := validateResolvedConfig(r); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return r, nil
}

// SecondaryToken returns the secondary analyzer's credential, or "".
func (r *ResolvedConfig) SecondaryToken() string {
	if r.SecondaryTokenEnv == "" {
		return ""
	}
	return os.Getenv(r.SecondaryTokenEnv)
}

// ResolvePath resolves p against the project root unless it is absolute.
func (r *ResolvedConfig) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.Root, p)
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set, or a pointer to the boolean value.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

// validateResolvedConfig validates the resolved configuration and returns errors for invalid states.
func validateResolvedConfig(cfg *ResolvedConfig) error {
	if cfg.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got: %d", cfg.MaxIterations)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got: %s", cfg.Timeout)
	}
	if cfg.Lookback < 0 {
		return fmt.Errorf("lookback must not be negative, got: %d", cfg.Lookback)
	}
	if len(cfg.Commands.Lint) == 0 {
		return fmt.Errorf("commands.lint must not be empty")
	}
	if !ValidThemes[cfg.Theme] {
		return fmt.Errorf("invalid theme: %s (must be: default, orca, mono)", cfg.Theme)
	}
	if !ValidFormats[cfg.Format] {
		return fmt.Errorf("invalid format: %s (must be: auto, terminal, llm, json)", cfg.Format)
	}
	return nil
}
