package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dkoosis/lintfix/pkg/classify"
)

// Commands holds the argv of every external tool. An empty argv disables the
// phase.
type Commands struct {
	Format    []string `yaml:"format" toml:"format"`
	Lint      []string `yaml:"lint" toml:"lint"`
	Autofix   []string `yaml:"autofix" toml:"autofix"`
	Typecheck []string `yaml:"typecheck" toml:"typecheck"`
	Secondary []string `yaml:"secondary" toml:"secondary"`
}

// AppConfig represents the configuration file.
type AppConfig struct {
	Root              string         `yaml:"root" toml:"root"`
	LogDir            string         `yaml:"log_dir" toml:"log_dir"`
	BackupDir         string         `yaml:"backup_dir" toml:"backup_dir"`
	HistoryFile       string         `yaml:"history_file" toml:"history_file"`
	Extensions        []string       `yaml:"extensions" toml:"extensions"`
	MaxIterations     int            `yaml:"max_iterations" toml:"max_iterations"`
	Timeout           Duration       `yaml:"timeout" toml:"timeout"`
	Lookback          int            `yaml:"lookback" toml:"lookback"`
	Commands          Commands       `yaml:"commands" toml:"commands"`
	SecondaryTokenEnv string         `yaml:"secondary_token_env" toml:"secondary_token_env"`
	Rules             classify.Rules `yaml:"rules" toml:"rules"`
	Theme             string         `yaml:"theme" toml:"theme"`
	Format            string         `yaml:"format" toml:"format"`
	NoColor           bool           `yaml:"no_color" toml:"no_color"`
	CI                bool           `yaml:"ci" toml:"ci"`
	Debug             bool           `yaml:"debug" toml:"debug"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-" toml:"-"`
}

// Duration is a time.Duration that reads "90s" style strings from either
// file format.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Constants for default values.
const (
	DefaultLogDir            = ".lintfix/logs"
	DefaultHistoryFile       = ".lintfix/history.db"
	DefaultMaxIterations     = 1
	DefaultTimeout           = 10 * time.Minute
	DefaultLookback          = 2
	DefaultSecondaryTokenEnv = "SONAR_TOKEN"
	DefaultTheme             = "default"
	DefaultFormat            = "auto"
)

// ConfigFileNames are searched, in order, in each candidate directory.
var ConfigFileNames = []string{".lintfix.yaml", ".lintfix.yml", ".lintfix.toml"}

// Defaults returns the built-in configuration.
func Defaults() *AppConfig {
	return &AppConfig{
		Root:          ".",
		LogDir:        DefaultLogDir,
		HistoryFile:   DefaultHistoryFile,
		MaxIterations: DefaultMaxIterations,
		Timeout:       Duration(DefaultTimeout),
		Lookback:      DefaultLookback,
		Commands: Commands{
			Format:  []string{"npx", "prettier", "--write", "."},
			Lint:    []string{"npx", "eslint", "."},
			Autofix: []string{"npx", "eslint", "--fix", "."},
		},
		SecondaryTokenEnv: DefaultSecondaryTokenEnv,
		Rules:             classify.DefaultRules(),
		Theme:             DefaultTheme,
		Format:            DefaultFormat,
	}
}

// LoadConfig loads the config file found from dir, or from explicitPath
// when given, merged over Defaults. A missing file is not an error; a file
// that exists but does not parse is.
func LoadConfig(dir, explicitPath string) (*AppConfig, error) {
	cfg := Defaults()

	path := explicitPath
	if path == "" {
		path = findConfigPath(dir)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && explicitPath == "" {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Zero is a valid lookback, so an absent key must keep the default.
	file := AppConfig{Lookback: cfg.Lookback}
	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), &file); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	merge(cfg, &file)
	cfg.Path = path
	return cfg, nil
}

// merge copies every field set in file onto cfg. file.Lookback must be
// seeded with cfg's value before decoding.
func merge(cfg, file *AppConfig) {
	if file.Root != "" {
		cfg.Root = file.Root
	}
	if file.LogDir != "" {
		cfg.LogDir = file.LogDir
	}
	if file.BackupDir != "" {
		cfg.BackupDir = file.BackupDir
	}
	if file.HistoryFile != "" {
		cfg.HistoryFile = file.HistoryFile
	}
	if len(file.Extensions) > 0 {
		cfg.Extensions = file.Extensions
	}
	if file.MaxIterations != 0 {
		cfg.MaxIterations = file.MaxIterations
	}
	if file.Timeout != 0 {
		cfg.Timeout = file.Timeout
	}
	cfg.Lookback = file.Lookback
	mergeArgv(&cfg.Commands.Format, file.Commands.Format)
	mergeArgv(&cfg.Commands.Lint, file.Commands.Lint)
	mergeArgv(&cfg.Commands.Autofix, file.Commands.Autofix)
	mergeArgv(&cfg.Commands.Typecheck, file.Commands.Typecheck)
	mergeArgv(&cfg.Commands.Secondary, file.Commands.Secondary)
	if file.SecondaryTokenEnv != "" {
		cfg.SecondaryTokenEnv = file.SecondaryTokenEnv
	}
	if file.Rules.Unused != "" {
		cfg.Rules.Unused = file.Rules.Unused
	}
	if file.Rules.ExplicitAny != "" {
		cfg.Rules.ExplicitAny = file.Rules.ExplicitAny
	}
	if file.Rules.HookDeps != "" {
		cfg.Rules.HookDeps = file.Rules.HookDeps
	}
	if len(file.Rules.ErrorNames) > 0 {
		cfg.Rules.ErrorNames = file.Rules.ErrorNames
	}
	if file.Theme != "" {
		cfg.Theme = file.Theme
	}
	if file.Format != "" {
		cfg.Format = file.Format
	}
	cfg.NoColor = cfg.NoColor || file.NoColor
	cfg.CI = cfg.CI || file.CI
	cfg.Debug = cfg.Debug || file.Debug
}

// mergeArgv replaces dst when src was given. An explicit empty list in the
// file ("lint: []") decodes as a non-nil empty slice and disables the phase.
func mergeArgv(dst *[]string, src []string) {
	if src != nil {
		*dst = src
	}
}

// findConfigPath looks in dir, then in the user config directory.
func findConfigPath(dir string) string {
	for _, name := range ConfigFileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	for _, name := range ConfigFileNames {
		p := filepath.Join(configHome, "lintfix", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
