// Package config handles configuration loading and merging for lintfix.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--log-dir, --max-iterations, --theme, --no-color, --ci, ...)
//  2. Environment variables (LINTFIX_LOG_DIR, LINTFIX_MAX_ITERATIONS, LINTFIX_THEME,
//     LINTFIX_NO_COLOR, NO_COLOR, LINTFIX_CI, CI, LINTFIX_DEBUG)
//  3. Config file (.lintfix.yaml or .lintfix.toml in the project root, then
//     ~/.config/lintfix/)
//  4. Hardcoded defaults
//
// A .env file in the project root is loaded into the process environment
// before resolution; variables already set are not overridden. This is where
// the secondary analyzer's token usually lives.
//
// # Commands
//
// Every external tool is configured as an argv list, not a shell string:
//
//	commands:
//	  format:    [npx, prettier, --write, .]
//	  lint:      [npx, eslint, .]
//	  autofix:   [npx, eslint, --fix, .]
//	  typecheck: [npx, tsc, --noEmit]
//	  secondary: [npx, sonar-scanner]
//
// An empty list disables that phase.
//
// # CI Mode Behavior
//
// When CI mode is enabled (via --ci flag, CI=true env var, or ci: true in the file):
//   - Colors are disabled
//   - The progress TUI is disabled in favour of plain status lines
package config
