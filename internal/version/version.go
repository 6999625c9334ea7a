// Package version holds build metadata for lintfix.
package version

// Set with -ldflags "-X github.com/dkoosis/lintfix/internal/version.Version=..." at build time.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)
