// Package version provides build-time version information.
package version

import "fmt"

// Set via -ldflags "-X github.com/open-cli-collective/mdit/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build information for --version.
func String() string {
	return fmt.Sprintf("mdit version %s (commit: %s, built: %s)", Version, Commit, Date)
}
