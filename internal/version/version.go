// Package version holds build metadata set with -ldflags -X.
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String describes the build for --version.
func String() string {
	return fmt.Sprintf("wikimark version %s (commit: %s, built: %s)", Version, Commit, Date)
}
