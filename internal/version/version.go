// Package version holds build metadata stamped in via -ldflags.
package version

import "fmt"

var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the git commit the binary was built from.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// Info returns a single-line human-readable version string.
func Info() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
