// Package version carries build metadata, set via ldflags at release time.
package version

import "fmt"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// String returns the full version string.
func String() string {
	if commit == "none" {
		return version
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}
