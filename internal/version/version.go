// Package version carries the build identity stamped into release binaries.
package version

// Overridden at link time via -ldflags "-X platescan/internal/version.Version=..."
var (
	// Version is the release number shown in the About dialog.
	Version = "0.1.0"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// GitCommit identifies the source revision.
	GitCommit = "unknown"
)
