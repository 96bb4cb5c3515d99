// Package version holds build-time version information.
// Values are populated via -ldflags at build time.
package version

import "runtime"

var (
	// GitRelease is the release tag (e.g. v0.3.0).
	GitRelease = "dev"

	// GitCommit is the short commit hash.
	GitCommit = "unknown"

	// GitCommitDate is the commit date.
	GitCommitDate = "unknown"

	// GoInfo is the Go toolchain version used to build.
	GoInfo = runtime.Version()
)
