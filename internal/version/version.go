// Package version reports the build version of cmdflow.
package version

// Version is set at build time with -ldflags.
var Version = "development"

// Commit is the git commit hash, set at build time.
var Commit = "unknown"

// String returns the full version string including the commit hash if available.
func String() string {
	if Commit != "unknown" {
		return Version + "+" + Commit
	}
	return Version
}
