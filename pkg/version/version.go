// Package version holds build metadata injected with -ldflags.
package version

var (
	// Version is the release version of compleat.
	Version = "dev"
	// BuildTime is when the binary was built.
	BuildTime = "unknown"
	// GitCommit is the commit the binary was built from.
	GitCommit = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	return Version + " (" + GitCommit + ", built " + BuildTime + ")"
}
