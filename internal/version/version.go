package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release of the peach-config package.
	Version = "0.0.0-dev"
	// Commit is the short git SHA the package was built from.
	Commit = "none"
	// BuildTime is the UTC time the package was built.
	BuildTime = "unknown"
)

// Short returns the release only.
func Short() string {
	return Version
}

// Full returns the release with commit, build time and target platform.
func Full() string {
	return fmt.Sprintf("peach-config %s (commit %s, built %s, %s/%s)",
		Version, Commit, BuildTime, runtime.GOOS, runtime.GOARCH)
}
