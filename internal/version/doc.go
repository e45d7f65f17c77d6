// Package version exposes build metadata of peach-config.
//
// Version, Commit and BuildTime are injected with -ldflags "-X" when the
// Debian package is built and keep their placeholder values in local builds.
package version
