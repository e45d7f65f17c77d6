// Package integration exercises setup, update and manifest together against
// a recording command runner, an in-memory filesystem and a real hardware
// configuration file.
package integration
