// Package packages wraps the apt and dpkg invocations used by setup, update
// and manifest: installing the microservices, updating this CLI, listing
// upgradable and installed PeachCloud packages, and registering the
// PeachCloud apt repository.
package packages
