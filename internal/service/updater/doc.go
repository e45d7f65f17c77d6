// Package updater installs newer versions of this CLI and of the PeachCloud
// microservices from the PeachCloud apt repository, or lists the available
// upgrades without installing them.
package updater
