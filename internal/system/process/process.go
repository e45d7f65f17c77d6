// Package process inspects the host process table before package operations.
package process

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/mitchellh/go-ps"
)

// ErrPackageManagerBusy is returned when another package manager process is running.
var ErrPackageManagerBusy = errors.New("package manager is busy")

// Lister returns the running processes.
type Lister func() ([]ps.Process, error)

// packageManagers are executables holding the dpkg lock while they run.
//
//nolint:gochecknoglobals // Fixed list of executable names.
var packageManagers = []string{"apt", "apt-get", "aptitude", "dpkg", "unattended-upgrade"}

// EnsurePackageManagerIdle fails when a package manager process other than
// this one is running. A nil list uses the live process table.
func EnsurePackageManagerIdle(list Lister) error {
	if list == nil {
		list = ps.Processes
	}

	processes, err := list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	self := os.Getpid()

	for _, p := range processes {
		if p.Pid() == self {
			continue
		}

		if slices.Contains(packageManagers, p.Executable()) {
			return fmt.Errorf("%s (pid %d): %w", p.Executable(), p.Pid(), ErrPackageManagerBusy)
		}
	}

	return nil
}
