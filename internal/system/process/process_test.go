package process

import (
	"errors"
	"os"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

var errTestList = errors.New("test list error")

// fakeProcess is a minimal ps.Process implementation for tests.
type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.executable }

func listOf(processes ...ps.Process) Lister {
	return func() ([]ps.Process, error) {
		return processes, nil
	}
}

// TestEnsurePackageManagerIdle covers idle, busy, self and listing failure cases.
func TestEnsurePackageManagerIdle(t *testing.T) {
	t.Parallel()

	require.NoError(t, EnsurePackageManagerIdle(listOf(
		fakeProcess{pid: 10, executable: "nginx"},
		fakeProcess{pid: 11, executable: "peach-web"},
	)))

	err := EnsurePackageManagerIdle(listOf(
		fakeProcess{pid: 10, executable: "nginx"},
		fakeProcess{pid: 42, executable: "apt-get"},
	))
	require.ErrorIs(t, err, ErrPackageManagerBusy)
	require.Contains(t, err.Error(), "apt-get (pid 42)")

	require.NoError(t, EnsurePackageManagerIdle(listOf(
		fakeProcess{pid: os.Getpid(), executable: "dpkg"},
	)))

	err = EnsurePackageManagerIdle(func() ([]ps.Process, error) {
		return nil, errTestList
	})
	require.ErrorIs(t, err, errTestList)
}
