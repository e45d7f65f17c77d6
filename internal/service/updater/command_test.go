package updater

import (
	"bytes"
	"context"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"

	"github.com/peachcloud/peach-config/internal/config"
	"github.com/peachcloud/peach-config/internal/system/command/commandtest"
	"github.com/peachcloud/peach-config/internal/system/process"
)

const upgradable = `Listing... Done
peach-web/buster 0.6.2 arm64 [upgradable from: 0.6.1]
libc6/stable 2.31-13 arm64 [upgradable from: 2.31-12]
`

// fakeProcess is a minimal ps.Process implementation for tests.
type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.executable }

func idle() ([]ps.Process, error) {
	return nil, nil
}

func newTestUpdater(runner *commandtest.Runner) *Updater {
	return New(config.Default(), runner).WithProcessLister(idle)
}

// TestRun_Default updates this CLI then re-invokes it for the microservices.
func TestRun_Default(t *testing.T) {
	t.Parallel()

	runner := commandtest.New()

	err := newTestUpdater(runner).Run(context.Background(), &Options{ConfigPath: "/etc/peach.yml"}, new(bytes.Buffer))
	require.NoError(t, err)

	require.Equal(t, []string{
		"apt-get update",
		"apt-get install -y peach-config",
		"/usr/bin/peach-config update --microservices --config /etc/peach.yml",
	}, runner.Commands())
	require.True(t, runner.Calls()[2].Interactive)
}

// TestRun_Microservices installs every service except this CLI in one request.
func TestRun_Microservices(t *testing.T) {
	t.Parallel()

	runner := commandtest.New()

	require.NoError(t, newTestUpdater(runner).Run(context.Background(), &Options{Microservices: true}, nil))

	commands := runner.Commands()
	require.Len(t, commands, 2)
	require.Equal(t, "apt-get update", commands[0])
	require.NotContains(t, commands[1], "peach-config")
	require.Contains(t, commands[1], "peach-go-sbot")
}

// TestRun_Self installs only this CLI.
func TestRun_Self(t *testing.T) {
	t.Parallel()

	runner := commandtest.New()

	require.NoError(t, newTestUpdater(runner).Run(context.Background(), &Options{Self: true}, nil))
	require.Equal(t, []string{"apt-get update", "apt-get install -y peach-config"}, runner.Commands())
}

// TestRun_List prints the upgradable services as JSON.
func TestRun_List(t *testing.T) {
	t.Parallel()

	runner := commandtest.New().Stub(upgradable, "apt", "list", "--upgradable")

	var out bytes.Buffer

	require.NoError(t, newTestUpdater(runner).Run(context.Background(), &Options{List: true}, &out))
	require.JSONEq(t, `{"upgradeable":["peach-web/buster 0.6.2 arm64 [upgradable from: 0.6.1]"]}`, out.String())

	out.Reset()

	require.NoError(t, newTestUpdater(commandtest.New()).Run(context.Background(), &Options{List: true}, &out))
	require.JSONEq(t, `{"upgradeable":[]}`, out.String())
}

// TestRun_Rejections covers conflicting flags and a busy package manager.
func TestRun_Rejections(t *testing.T) {
	t.Parallel()

	runner := commandtest.New()

	err := newTestUpdater(runner).Run(context.Background(), &Options{Self: true, List: true}, nil)
	require.ErrorIs(t, err, errConflictingModes)

	err = newTestUpdater(runner).
		WithProcessLister(func() ([]ps.Process, error) {
			return []ps.Process{fakeProcess{pid: 77, executable: "dpkg"}}, nil
		}).
		Run(context.Background(), &Options{Self: true}, nil)
	require.ErrorIs(t, err, process.ErrPackageManagerBusy)
	require.Empty(t, runner.Calls())
}
