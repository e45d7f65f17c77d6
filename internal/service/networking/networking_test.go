package networking

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/peachcloud/peach-config/internal/system/command/commandtest"
	"github.com/peachcloud/peach-config/internal/system/stage"
)

var errTestRun = errors.New("test run error")

func newTestConfigurator(runner *commandtest.Runner, fs afero.Fs) *Configurator {
	return NewConfigurator(runner, fs, stage.New("/conf"))
}

// TestConfigure_FreshDevice stages the wifi client config and enables the client service.
func TestConfigure_FreshDevice(t *testing.T) {
	t.Parallel()

	runner := commandtest.New()

	require.NoError(t, newTestConfigurator(runner, afero.NewMemMapFs()).Configure(context.Background()))

	commands := runner.Commands()
	require.Equal(t, "apt install -y libnss-resolve", commands[0])
	require.Contains(t, commands, "cp /conf/network/wpa_supplicant-wlan0.conf "+WlanClientConfig)
	require.Contains(t, commands, "chown root:netdev "+WlanClientConfig)
	require.Contains(t, commands, "rm -rf /etc/network /etc/dhcp")
	require.Equal(t, "cp /conf/network/ap-auto-deploy.timer /etc/systemd/system/ap-auto-deploy.timer", commands[len(commands)-1])
}

// TestConfigure_KeepsWifiCredentials ensures an existing client config is not overwritten.
func TestConfigure_KeepsWifiCredentials(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, WlanClientConfig, []byte("network={ssid=\"home\"}\n"), 0o660))

	runner := commandtest.New()

	require.NoError(t, newTestConfigurator(runner, fs).Configure(context.Background()))
	require.False(t, runner.Ran("cp", "/conf/network/wpa_supplicant-wlan0.conf", WlanClientConfig))
	require.True(t, runner.Ran("systemctl", "enable", "wpa_supplicant@wlan0.service"))
}

// TestConfigure_StopsOnFailure verifies later sections do not run after a failure.
func TestConfigure_StopsOnFailure(t *testing.T) {
	t.Parallel()

	runner := commandtest.New().StubError(errTestRun, "rm", "-rf")

	err := newTestConfigurator(runner, afero.NewMemMapFs()).Configure(context.Background())
	require.ErrorIs(t, err, errTestRun)
	require.ErrorContains(t, err, "DEINSTALLING CLASSIC NETWORKING")
	require.Equal(t, "rm -rf /etc/network /etc/dhcp", runner.Commands()[len(runner.Commands())-1])
}
