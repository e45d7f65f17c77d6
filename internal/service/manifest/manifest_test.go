package manifest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peachcloud/peach-config/internal/config"
	"github.com/peachcloud/peach-config/internal/domain/peach"
	"github.com/peachcloud/peach-config/internal/repository/hardware"
	"github.com/peachcloud/peach-config/internal/service/packages"
	"github.com/peachcloud/peach-config/internal/system/command/commandtest"
)

const dpkgListing = `Desired=Unknown/Install/Remove/Purge/Hold
||/ Name           Version      Architecture Description
+++-==============-============-============-=================================
ii  bash           5.1-2        arm64        GNU Bourne Again SHell
ii  peach-network  1.4.0        arm64        Network microservice
ii  peach-web      0.6.1        arm64        Web interface
`

func newTestGenerator(t *testing.T, listing string) (*Generator, *hardware.FileRepository) {
	t.Helper()

	runner := commandtest.New().Stub(listing, "dpkg", "-l")
	repo := hardware.NewFileRepository(filepath.Join(t.TempDir(), "hardware_config.json"))

	return NewGenerator(packages.NewManager(config.Default(), runner), repo), repo
}

// TestWrite_NoHardware reports null hardware before the first successful setup.
func TestWrite_NoHardware(t *testing.T) {
	t.Parallel()

	g, _ := newTestGenerator(t, dpkgListing)

	var out bytes.Buffer

	require.NoError(t, g.Write(context.Background(), &out))
	require.JSONEq(t,
		`{"packages":{"peach-network":"1.4.0","peach-web":"0.6.1"},"hardware":null}`,
		out.String())
	require.Equal(t, byte('\n'), out.Bytes()[out.Len()-1])
	require.Equal(t, 1, bytes.Count(out.Bytes(), []byte("\n")))
}

// TestWrite_WithHardware includes the saved hardware configuration.
func TestWrite_WithHardware(t *testing.T) {
	t.Parallel()

	g, repo := newTestGenerator(t, "")
	model := peach.DS3231

	require.NoError(t, repo.Save(context.Background(), peach.NewHardwareConfig(true, &model)))

	var out bytes.Buffer

	require.NoError(t, g.Write(context.Background(), &out))
	require.JSONEq(t, `{"packages":{},"hardware":{"i2c":true,"rtc":"DS3231"}}`, out.String())
}

// TestLoadHardwareConfig maps a missing file to nil and surfaces malformed content.
func TestLoadHardwareConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hardware_config.json")
	repo := hardware.NewFileRepository(path)

	hw, err := LoadHardwareConfig(context.Background(), repo)
	require.NoError(t, err)
	require.Nil(t, hw)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err = LoadHardwareConfig(context.Background(), repo)
	require.True(t, peach.IsKind(err, peach.KindSerialization))
}
