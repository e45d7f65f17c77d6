package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(Default()))
	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)

	cfg := Default()
	cfg.StagingDir = "conf"
	require.ErrorIs(t, Validate(cfg), errRelativePath)

	cfg = Default()
	cfg.Services = nil
	require.ErrorIs(t, Validate(cfg), errNoServices)

	cfg = Default()
	cfg.SelfPackage = "peach-cli"
	require.ErrorIs(t, Validate(cfg), errSelfNotListed)

	cfg = Default()
	cfg.PackagePrefix = ""
	require.ErrorIs(t, Validate(cfg), errEmptyValue)

	cfg = Default()
	cfg.AptKeyURL = "not a url"
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.LogLevel = ""
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

// TestLoadMissingFileUsesDefaults ensures a device without a settings file gets stock values.
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

// TestLoadOverlaysDefaults verifies a partial file only overrides the keys it names.
func TestLoadOverlaysDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "peach-config.yml")
	contents := "staging_dir: /opt/peach/conf\nservices: [peach-web, peach-config]\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/opt/peach/conf", cfg.StagingDir)
	require.Equal(t, []string{"peach-web", "peach-config"}, cfg.Services)
	require.Equal(t, DefaultHardwareConfigFile, cfg.HardwareConfigFile)
}

// TestLoadRejectsInvalid verifies validation runs on loaded files.
func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "peach-config.yml")
	require.NoError(t, os.WriteFile(path, []byte("hardware_config_file: hw.json\n"), 0o600))

	_, err := Load(path)
	require.ErrorIs(t, err, errRelativePath)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "peach-config.yml")

	cfg := Default()
	cfg.AuditLog = "/var/log/peach-config.log"
	cfg.LogLevel = "debug"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestMicroservices ensures the self package is excluded and order is kept.
func TestMicroservices(t *testing.T) {
	t.Parallel()

	cfg := Default()
	got := cfg.Microservices()

	require.Len(t, got, len(cfg.Services)-1)
	require.NotContains(t, got, DefaultSelfPackage)
	require.Equal(t, "peach-oled", got[0])
}
