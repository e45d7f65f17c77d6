package networking

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/peachcloud/peach-config/internal/logger"
	"github.com/peachcloud/peach-config/internal/system/command"
	"github.com/peachcloud/peach-config/internal/system/stage"
)

// WlanClientConfig holds the wifi client credentials. It is only created when
// absent so credentials entered by the operator survive a re-run.
const WlanClientConfig = "/etc/wpa_supplicant/wpa_supplicant-wlan0.conf"

// classicNetworking are the packages replaced by systemd-networkd.
//
//nolint:gochecknoglobals // Fixed package list.
var classicNetworking = []string{
	"ifupdown",
	"dhcpcd5",
	"isc-dhcp-client",
	"isc-dhcp-common",
	"rsyslog",
}

// Configurator applies the networking configuration.
type Configurator struct {
	runner command.Runner
	fs     afero.Fs
	stage  stage.Resolver
}

// NewConfigurator returns a Configurator staging files from resolver.
func NewConfigurator(runner command.Runner, fs afero.Fs, resolver stage.Resolver) *Configurator {
	return &Configurator{
		runner: runner,
		fs:     fs,
		stage:  resolver,
	}
}

// section is a logged group of commands.
type section struct {
	name string
	run  func(ctx context.Context) error
}

// Configure runs every networking section in order and stops at the first failure.
func (c *Configurator) Configure(ctx context.Context) error {
	sections := []section{
		{"INSTALLING SYSTEM REQUIREMENTS", c.commands(
			[]string{"apt", "install", "-y", "libnss-resolve"},
		)},
		{"SETTING HOST", c.commands(
			c.copy("hostname", "/etc/hostname"),
			c.copy("hosts", "/etc/hosts"),
		)},
		{"DEINSTALLING CLASSIC NETWORKING", c.commands(
			append([]string{"apt-get", "autoremove", "-y"}, classicNetworking...),
			append(append([]string{"apt-mark", "hold"}, classicNetworking...), "openresolv"),
			[]string{"rm", "-rf", "/etc/network", "/etc/dhcp"},
		)},
		{"SETTING UP SYSTEMD-RESOLVED & SYSTEMD-NETWORKD", c.commands(
			[]string{"apt-get", "autoremove", "-y", "avahi-daemon"},
			[]string{"apt-mark", "hold", "avahi-daemon", "libnss-mdns"},
			[]string{"ln", "-sf", "/run/systemd/resolve/stub-resolv.conf", "/etc/resolv.conf"},
			[]string{"systemctl", "enable", "systemd-networkd.service", "systemd-resolved.service"},
		)},
		{"CREATING INTERFACE FILE FOR WIRED CONNECTION", c.commands(
			c.copy("network/04-wired.network", "/etc/systemd/network/04-wired.network"),
		)},
		{"SETTING UP WPA_SUPPLICANT AS WIFI CLIENT WITH WLAN0", c.wifiClient},
		{"CREATING BOOT SCRIPT TO COPY NETWORK CONFIGS", c.commands(
			c.copy("network/copy-wlan.sh", "/usr/local/bin/copy-wlan.sh"),
			[]string{"chmod", "770", "/usr/local/bin/copy-wlan.sh"},
			c.copy("network/copy-wlan.service", "/etc/systemd/system/copy-wlan.service"),
			[]string{"systemctl", "enable", "copy-wlan.service"},
		)},
		{"SETTING UP WPA_SUPPLICANT AS ACCESS POINT WITH AP0", c.commands(
			c.copy("network/wpa_supplicant-ap0.conf", "/etc/wpa_supplicant/wpa_supplicant-ap0.conf"),
			[]string{"chmod", "600", "/etc/wpa_supplicant/wpa_supplicant-ap0.conf"},
		)},
		{"CONFIGURING INTERFACES", c.commands(
			c.copy("network/08-wlan0.network", "/etc/systemd/network/08-wlan0.network"),
			c.copy("network/12-ap0.network", "/etc/systemd/network/12-ap0.network"),
		)},
		{"MODIFYING SERVICE FOR ACCESS POINT TO USE AP0", c.commands(
			[]string{"systemctl", "disable", "wpa_supplicant@ap0.service"},
			c.copy("network/wpa_supplicant@ap0.service", "/etc/systemd/system/wpa_supplicant@ap0.service"),
		)},
		{"SETTING WLAN0 TO RUN AS CLIENT ON STARTUP", c.commands(
			[]string{"systemctl", "enable", "wpa_supplicant@wlan0.service"},
			[]string{"systemctl", "disable", "wpa_supplicant@ap0.service"},
		)},
		{"CREATING ACCESS POINT AUTO-DEPLOY SCRIPT", c.commands(
			c.copy("ap_auto_deploy.sh", "/usr/local/bin/ap_auto_deploy"),
		)},
		{"CONFIGURING ACCESS POINT AUTO-DEPLOY SERVICE", c.commands(
			c.copy("network/ap-auto-deploy.service", "/etc/systemd/system/ap-auto-deploy.service"),
			c.copy("network/ap-auto-deploy.timer", "/etc/systemd/system/ap-auto-deploy.timer"),
		)},
	}

	for _, s := range sections {
		logger.Infof(ctx, "[ %s ]", s.name)

		if err := s.run(ctx); err != nil {
			return fmt.Errorf("configure networking: %s: %w", s.name, err)
		}
	}

	logger.Info(ctx, "[ NETWORKING HAS BEEN CONFIGURED ]")

	return nil
}

// wifiClient installs the wlan0 client configuration without overwriting saved credentials.
func (c *Configurator) wifiClient(ctx context.Context) error {
	exists, err := afero.Exists(c.fs, WlanClientConfig)
	if err != nil {
		return fmt.Errorf("check %s: %w", WlanClientConfig, err)
	}

	if exists {
		logger.InfoKV(ctx, "Keeping existing wifi client configuration", "path", WlanClientConfig)
	} else {
		err = c.commands(
			c.copy("network/wpa_supplicant-wlan0.conf", WlanClientConfig),
			[]string{"chmod", "660", WlanClientConfig},
			[]string{"chown", "root:netdev", WlanClientConfig},
		)(ctx)
		if err != nil {
			return err
		}
	}

	return c.commands(
		[]string{"systemctl", "disable", "wpa_supplicant.service"},
		[]string{"systemctl", "enable", "wpa_supplicant@wlan0.service"},
	)(ctx)
}

// commands returns a section body running each argv in order.
func (c *Configurator) commands(argvs ...[]string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		for _, argv := range argvs {
			if _, err := c.runner.Run(ctx, argv...); err != nil {
				return err
			}
		}

		return nil
	}
}

// copy returns the argv copying a staged file to target.
func (c *Configurator) copy(staged, target string) []string {
	return []string{"cp", c.stage.Path(staged), target}
}
