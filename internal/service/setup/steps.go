package setup

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/peachcloud/peach-config/internal/domain/peach"
	"github.com/peachcloud/peach-config/internal/logger"
	"github.com/peachcloud/peach-config/internal/system/command"
)

const (
	// primaryUser is the operator account and the group shared by all services.
	primaryUser = "peach"
	// gpioGroup grants access to GPIO lines through the udev rule.
	gpioGroup = "gpio-user"

	firmwareConfig = "/boot/firmware/config.txt"
	modulesFile    = "/etc/modules"
	localeGen      = "/etc/locale.gen"
	defaultLocale  = "/etc/default/locale"
	nginxSite      = "/etc/nginx/sites-available/peach.conf"

	localeFileMode = 0o644
)

// groupMemberships grants services access to devices they drive.
//
//nolint:gochecknoglobals // Fixed user to group mapping.
var groupMemberships = []struct {
	user  string
	group string
}{
	{"peach-buttons", gpioGroup},
	{"peach-network", "netdev"},
	{"peach-oled", "i2c"},
}

// step is one named unit of the setup sequence.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// steps returns the ordered setup sequence for opts.
func (o *Orchestrator) steps(opts *Options) []step {
	steps := []step{
		{"INSTALLING SYSTEM REQUIREMENTS", o.installBasePackages},
		{"CREATING SYSTEM GROUPS", o.createGroups},
		{"ADDING SYSTEM USER", func(ctx context.Context) error { return o.addPrimaryUser(ctx, opts.NoInput) }},
		{"CREATING SYSTEM USERS", o.createServiceUsers},
		{"ASSIGNING GROUP MEMBERSHIP", o.assignGroups},
		{"CONFIGURING GPIO AND NGINX", o.commands(
			o.copy("50-gpio.rules", "/etc/udev/rules.d/50-gpio.rules"),
			o.copy("peach.conf", nginxSite),
			[]string{"ln", "-sf", nginxSite, "/etc/nginx/sites-enabled/"},
		)},
	}

	if opts.I2C {
		steps = append(steps, step{"CONFIGURING I2C", o.commands(
			[]string{"mkdir", "-p", "/boot/firmware/overlays"},
			o.copy("mygpio.dtbo", "/boot/firmware/overlays/mygpio.dtbo"),
			o.copy("config.txt_i2c", firmwareConfig),
			o.copy("modules", modulesFile),
		)})

		if opts.RTC != nil {
			steps = append(steps, o.rtcStep(*opts.RTC))
		}
	}

	return append(steps,
		step{"CONFIGURING LOCALE", func(ctx context.Context) error {
			return o.configureLocale(ctx, opts.NoInput, opts.DefaultLocale)
		}},
		step{"CONFIGURING SUDOERS", o.commands(
			[]string{"mkdir", "-p", "/etc/sudoers.d"},
			o.copy("shutdown", "/etc/sudoers.d/shutdown"),
		)},
		step{"CONFIGURING PEACH APT REPO", o.packages.RegisterRepository},
		step{"INSTALLING PEACH MICROSERVICES", o.packages.UpdateMicroservices},
		step{"CONFIGURING NETWORKING", o.networking.Configure},
		step{"SAVING LOG OF HARDWARE CONFIGURATIONS", func(ctx context.Context) error {
			_, err := o.saveHardwareConfig(ctx, opts.I2C, opts.RTC)
			return err
		}},
	)
}

func (o *Orchestrator) installBasePackages(ctx context.Context) error {
	argv := append([]string{"apt-get", "install", "-y"}, o.cfg.BasePackages...)

	_, err := o.runner.Run(ctx, argv...)

	return err
}

func (o *Orchestrator) createGroups(ctx context.Context) error {
	for _, group := range []string{primaryUser, gpioGroup} {
		if err := o.users.CreateGroupIfAbsent(ctx, group); err != nil {
			return err
		}
	}

	return nil
}

// addPrimaryUser creates the peach account, prompting for its password
// unless unattended, and grants it sudo.
func (o *Orchestrator) addPrimaryUser(ctx context.Context, unattended bool) error {
	exists, err := o.users.UserExists(ctx, primaryUser)
	if err != nil {
		return err
	}

	switch {
	case exists:
		logger.InfoKV(ctx, "User already exists", "user", primaryUser)
	case unattended:
		logger.Info(ctx, "[ CREATING SYSTEM USER WITH DEFAULT PASSWORD ]")

		hash, err := command.RunText(ctx, o.runner, "openssl", "passwd", "-6", o.cfg.DefaultPassword)
		if err != nil {
			return err
		}

		_, err = o.runner.Run(ctx,
			"/usr/sbin/useradd", "-m", "-p", hash, "-g", primaryUser, "-s", "/bin/bash", primaryUser)
		if err != nil {
			return err
		}
	default:
		if err := o.runner.Interactive(ctx, "/usr/sbin/adduser", primaryUser); err != nil {
			return err
		}
	}

	return o.commands(
		[]string{"usermod", "-aG", "sudo", primaryUser},
		[]string{"usermod", "-aG", primaryUser, primaryUser},
	)(ctx)
}

func (o *Orchestrator) createServiceUsers(ctx context.Context) error {
	for _, user := range o.cfg.ServiceUsers {
		if err := o.users.CreateSystemUserIfAbsent(ctx, user, primaryUser); err != nil {
			return err
		}
	}

	return nil
}

func (o *Orchestrator) assignGroups(ctx context.Context) error {
	for _, m := range groupMemberships {
		if err := o.users.AddToGroups(ctx, m.user, m.group); err != nil {
			return err
		}
	}

	return nil
}

// rtcStep installs the firmware overlay of model and the service activating the clock at boot.
func (o *Orchestrator) rtcStep(model peach.RtcModel) step {
	var overlay string

	switch model {
	case peach.DS1307:
		overlay = "config.txt_ds1307"
	case peach.DS3231:
		overlay = "config.txt_ds3231"
	}

	return step{fmt.Sprintf("CONFIGURING %s RTC MODULE", model), o.commands(
		o.copy(overlay, firmwareConfig),
		o.copy("modules_rtc", modulesFile),
		o.copy("activate_rtc.sh", "/usr/local/bin/activate_rtc"),
		o.copy("activate-rtc.service", "/etc/systemd/system/activate-rtc.service"),
		[]string{"systemctl", "daemon-reload"},
		[]string{"systemctl", "enable", "activate-rtc"},
	)}
}

// configureLocale lets the operator pick locales, then optionally forces en_US.UTF-8.
func (o *Orchestrator) configureLocale(ctx context.Context, unattended, forceDefault bool) error {
	if !unattended {
		if err := o.runner.Interactive(ctx, "dpkg-reconfigure", "locales"); err != nil {
			return err
		}
	}

	if !forceDefault {
		return nil
	}

	logger.Info(ctx, "[ SETTING DEFAULT LOCALE TO en_US.UTF-8 FOR COMPATIBILITY ]")

	_, err := o.runner.Run(ctx,
		"sed", "-i", "-e", "s/^# en_US.UTF-8 UTF-8/en_US.UTF-8 UTF-8/", localeGen)
	if err != nil {
		return err
	}

	err = afero.WriteFile(o.fs, defaultLocale, []byte("LANG=\"en_US.UTF-8\"\n"), localeFileMode)
	if err != nil {
		return &peach.Error{Kind: peach.KindFileWrite, File: defaultLocale, Err: err}
	}

	_, err = o.runner.Run(ctx, "dpkg-reconfigure", "--frontend=noninteractive", "locales")

	return err
}

// saveHardwareConfig records the hardware configured by this run and returns it.
func (o *Orchestrator) saveHardwareConfig(
	ctx context.Context,
	i2c bool,
	rtc *peach.RtcModel,
) (*peach.HardwareConfig, error) {
	cfg := peach.NewHardwareConfig(i2c, rtc)

	if err := o.hardware.Save(ctx, cfg); err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Saved hardware configuration", "hardware", cfg)

	return cfg, nil
}

// commands returns a step body running each argv in order.
func (o *Orchestrator) commands(argvs ...[]string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		for _, argv := range argvs {
			if _, err := o.runner.Run(ctx, argv...); err != nil {
				return err
			}
		}

		return nil
	}
}

// copy returns the argv copying a staged file to target.
func (o *Orchestrator) copy(staged, target string) []string {
	return []string{"cp", o.stage.Path(staged), target}
}
