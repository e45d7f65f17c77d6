package cmd

import (
	"github.com/spf13/cobra"

	"github.com/peachcloud/peach-config/internal/service/setup"
)

var (
	setupOptions setup.Options
	setupRtc     rtcValue

	setupCmd = &cobra.Command{
		Use:   "setup",
		Short: "Idempotent setup of PeachCloud",
		Long: `Configures users, packages, networking and optional hardware of a PeachCloud device.

Every step can be repeated safely. When a step fails the remaining steps are skipped
and the command can be run again once the cause is fixed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := setupOptions
			opts.ConfigPath = configPath
			opts.RTC = setupRtc.model

			if err := setup.Run(cmd.Context(), &opts); err != nil {
				return err
			}

			noticeLine(cmd.ErrOrStderr(), "[ please reboot your device ]")

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := setupCmd.Flags()
	flags.BoolVarP(&setupOptions.I2C, "i2c", "i", false, "setup i2c configurations")
	flags.VarP(&setupRtc, "rtc", "r", "model of the real-time clock: DS1307 or DS3231 (requires --i2c)")
	flags.BoolVarP(&setupOptions.NoInput, "no-input", "n", false, "run without prompting, with the default password")
	flags.BoolVarP(&setupOptions.DefaultLocale, "default-locale", "d", false, "use the en_US.UTF-8 locale")
}
