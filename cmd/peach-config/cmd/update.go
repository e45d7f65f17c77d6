package cmd

import (
	"github.com/spf13/cobra"

	"github.com/peachcloud/peach-config/internal/service/updater"
)

var (
	updateOptions updater.Options

	updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Updates all PeachCloud microservices",
		Long: `Installs the latest peach-config and microservices from the PeachCloud apt repository.

Without flags peach-config updates itself first and the new binary then updates
the microservices.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := updateOptions
			opts.ConfigPath = configPath

			return updater.Run(cmd.Context(), &opts, cmd.OutOrStdout())
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := updateCmd.Flags()
	flags.BoolVarP(&updateOptions.Microservices, "microservices", "m", false, "only update microservices and not peach-config")
	flags.BoolVarP(&updateOptions.Self, "self", "s", false, "only update peach-config and not microservices")
	flags.BoolVarP(&updateOptions.List, "list", "l", false, "list microservices available for updating")

	updateCmd.MarkFlagsMutuallyExclusive("microservices", "self", "list")
}
