package cmd

import (
	"github.com/spf13/cobra"

	"github.com/peachcloud/peach-config/internal/service/manifest"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Prints json manifest of peach configurations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return manifest.Run(cmd.Context(), &manifest.Options{ConfigPath: configPath}, cmd.OutOrStdout())
	},
}
