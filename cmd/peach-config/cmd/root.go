package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/peachcloud/peach-config/internal/config"
	"github.com/peachcloud/peach-config/internal/logger"
	"github.com/peachcloud/peach-config/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// verbose enables debug logging.
	verbose bool
	// logLevel overrides the level from the configuration file.
	logLevel string

	// rootCmd is the peach-config command tree.
	rootCmd = &cobra.Command{
		Use:   "peach-config",
		Short: "A CLI tool for updating, installing and configuring PeachCloud",
		Long: `peach-config provisions a PeachCloud device and keeps its microservices up to date.

Run "peach-config setup" once on a fresh Debian install, then "peach-config update"
to fetch new releases from the PeachCloud apt repository. "peach-config manifest"
prints the installed PeachCloud packages and the hardware configured by setup.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogging,
	}

	errorLine  = color.New(color.FgRed).FprintfFunc()
	noticeLine = color.New(color.FgGreen).FprintlnFunc()
)

// Execute runs the peach-config CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		logger.ErrorKV(ctx, "peach-config encountered an error", "error", err)
		logger.Sync()
		printError(os.Stderr, err)
		os.Exit(1)
	}

	logger.Sync()
}

// setupLogging configures the global logger from settings and flags.
func setupLogging(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, err := resolveLogLevel(cfg.LogLevel, logLevel, verbose)
	if err != nil {
		return err
	}

	logger.Setup(level, cfg.AuditLog)

	return nil
}

// resolveLogLevel picks the console level: --verbose wins over --log-level,
// which wins over the configuration file.
func resolveLogLevel(configured, override string, debug bool) (zapcore.Level, error) {
	if debug {
		return zapcore.DebugLevel, nil
	}

	name := configured
	if override != "" {
		name = override
	}

	level, ok := logger.ParseLogLevel(name)
	if !ok {
		return level, fmt.Errorf("unknown log level %q", name)
	}

	return level, nil
}

func printError(w io.Writer, err error) {
	errorLine(w, "peach-config encountered an error: %v\n", err)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log every command and its output")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(setupCmd, updateCmd, manifestCmd)
}
