package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/peachcloud/peach-config/internal/config"
	"github.com/peachcloud/peach-config/internal/domain/peach"
	"github.com/peachcloud/peach-config/internal/logger"
	"github.com/peachcloud/peach-config/internal/repository/hardware"
	"github.com/peachcloud/peach-config/internal/service/networking"
	"github.com/peachcloud/peach-config/internal/service/packages"
	"github.com/peachcloud/peach-config/internal/system/command"
	"github.com/peachcloud/peach-config/internal/system/process"
	"github.com/peachcloud/peach-config/internal/system/stage"
	"github.com/peachcloud/peach-config/internal/system/users"
)

var errSettingsNotInitialised = errors.New("settings are not initialized")

// Options are inputs accepted by the setup entry point.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// NoInput runs without prompting the operator.
	NoInput bool
	// DefaultLocale sets the system locale to en_US.UTF-8.
	DefaultLocale bool
	// I2C configures the I2C bus for the display and buttons.
	I2C bool
	// RTC selects the real-time clock module. It requires I2C.
	RTC *peach.RtcModel
}

// Run loads settings and provisions the local device. It is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	o := NewOrchestrator(
		cfg,
		command.NewExec(),
		afero.NewOsFs(),
		hardware.NewFileRepository(cfg.HardwareConfigFile),
	)

	return o.Run(ctx, opts)
}

// Orchestrator runs the setup steps against injected collaborators.
type Orchestrator struct {
	cfg           *config.Config
	runner        command.Runner
	fs            afero.Fs
	stage         stage.Resolver
	users         *users.Manager
	packages      *packages.Manager
	networking    *networking.Configurator
	hardware      hardware.Repository
	listProcesses process.Lister
}

// NewOrchestrator wires an Orchestrator. fs receives the files setup writes directly.
func NewOrchestrator(
	cfg *config.Config,
	runner command.Runner,
	fs afero.Fs,
	repo hardware.Repository,
) *Orchestrator {
	resolver := stage.New(cfg.StagingDir)

	return &Orchestrator{
		cfg:        cfg,
		runner:     runner,
		fs:         fs,
		stage:      resolver,
		users:      users.NewManager(runner),
		packages:   packages.NewManager(cfg, runner),
		networking: networking.NewConfigurator(runner, fs, resolver),
		hardware:   repo,
	}
}

// WithProcessLister replaces the process table used by the pre-flight check.
func (o *Orchestrator) WithProcessLister(list process.Lister) *Orchestrator {
	o.listProcesses = list

	return o
}

// Run executes every step in order and stops at the first failure.
func (o *Orchestrator) Run(ctx context.Context, opts *Options) error {
	if o.cfg == nil {
		return errSettingsNotInitialised
	}

	ctx = logger.WithName(ctx, "setup")

	logger.Info(ctx, "[ RUNNING SETUP PEACH ]")

	if err := process.EnsurePackageManagerIdle(o.listProcesses); err != nil {
		return fmt.Errorf("pre-flight: %w", err)
	}

	if opts.RTC != nil && !opts.I2C {
		logger.WarnKV(ctx, "Real-time clock requires I2C, skipping its configuration", "rtc", opts.RTC.String())
	}

	for _, s := range o.steps(opts) {
		logger.Infof(ctx, "[ %s ]", s.name)

		stepCtx := logger.WithKV(ctx, "step", s.name)

		if err := s.run(stepCtx); err != nil {
			logger.ErrorKV(stepCtx, "Setup step failed", "error", err)

			return fmt.Errorf("%s: %w", s.name, err)
		}
	}

	logger.Info(ctx, "[ PEACHCLOUD SETUP COMPLETE ]")

	return nil
}
