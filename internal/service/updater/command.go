package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/peachcloud/peach-config/internal/config"
	"github.com/peachcloud/peach-config/internal/domain/peach"
	"github.com/peachcloud/peach-config/internal/logger"
	"github.com/peachcloud/peach-config/internal/service/packages"
	"github.com/peachcloud/peach-config/internal/system/command"
	"github.com/peachcloud/peach-config/internal/system/process"
)

var (
	errSettingsNotInitialised = errors.New("settings are not initialized")
	errConflictingModes       = errors.New("only one of microservices, self and list may be selected")
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// Microservices updates every microservice except this CLI.
	Microservices bool
	// Self updates only this CLI.
	Self bool
	// List prints the available upgrades without installing them.
	List bool
}

// Upgradeable is the output of a list request.
type Upgradeable struct {
	// Packages are the upgradable listing lines of PeachCloud services.
	Packages []string `json:"upgradeable"`
}

// Run loads settings and performs the requested update. List output goes to w.
func Run(ctx context.Context, opts *Options, w io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	return New(cfg, command.NewExec()).Run(ctx, opts, w)
}

// Updater performs updates through a command runner.
type Updater struct {
	cfg           *config.Config
	runner        command.Runner
	packages      *packages.Manager
	listProcesses process.Lister
}

// New returns an Updater for cfg.
func New(cfg *config.Config, runner command.Runner) *Updater {
	return &Updater{
		cfg:      cfg,
		runner:   runner,
		packages: packages.NewManager(cfg, runner),
	}
}

// WithProcessLister replaces the process table used by the pre-flight check.
func (u *Updater) WithProcessLister(list process.Lister) *Updater {
	u.listProcesses = list

	return u
}

// Run performs the update selected by opts. Without a selection this CLI is
// updated first and the updated binary then updates the microservices.
func (u *Updater) Run(ctx context.Context, opts *Options, w io.Writer) error {
	if u.cfg == nil {
		return errSettingsNotInitialised
	}

	if countSelected(opts.Microservices, opts.Self, opts.List) > 1 {
		return errConflictingModes
	}

	ctx = logger.WithName(ctx, "update")

	if opts.List {
		return u.list(ctx, w)
	}

	if err := process.EnsurePackageManagerIdle(u.listProcesses); err != nil {
		return fmt.Errorf("pre-flight: %w", err)
	}

	switch {
	case opts.Microservices:
		return u.packages.UpdateMicroservices(ctx)
	case opts.Self:
		return u.packages.UpdateSelf(ctx)
	}

	if err := u.packages.UpdateSelf(ctx); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Handing over to the updated binary", "binary", u.cfg.SelfBinary)

	argv := []string{u.cfg.SelfBinary, "update", "--microservices"}
	if opts.ConfigPath != "" {
		argv = append(argv, "--config", opts.ConfigPath)
	}

	return u.runner.Interactive(ctx, argv...)
}

// list writes the available PeachCloud upgrades to w as one line of JSON.
func (u *Updater) list(ctx context.Context, w io.Writer) error {
	lines, err := u.packages.AvailableUpdates(ctx)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Available updates", "count", len(lines))

	data, err := json.Marshal(Upgradeable{Packages: lines})
	if err != nil {
		return &peach.Error{Kind: peach.KindSerialization, Err: err}
	}

	if _, err = fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("write upgradeable list: %w", err)
	}

	return nil
}

func countSelected(flags ...bool) int {
	n := 0

	for _, f := range flags {
		if f {
			n++
		}
	}

	return n
}
