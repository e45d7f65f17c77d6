package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/peachcloud/peach-config/internal/config"
	"github.com/peachcloud/peach-config/internal/domain/peach"
	"github.com/peachcloud/peach-config/internal/logger"
	"github.com/peachcloud/peach-config/internal/repository/hardware"
	"github.com/peachcloud/peach-config/internal/service/packages"
	"github.com/peachcloud/peach-config/internal/system/command"
)

// Options are inputs accepted by the manifest entry point.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
}

// InstalledLister reports installed package versions.
type InstalledLister interface {
	InstalledVersions(ctx context.Context) (map[string]string, error)
}

// Run loads settings and writes the manifest of the local device to w.
func Run(ctx context.Context, opts *Options, w io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	g := NewGenerator(
		packages.NewManager(cfg, command.NewExec()),
		hardware.NewFileRepository(cfg.HardwareConfigFile),
	)

	return g.Write(ctx, w)
}

// Generator assembles manifests.
type Generator struct {
	installed InstalledLister
	hardware  hardware.Repository
}

// NewGenerator returns a Generator reading packages from installed and hardware from repo.
func NewGenerator(installed InstalledLister, repo hardware.Repository) *Generator {
	return &Generator{
		installed: installed,
		hardware:  repo,
	}
}

// Build collects the installed packages and the saved hardware configuration.
func (g *Generator) Build(ctx context.Context) (*peach.Manifest, error) {
	ctx = logger.WithName(ctx, "manifest")

	versions, err := g.installed.InstalledVersions(ctx)
	if err != nil {
		return nil, err
	}

	hw, err := LoadHardwareConfig(ctx, g.hardware)
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Built manifest", "packages", len(versions), "hardware", hw != nil)

	return peach.NewManifest(versions, hw), nil
}

// Write builds the manifest and writes it to w followed by a newline.
func (g *Generator) Write(ctx context.Context, w io.Writer) error {
	m, err := g.Build(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return &peach.Error{Kind: peach.KindSerialization, Err: err}
	}

	if _, err = fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// LoadHardwareConfig returns the saved hardware configuration, or nil when
// setup never completed on this device.
func LoadHardwareConfig(ctx context.Context, repo hardware.Repository) (*peach.HardwareConfig, error) {
	hw, err := repo.Load(ctx)
	if errors.Is(err, hardware.ErrNotFound) {
		return nil, nil //nolint:nilnil // Absence is a valid state.
	}

	return hw, err
}
