package packages

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/peachcloud/peach-config/internal/config"
	"github.com/peachcloud/peach-config/internal/logger"
	"github.com/peachcloud/peach-config/internal/system/command"
	"github.com/peachcloud/peach-config/internal/system/stage"
)

const (
	// sourcesListPath is where the PeachCloud apt source is installed.
	sourcesListPath = "/etc/apt/sources.list.d/peach.list"
	// downloadedKeyPath is where the repository signing key is fetched to.
	downloadedKeyPath = "/tmp/pubkey.gpg"
)

// Manager runs package manager commands for the configured services.
type Manager struct {
	runner command.Runner
	cfg    *config.Config
	stage  stage.Resolver
	// installedPattern extracts (name, version) from one line of `dpkg -l`.
	installedPattern *regexp.Regexp
}

// NewManager returns a Manager for cfg running commands through runner.
func NewManager(cfg *config.Config, runner command.Runner) *Manager {
	return &Manager{
		runner: runner,
		cfg:    cfg,
		stage:  stage.New(cfg.StagingDir),
		installedPattern: regexp.MustCompile(
			`^\S+\s+(\S*` + regexp.QuoteMeta(cfg.PackagePrefix) + `\S+)\s+(\S+)`),
	}
}

// UpdateSelf refreshes the package index and installs the latest version of this CLI.
func (m *Manager) UpdateSelf(ctx context.Context) error {
	if err := m.refresh(ctx); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Updating package", "package", m.cfg.SelfPackage)

	return m.install(ctx, m.cfg.SelfPackage)
}

// UpdateMicroservices refreshes the package index and installs or upgrades
// every service except this CLI in a single request.
func (m *Manager) UpdateMicroservices(ctx context.Context) error {
	if err := m.refresh(ctx); err != nil {
		return err
	}

	services := m.cfg.Microservices()
	logger.InfoKV(ctx, "Updating microservices", "packages", services)

	return m.install(ctx, services...)
}

// AvailableUpdates refreshes the package index and returns the upgradable
// listing lines that mention a PeachCloud service.
func (m *Manager) AvailableUpdates(ctx context.Context) ([]string, error) {
	if err := m.refresh(ctx); err != nil {
		return nil, err
	}

	output, err := command.RunText(ctx, m.runner, "apt", "list", "--upgradable")
	if err != nil {
		return nil, fmt.Errorf("list upgradable packages: %w", err)
	}

	return filterServiceLines(output, m.cfg.Services), nil
}

// InstalledVersions maps each installed package whose name contains the
// configured prefix to its version.
func (m *Manager) InstalledVersions(ctx context.Context) (map[string]string, error) {
	output, err := command.RunText(ctx, m.runner, "dpkg", "-l")
	if err != nil {
		return nil, fmt.Errorf("list installed packages: %w", err)
	}

	return m.parseInstalled(output), nil
}

// RegisterRepository adds the PeachCloud apt source and trusts its signing key.
func (m *Manager) RegisterRepository(ctx context.Context) error {
	steps := [][]string{
		{"cp", m.stage.Path("peach.list"), sourcesListPath},
		{"wget", "-O", downloadedKeyPath, m.cfg.AptKeyURL},
		{"apt-key", "add", downloadedKeyPath},
		{"rm", downloadedKeyPath},
	}

	for _, argv := range steps {
		if _, err := m.runner.Run(ctx, argv...); err != nil {
			return fmt.Errorf("register apt repository: %w", err)
		}
	}

	return nil
}

func (m *Manager) refresh(ctx context.Context) error {
	if _, err := m.runner.Run(ctx, "apt-get", "update"); err != nil {
		return fmt.Errorf("refresh package index: %w", err)
	}

	return nil
}

func (m *Manager) install(ctx context.Context, packages ...string) error {
	argv := append([]string{"apt-get", "install", "-y"}, packages...)
	if _, err := m.runner.Run(ctx, argv...); err != nil {
		return fmt.Errorf("install %s: %w", strings.Join(packages, ", "), err)
	}

	return nil
}

func (m *Manager) parseInstalled(listing string) map[string]string {
	versions := make(map[string]string)

	for line := range strings.SplitSeq(listing, "\n") {
		match := m.installedPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		versions[match[1]] = match[2]
	}

	return versions
}

// filterServiceLines keeps the listing lines containing one of services.
func filterServiceLines(listing string, services []string) []string {
	result := make([]string, 0)

	for line := range strings.SplitSeq(listing, "\n") {
		for _, service := range services {
			if strings.Contains(line, service) {
				result = append(result, line)
				break
			}
		}
	}

	return result
}
