package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config holds the fixed lists and paths used by setup, update and manifest.
type Config struct {
	// StagingDir holds the configuration files copied into system locations.
	StagingDir string `yaml:"staging_dir"`
	// HardwareConfigFile is where the hardware configuration log is persisted.
	HardwareConfigFile string `yaml:"hardware_config_file"`
	// SelfPackage is the package name of this CLI, excluded from microservice updates.
	SelfPackage string `yaml:"self_package"`
	// SelfBinary is the installed path of this CLI, used to re-invoke it after a self update.
	SelfBinary string `yaml:"self_binary"`
	// PackagePrefix selects installed packages reported by the manifest.
	PackagePrefix string `yaml:"package_prefix"`
	// Services lists the PeachCloud microservice packages, including SelfPackage.
	Services []string `yaml:"services"`
	// ServiceUsers lists the system users created for microservices.
	ServiceUsers []string `yaml:"service_users"`
	// BasePackages lists operating system packages installed by setup.
	BasePackages []string `yaml:"base_packages"`
	// AptKeyURL is the public signing key of the PeachCloud apt repository.
	AptKeyURL string `yaml:"apt_key_url"`
	// DefaultPassword is the password of the peach user in unattended mode.
	DefaultPassword string `yaml:"default_password"`
	// AuditLog is an optional file receiving every log entry, including command output.
	AuditLog string `yaml:"audit_log"`
	// LogLevel is the console log level.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default location of the settings file.
	DefaultConfigFilename = "/etc/peachcloud/peach-config.yml"

	// DefaultStagingDir is where configuration templates are stored on the device.
	DefaultStagingDir = "/var/lib/peachcloud/conf"

	// DefaultHardwareConfigFile is kept apart from /var/lib/peachcloud/config.yml because
	// it records what setup configured and is not meant to be edited by hand.
	DefaultHardwareConfigFile = "/var/lib/peachcloud/hardware_config.json"

	// DefaultSelfPackage is the package name of this CLI.
	DefaultSelfPackage = "peach-config"

	// DefaultSelfBinary is the installed path of this CLI.
	DefaultSelfBinary = "/usr/bin/peach-config"

	// DefaultPackagePrefix matches every PeachCloud package name.
	DefaultPackagePrefix = "peach"

	// DefaultAptKeyURL is the signing key of apt.peachcloud.org.
	DefaultAptKeyURL = "http://apt.peachcloud.org/pubkey.gpg"

	// DefaultPassword is the unattended-mode password of the peach user.
	DefaultPassword = "peachcloud"

	// DefaultLogLevel is the console log level.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNoServices is returned when the microservice list is empty.
	errNoServices = errors.New("at least one service must be listed")
	// errSelfNotListed is returned when the self package is missing from services.
	errSelfNotListed = errors.New("self package must be listed in services")
	// errRelativePath is returned for a path setting that is not absolute.
	errRelativePath = errors.New("path must be absolute")
	// errEmptyValue is returned for a required setting left empty.
	errEmptyValue = errors.New("value must not be empty")
)

// DefaultServices returns the stock PeachCloud microservice packages.
func DefaultServices() []string {
	return []string{
		"peach-oled",
		"peach-network",
		"peach-stats",
		"peach-web",
		"peach-menu",
		"peach-buttons",
		"peach-monitor",
		"peach-probe",
		"peach-dyndns-updater",
		"peach-go-sbot",
		"peach-config",
	}
}

// DefaultServiceUsers returns the microservices that run under their own system user.
func DefaultServiceUsers() []string {
	return []string{
		"peach-buttons",
		"peach-menu",
		"peach-monitor",
		"peach-network",
		"peach-oled",
		"peach-stats",
		"peach-web",
	}
}

// DefaultBasePackages returns the operating system packages installed by setup.
func DefaultBasePackages() []string {
	return []string{
		"vim",
		"man-db",
		"locales",
		"iw",
		"git",
		"python-smbus",
		"i2c-tools",
		"build-essential",
		"curl",
		"libnss-resolve",
		"mosh",
		"sudo",
		"pkg-config",
		"libssl-dev",
		"nginx",
		"wget",
	}
}

// Default returns the settings of a stock PeachCloud device.
func Default() *Config {
	return &Config{
		StagingDir:         DefaultStagingDir,
		HardwareConfigFile: DefaultHardwareConfigFile,
		SelfPackage:        DefaultSelfPackage,
		SelfBinary:         DefaultSelfBinary,
		PackagePrefix:      DefaultPackagePrefix,
		Services:           DefaultServices(),
		ServiceUsers:       DefaultServiceUsers(),
		BasePackages:       DefaultBasePackages(),
		AptKeyURL:          DefaultAptKeyURL,
		DefaultPassword:    DefaultPassword,
		LogLevel:           DefaultLogLevel,
	}
}

// Load reads settings from path over the defaults and validates them.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate settings %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file holds the default password.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	paths := map[string]string{
		"staging_dir":          cfg.StagingDir,
		"hardware_config_file": cfg.HardwareConfigFile,
		"self_binary":          cfg.SelfBinary,
	}
	for name, value := range paths {
		if !filepath.IsAbs(value) {
			return fmt.Errorf("%s %q: %w", name, value, errRelativePath)
		}
	}

	if cfg.AuditLog != "" && !filepath.IsAbs(cfg.AuditLog) {
		return fmt.Errorf("audit_log %q: %w", cfg.AuditLog, errRelativePath)
	}

	required := map[string]string{
		"self_package":     cfg.SelfPackage,
		"package_prefix":   cfg.PackagePrefix,
		"default_password": cfg.DefaultPassword,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s: %w", name, errEmptyValue)
		}
	}

	if len(cfg.Services) == 0 {
		return errNoServices
	}

	if !slices.Contains(cfg.Services, cfg.SelfPackage) {
		return fmt.Errorf("%s: %w", cfg.SelfPackage, errSelfNotListed)
	}

	if _, err := url.ParseRequestURI(cfg.AptKeyURL); err != nil {
		return fmt.Errorf("invalid apt key URL: %w", err)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	return nil
}

// Microservices returns Services without SelfPackage, preserving order.
func (c *Config) Microservices() []string {
	result := make([]string, 0, len(c.Services))

	for _, service := range c.Services {
		if service != c.SelfPackage {
			result = append(result, service)
		}
	}

	return result
}
