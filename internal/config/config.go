package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/ans-renamer/internal/domain/rename"
)

// Config holds the settings shared by every subcommand.
type Config struct {
	// Root is the directory every pair is resolved against.
	Root string `yaml:"root"`
	// Pairs is the rename table, applied in order.
	Pairs []rename.Pair `yaml:"pairs"`
	// CrossDeviceCopy makes a failed rename across file systems fall back to
	// copy-then-delete instead of being skipped.
	CrossDeviceCopy bool `yaml:"cross_device_copy"`
	// Recursive controls whether slug mode descends into subdirectories.
	Recursive *bool `yaml:"recursive,omitempty"`
	// JournalFile is where the last run report is written. "-" disables it.
	JournalFile string `yaml:"journal_file"`
	// LockFile guards against concurrent runs. "-" disables it. When empty,
	// the lock lives beside the root directory, so every run against the same
	// root shares it whatever the working directory.
	LockFile string `yaml:"lock_file"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "ans-renamer.yaml"

	// DefaultJournalFilename is the default filename of the run journal.
	DefaultJournalFilename = "ans-renamer-journal.json"

	// DefaultLockFilename is the default filename of the run lock.
	DefaultLockFilename = ".ans-renamer.lock"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// Disabled turns off an optional file such as the journal or the lock.
	Disabled = "-"

	// DefaultFilePermissions is the permission for files written by the tool.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// ErrInvalidPair is returned for a pair that is not a single, non-empty path element.
	ErrInvalidPair = errors.New("invalid rename pair")
	// ErrDuplicatePair is returned when two pairs share a source or a target.
	ErrDuplicatePair = errors.New("duplicate rename pair")
)

// Default returns settings for the fixed rename table.
func Default() *Config {
	cfg := new(Config)
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default path yields Default(); a missing file at an
// explicit path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
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

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the rename table.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.Root == "" {
		settings.Root = rename.DefaultRoot
	}

	if len(settings.Pairs) == 0 {
		settings.Pairs = rename.DefaultPairs()
	}

	if settings.Recursive == nil {
		recursive := true
		settings.Recursive = &recursive
	}

	if settings.JournalFile == "" {
		settings.JournalFile = DefaultJournalFilename
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	return validatePairs(settings.Pairs)
}

// IsRecursive reports whether slug mode should descend into subdirectories.
func (c *Config) IsRecursive() bool {
	return c.Recursive == nil || *c.Recursive
}

// JournalPath returns the journal location, or "" when disabled.
func (c *Config) JournalPath() string {
	return optionalPath(c.JournalFile)
}

// LockPath returns the lock location, or "" when disabled.
func (c *Config) LockPath() string {
	if c.LockFile != "" {
		return optionalPath(c.LockFile)
	}

	root := c.Root
	if root == "" {
		root = rename.DefaultRoot
	}

	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	return filepath.Join(filepath.Dir(filepath.Clean(root)), DefaultLockFilename)
}

func optionalPath(p string) string {
	if p == Disabled {
		return ""
	}

	return p
}

// validatePairs rejects names that would escape the root or collide.
func validatePairs(pairs []rename.Pair) error {
	sources := make(map[string]struct{}, len(pairs))
	targets := make(map[string]struct{}, len(pairs))

	for i, p := range pairs {
		for _, name := range []string{p.Source, p.Target} {
			if err := validateName(name); err != nil {
				return fmt.Errorf("%w #%d (%q -> %q): %w", ErrInvalidPair, i+1, p.Source, p.Target, err)
			}
		}

		if _, ok := sources[p.Source]; ok {
			return fmt.Errorf("%w: source %q", ErrDuplicatePair, p.Source)
		}

		if _, ok := targets[p.Target]; ok {
			return fmt.Errorf("%w: target %q", ErrDuplicatePair, p.Target)
		}

		sources[p.Source] = struct{}{}
		targets[p.Target] = struct{}{}
	}

	return nil
}

var (
	errEmptyName    = errors.New("empty name")
	errNotAnElement = errors.New("name must be a single path element")
)

func validateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errEmptyName
	case name == "." || name == "..":
		return errNotAnElement
	case strings.ContainsAny(name, `/\`):
		return errNotAnElement
	default:
		return nil
	}
}
