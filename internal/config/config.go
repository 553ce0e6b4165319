package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/shuttlebox/shuttle/internal/sync"
	"github.com/shuttlebox/shuttle/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigDir  = filepath.Join(home, ".shuttle")
	DefaultConfigPath = filepath.Join(DefaultConfigDir, "config.json")
)

// Mapping pairs one local directory with a location on the drive, relative
// to its mount point.
type Mapping struct {
	Name  string `json:"name,omitempty"`
	Local string `json:"local"`
	Drive string `json:"drive"`
}

type Config struct {
	Machine  string    `json:"machine"`
	Mappings []Mapping `json:"mappings"`
	Ignore   []string  `json:"ignore"`
	Strategy string    `json:"strategy"`
	Path     string    `json:"-"`
}

// DefaultIgnorePatterns is the stock exclusion list: OS litter, VCS
// metadata, dependency and build output directories, and shuttle's own
// bookkeeping directory.
func DefaultIgnorePatterns() []string {
	return []string{
		// OS
		".DS_Store", "Thumbs.db", "desktop.ini", "__MACOSX",
		// shuttle bookkeeping
		sync.BookkeepingDirName,
		// VCS
		".git", ".svn", ".hg",
		// Python
		"__pycache__", ".venv", "venv", ".eggs", "*.egg-info",
		".tox", ".mypy_cache", ".pytest_cache", ".ruff_cache", "*.pyc",
		// JavaScript
		"node_modules", ".next", ".nuxt", "bower_components",
		// Rust / Java / .NET / Go
		"target", ".gradle", "bin", "obj", "vendor",
		// editors
		".idea", ".vs", "*.swp", "*.swo",
		// build output
		"dist", "build", ".cache", ".tmp",
	}
}

func New(machine string) *Config {
	return &Config{
		Machine:  machine,
		Ignore:   DefaultIgnorePatterns(),
		Strategy: string(sync.StrategyBoth),
	}
}

// Validate normalizes the config and rejects unusable values. Local paths
// are resolved to absolute form.
func (c *Config) Validate() error {
	if c.Machine == "" {
		return fmt.Errorf("machine name is required")
	}
	if _, err := sync.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	for i := range c.Mappings {
		if c.Mappings[i].Drive == "" {
			return fmt.Errorf("mapping %d: drive path is required", i)
		}
		resolved, err := utils.ResolvePath(c.Mappings[i].Local)
		if err != nil {
			return fmt.Errorf("mapping %q: %w", c.Mappings[i].Drive, err)
		}
		c.Mappings[i].Local = resolved
	}
	return nil
}

func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Path = path
	if len(cfg.Ignore) == 0 {
		cfg.Ignore = DefaultIgnorePatterns()
	}
	if cfg.Strategy == "" {
		cfg.Strategy = string(sync.StrategyBoth)
	}
	return &cfg, nil
}

// FindMapping looks a mapping up by its drive-relative path.
func (c *Config) FindMapping(driveRel string) (*Mapping, bool) {
	for i := range c.Mappings {
		if c.Mappings[i].Drive == driveRel {
			return &c.Mappings[i], true
		}
	}
	return nil, false
}

func (c *Config) AddMapping(m Mapping) error {
	if _, ok := c.FindMapping(m.Drive); ok {
		return fmt.Errorf("mapping for drive path %q already exists", m.Drive)
	}
	c.Mappings = append(c.Mappings, m)
	return nil
}

func (c *Config) RemoveMapping(driveRel string) error {
	for i := range c.Mappings {
		if c.Mappings[i].Drive == driveRel {
			c.Mappings = append(c.Mappings[:i], c.Mappings[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no mapping found for drive path %q", driveRel)
}
