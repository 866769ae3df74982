// Package config handles global coursedates configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/coursedates/internal/dates"
	"github.com/aidanlsb/coursedates/internal/paths"
)

// Config represents the global coursedates configuration.
type Config struct {
	// StartDate is the default school-year start date (MM/DD/YYYY or YYYY-MM-DD).
	StartDate string `toml:"start_date"`

	// StartIndex is the day-numbering convention used in directives.
	// Nil means the built-in default of 0.
	StartIndex *int `toml:"start_index"`

	// Extensions lists the file extensions scanned for directives.
	Extensions []string `toml:"extensions"`

	// OutputSuffix is appended to the input stem when no output path is given.
	OutputSuffix string `toml:"output_suffix"`

	// Archiver selects the container implementation: "zip" (built in) or
	// "exec" (external unzip/zip tools).
	Archiver string `toml:"archiver"`

	// Workers bounds how many files are rewritten concurrently. 0 means one
	// per CPU.
	Workers int `toml:"workers"`

	// WorkDir is where containers are unpacked. Defaults to the temp dir.
	WorkDir string `toml:"work_dir"`

	// KeepWorkDir leaves the unpacked tree in place after the run.
	KeepWorkDir bool `toml:"keep_work_dir"`

	// Commands overrides the external tools used by the exec archiver.
	Commands CommandsConfig `toml:"commands"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// CommandsConfig names the external archive tools.
type CommandsConfig struct {
	Unzip string `toml:"unzip"`
	Zip   string `toml:"zip"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`
}

// GetStartIndex returns the configured start index or 0.
func (c *Config) GetStartIndex() int {
	if c == nil || c.StartIndex == nil {
		return 0
	}
	return *c.StartIndex
}

// GetExtensions returns the configured extensions or the defaults.
func (c *Config) GetExtensions() []string {
	if c == nil || len(c.Extensions) == 0 {
		return paths.DefaultExtensions
	}
	return c.Extensions
}

// GetOutputSuffix returns the configured output suffix or "_updated".
func (c *Config) GetOutputSuffix() string {
	if c == nil || c.OutputSuffix == "" {
		return paths.DefaultOutputSuffix
	}
	return c.OutputSuffix
}

// GetArchiver returns the configured archiver or "zip".
func (c *Config) GetArchiver() string {
	if c == nil || strings.TrimSpace(c.Archiver) == "" {
		return "zip"
	}
	return strings.TrimSpace(c.Archiver)
}

// Validate checks values that cannot be fixed up with defaults.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.StartDate != "" && !dates.IsValidDate(c.StartDate) {
		return fmt.Errorf("invalid start_date %q: use MM/DD/YYYY or YYYY-MM-DD", c.StartDate)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid extension %q: must start with '.'", ext)
		}
	}
	switch c.GetArchiver() {
	case "zip", "exec":
	default:
		return fmt.Errorf("invalid archiver %q: use zip or exec", c.Archiver)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d: must not be negative", c.Workers)
	}
	return nil
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

// ResolveConfigPath resolves the effective config path from an optional override.
func ResolveConfigPath(explicitConfigPath string) string {
	if strings.TrimSpace(explicitConfigPath) != "" {
		return explicitConfigPath
	}
	return DefaultPath()
}

// DefaultPath returns the default config file path.
// Checks ~/.config/coursedates/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "coursedates", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "coursedates", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

const defaultConfigTemplate = `# coursedates configuration

# School-year start date used when --start is not given.
# start_date = "08/19/2024"

# Day numbering used by directives: 0 means DateReplace(D, 0) is the start date.
# start_index = 0

# File extensions scanned for DateReplace directives (case-sensitive).
# extensions = [".html", ".htm", ".xml", ".txt"]

# Suffix for the default output container: course.imscc -> course_updated.imscc
# output_suffix = "_updated"

# Container implementation:
#   zip  - built in (default)
#   exec - external unzip/zip tools
# archiver = "zip"

# Files rewritten in parallel (0 = one per CPU).
# workers = 0

# [commands]
# unzip = "unzip"
# zip = "zip"

# [ui]
# accent = "39"
`

// CreateDefault creates a default config file at path if it doesn't exist.
func CreateDefault(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
