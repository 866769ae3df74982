package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/coursedates/internal/atomicfile"
)

type persistedConfig struct {
	StartDate    *string              `toml:"start_date,omitempty"`
	StartIndex   *int                 `toml:"start_index,omitempty"`
	Extensions   []string             `toml:"extensions,omitempty"`
	OutputSuffix *string              `toml:"output_suffix,omitempty"`
	Archiver     *string              `toml:"archiver,omitempty"`
	Workers      *int                 `toml:"workers,omitempty"`
	WorkDir      *string              `toml:"work_dir,omitempty"`
	KeepWorkDir  *bool                `toml:"keep_work_dir,omitempty"`
	Commands     *persistedCommands   `toml:"commands,omitempty"`
	UI           *persistedUISettings `toml:"ui,omitempty"`
}

type persistedCommands struct {
	Unzip *string `toml:"unzip,omitempty"`
	Zip   *string `toml:"zip,omitempty"`
}

type persistedUISettings struct {
	Accent *string `toml:"accent,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SaveTo writes the config to path atomically. Empty values are omitted so
// the file only records what was set.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		StartDate:    nonEmptyPtr(cfg.StartDate),
		StartIndex:   cfg.StartIndex,
		OutputSuffix: nonEmptyPtr(cfg.OutputSuffix),
		Archiver:     nonEmptyPtr(cfg.Archiver),
		WorkDir:      nonEmptyPtr(cfg.WorkDir),
	}
	if len(cfg.Extensions) > 0 {
		out.Extensions = cfg.Extensions
	}
	if cfg.Workers != 0 {
		workers := cfg.Workers
		out.Workers = &workers
	}
	if cfg.KeepWorkDir {
		keep := true
		out.KeepWorkDir = &keep
	}

	unzip := nonEmptyPtr(cfg.Commands.Unzip)
	zip := nonEmptyPtr(cfg.Commands.Zip)
	if unzip != nil || zip != nil {
		out.Commands = &persistedCommands{Unzip: unzip, Zip: zip}
	}
	if accent := nonEmptyPtr(cfg.UI.Accent); accent != nil {
		out.UI = &persistedUISettings{Accent: accent}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}
