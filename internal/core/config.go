// Package core contains the business logic for pngstash: embedding,
// extracting, and removing chunk-borne messages, chunk inspection,
// structural verification, and configuration handling.
package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/pngstash/pngstash/pkg/png"
)

// Color output modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Report output formats.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
)

// Config holds the tool-wide settings read from .pngstash.yaml.
type Config struct {
	// ChunkType is the default chunk type for encode when none is given.
	ChunkType string
	// Placement is the default embed placement.
	Placement Placement
	// Color controls styled output: auto, always, or never.
	Color string
	// Format is the default report format: table, yaml, or json.
	Format string
	// Strict makes verification fail on warning-level findings.
	Strict bool
	// Backup keeps a .bak copy when saving over an existing file.
	Backup bool
	// MaxChunkBytes bounds the declared data length accepted per chunk.
	MaxChunkBytes uint32
}

// ConfigManager defines the interface for loading and validating
// configuration from the .pngstash.yaml file.
type ConfigManager interface {
	Load() (*Config, error)
	Validate(cfg *Config) error
}

// viperConfigManager implements ConfigManager using Viper for reading the
// YAML configuration file.
type viperConfigManager struct {
	// basePath is the directory where .pngstash.yaml resides.
	basePath string
}

// NewConfigManager creates a new ConfigManager that reads configuration
// relative to basePath.
func NewConfigManager(basePath string) ConfigManager {
	return &viperConfigManager{basePath: basePath}
}

// defaultConfig returns a Config populated with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		ChunkType:     "stSh",
		Placement:     PlacementEnd,
		Color:         ColorAuto,
		Format:        FormatTable,
		Strict:        false,
		Backup:        false,
		MaxChunkBytes: png.DefaultLimits().MaxChunkBytes,
	}
}

// Load reads the .pngstash.yaml file from the base path using Viper. If the
// file does not exist, defaults are returned. Environment overrides are
// applied last in either case.
func (cm *viperConfigManager) Load() (*Config, error) {
	cfg := defaultConfig()

	v := viper.New()
	v.SetConfigName(".pngstash")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("defaults.chunk_type", cfg.ChunkType)
	v.SetDefault("defaults.placement", string(cfg.Placement))
	v.SetDefault("output.color", cfg.Color)
	v.SetDefault("output.format", cfg.Format)
	v.SetDefault("strict", cfg.Strict)
	v.SetDefault("backup", cfg.Backup)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found, run on defaults.
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .pngstash.yaml: %w", err)
	}

	// Map nested YAML keys to flat Config fields.
	cfg.ChunkType = v.GetString("defaults.chunk_type")
	cfg.Placement = Placement(v.GetString("defaults.placement"))
	cfg.Color = v.GetString("output.color")
	cfg.Format = v.GetString("output.format")
	cfg.Strict = v.GetBool("strict")
	cfg.Backup = v.GetBool("backup")

	// Use IsSet to distinguish "not set" (use the default limit) from an
	// explicit value.
	if v.IsSet("limits.max_chunk_bytes") {
		cfg.MaxChunkBytes = v.GetUint32("limits.max_chunk_bytes")
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides adjusts cfg from the process environment. NO_COLOR is
// honored first so that the tool-specific PNGSTASH_COLOR can still win.
func applyEnvOverrides(cfg *Config) {
	if os.Getenv("NO_COLOR") != "" {
		cfg.Color = ColorNever
	}
	if mode := os.Getenv("PNGSTASH_COLOR"); mode != "" {
		cfg.Color = mode
	}
	if strict := os.Getenv("PNGSTASH_STRICT"); strict != "" {
		if b, err := strconv.ParseBool(strict); err == nil {
			cfg.Strict = b
		}
	}
}

// validColors is the set of allowed output.color values.
var validColors = map[string]bool{
	ColorAuto:   true,
	ColorAlways: true,
	ColorNever:  true,
}

// validFormats is the set of allowed output.format values.
var validFormats = map[string]bool{
	FormatTable: true,
	FormatYAML:  true,
	FormatJSON:  true,
}

// Validate checks the provided configuration for invalid values and returns
// one error naming every problem found.
func (cm *viperConfigManager) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if _, err := png.ParseChunkType(cfg.ChunkType); err != nil {
		errs = append(errs, fmt.Sprintf("defaults.chunk_type %q is invalid: %v", cfg.ChunkType, err))
	}

	if _, err := ParsePlacement(string(cfg.Placement)); err != nil {
		errs = append(errs, fmt.Sprintf("defaults.placement %q is invalid, must be one of: end, before-iend", cfg.Placement))
	}

	if !validColors[cfg.Color] {
		errs = append(errs, fmt.Sprintf("output.color %q is invalid, must be one of: auto, always, never", cfg.Color))
	}

	if !validFormats[cfg.Format] {
		errs = append(errs, fmt.Sprintf("output.format %q is invalid, must be one of: table, yaml, json", cfg.Format))
	}

	if cfg.MaxChunkBytes == 0 {
		errs = append(errs, "limits.max_chunk_bytes must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
