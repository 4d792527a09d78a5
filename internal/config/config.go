// Package config loads terminate's settings.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/hostops/terminate/internal/constants"
)

//go:embed defaults.toml
var defaultsTOML []byte

// Config is the merged configuration for a run.
type Config struct {
	Log      LogConfig      `toml:"log" yaml:"log"`
	Reporter ReporterConfig `toml:"reporter" yaml:"reporter"`
	Lock     LockConfig     `toml:"lock" yaml:"lock"`

	// Source is the override file that was applied, if any.
	Source string `toml:"-" yaml:"-"`
}

// LogConfig controls where logs are written and how verbose they are.
type LogConfig struct {
	// Dir holds terminate.log and terminate-events.log.
	Dir string `toml:"dir" yaml:"dir"`

	// Level is the diagnostics level (debug, info, warn, error).
	Level string `toml:"level" yaml:"level"`
}

// ReporterConfig locates and drives the inventory scanner.
type ReporterConfig struct {
	InstallPath   string   `toml:"install_path" yaml:"install_path"`
	RegistryKey   string   `toml:"registry_key" yaml:"registry_key"`
	RegistryValue string   `toml:"registry_value" yaml:"registry_value"`
	Executable    string   `toml:"executable" yaml:"executable"`
	NameField     string   `toml:"name_field" yaml:"name_field"`
	AgeField      string   `toml:"age_field" yaml:"age_field"`
	Timeout       Duration `toml:"timeout" yaml:"timeout"`
}

// LockConfig controls the run lock.
type LockConfig struct {
	// Enabled is a pointer so an override can turn the lock off.
	Enabled *bool  `toml:"enabled" yaml:"enabled"`
	Dir     string `toml:"dir" yaml:"dir"`
}

// LockEnabled reports whether runs should take the run lock.
func (c *Config) LockEnabled() bool {
	return c.Lock.Enabled == nil || *c.Lock.Enabled
}

// Duration is a wrapper for time.Duration that supports TOML and YAML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// String returns the duration as a string.
func (d Duration) String() string {
	return d.Duration.String()
}

// Load builds the configuration.
// Resolution order (later overrides earlier):
//  1. Built-in defaults (embedded in binary)
//  2. The override file at path, or $TERMINATE_CONFIG when path is empty
//  3. $TERMINATE_LOG_DIR and $TERMINATE_LOG_LEVEL
//
// Each layer merges with (not replaces) the previous. An explicitly named
// override file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg, err := builtin()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = os.Getenv(constants.EnvConfig)
	}
	if path != "" {
		override, err := loadOverride(path)
		if err != nil {
			return nil, err
		}
		merge(cfg, override)
		cfg.Source = path
	}

	cfg.applyEnv()
	cfg.resolve()
	return cfg, nil
}

// Fallback returns the built-in configuration with environment overrides
// applied. Callers use it when the config file cannot be loaded.
func Fallback() (*Config, error) {
	cfg, err := builtin()
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.resolve()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if dir := os.Getenv(constants.EnvLogDir); dir != "" {
		c.Log.Dir = dir
	}
	if level := os.Getenv(constants.EnvLogLevel); level != "" {
		c.Log.Level = level
	}
}

func builtin() (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(string(defaultsTOML), &cfg); err != nil {
		return nil, fmt.Errorf("parsing built-in defaults: %w", err)
	}
	return &cfg, nil
}

func (c *Config) resolve() {
	if c.Log.Dir == "" {
		c.Log.Dir = os.TempDir()
	}
	if c.Lock.Dir == "" {
		c.Lock.Dir = c.Log.Dir
	}
}

// loadOverride reads a TOML or YAML override file, chosen by extension.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func loadOverride(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator-supplied
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: decode: %w", path, err)
		}
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%s: unknown keys: %v", path, undecoded)
		}
	}
	return &cfg, nil
}

// merge applies the non-zero fields of override onto base.
func merge(base, override *Config) {
	if override == nil {
		return
	}

	if override.Log.Dir != "" {
		base.Log.Dir = override.Log.Dir
	}
	if override.Log.Level != "" {
		base.Log.Level = override.Log.Level
	}

	r := &override.Reporter
	if r.InstallPath != "" {
		base.Reporter.InstallPath = r.InstallPath
	}
	if r.RegistryKey != "" {
		base.Reporter.RegistryKey = r.RegistryKey
	}
	if r.RegistryValue != "" {
		base.Reporter.RegistryValue = r.RegistryValue
	}
	if r.Executable != "" {
		base.Reporter.Executable = r.Executable
	}
	if r.NameField != "" {
		base.Reporter.NameField = r.NameField
	}
	if r.AgeField != "" {
		base.Reporter.AgeField = r.AgeField
	}
	if r.Timeout.Duration != 0 {
		base.Reporter.Timeout = r.Timeout
	}

	if override.Lock.Enabled != nil {
		enabled := *override.Lock.Enabled
		base.Lock.Enabled = &enabled
	}
	if override.Lock.Dir != "" {
		base.Lock.Dir = override.Lock.Dir
	}
}
