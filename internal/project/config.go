package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of rmspp.toml / rmspp.yaml. Zero fields take
// defaults from Defaults.
type Config struct {
	// AreaBase is the first ID given to a named actor area.
	AreaBase int `toml:"area_base" yaml:"area_base"`
	// HoistPrefix prefixes the names of hoisted rnd constants.
	HoistPrefix    string `toml:"hoist_prefix" yaml:"hoist_prefix"`
	MaxDiagnostics int    `toml:"max_diagnostics" yaml:"max_diagnostics"`
	// MaxTokens caps a document's size after #REPEAT expansion.
	MaxTokens int `toml:"max_tokens" yaml:"max_tokens"`
	// OutDir receives processed scripts; empty means stdout.
	OutDir string `toml:"out_dir" yaml:"out_dir"`
	Jobs   int    `toml:"jobs" yaml:"jobs"`
	// Cache enables the on-disk result cache.
	Cache bool `toml:"cache" yaml:"cache"`

	// Path is the file the config was read from ("" for defaults).
	Path string `toml:"-" yaml:"-"`
}

const (
	DefaultAreaBase       = 20000
	DefaultHoistPrefix    = "C"
	DefaultMaxDiagnostics = 100
	DefaultMaxTokens      = 4 << 20
)

// ErrUnknownFormat is returned for config files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("unknown config format")

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		AreaBase:       DefaultAreaBase,
		HoistPrefix:    DefaultHoistPrefix,
		MaxDiagnostics: DefaultMaxDiagnostics,
		MaxTokens:      DefaultMaxTokens,
	}
}

// Load reads path (TOML or YAML by extension), fills defaults, applies
// RMSPP_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	cfg.Path = path
	ApplyDefaults(&cfg)
	applyEnv(&cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the config found by FindConfig from startDir, or the
// defaults (with environment overrides) when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, err
	}
	if ok {
		return Load(path)
	}
	cfg := Defaults()
	applyEnv(&cfg, os.Getenv)
	return cfg, cfg.Validate()
}

// ApplyDefaults fills zero fields.
func ApplyDefaults(cfg *Config) {
	d := Defaults()
	if cfg.AreaBase == 0 {
		cfg.AreaBase = d.AreaBase
	}
	if cfg.HoistPrefix == "" {
		cfg.HoistPrefix = d.HoistPrefix
	}
	if cfg.MaxDiagnostics == 0 {
		cfg.MaxDiagnostics = d.MaxDiagnostics
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = d.MaxTokens
	}
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v, err := strconv.Atoi(getenv("RMSPP_AREA_BASE")); err == nil {
		cfg.AreaBase = v
	}
	if v := getenv("RMSPP_HOIST_PREFIX"); v != "" {
		cfg.HoistPrefix = v
	}
	if v, err := strconv.Atoi(getenv("RMSPP_JOBS")); err == nil {
		cfg.Jobs = v
	}
	if v := getenv("RMSPP_OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.AreaBase < 0 {
		errs = append(errs, fmt.Errorf("area_base must not be negative, got %d", c.AreaBase))
	}
	if !validPrefix(c.HoistPrefix) {
		errs = append(errs, fmt.Errorf("hoist_prefix %q must be a word starting with a letter", c.HoistPrefix))
	}
	if c.MaxDiagnostics < 0 || c.MaxDiagnostics > 65535 {
		errs = append(errs, fmt.Errorf("max_diagnostics must be in 0..65535, got %d", c.MaxDiagnostics))
	}
	if c.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("max_tokens must not be negative, got %d", c.MaxTokens))
	}
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs must not be negative, got %d", c.Jobs))
	}
	return errors.Join(errs...)
}

func validPrefix(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if i == 0 && !letter {
			return false
		}
		if !letter && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
