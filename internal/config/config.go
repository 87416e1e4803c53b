// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/chronoschism/internal/normalize"
	"github.com/jeranaias/chronoschism/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chronoschism configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Pattern PatternConfig `toml:"pattern" json:"pattern"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Watch   WatchConfig   `toml:"watch" json:"watch"`
	History HistoryConfig `toml:"history" json:"history"`
	Log     LogConfig     `toml:"log" json:"log"`
}

// PatternConfig controls timestamp normalization.
type PatternConfig struct {
	// Default is used when neither the command line nor saved settings
	// supply a pattern. Empty means no filtering.
	Default string `toml:"default" json:"default"`
	// Syntax selects the regex engine: "re2", "dotnet" or "ecmascript".
	Syntax string `toml:"syntax" json:"syntax"`
	// MatchTimeoutMs bounds a single match for the backtracking syntaxes.
	MatchTimeoutMs int `toml:"match_timeout_ms" json:"match_timeout_ms"`
}

// UIConfig contains viewer configuration.
type UIConfig struct {
	// Theme is "dark" or "light".
	Theme       string `toml:"theme" json:"theme"`
	LineNumbers bool   `toml:"line_numbers" json:"line_numbers"`
	// Intraline highlights the characters that differ inside paired rows.
	Intraline bool `toml:"intraline" json:"intraline"`
	// DebounceMs delays re-comparison while the pattern is being typed.
	DebounceMs int  `toml:"debounce_ms" json:"debounce_ms"`
	NoColor    bool `toml:"no_color" json:"no_color"`
}

// WatchConfig controls live reload of the compared files.
type WatchConfig struct {
	Enabled          bool `toml:"enabled" json:"enabled"`
	DebounceMs       int  `toml:"debounce_ms" json:"debounce_ms"`
	MaxReloadsPerSec int  `toml:"max_reloads_per_sec" json:"max_reloads_per_sec"`
}

// HistoryConfig controls the pattern MRU list and the comparison log.
type HistoryConfig struct {
	Enabled     bool `toml:"enabled" json:"enabled"`
	MaxPatterns int  `toml:"max_patterns" json:"max_patterns"`
	// DatabasePath defaults to history.db in the config directory.
	DatabasePath string `toml:"database_path" json:"database_path"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
	// Path defaults to chronoschism.log in the config directory.
	Path string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1",

		Pattern: PatternConfig{
			Default:        "",
			Syntax:         normalize.SyntaxRE2,
			MatchTimeoutMs: 250,
		},

		UI: UIConfig{
			Theme:       "dark",
			LineNumbers: true,
			Intraline:   true,
			DebounceMs:  150,
			NoColor:     false,
		},

		Watch: WatchConfig{
			Enabled:          true,
			DebounceMs:       200,
			MaxReloadsPerSec: 2,
		},

		History: HistoryConfig{
			Enabled:     true,
			MaxPatterns: 5,
		},

		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// HomeEnv overrides the configuration directory.
const HomeEnv = "CHRONOSCHISM_HOME"

// ConfigDir returns the chronoschism configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chronoschism"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	return inConfigDir("config.toml")
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	return inConfigDir("config.json")
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

func inConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// HistoryDBPath returns the comparison history database path.
func (c *Config) HistoryDBPath() (string, error) {
	if c.History.DatabasePath != "" {
		return c.History.DatabasePath, nil
	}
	return inConfigDir("history.db")
}

// LogFilePath returns the log file path.
func (c *Config) LogFilePath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	return inConfigDir("chronoschism.log")
}

// MatchTimeout returns Pattern.MatchTimeoutMs as a duration.
func (c *Config) MatchTimeout() time.Duration {
	return time.Duration(c.Pattern.MatchTimeoutMs) * time.Millisecond
}

// Normalizer builds a caching normalizer for the configured pattern syntax
// and match timeout.
func (c *Config) Normalizer() (*normalize.PatternNormalizer, error) {
	compiler, err := normalize.CompilerFor(c.Pattern.Syntax, c.MatchTimeout())
	if err != nil {
		return nil, err
	}
	return normalize.New(normalize.NewCache(compiler)), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config directory. TOML wins over JSON;
// without either file the defaults are used. Environment overrides are
// applied last. A file that fails to parse is reported alongside the
// defaults so callers can warn and continue.
func Load() (*Config, error) {
	for _, candidate := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := candidate()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err != nil {
			fallback, ferr := finish(Default())
			if ferr != nil {
				return nil, ferr
			}
			return fallback, err
		}
		return cfg, nil
	}
	return finish(Default())
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Files ending in .json are read as JSON, anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

const tomlHeader = `# chronoschism configuration file
# Generated by chronoschism - edit with care
#
# pattern.syntax: re2 | dotnet | ecmascript
# ui.theme: dark | light
# log.level: debug | info | warn | error

`

// SaveTOML writes cfg as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString(tomlHeader)
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as indented JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

var (
	validThemes  = []string{"dark", "light"}
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

// Validate validates the configuration and returns any errors as
// ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Pattern
	compiler, err := normalize.CompilerFor(c.Pattern.Syntax, c.MatchTimeout())
	if err != nil {
		add("pattern.syntax", "%v", err)
	} else if c.Pattern.Default != "" {
		if _, err := compiler.Compile(c.Pattern.Default); err != nil {
			add("pattern.default", "does not compile: %v", err)
		}
	}
	if c.Pattern.MatchTimeoutMs < 0 {
		add("pattern.match_timeout_ms", "cannot be negative")
	}

	// UI
	if !oneOf(c.UI.Theme, validThemes) {
		add("ui.theme", "invalid theme '%s', must be one of: %s", c.UI.Theme, strings.Join(validThemes, ", "))
	}
	if c.UI.DebounceMs < 0 || c.UI.DebounceMs > 5000 {
		add("ui.debounce_ms", "must be between 0 and 5000")
	}

	// Watch
	if c.Watch.DebounceMs < 0 || c.Watch.DebounceMs > 60000 {
		add("watch.debounce_ms", "must be between 0 and 60000")
	}
	if c.Watch.MaxReloadsPerSec < 1 {
		add("watch.max_reloads_per_sec", "must be at least 1")
	}

	// History
	if c.History.MaxPatterns < 1 || c.History.MaxPatterns > 100 {
		add("history.max_patterns", "must be between 1 and 100")
	}

	// Log
	if !oneOf(c.Log.Level, validLevels) {
		add("log.level", "invalid level '%s', must be one of: %s", c.Log.Level, strings.Join(validLevels, ", "))
	}
	if !oneOf(c.Log.Format, validFormats) {
		add("log.format", "invalid format '%s', must be one of: %s", c.Log.Format, strings.Join(validFormats, ", "))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values that have no meaningful zero form.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Pattern.Syntax == "" {
		c.Pattern.Syntax = defaults.Pattern.Syntax
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.Watch.MaxReloadsPerSec == 0 {
		c.Watch.MaxReloadsPerSec = defaults.Watch.MaxReloadsPerSec
	}
	if c.History.MaxPatterns == 0 {
		c.History.MaxPatterns = defaults.History.MaxPatterns
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// Migrate rewrites values from older config files.
func (c *Config) Migrate() error {
	c.Pattern.Syntax = strings.ToLower(c.Pattern.Syntax)
	switch c.Pattern.Syntax {
	case "go", "regexp":
		c.Pattern.Syntax = normalize.SyntaxRE2
	case ".net", "pcre":
		c.Pattern.Syntax = normalize.SyntaxDotNet
	case "js", "javascript":
		c.Pattern.Syntax = normalize.SyntaxECMAScript
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}
	c.UI.Theme = strings.ToLower(c.UI.Theme)
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CHRONOSCHISM_PATTERN: overrides pattern.default
//   - CHRONOSCHISM_PATTERN_SYNTAX: overrides pattern.syntax
//   - CHRONOSCHISM_LOG_LEVEL: overrides log.level
//   - CHRONOSCHISM_NO_WATCH: "1" or "true" disables watch.enabled
//   - NO_COLOR: any non-empty value sets ui.no_color
func (c *Config) ApplyEnvOverrides() {
	if pattern, ok := os.LookupEnv("CHRONOSCHISM_PATTERN"); ok {
		c.Pattern.Default = pattern
	}
	if syntax := os.Getenv("CHRONOSCHISM_PATTERN_SYNTAX"); syntax != "" {
		c.Pattern.Syntax = syntax
	}
	if level := os.Getenv("CHRONOSCHISM_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if noWatch := os.Getenv("CHRONOSCHISM_NO_WATCH"); noWatch != "" {
		if truthy(noWatch) {
			c.Watch.Enabled = false
		}
	}
	if os.Getenv("NO_COLOR") != "" {
		c.UI.NoColor = true
	}
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g.
// "pattern.syntax").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go
// field name. "match_timeout_ms" becomes "MatchTimeoutMs".
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"pattern.default",
		"pattern.syntax",
		"pattern.match_timeout_ms",
		"ui.theme",
		"ui.line_numbers",
		"ui.intraline",
		"ui.debounce_ms",
		"ui.no_color",
		"watch.enabled",
		"watch.debounce_ms",
		"watch.max_reloads_per_sec",
		"history.enabled",
		"history.max_patterns",
		"history.database_path",
		"log.level",
		"log.format",
		"log.path",
	}
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
	// globalSource is the file ReloadGlobal reads; empty means the config
	// directory.
	globalSource string
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from its source file. On
// error the current configuration stays in place. Thread-safe.
func ReloadGlobal() error {
	globalConfigMu.RLock()
	source := globalSource
	globalConfigMu.RUnlock()

	var cfg *Config
	var err error
	if source != "" {
		cfg, err = LoadFromPath(source)
	} else {
		cfg, err = Load()
	}
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobalSource makes ReloadGlobal read path instead of the config
// directory. An empty path restores the default.
func SetGlobalSource(path string) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalSource = path
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalSource = ""
	globalConfigOnce = sync.Once{}
}
