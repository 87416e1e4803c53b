// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config directory at a temp dir and clears every
// environment override for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	for _, k := range []string{
		"CHRONOSCHISM_PATTERN", "CHRONOSCHISM_PATTERN_SYNTAX",
		"CHRONOSCHISM_LOG_LEVEL", "CHRONOSCHISM_NO_WATCH", "NO_COLOR",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

// TestConfig_ConcurrentAccess tests that Global() and SetGlobal() can be
// called concurrently. Run with -race.
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "test"
			SetGlobal(c)
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestConfig_ConcurrentMixedOperations(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 90; i++ {
		wg.Add(1)
		switch i % 3 {
		case 0:
			go func() {
				defer wg.Done()
				if Global() == nil {
					t.Error("Global() returned nil")
				}
			}()
		case 1:
			go func() {
				defer wg.Done()
				c := Default()
				c.Version = "concurrent-test"
				SetGlobal(c)
			}()
		case 2:
			go func() {
				defer wg.Done()
				_ = ReloadGlobal()
			}()
		}
	}
	wg.Wait()
}

func TestConfig_SetGlobalOverwrites(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	_ = Global()

	custom := Default()
	custom.Pattern.Default = `^\d+ `
	SetGlobal(custom)

	assert.Equal(t, `^\d+ `, Global().Pattern.Default)
}

func TestReloadGlobal_ReadsSource(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	path := filepath.Join(t.TempDir(), "viewer.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ndebounce_ms = 40\n"), 0o644))
	SetGlobalSource(path)
	require.NoError(t, ReloadGlobal())
	assert.Equal(t, 40, Global().UI.DebounceMs)

	require.NoError(t, os.WriteFile(path, []byte("[ui]\ndebounce_ms = 90\n"), 0o644))
	require.NoError(t, ReloadGlobal())
	assert.Equal(t, 90, Global().UI.DebounceMs)
}

func TestReloadGlobal_KeepsCurrentOnError(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	current := Default()
	current.UI.Theme = "light"
	SetGlobal(current)

	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui\n"), 0o644))
	SetGlobalSource(path)

	assert.Error(t, ReloadGlobal())
	assert.Same(t, current, Global())
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "re2", cfg.Pattern.Syntax)
	assert.Equal(t, 5, cfg.History.MaxPatterns)
	assert.Equal(t, 250*time.Millisecond, cfg.MatchTimeout())
	assert.True(t, cfg.UI.LineNumbers)
	assert.True(t, cfg.Watch.Enabled)
	assert.Empty(t, cfg.Pattern.Default)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr bool
	}{
		{"defaults", func(*Config) {}, "", false},
		{"dotnet syntax", func(c *Config) { c.Pattern.Syntax = "dotnet" }, "", false},
		{"unknown syntax", func(c *Config) { c.Pattern.Syntax = "posix" }, "pattern.syntax", true},
		{"bad default pattern", func(c *Config) { c.Pattern.Default = "[" }, "pattern.default", true},
		{"lookahead needs regexp2", func(c *Config) { c.Pattern.Default = `\d(?=x)` }, "pattern.default", true},
		{"lookahead with dotnet", func(c *Config) {
			c.Pattern.Syntax = "dotnet"
			c.Pattern.Default = `\d(?=x)`
		}, "", false},
		{"negative timeout", func(c *Config) { c.Pattern.MatchTimeoutMs = -1 }, "pattern.match_timeout_ms", true},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme", true},
		{"debounce too large", func(c *Config) { c.UI.DebounceMs = 10000 }, "ui.debounce_ms", true},
		{"zero reload rate", func(c *Config) { c.Watch.MaxReloadsPerSec = 0 }, "watch.max_reloads_per_sec", true},
		{"zero history", func(c *Config) { c.History.MaxPatterns = 0 }, "history.max_patterns", true},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level", true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs), "want ValidateErrors, got %T", err)
			require.NotEmpty(t, verrs)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "neon"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, err.(ValidateErrors), 2)
	assert.Contains(t, err.Error(), "ui.theme")
	assert.Contains(t, err.Error(), "; log.level")
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Pattern, cfg.Pattern)
}

func TestLoad_TOMLRoundTrip(t *testing.T) {
	dir := isolate(t)

	want := Default()
	want.Pattern.Default = `\[\d{2}:\d{2}:\d{2}\] `
	want.UI.Theme = "light"
	want.Watch.Enabled = false
	require.NoError(t, Save(want))

	path := filepath.Join(dir, "config.toml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# chronoschism configuration file"))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_PartialTOMLKeepsDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.True(t, cfg.UI.LineNumbers, "absent bool keeps its default")
	assert.Equal(t, 5, cfg.History.MaxPatterns)
}

func TestLoad_JSONFallback(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, SaveJSON(&Config{Pattern: PatternConfig{Default: "x"}, History: HistoryConfig{MaxPatterns: 3}, Watch: WatchConfig{MaxReloadsPerSec: 1}}, filepath.Join(dir, "config.json")))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "x", cfg.Pattern.Default)
	assert.Equal(t, 3, cfg.History.MaxPatterns)
	assert.Equal(t, "dark", cfg.UI.Theme, "SetDefaults fills empty strings")
}

func TestLoad_BrokenFileReturnsDefaultsAndError(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[ui\n"), 0600))

	cfg, err := Load()
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "dark", cfg.UI.Theme)
}

func TestLoadFromPath_UnknownKey(t *testing.T) {
	path := filepath.Join(isolate(t), "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("[pattern]\nsyntx = \"re2\"\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern.syntx")
}

func TestLoadFromPath_Migrates(t *testing.T) {
	path := filepath.Join(isolate(t), "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("[pattern]\nsyntax = \"JavaScript\"\n[log]\nlevel = \"WARNING\"\n"), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "ecmascript", cfg.Pattern.Syntax)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CHRONOSCHISM_PATTERN", `^\S+ `)
	t.Setenv("CHRONOSCHISM_PATTERN_SYNTAX", "dotnet")
	t.Setenv("CHRONOSCHISM_LOG_LEVEL", "debug")
	t.Setenv("CHRONOSCHISM_NO_WATCH", "true")
	t.Setenv("NO_COLOR", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, `^\S+ `, cfg.Pattern.Default)
	assert.Equal(t, "dotnet", cfg.Pattern.Syntax)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Watch.Enabled)
	assert.True(t, cfg.UI.NoColor)
}

func TestPaths(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	db, err := cfg.HistoryDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "history.db"), db)

	logPath, err := cfg.LogFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chronoschism.log"), logPath)

	cfg.History.DatabasePath = "/tmp/x.db"
	db, err = cfg.HistoryDBPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", db)
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("pattern.match_timeout_ms", "500"))
	assert.Equal(t, 500, cfg.Pattern.MatchTimeoutMs)

	require.NoError(t, cfg.Set("ui.line_numbers", "false"))
	assert.False(t, cfg.UI.LineNumbers)

	require.NoError(t, cfg.Set("pattern.default", `\d+`))
	v, err := cfg.Get("pattern.default")
	require.NoError(t, err)
	assert.Equal(t, `\d+`, v)

	assert.Error(t, cfg.Set("ui.line_numbers", "maybe"))
	assert.Error(t, cfg.Set("ui.nope", "1"))
	_, err = cfg.Get("pattern.default.deeper")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestGetAllKeysResolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestConfig_String(t *testing.T) {
	cfg := Default()
	cfg.Pattern.Default = `^<\d+> `

	var decoded Config
	require.NoError(t, json.Unmarshal([]byte(cfg.String()), &decoded))
	assert.Equal(t, *cfg, decoded)
}
