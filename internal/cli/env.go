// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/chronoschism/internal/compare"
	"github.com/jeranaias/chronoschism/internal/config"
	"github.com/jeranaias/chronoschism/internal/logging"
	"github.com/jeranaias/chronoschism/internal/settings"
	"github.com/jeranaias/chronoschism/internal/storage"
)

// Env is what every command runs with: the output streams and lazily
// opened shared resources. The configuration lives in config.Global.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer

	logFile *os.File
	history *storage.HistoryStore
}

// newEnv loads configuration and sets up logging. A configuration file that
// fails to parse is reported and the defaults are used.
func newEnv(g *Globals, stdout, stderr io.Writer) (*Env, error) {
	var cfg *config.Config
	var err error
	switch {
	case g.ConfigFile != "" && !fileExists(g.ConfigFile):
		// "config init" creates it.
		cfg = config.Default()
		cfg.ApplyEnvOverrides()
	case g.ConfigFile != "":
		cfg, err = config.LoadFromPath(g.ConfigFile)
		if err != nil {
			return nil, err
		}
	default:
		cfg, err = config.Load()
		if cfg == nil {
			return nil, err
		}
		if err != nil {
			fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", err)
		}
	}

	if g.LogLevel != "" {
		if _, err := logging.ParseLevel(g.LogLevel); err != nil {
			return nil, err
		}
		cfg.Log.Level = g.LogLevel
	}
	config.SetGlobal(cfg)
	config.SetGlobalSource(g.ConfigFile)

	env := &Env{Stdout: stdout, Stderr: stderr}
	if err := env.initLogging(); err != nil {
		fmt.Fprintf(stderr, "Warning: logging disabled: %v\n", err)
	}
	return env, nil
}

// Config returns the live configuration.
func (e *Env) Config() *config.Config {
	return config.Global()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// initLogging sends logs to the configured file. The viewer owns the
// terminal, so logs never go to stdout.
func (e *Env) initLogging() error {
	cfg := e.Config()
	path := cfg.Log.Path
	if path == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return err
		}
		p, err := cfg.LogFilePath()
		if err != nil {
			return err
		}
		path = p
	}

	f, err := logging.OpenFile(path)
	if err != nil {
		return err
	}
	if _, err := logging.Init(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: f,
	}); err != nil {
		f.Close()
		return err
	}
	e.logFile = f
	return nil
}

// History opens the comparison history store on first use. It returns nil
// when history is disabled.
func (e *Env) History() (*storage.HistoryStore, error) {
	cfg := e.Config()
	if !cfg.History.Enabled {
		return nil, nil
	}
	if e.history != nil {
		return e.history, nil
	}
	path, err := cfg.HistoryDBPath()
	if err != nil {
		return nil, err
	}
	store, err := storage.OpenHistory(path)
	if err != nil {
		return nil, err
	}
	e.history = store
	return store, nil
}

// Settings returns the manager for the viewer's persisted state.
func (e *Env) Settings() (*settings.FileManager, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return settings.NewFileManager(dir), nil
}

// Comparer builds a comparer using the configured pattern syntax. History is
// recorded when enabled; a store that cannot be opened only costs the
// record.
func (e *Env) Comparer(seed []string) (*compare.Comparer, error) {
	cfg := e.Config()
	n, err := cfg.Normalizer()
	if err != nil {
		return nil, err
	}

	opts := compare.Options{
		Normalizer:  n,
		HistorySize: cfg.History.MaxPatterns,
		History:     seed,
		Logger:      logging.Logger(),
	}
	store, err := e.History()
	if err != nil {
		logging.Warn("history_unavailable", "error", err)
	} else if store != nil {
		opts.Recorder = store
	}
	return compare.New(opts), nil
}

// Close releases everything the environment opened.
func (e *Env) Close() {
	if e.history != nil {
		if err := e.history.Close(); err != nil {
			logging.Warn("history_close_failed", "error", err)
		}
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
}
