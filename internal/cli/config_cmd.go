// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/chronoschism/internal/config"
)

// ConfigCmd groups the configuration subcommands.
type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" default:"1" help:"Print the effective configuration."`
	Path ConfigPathCmd `cmd:"" help:"Print the configuration file path."`
	Init ConfigInitCmd `cmd:"" help:"Write a configuration file with the defaults."`
	Get  ConfigGetCmd  `cmd:"" help:"Print one setting (dot notation, e.g. pattern.syntax)."`
	Set  ConfigSetCmd  `cmd:"" help:"Change one setting and save the file."`
	Keys ConfigKeysCmd `cmd:"" help:"List every setting key."`
}

// ConfigShowCmd prints the effective configuration.
type ConfigShowCmd struct {
	Format string `short:"f" enum:"toml,json" default:"toml" help:"Output format (toml, json)."`
}

func (c *ConfigShowCmd) Run(env *Env) error {
	cfg := env.Config()
	if c.Format == "json" {
		_, err := fmt.Fprintln(env.Stdout, cfg.String())
		return err
	}
	return toml.NewEncoder(env.Stdout).Encode(cfg)
}

// ConfigPathCmd prints where the configuration is read from.
type ConfigPathCmd struct{}

func (c *ConfigPathCmd) Run(env *Env, g *Globals) error {
	path, err := configFilePath(g)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, path)
	return nil
}

// ConfigInitCmd writes the defaults to the configuration file.
type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing file."`
}

func (c *ConfigInitCmd) Run(env *Env, g *Globals) error {
	path, err := configFilePath(g)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if g.ConfigFile == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return err
		}
	}
	if err := writeConfig(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "Wrote %s\n", path)
	return nil
}

// ConfigGetCmd prints a single value.
type ConfigGetCmd struct {
	Key string `arg:"" help:"Setting key."`
}

func (c *ConfigGetCmd) Run(env *Env) error {
	v, err := env.Config().Get(c.Key)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, v)
	return nil
}

// ConfigSetCmd changes a single value, saves the file and reloads the
// live configuration. The new configuration must validate before anything
// is written.
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Setting key."`
	Value string `arg:"" help:"New value."`
}

func (c *ConfigSetCmd) Run(env *Env, g *Globals) error {
	path, err := configFilePath(g)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		loaded, err := config.LoadFromPath(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if err := cfg.Set(c.Key, c.Value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if g.ConfigFile == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return err
		}
	}
	if err := writeConfig(cfg, path); err != nil {
		return err
	}
	if err := config.ReloadGlobal(); err != nil {
		fmt.Fprintf(env.Stderr, "Warning: saved, but reloading failed: %v\n", err)
	}
	fmt.Fprintf(env.Stdout, "%s = %v\n", c.Key, c.Value)
	return nil
}

// ConfigKeysCmd lists the keys accepted by get and set.
type ConfigKeysCmd struct{}

func (c *ConfigKeysCmd) Run(env *Env) error {
	for _, k := range config.GetAllKeys() {
		fmt.Fprintln(env.Stdout, k)
	}
	return nil
}

// configFilePath is --config-file when given, else the TOML file in the
// config directory.
func configFilePath(g *Globals) (string, error) {
	if g.ConfigFile != "" {
		return g.ConfigFile, nil
	}
	return config.ConfigPathTOML()
}

func writeConfig(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}
