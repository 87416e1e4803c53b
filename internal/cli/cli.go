// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/alecthomas/kong"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// versionString is what --version prints.
func versionString() string {
	return fmt.Sprintf("chronoschism %s (commit %s, built %s, %s/%s)",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// =============================================================================
// COMMAND TREE
// =============================================================================

// Globals are flags accepted by every command.
type Globals struct {
	ConfigFile string           `name:"config-file" short:"c" help:"Read configuration from this file instead of the config directory." type:"path"`
	LogLevel   string           `name:"log-level" help:"Override the log level (debug, info, warn, error)."`
	Version    kong.VersionFlag `name:"version" short:"V" help:"Print version information and exit."`
}

// CLI is the chronoschism command line.
type CLI struct {
	Globals

	View   ViewCmd   `cmd:"" default:"withargs" help:"Open the interactive side-by-side viewer (default)."`
	Diff   DiffCmd   `cmd:"" help:"Compare two log files and print the alignment."`
	Recent RecentCmd `cmd:"" help:"List recent comparisons."`
	Config ConfigCmd `cmd:"" help:"Inspect or create the configuration file."`
}

// ExitError ends the process with Code without printing anything.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// =============================================================================
// ENTRY POINT
// =============================================================================

// Run parses args and executes the selected command. It returns the process
// exit code: 0 on success, 1 on failure, 2 on usage errors.
func Run(args []string, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1

	parser, err := kong.New(&cli,
		kong.Name("chronoschism"),
		kong.Description("Compare log files while ignoring their timestamps."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": versionString()},
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			if exitCode < 0 {
				exitCode = code
			}
		}),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help or --version already printed.
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	env, err := newEnv(&cli.Globals, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer env.Close()

	if err := kctx.Run(env, &cli.Globals); err != nil {
		var exit *ExitError
		if errors.As(err, &exit) {
			return exit.Code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
