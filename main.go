// chronoschism - Compare log files side by side while ignoring timestamps.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/jeranaias/chronoschism/internal/cli"
)

// Version information (set at build time via -ldflags -X)
var (
	Version   = ""
	GitCommit = ""
	BuildDate = ""
)

func main() {
	if Version != "" {
		cli.Version = Version
	}
	if GitCommit != "" {
		cli.GitCommit = GitCommit
	}
	if BuildDate != "" {
		cli.BuildDate = BuildDate
	}

	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
