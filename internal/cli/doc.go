// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and execution for chronoschism.
//
// Commands are declared as kong structs and share an [Env] holding the
// loaded configuration, the log file and the lazily opened history store.
//
// # Usage
//
//	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
//
// # Commands Overview
//
//   - view: interactive side-by-side viewer (default; runs with bare file args)
//   - diff: print the alignment as text or JSON, optionally failing on changes
//   - recent: list stored comparisons
//   - config: show, path, init, get, set and keys
//
// # Exit Codes
//
//	0  success (or no differences with diff --exit-code)
//	1  failure, or differences with diff --exit-code
//	2  usage error
package cli
