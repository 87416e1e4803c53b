// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import "time"

// CompareComplete logs a finished comparison.
func CompareComplete(left, right, pattern string, changes, total int, elapsed time.Duration, reused bool) {
	Logger().Info("compare_complete",
		"left", left,
		"right", right,
		"pattern", pattern,
		"changes", changes,
		"total", total,
		"duration_ms", elapsed.Milliseconds(),
		"reused", reused,
	)
}

// PatternInvalid logs a pattern that failed to compile.
func PatternInvalid(pattern string, err error) {
	Logger().Warn("pattern_invalid", "pattern", pattern, "error", err.Error())
}

// WatchReload logs a file change that triggered a reload.
func WatchReload(path string, args ...any) {
	allArgs := append([]any{"path", path}, args...)
	Logger().Info("watch_reload", allArgs...)
}
