// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the chronoschism
// viewer.
//
// All colors use Lip Gloss AdaptiveColor so one palette serves light and
// dark terminals. Every diff state also has a text marker, so meaning
// survives NO_COLOR and color blindness.
//
// # Key Types
//
//   - Theme: all styles, built once per program
//   - StatusIndicatorSet: ASCII status markers
//
// # Usage
//
//	theme := styles.NewTheme(styles.Options{Theme: cfg.UI.Theme, NoColor: cfg.UI.NoColor})
//	row := theme.Row(diff.Added).Render(text)
package styles
