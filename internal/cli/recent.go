// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jeranaias/chronoschism/internal/storage"
	"github.com/jeranaias/chronoschism/internal/util"
)

// RecentCmd lists stored comparisons.
type RecentCmd struct {
	Limit int  `short:"n" default:"20" help:"Number of comparisons to show."`
	JSON  bool `name:"json" help:"Print records as JSON."`
}

// Run prints the most recent comparisons, newest first.
func (c *RecentCmd) Run(env *Env) error {
	store, err := env.History()
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintln(env.Stderr, "History is disabled (history.enabled = false).")
		return nil
	}

	records, err := store.Recent(context.Background(), c.Limit)
	if err != nil {
		return err
	}

	if c.JSON {
		if records == nil {
			records = []storage.Record{}
		}
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(env.Stdout, "No comparisons recorded yet.")
		return nil
	}
	useColor := colorsEnabled(ColorAuto, env.Config().UI.NoColor, env.Stdout)
	fmt.Fprintln(env.Stdout, recentTable(records, useColor, time.Now()))
	return nil
}

// recentTable renders records as a bordered table.
func recentTable(records []storage.Record, useColor bool, now time.Time) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	border := lipgloss.NewStyle()
	if useColor {
		header = header.Foreground(lipgloss.Color("#8B5CF6"))
		border = border.Foreground(lipgloss.Color("#4B5563"))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		Headers("WHEN", "LEFT", "RIGHT", "PATTERN", "CHANGES", "TIME").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, r := range records {
		pattern := r.Pattern
		if pattern == "" {
			pattern = "-"
		}
		t.Row(
			formatAge(now.Sub(r.CreatedAt)),
			util.TruncateWidth(filepath.Base(r.LeftPath), 24),
			util.TruncateWidth(filepath.Base(r.RightPath), 24),
			util.TruncateWidth(pattern, 28),
			formatChanges(r),
			r.Duration.Round(time.Millisecond).String(),
		)
	}
	return t.Render()
}

func formatChanges(r storage.Record) string {
	if r.Stats.TotalChanges() == 0 {
		return "identical"
	}
	return fmt.Sprintf("+%d -%d ↔%d", r.Stats.Added, r.Stats.Deleted, r.Stats.Moved)
}

// formatAge renders a coarse relative age.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m ago"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d.Hours())) + "h ago"
	default:
		return strconv.Itoa(int(d.Hours()/24)) + "d ago"
	}
}
