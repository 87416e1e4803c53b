// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chronoschism/internal/logging"
	"github.com/jeranaias/chronoschism/internal/settings"
	"github.com/jeranaias/chronoschism/internal/ui/app"
	"github.com/jeranaias/chronoschism/internal/ui/styles"
	"github.com/jeranaias/chronoschism/internal/watch"
)

// ViewCmd opens the interactive viewer.
type ViewCmd struct {
	Left    string  `arg:"" optional:"" help:"Left log file." type:"path"`
	Right   string  `arg:"" optional:"" help:"Right log file." type:"path"`
	Pattern *string `short:"p" help:"Timestamp pattern to strip before comparing."`
	NoWatch bool    `name:"no-watch" help:"Do not reload when the files change."`
}

// initialState merges saved settings with the command line. Arguments win;
// the configured default pattern applies only when nothing was saved.
func (c *ViewCmd) initialState(saved settings.State, defaultPattern string) settings.State {
	st := saved.Clone()
	if c.Left != "" {
		st.LeftPath = c.Left
	}
	if c.Right != "" {
		st.RightPath = c.Right
	}
	switch {
	case c.Pattern != nil:
		st.Pattern = *c.Pattern
	case st.Pattern == "":
		st.Pattern = defaultPattern
	}
	return st
}

// Run starts the viewer and blocks until it exits.
func (c *ViewCmd) Run(env *Env) error {
	cfg := env.Config()

	mgr, err := env.Settings()
	if err != nil {
		return err
	}
	saved, err := mgr.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: %v (starting fresh)\n", err)
		saved = settings.State{}
	}
	initial := c.initialState(saved, cfg.Pattern.Default)

	comparer, err := env.Comparer(initial.History)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := app.Options{
		Comparer:    comparer,
		Settings:    mgr,
		Theme:       styles.NewTheme(styles.Options{Theme: cfg.UI.Theme, NoColor: cfg.UI.NoColor}),
		Initial:     initial,
		Debounce:    time.Duration(cfg.UI.DebounceMs) * time.Millisecond,
		LineNumbers: cfg.UI.LineNumbers,
		Intraline:   cfg.UI.Intraline,
	}

	if cfg.Watch.Enabled && !c.NoWatch {
		w, err := watch.New(watch.Options{
			Debounce:     time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
			MaxPerSecond: cfg.Watch.MaxReloadsPerSec,
		})
		if err != nil {
			logging.Warn("watch_unavailable", "error", err)
		} else {
			defer w.Close()
			go func() {
				if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logging.Warn("watch_stopped", "error", err)
				}
			}()
			opts.Watcher = w
		}
	}

	logging.Info("viewer_start", "left", initial.LeftPath, "right", initial.RightPath)
	p := tea.NewProgram(app.New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}
