// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the interactive log comparison viewer.
package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chronoschism/internal/compare"
	"github.com/jeranaias/chronoschism/internal/config"
	"github.com/jeranaias/chronoschism/internal/logging"
	"github.com/jeranaias/chronoschism/internal/normalize"
	"github.com/jeranaias/chronoschism/internal/settings"
	"github.com/jeranaias/chronoschism/internal/ui/components"
	"github.com/jeranaias/chronoschism/internal/ui/styles"
	"github.com/jeranaias/chronoschism/internal/watch"
)

// DefaultDebounce is the pattern debounce used when Options leaves it zero.
const DefaultDebounce = 150 * time.Millisecond

// Layout heights around the diff viewport.
const (
	headerHeight      = 1
	inputHeight       = 3 // bordered single-line input
	panelHeaderHeight = 1
	statusBarHeight   = 1
)

// FileWatcher is the part of watch.Watcher the viewer uses.
type FileWatcher interface {
	Set(paths ...string) error
	Events() <-chan watch.Event
}

var _ FileWatcher = (*watch.Watcher)(nil)

// focus names the widget receiving key presses.
type focus int

const (
	focusView focus = iota
	focusPattern
	focusLeft
	focusRight
)

// Options configures the viewer.
type Options struct {
	Comparer *compare.Comparer
	Settings settings.Manager // nil disables persistence
	Watcher  FileWatcher      // nil disables live reload
	Theme    *styles.Theme

	// Initial paths and pattern, usually the saved settings overlaid with
	// command-line arguments.
	Initial settings.State

	Debounce    time.Duration
	LineNumbers bool
	Intraline   bool
}

// Model is the bubbletea model of the viewer.
type Model struct {
	comparer *compare.Comparer
	settings settings.Manager
	watcher  FileWatcher
	theme    *styles.Theme
	keys     KeyMap

	// Inputs
	pattern   textinput.Model
	leftPath  textinput.Model
	rightPath textinput.Model
	focus     focus

	// History browsing in the pattern input; -1 means the typed text.
	historyIdx int
	typed      string

	// Display
	viewport viewport.Model
	diff     *components.SideBySide
	status   *components.StatusBar
	help     *components.Help
	spinner  components.BusySpinner
	showHelp bool
	width    int
	height   int

	// Comparison scheduling
	debounce   time.Duration
	settleID   int
	requestSeq uint64
	cancel     context.CancelFunc
	patternErr error
	quitting   bool
}

// New creates the viewer model.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.Options{})
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	keys := DefaultKeyMap()

	pattern := textinput.New()
	pattern.Prompt = "pattern> "
	pattern.Placeholder = `e.g. \[\d{4}-\d{2}-\d{2} [\d:]+\] `
	pattern.CharLimit = 1024
	pattern.SetValue(opts.Initial.Pattern)
	pattern.ShowSuggestions = true

	leftPath := newPathInput("left> ", opts.Initial.LeftPath)
	rightPath := newPathInput("right> ", opts.Initial.RightPath)

	view := components.NewSideBySide(theme)
	view.SetLineNumbers(opts.LineNumbers)
	view.SetIntraline(opts.Intraline)
	view.SetTitles(opts.Initial.LeftPath, opts.Initial.RightPath)

	status := components.NewStatusBar(theme)
	status.Pattern = opts.Initial.Pattern

	m := Model{
		comparer:   opts.Comparer,
		settings:   opts.Settings,
		watcher:    opts.Watcher,
		theme:      theme,
		keys:       keys,
		pattern:    pattern,
		leftPath:   leftPath,
		rightPath:  rightPath,
		historyIdx: -1,
		viewport:   viewport.New(80, 20),
		diff:       view,
		status:     status,
		help:       components.NewHelp(theme, keys.Bindings()...),
		spinner:    components.NewBusySpinner(),
		debounce:   opts.Debounce,
	}
	m.pattern.SetSuggestions(m.comparer.History())
	return m
}

func newPathInput(prompt, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = "path to a log file"
	ti.CharLimit = 4096
	ti.SetValue(value)
	return ti
}

// Init starts the first comparison when both paths are known, and starts
// listening for file changes.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.watcher != nil {
		if err := m.watcher.Set(m.paths()...); err != nil {
			logging.Warn("watch_failed", "error", err)
		}
		cmds = append(cmds, waitForChange(m.watcher.Events()))
	}
	if m.leftPath.Value() != "" && m.rightPath.Value() != "" {
		cmds = append(cmds, func() tea.Msg { return patternSettledMsg{id: 0} })
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case patternSettledMsg:
		if msg.id != m.settleID {
			return m, nil
		}
		return m.startCompare()

	case compareDoneMsg:
		return m.handleCompareDone(msg)

	case fileChangedMsg:
		return m.handleFileChanged(msg)

	case watchClosedMsg:
		m.watcher = nil
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.status.Spinner = m.spinner.View()
		return m, cmd
	}

	// Cursor blink and other input internals.
	var cmd tea.Cmd
	switch m.focus {
	case focusPattern:
		m.pattern, cmd = m.pattern.Update(msg)
	case focusLeft:
		m.leftPath, cmd = m.leftPath.Update(msg)
	case focusRight:
		m.rightPath, cmd = m.rightPath.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	vh := m.height - headerHeight - inputHeight - panelHeaderHeight - statusBarHeight
	if vh < 1 {
		vh = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = vh

	inputWidth := m.width - 4 - 10 // border, padding and the longest prompt
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.pattern.Width = inputWidth
	m.leftPath.Width = inputWidth
	m.rightPath.Width = inputWidth

	m.diff.SetWidth(m.width)
	m.status.SetWidth(m.width)
	m.help.SetWidth(m.width - 4)
	m.refreshRows()
	return m, nil
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch m.focus {
	case focusPattern:
		return m.handlePatternKey(msg)
	case focusLeft, focusRight:
		return m.handlePathKey(msg)
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Cancel) {
			m.showHelp = false
		}
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.EditPattern):
		m.focus = focusPattern
		m.historyIdx = -1
		return m, m.pattern.Focus()
	case key.Matches(msg, m.keys.OpenLeft):
		m.focus = focusLeft
		return m, m.leftPath.Focus()
	case key.Matches(msg, m.keys.OpenRight):
		m.focus = focusRight
		return m, m.rightPath.Focus()
	case key.Matches(msg, m.keys.Reload):
		return m.startCompare()
	case key.Matches(msg, m.keys.ReloadConfig):
		return m.reloadConfig()
	case key.Matches(msg, m.keys.ToggleNumbers):
		m.diff.SetLineNumbers(!m.diff.LineNumbers())
		m.refreshRows()
		return m, nil
	case key.Matches(msg, m.keys.ToggleIntraline):
		m.diff.SetIntraline(!m.diff.Intraline())
		m.refreshRows()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		if !m.diff.NextChange() {
			m.status.SetMessage(components.MessageInfo, "no more changes")
		}
		m.cursorMoved()
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		if !m.diff.PrevChange() {
			m.status.SetMessage(components.MessageInfo, "no earlier changes")
		}
		m.cursorMoved()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.viewport.Height)
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.viewport.Height)
	case key.Matches(msg, m.keys.Home):
		m.diff.SetCursor(0)
		m.cursorMoved()
	case key.Matches(msg, m.keys.End):
		m.diff.SetCursor(m.diff.Len() - 1)
		m.cursorMoved()
	}
	return m, nil
}

func (m Model) handlePatternKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.focus = focusView
		m.pattern.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.focus = focusView
		m.pattern.Blur()
		m.settleID++
		return m.startCompare()
	case key.Matches(msg, m.keys.HistoryPrev):
		m.browseHistory(1)
		return m.patternEdited()
	case key.Matches(msg, m.keys.HistoryNext):
		m.browseHistory(-1)
		return m.patternEdited()
	}

	before := m.pattern.Value()
	var cmd tea.Cmd
	m.pattern, cmd = m.pattern.Update(msg)
	if m.pattern.Value() == before {
		return m, cmd
	}
	m.historyIdx = -1
	next, settle := m.patternEdited()
	return next, tea.Batch(cmd, settle)
}

// patternEdited schedules a comparison once typing pauses.
func (m Model) patternEdited() (Model, tea.Cmd) {
	m.settleID++
	m.status.Pattern = m.pattern.Value()
	return m, settleCmd(m.settleID, m.debounce)
}

// browseHistory steps through the pattern history. Positive steps go to
// older entries; stepping past the newest restores what was typed.
func (m *Model) browseHistory(step int) {
	history := m.comparer.History()
	if len(history) == 0 {
		return
	}
	if m.historyIdx == -1 {
		m.typed = m.pattern.Value()
	}
	idx := m.historyIdx + step
	if idx >= len(history) {
		idx = len(history) - 1
	}
	if idx < -1 {
		idx = -1
	}
	m.historyIdx = idx
	if idx == -1 {
		m.pattern.SetValue(m.typed)
	} else {
		m.pattern.SetValue(history[idx])
	}
	m.pattern.CursorEnd()
}

func (m Model) handlePathKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	input := &m.leftPath
	if m.focus == focusRight {
		input = &m.rightPath
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		input.Blur()
		m.focus = focusView
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		input.SetValue(expandHome(strings.TrimSpace(input.Value())))
		input.Blur()
		m.focus = focusView
		m.diff.SetTitles(m.leftPath.Value(), m.rightPath.Value())
		if m.watcher != nil {
			if err := m.watcher.Set(m.paths()...); err != nil {
				logging.Warn("watch_failed", "error", err)
			}
		}
		return m.startCompare()
	}

	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return m, cmd
}

var homeDir = os.UserHomeDir

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := homeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// =============================================================================
// CURSOR
// =============================================================================

func (m *Model) moveCursor(delta int) {
	m.diff.SetCursor(m.diff.Cursor() + delta)
	m.cursorMoved()
}

// cursorMoved re-renders and scrolls so the cursor row is visible.
func (m *Model) cursorMoved() {
	m.refreshRows()
	c := m.diff.Cursor()
	if c < m.viewport.YOffset {
		m.viewport.SetYOffset(c)
	} else if c >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(c - m.viewport.Height + 1)
	}
}

func (m *Model) refreshRows() {
	m.viewport.SetContent(strings.Join(m.diff.Rows(), "\n"))
}

// =============================================================================
// COMPARISON
// =============================================================================

func (m Model) paths() []string {
	var out []string
	for _, p := range []string{m.leftPath.Value(), m.rightPath.Value()} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (m Model) request() compare.Request {
	return compare.Request{
		LeftPath:  m.leftPath.Value(),
		RightPath: m.rightPath.Value(),
		Pattern:   m.pattern.Value(),
	}
}

// startCompare abandons any running comparison and starts a new one.
func (m Model) startCompare() (Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.requestSeq++

	m.status.Busy = true
	m.status.ClearMessage()
	spin := m.spinner.Start()
	m.status.Spinner = m.spinner.View()

	return m, tea.Batch(compareCmd(ctx, m.comparer, m.requestSeq, m.request()), spin)
}

func (m Model) handleCompareDone(msg compareDoneMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.requestSeq {
		// Superseded; a newer request is in flight.
		return m, nil
	}
	m.spinner.Stop()
	m.status.Busy = false

	if msg.err != nil {
		m.compareFailed(msg.err)
		return m, nil
	}

	cmp := msg.comparison
	m.patternErr = nil
	m.status.PatternErr = nil
	m.status.Pattern = cmp.Pattern
	m.status.Stats = &cmp.Result.Stats
	m.status.Duration = cmp.Duration
	m.status.Reused = cmp.Reused
	m.pattern.SetSuggestions(m.comparer.History())

	m.diff.SetTitles(cmp.LeftPath, cmp.RightPath)
	if !cmp.Reused || m.diff.Result() != cmp.Result {
		m.diff.SetResult(cmp.Result)
	}
	m.refreshRows()
	return m, nil
}

// compareFailed reports err. The previous result stays on screen.
func (m *Model) compareFailed(err error) {
	var perr *normalize.PatternError
	var serr *normalize.StripError

	switch {
	case errors.Is(err, compare.ErrStale), errors.Is(err, context.Canceled):
		return
	case errors.As(err, &perr), errors.As(err, &serr):
		m.patternErr = err
		m.status.PatternErr = err
		m.status.SetMessage(components.MessageError, err.Error())
	case errors.Is(err, compare.ErrMissingPath):
		m.status.SetMessage(components.MessageInfo, "press o and O to choose the files to compare")
	default:
		m.status.SetMessage(components.MessageError, err.Error())
	}
}

func (m Model) handleFileChanged(msg fileChangedMsg) (tea.Model, tea.Cmd) {
	next := waitForChange(m.watcher.Events())
	logging.WatchReload(msg.event.Path, "removed", msg.event.Removed)

	if msg.event.Removed {
		m.status.SetMessage(components.MessageWarning, filepath.Base(msg.event.Path)+" was removed")
		return m, next
	}
	m, cmd := m.startCompare()
	return m, tea.Batch(cmd, next)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// reloadConfig rereads the configuration file and applies the pattern
// syntax, the theme and the viewer settings. A file that fails to load
// changes nothing.
func (m Model) reloadConfig() (Model, tea.Cmd) {
	if err := config.ReloadGlobal(); err != nil {
		logging.Warn("config_reload_failed", "error", err)
		m.status.SetMessage(components.MessageError, "config: "+err.Error())
		return m, nil
	}
	cfg := config.Global()
	n, err := cfg.Normalizer()
	if err != nil {
		m.status.SetMessage(components.MessageError, "config: "+err.Error())
		return m, nil
	}
	m.comparer.SetNormalizer(n)

	// Components share the theme pointer.
	*m.theme = *styles.NewTheme(styles.Options{Theme: cfg.UI.Theme, NoColor: cfg.UI.NoColor})
	m.debounce = time.Duration(cfg.UI.DebounceMs) * time.Millisecond
	if m.debounce <= 0 {
		m.debounce = DefaultDebounce
	}
	m.diff.SetLineNumbers(cfg.UI.LineNumbers)
	m.diff.SetIntraline(cfg.UI.Intraline)
	m.refreshRows()
	logging.Info("config_reloaded", "syntax", cfg.Pattern.Syntax, "theme", cfg.UI.Theme)

	m, cmd := m.startCompare()
	m.status.SetMessage(components.MessageInfo, "configuration reloaded")
	return m, cmd
}

// =============================================================================
// QUIT
// =============================================================================

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.quitting = true
	if err := m.SaveSettings(); err != nil {
		logging.Warn("settings_save_failed", "error", err)
	}
	return m, tea.Quit
}

// SaveSettings persists the current paths, the last pattern that compiled
// and the pattern history.
func (m Model) SaveSettings() error {
	if m.settings == nil {
		return nil
	}
	pattern := m.pattern.Value()
	if m.patternErr != nil {
		pattern = m.comparer.Pattern()
	}
	return m.settings.Save(settings.State{
		LeftPath:  m.leftPath.Value(),
		RightPath: m.rightPath.Value(),
		Pattern:   pattern,
		History:   m.comparer.History(),
	})
}

// Comparer returns the comparer driving the viewer.
func (m Model) Comparer() *compare.Comparer {
	return m.comparer
}
