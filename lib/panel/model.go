// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

// Package panel implements the devpanel side panel: a bubbletea TUI
// with a browsable directory tree, a live host telemetry display, and
// a command relay into the workspace's command pane.
//
// The loop is single-threaded and cooperative. Two periodic timers
// drive it — telemetry refresh every second, tree reload every three
// seconds — plus discrete selection events from the user. Telemetry
// snapshots run inside a tea.Cmd so a slow hardware probe (bounded by
// its own timeout) never blocks rendering or input.
package panel

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/devpanel-dev/devpanel/lib/shell"
	"github.com/devpanel-dev/devpanel/lib/telemetry"
)

// Refresh intervals for the two cooperative timers.
const (
	telemetryInterval  = 1 * time.Second
	treeReloadInterval = 3 * time.Second
)

// openableExtensions is the fixed allow-list of text-like file
// formats. Selecting a file outside this set records the selection
// but dispatches nothing — relaying "vi photo.png" into the command
// pane helps nobody.
var openableExtensions = map[string]bool{
	".go":    true,
	".py":    true,
	".pyi":   true,
	".sh":    true,
	".bash":  true,
	".zsh":   true,
	".json":  true,
	".jsonl": true,
	".yaml":  true,
	".yml":   true,
	".toml":  true,
	".ini":   true,
	".cfg":   true,
	".conf":  true,
	".txt":   true,
	".md":    true,
}

// CommandSink receives relayed command text. *tmux.Dispatcher is the
// production implementation; tests substitute a recorder.
type CommandSink interface {
	Send(text string)
	Enabled() bool
}

// snapshotMsg delivers a completed telemetry snapshot.
type snapshotMsg struct {
	snapshot telemetry.Snapshot
}

// telemetryTickMsg fires the next telemetry refresh.
type telemetryTickMsg struct{}

// treeReloadMsg fires the periodic tree reload.
type treeReloadMsg struct{}

// Model is the top-level bubbletea model for the side panel.
type Model struct {
	tree      Tree
	collector *telemetry.Collector
	sink      CommandSink
	keys      KeyMap
	theme     Theme

	editor       string
	selectedDir  string
	selectedFile string

	snapshot     telemetry.Snapshot
	haveSnapshot bool

	width  int
	height int
}

// New creates the panel model rooted at the given directory. The
// editor command is resolved once here, not per keystroke. The root
// is made absolute so every relayed cd and edit command carries a
// path the command pane's shell can act on from any directory.
func New(root string, collector *telemetry.Collector, sink CommandSink) Model {
	if absolute, err := filepath.Abs(root); err == nil {
		root = absolute
	}
	return Model{
		tree:        NewTree(root),
		collector:   collector,
		sink:        sink,
		keys:        DefaultKeyMap,
		theme:       DefaultTheme,
		editor:      ResolveEditor(os.Getenv, exec.LookPath),
		selectedDir: root,
	}
}

// Init starts the first telemetry snapshot and the tree reload timer.
// Subsequent telemetry ticks are scheduled from snapshotMsg, which
// serializes snapshots: a probe running long never stacks a second
// probe behind it.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.takeSnapshot(), scheduleTreeReload())
}

func (m Model) takeSnapshot() tea.Cmd {
	collector := m.collector
	return func() tea.Msg {
		return snapshotMsg{snapshot: collector.Snapshot()}
	}
}

func scheduleTelemetryTick() tea.Cmd {
	return tea.Tick(telemetryInterval, func(time.Time) tea.Msg {
		return telemetryTickMsg{}
	})
}

func scheduleTreeReload() tea.Cmd {
	return tea.Tick(treeReloadInterval, func(time.Time) tea.Msg {
		return treeReloadMsg{}
	})
}

// Update is the event loop body.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tree.SetHeight(m.treeHeight())
		return m, nil

	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.haveSnapshot = true
		return m, scheduleTelemetryTick()

	case telemetryTickMsg:
		return m, m.takeSnapshot()

	case treeReloadMsg:
		m.tree.Reload()
		return m, scheduleTreeReload()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		// Quit ends this loop only. The hosted pane is the
		// multiplexer's concern, not the panel's.
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.tree.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.tree.MoveDown()
	case key.Matches(msg, m.keys.Top):
		m.tree.MoveTop()
	case key.Matches(msg, m.keys.Bottom):
		m.tree.MoveBottom()
	case key.Matches(msg, m.keys.Expand):
		m.tree.Expand()
	case key.Matches(msg, m.keys.Collapse):
		m.tree.Collapse()
	case key.Matches(msg, m.keys.Reload):
		m.tree.Reload()
	case key.Matches(msg, m.keys.Select):
		return m.handleSelect()
	}
	return m, nil
}

// handleSelect processes the discrete selection event for the entry
// under the cursor: directories relay a cd, allow-listed files relay
// an editor command, everything else records the selection only. A
// selection also forces an immediate out-of-cycle telemetry refresh
// so the stats block updates with the new selection right away.
func (m Model) handleSelect() (tea.Model, tea.Cmd) {
	entry, ok := m.tree.Toggle()
	if !ok {
		return m, nil
	}

	if entry.isDir {
		m.selectedDir = entry.path
		m.sink.Send("cd " + shell.Quote(entry.path))
		return m, m.takeSnapshot()
	}

	m.selectedFile = entry.path
	if isOpenable(entry.path) {
		m.sink.Send(editCommand(m.editor, entry.path))
	}
	return m, m.takeSnapshot()
}

// isOpenable reports whether the file's extension is in the
// text-like allow-list.
func isOpenable(path string) bool {
	return openableExtensions[strings.ToLower(filepath.Ext(path))]
}

// editCommand builds the relayed editor invocation: the resolved
// editor (which may carry its own arguments) plus the quoted path.
func editCommand(editor, path string) string {
	argv := shell.Fields(editor)
	if len(argv) == 0 {
		argv = []string{lastResortEditor}
	}
	return shell.Join(append(argv, path))
}

// treeHeight is the tree viewport height: everything the stats block
// and borders don't take.
func (m Model) treeHeight() int {
	reserved := 14 // stats block + borders
	height := m.height - reserved
	if height < 3 {
		height = 3
	}
	return height
}

// View renders the tree above the stats block.
func (m Model) View() string {
	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(m.theme.BorderColor).
		Padding(0, 1)

	width := m.width - 4
	if width < 20 {
		width = 20
	}

	tree := borderStyle.Width(width).Render(m.renderTree())
	stats := borderStyle.Width(width).Render(m.renderStats())
	help := lipgloss.NewStyle().Foreground(m.theme.HelpText).
		Render("j/k move · Enter select · h/l fold · r reload · q quit")

	return lipgloss.JoinVertical(lipgloss.Left, tree, stats, help)
}

// renderTree draws the visible window of the directory tree.
func (m Model) renderTree() string {
	entries := m.tree.visible()
	if len(entries) == 0 {
		return lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("(empty)")
	}

	selected := lipgloss.NewStyle().
		Background(m.theme.SelectedBackground).
		Foreground(m.theme.SelectedForeground)
	directory := lipgloss.NewStyle().Foreground(m.theme.DirectoryText)
	normal := lipgloss.NewStyle().Foreground(m.theme.NormalText)

	var lines []string
	for i, entry := range entries {
		marker := "  "
		if entry.isDir {
			if entry.expanded {
				marker = "▾ "
			} else {
				marker = "▸ "
			}
		}
		line := strings.Repeat("  ", entry.depth) + marker + entry.name

		index := m.tree.offset + i
		switch {
		case index == m.tree.cursor:
			line = selected.Render(line)
		case entry.isDir:
			line = directory.Render(line)
		default:
			line = normal.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
