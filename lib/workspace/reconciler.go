// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/devpanel-dev/devpanel/lib/shell"
	"github.com/devpanel-dev/devpanel/lib/tmux"
)

// Persisted option keys. These two session-scoped strings are the
// only state devpanel keeps between invocations.
const (
	StatusPaneOption  = "@devpanel_status_pane"
	CommandPaneOption = "@devpanel_command_pane"
)

// Reconciler brings the session's pane topology to the desired state:
// primary pane on the left, status pane (running the side panel) top
// right, command sub-pane bottom right. It runs single-threaded and
// synchronously; every tmux call is a one-shot side effect against
// shared session state. Concurrent invocations against the same
// session name are unsupported — the design assumes a single human
// operator, and no lock guards the read-then-decide-then-write
// sequence in discovery.
type Reconciler struct {
	server *tmux.Server
	split  paneSplitter
	logger *slog.Logger
}

// paneSplitter is the slice of the tmux surface the split geometry
// logic depends on, carved out so the percent-rejection fallback can
// be exercised without a live server.
type paneSplitter interface {
	SplitWindow(target string, opts tmux.SplitOptions) (string, error)
	DisplayMessage(target, format string) (string, error)
}

// NewReconciler creates a Reconciler against the given tmux server.
func NewReconciler(server *tmux.Server, logger *slog.Logger) *Reconciler {
	return &Reconciler{server: server, split: server, logger: logger}
}

// Result reports what EnsureWorkspace did.
type Result struct {
	// Created is true when the session did not exist and was built
	// from scratch.
	Created bool

	// Repaired is true when stale state was detected and the panel
	// was reattached or respawned.
	Repaired bool

	// PanelMissing is true when discovery found no status pane
	// candidate; the topology was left untouched.
	PanelMissing bool

	// Pane ids after reconciliation. CommandPane and StatusPane are
	// empty when PanelMissing is true.
	PrimaryPane string
	StatusPane  string
	CommandPane string
}

// EnsureWorkspace idempotently establishes the workspace for the
// configured session. Missing session → full creation. Existing
// session with a live command pane → true no-op besides the
// interaction/clipboard re-binding. Existing session with stale pane
// state → discovery and repair. Interaction and clipboard setup are
// best-effort on every path.
func (r *Reconciler) EnsureWorkspace(cfg Config) (Result, error) {
	var result Result
	var err error

	if !r.server.HasSession(cfg.SessionName) {
		result, err = r.createWorkspace(cfg)
	} else {
		result, err = r.repairWorkspace(cfg)
	}
	if err != nil {
		return Result{}, err
	}

	r.configureInteraction(cfg.SessionName)
	r.configureClipboard(cfg.SessionName, cfg.Clipboard)
	return result, nil
}

// createWorkspace builds the three-pane topology in a new session.
// On any failure the half-built session is killed before returning —
// a later invocation then starts from a clean absent-session state
// instead of finding wreckage.
func (r *Reconciler) createWorkspace(cfg Config) (Result, error) {
	if err := r.server.NewSession(cfg.SessionName, cfg.RootDir,
		cfg.InitialWidth, cfg.InitialHeight); err != nil {
		return Result{}, err
	}

	success := false
	defer func() {
		if !success {
			_ = r.server.KillSession(cfg.SessionName)
		}
	}()

	windowTarget, err := r.firstWindowTarget(cfg.SessionName)
	if err != nil {
		return Result{}, err
	}

	primaryPane, err := r.server.DisplayMessage(windowTarget, "#{pane_id}")
	if err != nil {
		return Result{}, fmt.Errorf("resolving primary pane: %w", err)
	}

	statusPane, err := r.splitPanelColumn(windowTarget, cfg)
	if err != nil {
		return Result{}, err
	}

	commandPane, err := r.splitCommandPane(statusPane, cfg)
	if err != nil {
		return Result{}, err
	}

	if err := r.respawnPanel(statusPane, commandPane, cfg); err != nil {
		return Result{}, err
	}

	if err := r.persistPaneIDs(cfg.SessionName, statusPane, commandPane); err != nil {
		return Result{}, err
	}

	if err := r.server.SelectPane(primaryPane); err != nil {
		return Result{}, err
	}

	success = true
	return Result{
		Created:     true,
		PrimaryPane: primaryPane,
		StatusPane:  statusPane,
		CommandPane: commandPane,
	}, nil
}

// repairWorkspace handles the session-exists path: trust the
// persisted command pane id only after a liveness probe, otherwise
// run discovery. Discovery finding nothing is reported, not fatal —
// the user may have deliberately closed the panel.
func (r *Reconciler) repairWorkspace(cfg Config) (Result, error) {
	commandPane, err := r.server.GetOption(cfg.SessionName, CommandPaneOption)
	if err != nil {
		r.logger.Warn("reading persisted pane options failed", "error", err)
	}

	if r.server.PaneAlive(commandPane) {
		statusPane, _ := r.server.GetOption(cfg.SessionName, StatusPaneOption)
		primaryPane, _ := r.firstPaneID(cfg.SessionName)
		return Result{
			PrimaryPane: primaryPane,
			StatusPane:  statusPane,
			CommandPane: commandPane,
		}, nil
	}

	windowTarget, err := r.firstWindowTarget(cfg.SessionName)
	if err != nil {
		return Result{}, err
	}
	panes, err := r.server.ListPanes(windowTarget)
	if err != nil {
		return Result{}, err
	}

	statusPane, matcherName, found := findStatusPane(panes, discoveryMatchers())
	if !found {
		r.logger.Warn("no status pane candidate found; leaving topology untouched",
			"session", cfg.SessionName, "panes", len(panes))
		primaryPane, _ := r.firstPaneID(cfg.SessionName)
		return Result{PanelMissing: true, PrimaryPane: primaryPane}, nil
	}
	r.logger.Info("recovered status pane",
		"pane", statusPane.ID, "matcher", matcherName)

	newCommandPane, err := r.splitCommandPane(statusPane.ID, cfg)
	if err != nil {
		return Result{}, err
	}
	if err := r.respawnPanel(statusPane.ID, newCommandPane, cfg); err != nil {
		return Result{}, err
	}
	if err := r.persistPaneIDs(cfg.SessionName, statusPane.ID, newCommandPane); err != nil {
		return Result{}, err
	}

	primaryPane, _ := r.firstPaneID(cfg.SessionName)
	return Result{
		Repaired:    true,
		PrimaryPane: primaryPane,
		StatusPane:  statusPane.ID,
		CommandPane: newCommandPane,
	}, nil
}

// splitPanelColumn splits the window horizontally to carve the panel
// column at the configured width percent. Some tmux environments
// reject percentage sizing on detached sessions; the fallback
// recomputes an absolute column count from the current window width
// and retries exactly once with the absolute form. This is a
// structural fallback, not a retry loop.
func (r *Reconciler) splitPanelColumn(windowTarget string, cfg Config) (string, error) {
	statusPane, err := r.split.SplitWindow(windowTarget, tmux.SplitOptions{
		Horizontal: true,
		Percent:    cfg.PanelWidthPercent,
		StartDir:   cfg.RootDir,
	})
	if err == nil {
		return statusPane, nil
	}
	r.logger.Warn("percent-based split rejected, retrying with absolute width",
		"error", err)

	width := r.windowDimension(windowTarget, "#{window_width}", cfg.InitialWidth)
	columns := width * cfg.PanelWidthPercent / 100
	if columns < 30 {
		columns = 30
	}
	statusPane, err = r.split.SplitWindow(windowTarget, tmux.SplitOptions{
		Horizontal: true,
		Lines:      columns,
		StartDir:   cfg.RootDir,
	})
	if err != nil {
		return "", fmt.Errorf("splitting panel column: %w", err)
	}
	return statusPane, nil
}

// splitCommandPane carves the command sub-pane from the bottom of the
// status pane. The height is absolute rows, clamped to at most half
// the window height so the panel always keeps the larger share.
func (r *Reconciler) splitCommandPane(statusPane string, cfg Config) (string, error) {
	height := r.windowDimension(statusPane, "#{window_height}", cfg.InitialHeight)
	rows := cfg.CommandHeightRows
	if rows > height/2 {
		rows = height / 2
	}
	commandPane, err := r.split.SplitWindow(statusPane, tmux.SplitOptions{
		Lines:    rows,
		StartDir: cfg.RootDir,
	})
	if err != nil {
		return "", fmt.Errorf("splitting command pane: %w", err)
	}
	return commandPane, nil
}

// respawnPanel replaces whatever runs in the status pane with the
// side panel process, bound to the workspace root and the command
// pane it dispatches into.
func (r *Reconciler) respawnPanel(statusPane, commandPane string, cfg Config) error {
	argv := append(append([]string{}, cfg.SidepanelCommand...),
		"--root", cfg.RootDir, "--target-pane", commandPane)
	if err := r.server.RespawnPane(statusPane, shell.Join(argv)); err != nil {
		return fmt.Errorf("starting side panel: %w", err)
	}
	return nil
}

func (r *Reconciler) persistPaneIDs(session, statusPane, commandPane string) error {
	if err := r.server.SetOption(session, StatusPaneOption, statusPane); err != nil {
		return err
	}
	return r.server.SetOption(session, CommandPaneOption, commandPane)
}

// firstWindowTarget resolves the session's first window by its global
// window id. Targeting "session:0" directly would break under
// non-zero base-index configurations on the user's server.
func (r *Reconciler) firstWindowTarget(session string) (string, error) {
	output, err := r.server.Run("list-windows", "-t", session, "-F", "#{window_id}")
	if err != nil {
		return "", fmt.Errorf("listing windows for %q: %w", session, err)
	}
	for _, line := range splitNonEmpty(output) {
		return line, nil
	}
	return "", fmt.Errorf("session %q has no windows", session)
}

// firstPaneID returns the left-most, top-most pane of the session's
// first window — the primary pane by construction.
func (r *Reconciler) firstPaneID(session string) (string, error) {
	windowTarget, err := r.firstWindowTarget(session)
	if err != nil {
		return "", err
	}
	panes, err := r.server.ListPanes(windowTarget)
	if err != nil {
		return "", err
	}
	if len(panes) == 0 {
		return "", fmt.Errorf("window %q has no panes", windowTarget)
	}
	best := panes[0]
	for _, pane := range panes[1:] {
		if pane.Left < best.Left || (pane.Left == best.Left && pane.Top < best.Top) {
			best = pane
		}
	}
	return best.ID, nil
}

// windowDimension queries a window dimension format variable,
// falling back to the configured initial value when the query fails
// (e.g. the window vanished mid-reconcile).
func (r *Reconciler) windowDimension(target, format string, fallback int) int {
	output, err := r.split.DisplayMessage(target, format)
	if err != nil {
		return fallback
	}
	value, err := strconv.Atoi(output)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// Attach connects the current terminal to the session: switch-client
// when already inside tmux, attach otherwise. Blocks until detach.
func (r *Reconciler) Attach(sessionName string) error {
	if os.Getenv("TMUX") != "" {
		_, err := r.server.Run("switch-client", "-t", sessionName)
		return err
	}
	cmd := r.server.Command("attach", "-t", sessionName)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func splitNonEmpty(output string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
