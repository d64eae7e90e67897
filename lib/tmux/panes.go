// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package tmux

import (
	"fmt"
	"strconv"
	"strings"
)

// PaneInfo holds the fields devpanel reads from tmux list-panes for a
// single pane. Pane IDs (e.g. "%3") are global and stable, unlike
// pane indices which depend on pane-base-index configuration.
type PaneInfo struct {
	ID             string
	CurrentCommand string // #{pane_current_command}: the running process name
	Left           int    // #{pane_left}: horizontal offset in the window
	Top            int    // #{pane_top}: vertical offset in the window
	Width          int
	Height         int
	StartCommand   string // #{pane_start_command}: the shell string the pane was created with
}

// paneFormat is the list-panes -F format. StartCommand is last because
// it is the only field that can itself contain tab characters; the
// parser splits into exactly this many fields so a tab inside the
// start command survives.
const paneFormat = "#{pane_id}\t#{pane_current_command}\t#{pane_left}\t#{pane_top}\t#{pane_width}\t#{pane_height}\t#{pane_start_command}"

const paneFieldCount = 7

// ListPanes enumerates the panes of a window target (e.g. "devpanel:0")
// with the fields discovery needs: id, running command, geometry
// offsets, and the start command the pane was created with.
func (s *Server) ListPanes(target string) ([]PaneInfo, error) {
	output, err := s.Run("list-panes", "-t", target, "-F", paneFormat)
	if err != nil {
		return nil, fmt.Errorf("listing panes for %q: %w", target, err)
	}
	return parsePaneLines(output)
}

func parsePaneLines(output string) ([]PaneInfo, error) {
	var panes []PaneInfo
	for _, line := range splitLines(output) {
		parts := strings.SplitN(line, "\t", paneFieldCount)
		if len(parts) != paneFieldCount {
			return nil, fmt.Errorf("unexpected list-panes output (expected %d fields): %q",
				paneFieldCount, line)
		}

		left, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("parsing pane left %q: %w", parts[2], err)
		}
		top, err := strconv.Atoi(parts[3])
		if err != nil {
			return nil, fmt.Errorf("parsing pane top %q: %w", parts[3], err)
		}
		width, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, fmt.Errorf("parsing pane width %q: %w", parts[4], err)
		}
		height, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("parsing pane height %q: %w", parts[5], err)
		}

		panes = append(panes, PaneInfo{
			ID:             parts[0],
			CurrentCommand: parts[1],
			Left:           left,
			Top:            top,
			Width:          width,
			Height:         height,
			StartCommand:   parts[6],
		})
	}
	return panes, nil
}

// SplitOptions describes a split-window call. Exactly one of Percent
// or Lines should be set; Lines is the absolute row/column count used
// by the reconciler's structural fallback when a tmux environment
// rejects percentage sizing.
type SplitOptions struct {
	Horizontal bool // -h (new pane to the right); false = -v (below)
	Percent    int  // -p N
	Lines      int  // -l N
	StartDir   string
}

// SplitWindow splits the target pane or window and returns the new
// pane's ID (captured via -P -F).
func (s *Server) SplitWindow(target string, opts SplitOptions) (string, error) {
	args := []string{"split-window", "-t", target}
	if opts.Horizontal {
		args = append(args, "-h")
	} else {
		args = append(args, "-v")
	}
	switch {
	case opts.Percent > 0:
		args = append(args, "-p", strconv.Itoa(opts.Percent))
	case opts.Lines > 0:
		args = append(args, "-l", strconv.Itoa(opts.Lines))
	}
	if opts.StartDir != "" {
		args = append(args, "-c", opts.StartDir)
	}
	args = append(args, "-P", "-F", "#{pane_id}")

	output, err := s.Run(args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// RespawnPane kills whatever is running in the pane and starts the
// given shell command in its place.
func (s *Server) RespawnPane(paneID, command string) error {
	if _, err := s.Run("respawn-pane", "-k", "-t", paneID, command); err != nil {
		return fmt.Errorf("respawning pane %s: %w", paneID, err)
	}
	return nil
}

// SelectPane makes the given pane the active pane of its window.
func (s *Server) SelectPane(paneID string) error {
	if _, err := s.Run("select-pane", "-t", paneID); err != nil {
		return fmt.Errorf("selecting pane %s: %w", paneID, err)
	}
	return nil
}

// DisplayMessage expands a tmux format string against a target and
// returns the result. This doubles as the pane liveness probe: asking
// a vanished pane for its own #{pane_id} fails with "can't find pane".
func (s *Server) DisplayMessage(target, format string) (string, error) {
	output, err := s.Run("display-message", "-p", "-t", target, format)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// PaneAlive reports whether the pane ID still resolves on this server.
func (s *Server) PaneAlive(paneID string) bool {
	if paneID == "" {
		return false
	}
	resolved, err := s.DisplayMessage(paneID, "#{pane_id}")
	return err == nil && resolved == paneID
}

// BindKey installs a key binding in the given key table.
func (s *Server) BindKey(table, key string, command ...string) error {
	args := append([]string{"bind-key", "-T", table, key}, command...)
	if _, err := s.Run(args...); err != nil {
		return fmt.Errorf("binding %s in table %s: %w", key, table, err)
	}
	return nil
}

// UnbindKey removes a key binding from the given key table.
func (s *Server) UnbindKey(table, key string) error {
	if _, err := s.Run("unbind-key", "-T", table, key); err != nil {
		return fmt.Errorf("unbinding %s in table %s: %w", key, table, err)
	}
	return nil
}

// SetWindowOption sets a window option on a session's current window.
func (s *Server) SetWindowOption(session, key, value string) error {
	if _, err := s.Run("set-window-option", "-t", session, key, value); err != nil {
		return fmt.Errorf("setting window option %s=%s: %w", key, value, err)
	}
	return nil
}

// SetServerOption sets a server-wide option (-s scope).
func (s *Server) SetServerOption(key, value string) error {
	if _, err := s.Run("set-option", "-s", key, value); err != nil {
		return fmt.Errorf("setting server option %s=%s: %w", key, value, err)
	}
	return nil
}

// splitLines splits output into non-empty lines, trimming whitespace.
func splitLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
