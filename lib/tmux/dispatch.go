// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package tmux

import "log/slog"

// Dispatcher relays literal command text into a target pane over the
// tmux keystroke-injection channel. The side panel uses it to push
// "cd" and editor commands into the workspace's command pane.
type Dispatcher struct {
	server *Server
	target string
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher bound to a pane ID. An empty
// target is valid and disables dispatch entirely — the panel then
// runs in browse-only mode.
func NewDispatcher(server *Server, targetPane string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{server: server, target: targetPane, logger: logger}
}

// Enabled reports whether a target pane is configured.
func (d *Dispatcher) Enabled() bool {
	return d.target != ""
}

// Send transmits text followed by an Enter keystroke into the target
// pane. With no target configured this is a no-op: no tmux process is
// spawned at all. Transport failures (the pane vanished, the server
// died) are logged and swallowed — the panel must stay responsive
// regardless of what happened to the other end.
func (d *Dispatcher) Send(text string) {
	if d.target == "" {
		return
	}
	// -l sends the text literally; the separate C-m executes it.
	if _, err := d.server.Run("send-keys", "-t", d.target, "-l", text); err != nil {
		d.logger.Warn("command dispatch failed", "pane", d.target, "error", err)
		return
	}
	if _, err := d.server.Run("send-keys", "-t", d.target, "C-m"); err != nil {
		d.logger.Warn("command dispatch failed", "pane", d.target, "error", err)
	}
}
