// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import "fmt"

// Interaction and clipboard wiring is re-applied on every invocation,
// including pure no-op runs: bindings live on the server, not the
// session, and the user may have restarted their tmux server since
// the session was created. Every call here is best-effort — a tmux
// version that rejects a binding degrades that feature, nothing more.

// configureInteraction enables mouse support with click-through to
// pane applications (the panel's tree reacts to single clicks) and
// border-drag resizing, while disabling cross-pane drag selection.
func (r *Reconciler) configureInteraction(session string) {
	r.bestEffort("mouse option", r.server.SetOption(session, "mouse", "on"))

	// Select the clicked pane, then forward the click to the
	// application running in it. The "\;" separator reaches tmux
	// literally because there is no shell in between.
	r.bestEffort("click binding", r.server.BindKey("root", "MouseDown1Pane",
		"select-pane", "-t=", "\\;", "send-keys", "-M"))

	r.bestEffort("drag unbind", r.server.UnbindKey("root", "MouseDrag1Pane"))

	r.bestEffort("border click binding", r.server.BindKey("root", "MouseDown1Border",
		"select-pane", "-t="))
	r.bestEffort("border drag binding", r.server.BindKey("root", "MouseDrag1Border",
		"resize-pane", "-M"))
}

// configureClipboard wires the selected platform clipboard tool into
// tmux copy-mode: OSC 52 pass-through, vi copy mode, copy-pipe on
// Enter/y/mouse-drag-end, and a prefix-v paste binding. Skipped
// entirely when no clipboard tool was detected.
func (r *Reconciler) configureClipboard(session string, clipboard Clipboard) {
	r.bestEffort("set-clipboard option", r.server.SetServerOption("set-clipboard", "on"))
	r.bestEffort("vi mode option", r.server.SetWindowOption(session, "mode-keys", "vi"))

	if clipboard.Copy != "" {
		r.bestEffort("copy-command option",
			r.server.SetServerOption("copy-command", clipboard.Copy))
		for _, key := range []string{"Enter", "y", "MouseDragEnd1Pane"} {
			r.bestEffort("copy binding "+key, r.server.BindKey("copy-mode-vi", key,
				"send-keys", "-X", "copy-pipe-and-cancel", clipboard.Copy))
		}
	}

	if clipboard.Paste != "" {
		pastePipe := fmt.Sprintf("%s | tmux load-buffer - ; tmux paste-buffer", clipboard.Paste)
		r.bestEffort("paste binding", r.server.BindKey("prefix", "v",
			"run-shell", pastePipe))
	}
}

// bestEffort logs a failed setup call at Warn and moves on.
func (r *Reconciler) bestEffort(what string, err error) {
	if err != nil {
		r.logger.Warn("interaction setup degraded", "step", what, "error", err)
	}
}
