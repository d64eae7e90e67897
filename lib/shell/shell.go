// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

// Package shell builds shell command strings for tmux. Commands that
// tmux runs in a pane (respawn-pane, send-keys targets) are shell
// strings, not argv lists, so every embedded path or argument must be
// quoted against word splitting and metacharacter expansion.
package shell

import "strings"

// metacharacters that force quoting in Join. Anything outside this set
// passes through bare, keeping common commands readable in tmux
// start-command listings.
const metacharacters = " \t\n\"'\\$`!#&|;(){}[]<>?*~"

// Join quotes and joins arguments into a single shell command string.
// Arguments without shell metacharacters pass through unquoted; the
// rest are single-quoted with embedded quotes escaped.
func Join(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if arg == "" || strings.ContainsAny(arg, metacharacters) {
			quoted[i] = Quote(arg)
		} else {
			quoted[i] = arg
		}
	}
	return strings.Join(quoted, " ")
}

// Quote wraps a string in single quotes for safe use in shell
// commands. Unlike Join, this always quotes — suitable for paths that
// may contain spaces or other shell metacharacters.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// Fields splits a command string on whitespace. Used for editor
// commands from $VISUAL/$EDITOR, which may carry arguments
// ("code --wait"). No quote-aware parsing: editor values with quoted
// spaces are rare enough that the first whitespace split is the
// behavior users expect from $EDITOR handling elsewhere.
func Fields(command string) []string {
	return strings.Fields(command)
}
