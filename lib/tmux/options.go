// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package tmux

import (
	"fmt"
	"strings"
)

// Session-scoped user options are devpanel's only persistent state:
// two pane identifiers that survive between launcher invocations as
// long as the session lives. A present value is never trusted
// directly — the reconciler probes the pane for liveness first, and a
// stale value triggers rediscovery.

// SetOption stores a string value on the session. Keys must use the
// tmux user-option namespace (leading "@").
func (s *Server) SetOption(session, key, value string) error {
	if _, err := s.Run("set-option", "-t", session, key, value); err != nil {
		return fmt.Errorf("setting option %s on session %q: %w", key, session, err)
	}
	return nil
}

// GetOption reads a session option. A missing option is not an error:
// it returns "" (show-option -q suppresses the unknown-option
// complaint). tmux serializes option values through its own quoting
// layer, so enclosing single or double quotes are stripped before the
// value is returned.
func (s *Server) GetOption(session, key string) (string, error) {
	output, err := s.Run("show-option", "-qv", "-t", session, key)
	if err != nil {
		return "", fmt.Errorf("reading option %s on session %q: %w", key, session, err)
	}
	return trimOptionQuotes(strings.TrimSpace(output)), nil
}

// trimOptionQuotes strips one layer of matching enclosing quotes that
// tmux's option serialization introduces around values containing
// special characters.
func trimOptionQuotes(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '\'' || first == '"') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
