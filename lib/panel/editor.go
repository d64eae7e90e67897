// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import "strings"

// editorFallbacks is the ordered candidate list consulted when
// neither $VISUAL nor $EDITOR is set.
var editorFallbacks = []string{"nvim", "vim", "nano", "vi", "less"}

// lastResortEditor is always assumed present.
const lastResortEditor = "vi"

// ResolveEditor determines the edit command once at startup:
// $VISUAL, then $EDITOR, then the first fallback found on PATH, then
// "vi". The result may carry arguments ("code --wait") and is split
// on whitespace at dispatch time.
func ResolveEditor(getenv func(string) string, lookPath func(string) (string, error)) string {
	for _, variable := range []string{"VISUAL", "EDITOR"} {
		if value := strings.TrimSpace(getenv(variable)); value != "" {
			return value
		}
	}
	for _, candidate := range editorFallbacks {
		if _, err := lookPath(candidate); err == nil {
			return candidate
		}
	}
	return lastResortEditor
}
