// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"strings"

	"github.com/devpanel-dev/devpanel/lib/tmux"
)

// Discovery identifies the status pane in a session whose persisted
// pane ids have gone stale (panel crashed, options lost, session
// built by an older version that never tagged its panes). Matchers
// are typed predicates evaluated in fixed priority order over the
// structured pane listing; each returns a definite match or nothing.
type paneMatcher interface {
	// Name labels the matcher in repair logs.
	Name() string

	// Match returns the status pane candidate, or ok=false when this
	// matcher cannot decide.
	Match(panes []tmux.PaneInfo) (tmux.PaneInfo, bool)
}

// findStatusPane runs the ranked matcher list and returns the first
// definite match, along with the name of the matcher that decided.
func findStatusPane(panes []tmux.PaneInfo, matchers []paneMatcher) (tmux.PaneInfo, string, bool) {
	for _, matcher := range matchers {
		if pane, ok := matcher.Match(panes); ok {
			return pane, matcher.Name(), true
		}
	}
	return tmux.PaneInfo{}, "", false
}

// discoveryMatchers is the fixed-priority matcher list: the pane
// whose start command carries the sidepanel invocation signature
// wins; failing that, a pane currently running the sidepanel process;
// failing that, the right-most pane (the panel lives on the right by
// construction).
func discoveryMatchers() []paneMatcher {
	return []paneMatcher{
		startCommandMatcher{signature: SidepanelBinary},
		currentCommandMatcher{process: SidepanelBinary},
		rightmostMatcher{},
	}
}

// startCommandMatcher matches the shell string the pane was created
// with. This survives the panel process crashing: the start command
// records intent, not current state.
type startCommandMatcher struct {
	signature string
}

func (m startCommandMatcher) Name() string { return "start-command" }

func (m startCommandMatcher) Match(panes []tmux.PaneInfo) (tmux.PaneInfo, bool) {
	for _, pane := range panes {
		if strings.Contains(pane.StartCommand, m.signature) {
			return pane, true
		}
	}
	return tmux.PaneInfo{}, false
}

// currentCommandMatcher matches the process currently running in the
// pane. Catches panels started by hand, where the start command is a
// plain shell.
type currentCommandMatcher struct {
	process string
}

func (m currentCommandMatcher) Name() string { return "current-command" }

func (m currentCommandMatcher) Match(panes []tmux.PaneInfo) (tmux.PaneInfo, bool) {
	for _, pane := range panes {
		if pane.CurrentCommand == m.process {
			return pane, true
		}
	}
	return tmux.PaneInfo{}, false
}

// rightmostMatcher falls back to window geometry: the panel column is
// created right of the primary pane, so the pane with the largest
// horizontal offset is the best remaining guess. A pane sharing the
// left-most column is never chosen — that would capture the primary
// pane in a single-column window.
type rightmostMatcher struct{}

func (m rightmostMatcher) Name() string { return "rightmost" }

func (m rightmostMatcher) Match(panes []tmux.PaneInfo) (tmux.PaneInfo, bool) {
	if len(panes) == 0 {
		return tmux.PaneInfo{}, false
	}
	minLeft := panes[0].Left
	best := panes[0]
	for _, pane := range panes[1:] {
		if pane.Left < minLeft {
			minLeft = pane.Left
		}
		if pane.Left > best.Left {
			best = pane
		}
	}
	if best.Left == minLeft {
		return tmux.PaneInfo{}, false
	}
	return best, true
}
