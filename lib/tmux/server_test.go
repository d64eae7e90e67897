// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package tmux_test

import (
	"io"
	"log/slog"
	"runtime"
	"strings"
	"testing"

	"github.com/devpanel-dev/devpanel/lib/tmux"
)

func requireTmux(t *testing.T) {
	t.Helper()
	if !tmux.Available() {
		t.Skip("tmux not installed")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSession(t *testing.T) {
	requireTmux(t)
	server := tmux.NewTestServer(t)

	if err := server.NewSession("test-session", "", 0, 0, "sleep", "infinity"); err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if !server.HasSession("test-session") {
		t.Fatal("HasSession returned false for a session that was just created")
	}
}

func TestNewSessionWithGeometry(t *testing.T) {
	requireTmux(t)
	server := tmux.NewTestServer(t)

	if err := server.NewSession("sized", "", 200, 60, "sleep", "infinity"); err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	width, err := server.DisplayMessage("sized", "#{window_width}")
	if err != nil {
		t.Fatalf("DisplayMessage: %v", err)
	}
	if width != "200" {
		t.Errorf("window_width = %q, want 200", width)
	}
}

func TestHasSessionReturnsFalseForMissing(t *testing.T) {
	requireTmux(t)
	server := tmux.NewTestServer(t)

	if server.HasSession("nonexistent") {
		t.Fatal("HasSession returned true for a session that does not exist")
	}
}

func TestKillSessionBenignWhenMissing(t *testing.T) {
	requireTmux(t)
	server := tmux.NewTestServer(t)

	if err := server.KillSession("never-existed"); err != nil {
		t.Fatalf("KillSession on missing session returned error: %v", err)
	}
}

func TestKillServerBenignWhenStopped(t *testing.T) {
	requireTmux(t)
	server := tmux.NewTestServer(t)
	server.KillServer()

	if err := server.KillServer(); err != nil {
		t.Fatalf("KillServer on stopped server returned error: %v", err)
	}
}

func TestOptionRoundTrip(t *testing.T) {
	requireTmux(t)
	server := tmux.NewTestServer(t)

	if err := server.NewSession("opts", "", 0, 0, "sleep", "infinity"); err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if err := server.SetOption("opts", "@devpanel_command_pane", "%7"); err != nil {
		t.Fatalf("SetOption: %v", err)
	}
	got, err := server.GetOption("opts", "@devpanel_command_pane")
	if err != nil {
		t.Fatalf("GetOption: %v", err)
	}
	if got != "%7" {
		t.Errorf("GetOption = %q, want %%7", got)
	}
}

func TestGetOptionMissing(t *testing.T) {
	requireTmux(t)
	server := tmux.NewTestServer(t)

	if err := server.NewSession("opts-missing", "", 0, 0, "sleep", "infinity"); err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	got, err := server.GetOption("opts-missing", "@devpanel_status_pane")
	if err != nil {
		t.Fatalf("GetOption on absent option returned error: %v", err)
	}
	if got != "" {
		t.Errorf("GetOption on absent option = %q, want empty", got)
	}
}

func TestSplitWindowReturnsPaneID(t *testing.T) {
	requireTmux(t)
	server := tmux.NewTestServer(t)

	if err := server.NewSession("split", "", 200, 60, "sleep", "infinity"); err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	paneID, err := server.SplitWindow("split", tmux.SplitOptions{Horizontal: true, Percent: 40})
	if err != nil {
		t.Fatalf("SplitWindow: %v", err)
	}
	if !strings.HasPrefix(paneID, "%") {
		t.Errorf("pane id = %q, want %%-prefixed tmux pane id", paneID)
	}

	panes, err := server.ListPanes("split")
	if err != nil {
		t.Fatalf("ListPanes: %v", err)
	}
	if len(panes) != 2 {
		t.Fatalf("got %d panes after split, want 2", len(panes))
	}
	// The new pane is to the right of the original.
	var found bool
	for _, pane := range panes {
		if pane.ID == paneID {
			found = true
			if pane.Left == 0 {
				t.Errorf("new pane left = 0, want right of the original")
			}
		}
	}
	if !found {
		t.Errorf("new pane %q not in ListPanes output", paneID)
	}
}

func TestSplitWindowAbsoluteLines(t *testing.T) {
	requireTmux(t)
	server := tmux.NewTestServer(t)

	if err := server.NewSession("split-abs", "", 200, 60, "sleep", "infinity"); err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	paneID, err := server.SplitWindow("split-abs", tmux.SplitOptions{Lines: 8})
	if err != nil {
		t.Fatalf("SplitWindow -l: %v", err)
	}

	height, err := server.DisplayMessage(paneID, "#{pane_height}")
	if err != nil {
		t.Fatalf("DisplayMessage: %v", err)
	}
	if height != "8" {
		t.Errorf("pane height = %q, want 8", height)
	}
}

func TestPaneAlive(t *testing.T) {
	requireTmux(t)
	server := tmux.NewTestServer(t)

	if err := server.NewSession("alive", "", 200, 60, "sleep", "infinity"); err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	paneID, err := server.DisplayMessage("alive", "#{pane_id}")
	if err != nil {
		t.Fatalf("DisplayMessage: %v", err)
	}

	if !server.PaneAlive(paneID) {
		t.Errorf("PaneAlive(%q) = false for a live pane", paneID)
	}
	if server.PaneAlive("%999") {
		t.Error("PaneAlive(%999) = true for a pane that never existed")
	}
	if server.PaneAlive("") {
		t.Error("PaneAlive(\"\") = true")
	}
}

func TestDispatcherSend(t *testing.T) {
	requireTmux(t)
	server := tmux.NewTestServer(t)

	// A shell pane that echoes its input into a file would be flaky;
	// instead verify the keystrokes landed in the pane's input line
	// via capture-pane.
	if err := server.NewSession("dispatch", "", 200, 60, "sh", "-i"); err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	paneID, err := server.DisplayMessage("dispatch", "#{pane_id}")
	if err != nil {
		t.Fatalf("DisplayMessage: %v", err)
	}

	dispatcher := tmux.NewDispatcher(server, paneID, discardLogger())
	if !dispatcher.Enabled() {
		t.Fatal("Enabled() = false with a target configured")
	}
	dispatcher.Send("echo devpanel-dispatch-marker")

	// The literal text shows up in the pane content once the shell
	// has drawn it.
	for {
		output, err := server.Run("capture-pane", "-p", "-t", paneID)
		if err != nil {
			t.Fatalf("capture-pane: %v", err)
		}
		if strings.Contains(output, "devpanel-dispatch-marker") {
			break
		}
		if t.Context().Err() != nil {
			t.Fatalf("dispatched text never appeared in pane, content:\n%s", output)
		}
		runtime.Gosched()
	}
}

func TestDispatcherEmptyTarget(t *testing.T) {
	// No tmux needed: an empty target must return before any process
	// is spawned, so this passes on machines without tmux too.
	dispatcher := tmux.NewDispatcher(tmux.NewServer(), "", discardLogger())
	if dispatcher.Enabled() {
		t.Fatal("Enabled() = true with no target")
	}
	dispatcher.Send("echo should-not-run")
}

func TestDispatcherSwallowsTransportFailure(t *testing.T) {
	requireTmux(t)
	server := tmux.NewTestServer(t)

	// A vanished pane: Send must log and return, not panic or error.
	dispatcher := tmux.NewDispatcher(server, "%999", discardLogger())
	dispatcher.Send("echo into the void")
}

func TestBindKeyMultiCommand(t *testing.T) {
	requireTmux(t)
	server := tmux.NewTestServer(t)

	// The literal "\;" argv element chains two tmux commands inside
	// one binding.
	err := server.BindKey("root", "MouseDown1Pane",
		"select-pane", "-t=", "\\;", "send-keys", "-M")
	if err != nil {
		t.Fatalf("BindKey: %v", err)
	}

	output, err := server.Run("list-keys", "-T", "root")
	if err != nil {
		t.Fatalf("list-keys: %v", err)
	}
	if !strings.Contains(output, "MouseDown1Pane") {
		t.Errorf("binding not listed:\n%s", output)
	}

	if err := server.UnbindKey("root", "MouseDown1Pane"); err != nil {
		t.Fatalf("UnbindKey: %v", err)
	}
}
