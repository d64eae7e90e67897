// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package tmux

import (
	"os"
	"path/filepath"
	"testing"
)

// NewTestServer creates an isolated tmux server for testing. The server:
//   - Uses a short /tmp path to stay within the 108-byte Unix socket limit
//   - Passes -f /dev/null to prevent loading the user's ~/.tmux.conf
//   - Creates a _guard session running "sleep infinity" to keep the server
//     alive (tmux exits when its last session ends)
//   - Registers t.Cleanup to kill the server when the test completes
//
// All test tmux commands MUST use the returned Server. A bare "tmux"
// command without -S targets the user's default server — test cleanup
// against that server would kill the user's real sessions.
func NewTestServer(t *testing.T) *Server {
	t.Helper()

	dir, err := os.MkdirTemp("/tmp", "devpanel-test-")
	if err != nil {
		t.Fatalf("create socket dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	server := NewServerOnSocket(filepath.Join(dir, "tmux.sock"), "/dev/null")

	// The guard session keeps the server alive: the server starts with
	// the first session and exits with the last one. "sleep infinity"
	// never exits, so the server survives until cleanup kills it.
	if err := server.NewSession("_guard", "", 0, 0, "sleep", "infinity"); err != nil {
		t.Fatalf("start tmux test server: %v", err)
	}

	t.Cleanup(func() {
		server.KillServer()
	})

	return server
}
