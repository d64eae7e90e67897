// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

// Package tmux provides a typed interface to the tmux control channel.
// Devpanel manages a workspace session on the user's tmux server; all
// operations go through Server, which owns the socket selection and
// error formatting. Tests run against a dedicated server on a private
// socket (see NewTestServer) so they never touch the user's sessions.
//
// The package also carries the two small collaborators that live on
// the same channel: the session-scoped option store (persisted pane
// identifiers, see options.go) and the keystroke dispatcher that
// relays commands into a target pane (see dispatch.go).
package tmux

import (
	"fmt"
	"os/exec"
	"strings"
)

// Server represents a tmux server. With an empty socket path all
// commands target the user's default server — that is the production
// configuration, since devpanel manages a session the user attaches
// to with their everyday tmux client. A non-empty socket path scopes
// every command with -S, which tests use for isolation.
type Server struct {
	socketPath string
	configFile string // passed as "-f <path>" on new-session; empty = tmux default
}

// NewServer returns a Server for the default tmux server.
func NewServer() *Server {
	return &Server{}
}

// NewServerOnSocket returns a Server that targets a dedicated socket.
// configFile controls which configuration file tmux loads when the
// server starts; tests pass "/dev/null" to keep the user's
// ~/.tmux.conf out of the picture.
func NewServerOnSocket(socketPath, configFile string) *Server {
	return &Server{socketPath: socketPath, configFile: configFile}
}

// Available reports whether the tmux binary can be found on PATH.
func Available() bool {
	_, err := exec.LookPath("tmux")
	return err == nil
}

// NewSession creates a detached session. A non-empty dir sets the
// start directory; positive width/height set explicit geometry. The
// explicit -x/-y is load-bearing for workspace sessions: a freshly
// created detached session has no client, and without a size tmux
// cannot compute split geometry on some platforms. If command is
// non-empty the session runs it instead of the default shell.
//
// The -f flag is passed here because new-session may start the server;
// subsequent commands don't re-read the config file.
func (s *Server) NewSession(name, dir string, width, height int, command ...string) error {
	var args []string
	if s.configFile != "" {
		args = append(args, "-f", s.configFile)
	}
	args = append(args, s.socketArgs()...)
	args = append(args, "new-session", "-d", "-s", name)
	if dir != "" {
		args = append(args, "-c", dir)
	}
	if width > 0 && height > 0 {
		args = append(args, "-x", fmt.Sprint(width), "-y", fmt.Sprint(height))
	}
	args = append(args, command...)
	cmd := exec.Command("tmux", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tmux new-session %q: %w (%s)",
			name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// HasSession reports whether a session with the given name exists.
// Returns false if the server is not running.
func (s *Server) HasSession(name string) bool {
	args := append(s.socketArgs(), "has-session", "-t", name)
	return exec.Command("tmux", args...).Run() == nil
}

// KillSession terminates a session. Returns nil if the session was
// already gone or the server was not running — normal conditions
// during cleanup, not errors.
func (s *Server) KillSession(name string) error {
	_, err := s.Run("kill-session", "-t", name)
	if err != nil {
		if strings.Contains(err.Error(), "can't find session") ||
			strings.Contains(err.Error(), "no server running") {
			return nil
		}
		return err
	}
	return nil
}

// KillServer terminates the entire tmux server. Only meaningful for
// socket-scoped servers (tests); returns nil if the server was
// already stopped.
func (s *Server) KillServer() error {
	args := append(s.socketArgs(), "kill-server")
	output, err := exec.Command("tmux", args...).CombinedOutput()
	if err != nil {
		outputString := strings.TrimSpace(string(output))
		if strings.Contains(outputString, "no server running") ||
			strings.Contains(outputString, "server exited unexpectedly") {
			return nil
		}
		return fmt.Errorf("tmux kill-server: %w (%s)", err, outputString)
	}
	return nil
}

// Run executes an arbitrary tmux subcommand and returns the combined
// output. This is the escape hatch for commands without a dedicated
// method. Socket scoping is applied automatically; callers provide
// only the subcommand and its arguments.
func (s *Server) Run(args ...string) (string, error) {
	fullArgs := append(s.socketArgs(), args...)
	cmd := exec.Command("tmux", fullArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("tmux %s: %w (%s)",
			strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

// Command returns an *exec.Cmd for a tmux subcommand without running
// it. The caller gets full control over Stdin/Stdout/Stderr before
// starting the process — needed for attach and switch-client, which
// take over the terminal.
func (s *Server) Command(args ...string) *exec.Cmd {
	fullArgs := append(s.socketArgs(), args...)
	return exec.Command("tmux", fullArgs...)
}

func (s *Server) socketArgs() []string {
	if s.socketPath == "" {
		return nil
	}
	return []string{"-S", s.socketPath}
}
