// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

// devpanel-sidepanel is the TUI that runs inside the workspace's side
// panel pane: a browsable directory tree over a live host telemetry
// display. Selections are relayed as shell commands into the command
// pane named by --target-pane; with no target pane the panel still
// runs, it just relays nothing.
//
// The launcher starts this binary via respawn-pane. It can also be
// run standalone in any terminal for development.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/devpanel-dev/devpanel/lib/panel"
	"github.com/devpanel-dev/devpanel/lib/telemetry"
	"github.com/devpanel-dev/devpanel/lib/tmux"
	"github.com/devpanel-dev/devpanel/lib/version"
	"github.com/devpanel-dev/devpanel/lib/workspace"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("devpanel-sidepanel", pflag.ContinueOnError)
	root := flagSet.String("root", ".", "root directory for the tree")
	targetPane := flagSet.String("target-pane", "", "tmux pane id to relay commands into (empty disables relay)")
	logOutput := flagSet.String("log-output", "", "write JSON logs to this file (default: discard)")
	showVersion := flagSet.Bool("version", false, "print version and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if *showVersion {
		version.Print("devpanel-sidepanel")
		return nil
	}

	// The pane owns the terminal, so logs go to a file or nowhere.
	// Writing to stderr would corrupt the display.
	logger, closeLog, err := newLogger(*logOutput)
	if err != nil {
		return err
	}
	defer closeLog()

	// Relayed cd commands carry this path verbatim, so it must be
	// absolute before the model ever sees it.
	rootDir, err := workspace.ResolveRoot(*root)
	if err != nil {
		return err
	}
	if info, err := os.Stat(rootDir); err != nil || !info.IsDir() {
		return fmt.Errorf("root is not a directory: %s", rootDir)
	}

	dispatcher := tmux.NewDispatcher(tmux.NewServer(), *targetPane, logger)
	collector := telemetry.NewCollector(logger)
	model := panel.New(rootDir, collector, dispatcher)

	logger.Info("sidepanel starting", "root", rootDir, "target_pane", *targetPane)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running panel: %w", err)
	}
	return nil
}

// newLogger builds the panel's logger: JSON to the named file, or a
// discard logger when no file is given.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { file.Close() }, nil
}
