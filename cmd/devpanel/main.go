// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

// devpanel opens (or repairs) a persistent tmux workspace: a primary
// working pane on the left and a companion column on the right with a
// live side panel and a small command relay pane.
//
// Running devpanel against an existing healthy session is a no-op; it
// simply re-applies interaction bindings and attaches. If the side
// panel has died or the session predates pane tagging, the workspace
// is discovered and repaired instead of duplicated.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

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
	cfg := workspace.DefaultConfig()

	var configPath string
	var noAttach bool

	flagSet := pflag.NewFlagSet("devpanel", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.SessionName, "session", cfg.SessionName, "tmux session name")
	flagSet.StringVar(&cfg.RootDir, "root", cfg.RootDir, "root working directory")
	flagSet.BoolVar(&noAttach, "no-attach", false, "create/repair the session without attaching")
	flagSet.IntVar(&cfg.PanelWidthPercent, "panel-width-percent", cfg.PanelWidthPercent,
		"side panel width as a percent of the window (20-70)")
	flagSet.IntVar(&cfg.CommandHeightRows, "command-height", cfg.CommandHeightRows,
		"command pane height in rows (3-20)")
	flagSet.StringVar(&configPath, "config", workspace.DefaultConfigPath(),
		"config file path")
	showVersion := flagSet.Bool("version", false, "print version and exit")
	flagSet.BoolP("help", "h", false, "show help")

	// A defined help flag means pflag never returns ErrHelp here; -h
	// lands in the GetBool check below.
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}
	if *showVersion {
		version.Print("devpanel")
		return nil
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	// Merge order: defaults < config file < environment < flags. The
	// file and environment only fill values the flags didn't set.
	fileCfg := workspace.DefaultConfig()
	if err := fileCfg.ApplyFile(configPath); err != nil {
		return err
	}
	fileCfg.ApplyEnvironment()
	applyUnsetFlags(flagSet, &cfg, fileCfg)
	if noAttach {
		cfg.Attach = false
	}

	if err := cfg.Normalize(); err != nil {
		return err
	}

	// Fatal preconditions: no tmux, no workspace; no root, nothing to
	// open. Both abort before any session state is touched.
	if !tmux.Available() {
		return fmt.Errorf("tmux is required. Install tmux first.")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	reconciler := workspace.NewReconciler(tmux.NewServer(), logger)

	result, err := reconciler.EnsureWorkspace(cfg)
	if err != nil {
		return err
	}
	if result.PanelMissing {
		fmt.Fprintf(os.Stderr, "devpanel: no side panel found in session %q; topology left as-is\n",
			cfg.SessionName)
	}

	if !cfg.Attach {
		return nil
	}
	return reconciler.Attach(cfg.SessionName)
}

// applyUnsetFlags overlays file/environment values onto cfg for every
// flag the user did not pass explicitly.
func applyUnsetFlags(flagSet *pflag.FlagSet, cfg *workspace.Config, merged workspace.Config) {
	if !flagSet.Changed("session") {
		cfg.SessionName = merged.SessionName
	}
	if !flagSet.Changed("root") {
		cfg.RootDir = merged.RootDir
	}
	if !flagSet.Changed("panel-width-percent") {
		cfg.PanelWidthPercent = merged.PanelWidthPercent
	}
	if !flagSet.Changed("command-height") {
		cfg.CommandHeightRows = merged.CommandHeightRows
	}
	if !flagSet.Changed("no-attach") {
		cfg.Attach = merged.Attach
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `devpanel — persistent tmux workspace with a live side panel.

Creates (or repairs) a tmux session with three panes: a primary
working pane, a side panel showing a directory tree and host
telemetry, and a command pane the panel relays cd/editor commands
into. Repeated runs against a healthy session are no-ops.

Usage:
  devpanel [flags]

Examples:
  # Open the default "devpanel" session rooted at the current directory
  devpanel

  # A per-project session, without attaching
  devpanel --session myproj --root ~/src/myproj --no-attach

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
