// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

// Package workspace establishes and repairs the devpanel tmux
// topology: one primary working pane, a status pane hosting the side
// panel, and a command sub-pane the panel relays keystrokes into.
//
// The reconciler is idempotent: repeated invocations against a
// healthy session change nothing, and invocations against a drifted
// session (panel pane gone, options stale) rediscover or rebuild the
// panel without disturbing the primary pane.
package workspace

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Defaults and bounds for the launcher-facing configuration.
const (
	DefaultSessionName       = "devpanel"
	DefaultPanelWidthPercent = 40
	DefaultCommandHeightRows = 8

	minPanelWidthPercent = 20
	maxPanelWidthPercent = 70
	minCommandHeightRows = 3
	maxCommandHeightRows = 20

	// Initial session geometry bounds. A freshly created detached
	// session may report no client size, so the session is always
	// created with explicit dimensions inside these bounds.
	minInitialWidth  = 80
	maxInitialWidth  = 500
	minInitialHeight = 24
	maxInitialHeight = 200

	defaultInitialWidth  = 200
	defaultInitialHeight = 60
)

// SidepanelBinary is the side panel executable name. It is both what
// the launcher spawns into the status pane and the invocation
// signature discovery matches against when the persisted pane ids
// have gone stale.
const SidepanelBinary = "devpanel-sidepanel"

// Config is the launcher configuration, assembled once at startup
// from defaults, the optional config file, environment, and flags —
// in that order — and passed down. Nothing below this layer reads
// ambient process state.
type Config struct {
	SessionName       string
	RootDir           string
	Attach            bool
	PanelWidthPercent int
	CommandHeightRows int

	// Initial session geometry, derived from the ambient terminal
	// size (or COLUMNS/LINES, or defaults) and bounded.
	InitialWidth  int
	InitialHeight int

	// SidepanelCommand is the argv prefix used to start the side
	// panel process (the --root/--target-pane arguments are appended
	// by the reconciler).
	SidepanelCommand []string

	// Clipboard is the platform copy/paste command pair, selected
	// once at startup. Zero value means no clipboard integration.
	Clipboard Clipboard
}

// fileConfig is the YAML shape of ~/.config/devpanel/config.yaml.
// Pointer fields distinguish "absent" from zero values.
type fileConfig struct {
	Session           string `yaml:"session"`
	Root              string `yaml:"root"`
	PanelWidthPercent *int   `yaml:"panel_width_percent"`
	CommandHeight     *int   `yaml:"command_height"`
	Attach            *bool  `yaml:"attach"`
}

// DefaultConfig returns the built-in defaults with geometry derived
// from the ambient terminal and the sidepanel command resolved.
func DefaultConfig() Config {
	width, height := initialGeometry(os.Getenv("COLUMNS"), os.Getenv("LINES"))
	return Config{
		SessionName:       DefaultSessionName,
		RootDir:           ".",
		Attach:            true,
		PanelWidthPercent: DefaultPanelWidthPercent,
		CommandHeightRows: DefaultCommandHeightRows,
		InitialWidth:      width,
		InitialHeight:     height,
		SidepanelCommand:  resolveSidepanelCommand(exec.LookPath),
		Clipboard:         DetectClipboard(exec.LookPath),
	}
}

// DefaultConfigPath returns the standard config file location, or ""
// when the home directory cannot be determined.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "devpanel", "config.yaml")
}

// ApplyFile overlays values from a YAML config file. A missing file
// is not an error — the file is optional.
func (c *Config) ApplyFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if file.Session != "" {
		c.SessionName = file.Session
	}
	if file.Root != "" {
		c.RootDir = file.Root
	}
	if file.PanelWidthPercent != nil {
		c.PanelWidthPercent = *file.PanelWidthPercent
	}
	if file.CommandHeight != nil {
		c.CommandHeightRows = *file.CommandHeight
	}
	if file.Attach != nil {
		c.Attach = *file.Attach
	}
	return nil
}

// ApplyEnvironment overlays DEVPANEL_* environment variables.
// Non-numeric values are ignored rather than fatal.
func (c *Config) ApplyEnvironment() {
	if session := os.Getenv("DEVPANEL_SESSION"); session != "" {
		c.SessionName = session
	}
	if value := os.Getenv("DEVPANEL_WIDTH_PERCENT"); value != "" {
		if percent, err := strconv.Atoi(value); err == nil {
			c.PanelWidthPercent = percent
		}
	}
	if value := os.Getenv("DEVPANEL_COMMAND_HEIGHT"); value != "" {
		if rows, err := strconv.Atoi(value); err == nil {
			c.CommandHeightRows = rows
		}
	}
}

// Normalize resolves the root directory to an absolute path and
// clamps the numeric settings into their documented bounds. Returns
// an error only for an unresolvable root path; existence is checked
// separately by Validate so the launcher can report it as the fatal
// class it is.
func (c *Config) Normalize() error {
	absolute, err := ResolveRoot(c.RootDir)
	if err != nil {
		return err
	}
	c.RootDir = absolute

	c.PanelWidthPercent = clampInt(c.PanelWidthPercent, minPanelWidthPercent, maxPanelWidthPercent)
	c.CommandHeightRows = clampInt(c.CommandHeightRows, minCommandHeightRows, maxCommandHeightRows)
	c.InitialWidth = clampInt(c.InitialWidth, minInitialWidth, maxInitialWidth)
	c.InitialHeight = clampInt(c.InitialHeight, minInitialHeight, maxInitialHeight)
	return nil
}

// ResolveRoot canonicalizes a root directory path: a leading "~" is
// expanded to the user's home directory, and the result is made
// absolute. Relayed cd commands and the panel's selection display
// both need the absolute form — a relative path would resolve against
// whatever the command pane's shell considers its working directory.
func ResolveRoot(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding ~ in %q: %w", path, err)
		}
		path = filepath.Join(home, path[1:])
	}
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving root directory %q: %w", path, err)
	}
	return absolute, nil
}

// Validate checks the fatal preconditions: the root directory must
// exist and be a directory.
func (c *Config) Validate() error {
	info, err := os.Stat(c.RootDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("root directory not found: %s", c.RootDir)
	}
	return nil
}

// initialGeometry derives the explicit size for a new detached
// session: the controlling terminal's size when available, otherwise
// COLUMNS/LINES, otherwise defaults — always bounded.
func initialGeometry(columnsEnv, linesEnv string) (width, height int) {
	width, height = defaultInitialWidth, defaultInitialHeight
	if termWidth, termHeight, err := term.GetSize(int(os.Stdout.Fd())); err == nil && termWidth > 0 && termHeight > 0 {
		width, height = termWidth, termHeight
	} else {
		if parsed, err := strconv.Atoi(columnsEnv); err == nil && parsed > 0 {
			width = parsed
		}
		if parsed, err := strconv.Atoi(linesEnv); err == nil && parsed > 0 {
			height = parsed
		}
	}
	return clampInt(width, minInitialWidth, maxInitialWidth),
		clampInt(height, minInitialHeight, maxInitialHeight)
}

// resolveSidepanelCommand locates the side panel binary: PATH first,
// then alongside the launcher executable. Falls back to the bare name
// — tmux will report the failure in the pane, which beats silently
// dropping the panel.
func resolveSidepanelCommand(lookPath func(string) (string, error)) []string {
	if path, err := lookPath(SidepanelBinary); err == nil {
		return []string{path}
	}
	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), SidepanelBinary)
		if _, err := os.Stat(sibling); err == nil {
			return []string{sibling}
		}
	}
	return []string{SidepanelBinary}
}

// Clipboard is a copy/paste command pair for tmux clipboard
// integration.
type Clipboard struct {
	Copy  string
	Paste string
}

// DetectClipboard selects the platform clipboard tool by priority:
// pbcopy/pbpaste (macOS), wl-copy/wl-paste (Wayland), xclip, xsel.
// Returns the zero value when none is available; clipboard bindings
// are then skipped.
func DetectClipboard(lookPath func(string) (string, error)) Clipboard {
	has := func(name string) bool {
		_, err := lookPath(name)
		return err == nil
	}
	switch {
	case has("pbcopy") && has("pbpaste"):
		return Clipboard{Copy: "pbcopy", Paste: "pbpaste"}
	case has("wl-copy") && has("wl-paste"):
		return Clipboard{Copy: "wl-copy", Paste: "wl-paste -n"}
	case has("xclip"):
		return Clipboard{
			Copy:  "xclip -selection clipboard -in",
			Paste: "xclip -selection clipboard -out",
		}
	case has("xsel"):
		return Clipboard{
			Copy:  "xsel --clipboard --input",
			Paste: "xsel --clipboard --output",
		}
	}
	return Clipboard{}
}

func clampInt(value, minimum, maximum int) int {
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}
