// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the side panel. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility —
// the panel lives inside tmux, where truecolor support is the
// exception rather than the rule.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected tree row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Directory names in the tree.
	DirectoryText lipgloss.Color

	// Utilization bar severity bands.
	BarNormal   lipgloss.Color
	BarWarning  lipgloss.Color
	BarCritical lipgloss.Color
	BarEmpty    lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	DirectoryText: lipgloss.Color("75"), // blue

	BarNormal:   lipgloss.Color("114"), // green
	BarWarning:  lipgloss.Color("220"), // yellow/amber
	BarCritical: lipgloss.Color("196"), // bright red
	BarEmpty:    lipgloss.Color("240"), // dim gray

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
}
