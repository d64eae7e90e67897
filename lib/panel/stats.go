// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/devpanel-dev/devpanel/lib/telemetry"
)

// Band is the severity classification of a utilization percentage.
type Band int

const (
	BandNormal Band = iota
	BandWarning
	BandCritical
)

// Severity thresholds, applied after clamping.
const (
	warningThreshold  = 70.0
	criticalThreshold = 90.0
)

// barWidth is the fixed cell count of every utilization bar.
const barWidth = 10

// barBand classifies a percentage. Out-of-range inputs are clamped
// first, so 150 lands in the same band as 100.
func barBand(percent float64) Band {
	clamped := telemetry.ClampPercent(percent)
	switch {
	case clamped >= criticalThreshold:
		return BandCritical
	case clamped >= warningThreshold:
		return BandWarning
	default:
		return BandNormal
	}
}

// bandColor maps a band to its theme color.
func (m *Model) bandColor(band Band) lipgloss.Color {
	switch band {
	case BandCritical:
		return m.theme.BarCritical
	case BandWarning:
		return m.theme.BarWarning
	default:
		return m.theme.BarNormal
	}
}

// renderBar draws a fixed-width utilization bar with a numeric
// suffix: "[####------]  42.3%". The fill color follows the severity
// band of the clamped value.
func (m *Model) renderBar(percent float64) string {
	clamped := telemetry.ClampPercent(percent)
	filled := int(clamped/100.0*barWidth + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}

	fillStyle := lipgloss.NewStyle().Foreground(m.bandColor(barBand(clamped)))
	emptyStyle := lipgloss.NewStyle().Foreground(m.theme.BarEmpty)

	var builder strings.Builder
	builder.WriteString("[")
	builder.WriteString(fillStyle.Render(strings.Repeat("#", filled)))
	builder.WriteString(emptyStyle.Render(strings.Repeat("-", barWidth-filled)))
	builder.WriteString("]")
	builder.WriteString(fmt.Sprintf(" %5.1f%%", clamped))
	return builder.String()
}

// unknownValue is the sentinel for absent readings. Unknown never
// renders as a bar — a zero-filled bar would read as "idle", which
// is a different claim entirely.
const unknownValue = "N/A"

// renderStats draws the telemetry block: timestamp, CPU and memory
// bars, the GPU source line, and one line per GPU reading, followed
// by the current selection and editor.
func (m *Model) renderStats() string {
	header := lipgloss.NewStyle().Foreground(m.theme.HeaderForeground).Bold(true)
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)

	var lines []string

	if !m.haveSnapshot {
		lines = append(lines, faint.Render("collecting..."))
	} else {
		snapshot := m.snapshot
		lines = append(lines, header.Render(snapshot.Time.Format("2006-01-02 15:04:05")))
		lines = append(lines, "CPU "+m.renderBar(snapshot.CPUPercent))
		lines = append(lines, "MEM "+m.renderBar(snapshot.MemPercent))
		lines = append(lines, faint.Render(fmt.Sprintf("GPU: %s | Count: %d | Model: %s",
			snapshot.GPU.Source, snapshot.GPU.Count, snapshot.GPU.ModelSummary)))

		if len(snapshot.GPU.Readings) == 0 {
			lines = append(lines, faint.Render("GPU metrics unavailable"))
		}
		for _, reading := range snapshot.GPU.Readings {
			lines = append(lines, m.renderGPULine(reading))
		}
	}

	lines = append(lines, faint.Render("Dir:  ")+m.selectedDir)
	if m.selectedFile != "" {
		lines = append(lines, faint.Render("File: ")+m.selectedFile)
	}
	lines = append(lines, faint.Render("Editor: "+m.editor))

	return strings.Join(lines, "\n")
}

// renderGPULine draws one GPU's utilization and VRAM. Nil values
// render the unknown sentinel instead of a bar.
func (m *Model) renderGPULine(reading telemetry.Reading) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "GPU%2s U ", reading.Index)
	if reading.UtilPercent == nil {
		builder.WriteString(unknownValue)
	} else {
		builder.WriteString(m.renderBar(*reading.UtilPercent))
	}
	builder.WriteString("  V ")
	if reading.VRAMPercent == nil {
		fmt.Fprintf(&builder, "%s (%s)", unknownValue, reading.VRAMText)
	} else {
		builder.WriteString(m.renderBar(*reading.VRAMPercent))
		builder.WriteString("  " + reading.VRAMText)
	}
	return builder.String()
}
