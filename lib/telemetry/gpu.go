// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Probe timeouts. Routine per-tick polls stay under a second so a
// slow tool cannot hold up the CPU/memory refresh of the same tick;
// the one-time static capacity read at startup gets more headroom.
const (
	pollTimeout   = 1 * time.Second
	staticTimeout = 3 * time.Second
)

// LookPath mirrors exec.LookPath for injection in tests.
type LookPath func(file string) (string, error)

// nvidiaSource enumerates GPUs through nvidia-smi's CSV query
// interface. One Reading per device with numeric utilization and VRAM
// percentages. Highest-priority source: when it reports, lower
// sources are never consulted.
type nvidiaSource struct {
	run      Runner
	lookPath LookPath
	logger   *slog.Logger
}

func newNvidiaSource(run Runner, lookPath LookPath, logger *slog.Logger) *nvidiaSource {
	return &nvidiaSource{run: run, lookPath: lookPath, logger: logger}
}

func (n *nvidiaSource) Probe() (GPUInfo, bool) {
	if _, err := n.lookPath("nvidia-smi"); err != nil {
		return GPUInfo{}, false
	}

	output, err := n.run(pollTimeout, "nvidia-smi",
		"--query-gpu=index,name,utilization.gpu,memory.used,memory.total",
		"--format=csv,noheader,nounits")
	if err != nil {
		n.logger.Warn("nvidia-smi probe failed", "error", err)
		return GPUInfo{}, false
	}

	readings := parseNvidiaCSV(output)
	if len(readings) == 0 {
		return GPUInfo{}, false
	}

	return GPUInfo{
		Source:       "nvidia-smi",
		Count:        len(readings),
		ModelSummary: summarizeModels(readings),
		Readings:     readings,
	}, true
}

// parseNvidiaCSV parses nvidia-smi query output: one device per line,
// comma-separated index, name, util%, memory used MiB, memory total
// MiB. Malformed lines are skipped rather than failing the probe — a
// fleet where one device misreports still shows the rest.
func parseNvidiaCSV(output string) []Reading {
	var readings []Reading
	for _, raw := range strings.Split(output, "\n") {
		parts := strings.Split(raw, ",")
		if len(parts) < 5 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		util, utilErr := strconv.ParseFloat(parts[2], 64)
		memUsed, usedErr := strconv.ParseFloat(parts[3], 64)
		memTotal, totalErr := strconv.ParseFloat(parts[4], 64)
		if utilErr != nil || usedErr != nil || totalErr != nil {
			continue
		}

		vramPercent := 0.0
		if memTotal > 0 {
			vramPercent = memUsed / memTotal * 100.0
		}
		utilClamped := ClampPercent(util)
		vramClamped := ClampPercent(vramPercent)

		readings = append(readings, Reading{
			Index:       parts[0],
			Name:        parts[1],
			UtilPercent: &utilClamped,
			VRAMPercent: &vramClamped,
			VRAMText:    fmt.Sprintf("%.0f/%.0f MiB", memUsed, memTotal),
		})
	}
	return readings
}

// summarizeModels reports the shared model name for a homogeneous
// fleet and "Mixed" otherwise.
func summarizeModels(readings []Reading) string {
	names := make(map[string]struct{})
	for _, reading := range readings {
		names[reading.Name] = struct{}{}
	}
	if len(names) == 1 {
		return readings[0].Name
	}
	return "Mixed"
}

// appleSource is the platform-native static summary for macOS. VRAM
// capacity comes from system_profiler, read once at construction;
// utilization needs root powermetrics and is reported as explicitly
// unknown rather than a silent zero. Probes false on other platforms.
type appleSource struct {
	enabled  bool
	vramText string
}

func newAppleSource(run Runner, lookPath LookPath, logger *slog.Logger) *appleSource {
	source := &appleSource{enabled: runtime.GOOS == "darwin", vramText: "N/A"}
	if !source.enabled {
		return source
	}
	if _, err := lookPath("system_profiler"); err != nil {
		return source
	}
	output, err := run(staticTimeout, "system_profiler", "SPDisplaysDataType")
	if err != nil {
		logger.Warn("system_profiler probe failed", "error", err)
		return source
	}
	if vram := parseVRAMTotal(output); vram != "" {
		source.vramText = vram
	}
	return source
}

// parseVRAMTotal scans system_profiler display output for the VRAM
// capacity line. Returns "" when no VRAM line is present (Apple
// Silicon reports unified memory under a different key on some OS
// versions).
func parseVRAMTotal(output string) string {
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "VRAM (Total):") || strings.HasPrefix(line, "VRAM:") {
			_, value, _ := strings.Cut(line, ":")
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func (a *appleSource) Probe() (GPUInfo, bool) {
	if !a.enabled {
		return GPUInfo{}, false
	}
	return GPUInfo{
		Source:       "macOS (GPU util needs root powermetrics)",
		Count:        1,
		ModelSummary: "Apple GPU",
		Readings: []Reading{{
			Index:    "0",
			Name:     "Apple GPU",
			VRAMText: a.vramText,
		}},
	}, true
}

// noSource terminates the chain: no supported GPU tool was found.
type noSource struct{}

func (noSource) Probe() (GPUInfo, bool) {
	return noSource{}.mustInfo(), true
}

func (noSource) mustInfo() GPUInfo {
	return GPUInfo{
		Source:       "No supported GPU tool found",
		ModelSummary: "Unknown",
	}
}
