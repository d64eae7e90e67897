// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry produces point-in-time host utilization snapshots
// for the side panel's stats display. Snapshots are ephemeral: nothing
// is persisted, and no state is shared between ticks except the CPU
// baseline that percentage-since-last-call sampling requires.
//
// GPU data comes from a chain of sources tried in strict priority
// order (vendor enumeration tool, platform-native static summary,
// none). Every source is best-effort: a missing binary, non-zero
// exit, timeout, or malformed output degrades to "no reading from
// this source" and the next source is consulted. No probe failure
// crosses the Collector boundary as an error.
package telemetry

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Reading is one GPU's utilization data. Nil percentage pointers mean
// the value is unknown and must render as an explicit sentinel, never
// as zero.
type Reading struct {
	Index       string
	Name        string
	UtilPercent *float64
	VRAMPercent *float64
	VRAMText    string
}

// GPUInfo is the GPU portion of a snapshot: which source produced the
// readings and the readings themselves.
type GPUInfo struct {
	Source       string
	Count        int
	ModelSummary string
	Readings     []Reading
}

// Snapshot is one point-in-time view of host utilization. Recomputed
// every tick, never persisted.
type Snapshot struct {
	Time       time.Time
	CPUPercent float64
	MemPercent float64
	GPU        GPUInfo
}

// Runner executes an external probe tool and returns its stdout. The
// default implementation enforces the timeout via exec.CommandContext;
// tests inject fakes to simulate missing binaries, slow tools, and
// malformed output.
type Runner func(timeout time.Duration, name string, args ...string) (string, error)

// execRunner is the production Runner. A non-zero exit or an expired
// deadline surfaces as an error, which the calling source treats as
// "no reading".
func execRunner(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	output, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// gpuSource is one variant of the GPU degradation chain. Probe returns
// ok=false when this source has nothing to report, which hands over to
// the next source in the chain.
type gpuSource interface {
	Probe() (GPUInfo, bool)
}

// Collector produces snapshots. Not safe for concurrent use; the
// panel calls Snapshot from a single goroutine per tick.
type Collector struct {
	logger  *slog.Logger
	sources []gpuSource

	// cpuSeeded tracks the one-time baseline read. CPU percentage is
	// utilization since the previous call, so the first call's value
	// is measured against process start and must be discarded.
	cpuSeeded bool
}

// NewCollector builds a Collector with the full GPU source chain:
// nvidia-smi enumeration first, the platform-native static summary
// second, the empty fallback last. Construction runs the one-time
// static probes (Apple VRAM capacity); per-tick probes happen in
// Snapshot.
func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{
		logger: logger,
		sources: []gpuSource{
			newNvidiaSource(execRunner, exec.LookPath, logger),
			newAppleSource(execRunner, exec.LookPath, logger),
			noSource{},
		},
	}
}

// newCollectorWithSources is the test constructor.
func newCollectorWithSources(logger *slog.Logger, sources ...gpuSource) *Collector {
	return &Collector{logger: logger, sources: sources}
}

// Snapshot reads CPU, memory, and GPU state. Individual probe
// failures degrade to zero values (CPU/memory) or the next GPU
// source; they are logged, not returned.
func (c *Collector) Snapshot() Snapshot {
	snapshot := Snapshot{Time: time.Now()}

	if !c.cpuSeeded {
		// Seed the delta baseline; the unseeded value would read
		// near-zero regardless of actual load.
		_, _ = cpu.Percent(0, false)
		c.cpuSeeded = true
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		snapshot.CPUPercent = ClampPercent(percents[0])
	} else if err != nil {
		c.logger.Warn("cpu probe failed", "error", err)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		snapshot.MemPercent = ClampPercent(vm.UsedPercent)
	} else {
		c.logger.Warn("memory probe failed", "error", err)
	}

	snapshot.GPU = c.probeGPU()
	return snapshot
}

// probeGPU walks the source chain and returns the first source's
// readings. The chain ends in noSource, which always reports.
func (c *Collector) probeGPU() GPUInfo {
	for _, source := range c.sources {
		if info, ok := source.Probe(); ok {
			return info
		}
	}
	return noSource{}.mustInfo()
}

// ClampPercent bounds a percentage to [0,100] for display.
func ClampPercent(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
