// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fakeRunner(output string, err error) Runner {
	return func(time.Duration, string, ...string) (string, error) {
		return output, err
	}
}

func foundLookPath(string) (string, error)   { return "/usr/bin/fake", nil }
func missingLookPath(string) (string, error) { return "", errors.New("not found") }

func TestClampPercent(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{-10, 0},
		{0, 0},
		{42.5, 42.5},
		{100, 100},
		{150, 100},
	}
	for _, tt := range tests {
		if got := ClampPercent(tt.input); got != tt.want {
			t.Errorf("ClampPercent(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseNvidiaCSV(t *testing.T) {
	output := "0, NVIDIA GeForce RTX 4090, 35, 8192, 24564\n" +
		"1, NVIDIA GeForce RTX 4090, 80, 20000, 24564"

	readings := parseNvidiaCSV(output)
	if len(readings) != 2 {
		t.Fatalf("got %d readings, want 2", len(readings))
	}

	first := readings[0]
	if first.Index != "0" || first.Name != "NVIDIA GeForce RTX 4090" {
		t.Errorf("first reading = %+v", first)
	}
	if first.UtilPercent == nil || *first.UtilPercent != 35 {
		t.Errorf("first util = %v, want 35", first.UtilPercent)
	}
	if first.VRAMPercent == nil {
		t.Fatal("first VRAM percent is nil")
	}
	wantVRAM := 8192.0 / 24564.0 * 100.0
	if diff := *first.VRAMPercent - wantVRAM; diff > 0.001 || diff < -0.001 {
		t.Errorf("first VRAM = %v, want %v", *first.VRAMPercent, wantVRAM)
	}
	if first.VRAMText != "8192/24564 MiB" {
		t.Errorf("VRAMText = %q", first.VRAMText)
	}
}

func TestParseNvidiaCSVSkipsMalformedLines(t *testing.T) {
	output := "0, RTX 4090, 35, 8192, 24564\n" +
		"garbage line\n" +
		"1, RTX 4090, not-a-number, 100, 24564\n" +
		"2, RTX 4090, 50, 100, 24564"

	readings := parseNvidiaCSV(output)
	if len(readings) != 2 {
		t.Fatalf("got %d readings, want 2 (malformed lines skipped)", len(readings))
	}
	if readings[0].Index != "0" || readings[1].Index != "2" {
		t.Errorf("kept indices %q and %q, want 0 and 2", readings[0].Index, readings[1].Index)
	}
}

func TestParseNvidiaCSVZeroTotalMemory(t *testing.T) {
	readings := parseNvidiaCSV("0, Broken GPU, 10, 500, 0")
	if len(readings) != 1 {
		t.Fatalf("got %d readings, want 1", len(readings))
	}
	if readings[0].VRAMPercent == nil || *readings[0].VRAMPercent != 0 {
		t.Errorf("zero-total VRAM percent = %v, want 0", readings[0].VRAMPercent)
	}
}

func TestParseNvidiaCSVClampsOutOfRange(t *testing.T) {
	readings := parseNvidiaCSV("0, Weird GPU, 150, 30000, 24564")
	if len(readings) != 1 {
		t.Fatalf("got %d readings, want 1", len(readings))
	}
	if *readings[0].UtilPercent != 100 {
		t.Errorf("util = %v, want clamped 100", *readings[0].UtilPercent)
	}
	if *readings[0].VRAMPercent != 100 {
		t.Errorf("VRAM = %v, want clamped 100", *readings[0].VRAMPercent)
	}
}

func TestSummarizeModels(t *testing.T) {
	homogeneous := []Reading{{Name: "RTX 4090"}, {Name: "RTX 4090"}}
	if got := summarizeModels(homogeneous); got != "RTX 4090" {
		t.Errorf("homogeneous summary = %q, want RTX 4090", got)
	}
	mixed := []Reading{{Name: "RTX 4090"}, {Name: "RTX 3080"}}
	if got := summarizeModels(mixed); got != "Mixed" {
		t.Errorf("mixed summary = %q, want Mixed", got)
	}
}

func TestNvidiaSourceMissingBinary(t *testing.T) {
	source := newNvidiaSource(fakeRunner("", nil), missingLookPath, discardLogger())
	if _, ok := source.Probe(); ok {
		t.Error("Probe reported readings without nvidia-smi on PATH")
	}
}

func TestNvidiaSourceToolFailure(t *testing.T) {
	source := newNvidiaSource(fakeRunner("", errors.New("exit status 9")),
		foundLookPath, discardLogger())
	if _, ok := source.Probe(); ok {
		t.Error("Probe reported readings after tool failure")
	}
}

func TestNvidiaSourceEmptyOutput(t *testing.T) {
	source := newNvidiaSource(fakeRunner("", nil), foundLookPath, discardLogger())
	if _, ok := source.Probe(); ok {
		t.Error("Probe reported readings from empty output")
	}
}

func TestNvidiaSourceReports(t *testing.T) {
	source := newNvidiaSource(fakeRunner("0, RTX 4090, 35, 8192, 24564", nil),
		foundLookPath, discardLogger())
	info, ok := source.Probe()
	if !ok {
		t.Fatal("Probe reported nothing for valid output")
	}
	if info.Source != "nvidia-smi" || info.Count != 1 || info.ModelSummary != "RTX 4090" {
		t.Errorf("info = %+v", info)
	}
}

func TestParseVRAMTotal(t *testing.T) {
	output := "Graphics/Displays:\n\n    AMD Radeon Pro:\n\n      Chipset Model: AMD Radeon Pro 5500M\n      VRAM (Total): 8 GB\n"
	if got := parseVRAMTotal(output); got != "8 GB" {
		t.Errorf("parseVRAMTotal = %q, want 8 GB", got)
	}
	if got := parseVRAMTotal("no vram line here"); got != "" {
		t.Errorf("parseVRAMTotal on absent line = %q, want empty", got)
	}
}

// fixedSource is a chain element with canned behavior.
type fixedSource struct {
	info GPUInfo
	ok   bool
}

func (f fixedSource) Probe() (GPUInfo, bool) { return f.info, f.ok }

func TestSourceChainPriority(t *testing.T) {
	first := fixedSource{info: GPUInfo{Source: "first"}, ok: true}
	second := fixedSource{info: GPUInfo{Source: "second"}, ok: true}

	collector := newCollectorWithSources(discardLogger(), first, second)
	if got := collector.probeGPU().Source; got != "first" {
		t.Errorf("chain returned %q, want first", got)
	}
}

func TestSourceChainDegrades(t *testing.T) {
	silent := fixedSource{ok: false}
	second := fixedSource{info: GPUInfo{Source: "second"}, ok: true}

	collector := newCollectorWithSources(discardLogger(), silent, second)
	if got := collector.probeGPU().Source; got != "second" {
		t.Errorf("chain returned %q, want second", got)
	}
}

func TestSourceChainExhausted(t *testing.T) {
	collector := newCollectorWithSources(discardLogger(), fixedSource{ok: false})
	info := collector.probeGPU()
	if info.Source != "No supported GPU tool found" {
		t.Errorf("exhausted chain source = %q", info.Source)
	}
	if len(info.Readings) != 0 {
		t.Errorf("exhausted chain has %d readings, want 0", len(info.Readings))
	}
}

func TestSnapshotNeverErrors(t *testing.T) {
	// A snapshot with an empty source chain and real CPU/memory
	// probes: must return bounded values, never panic.
	collector := newCollectorWithSources(discardLogger(), noSource{})

	for i := 0; i < 2; i++ {
		snapshot := collector.Snapshot()
		if snapshot.CPUPercent < 0 || snapshot.CPUPercent > 100 {
			t.Errorf("CPUPercent = %v, out of [0,100]", snapshot.CPUPercent)
		}
		if snapshot.MemPercent < 0 || snapshot.MemPercent > 100 {
			t.Errorf("MemPercent = %v, out of [0,100]", snapshot.MemPercent)
		}
		if snapshot.Time.IsZero() {
			t.Error("snapshot has zero time")
		}
	}
}
