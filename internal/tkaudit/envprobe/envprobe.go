// Package envprobe snapshots the compute environment an audit runs on:
// host identity, memory, CPU topology and any discoverable accelerator.
// The snapshot is provenance metadata only — no stage branches on it, and
// a machine without an accelerator probes clean with an empty list.
package envprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Accelerator describes one discovered compute accelerator.
type Accelerator struct {
	Model         string `json:"model"`
	DriverVersion string `json:"driver_version,omitempty"`
}

// Snapshot is the once-per-run environment record. It is written as
// sidecar metadata next to the audit record and never consulted for
// control flow.
type Snapshot struct {
	Timestamp        time.Time     `json:"timestamp"`
	Hostname         string        `json:"hostname"`
	OS               string        `json:"os"`
	Platform         string        `json:"platform"`
	KernelVersion    string        `json:"kernel_version"`
	CPUModel         string        `json:"cpu_model"`
	LogicalCores     int           `json:"logical_cores"`
	TotalMemoryBytes uint64        `json:"total_memory_bytes"`
	Accelerators     []Accelerator `json:"accelerators"`
	GoVersion        string        `json:"go_version"`
}

// Probe collects the environment snapshot. Partial failures of individual
// probes leave their fields zero rather than failing the run; only a fully
// unreadable host is an error.
func Probe(ctx context.Context) (*Snapshot, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read host info: %w", err)
	}

	snap := &Snapshot{
		Timestamp:     time.Now().UTC(),
		Hostname:      info.Hostname,
		OS:            info.OS,
		Platform:      fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion),
		KernelVersion: info.KernelVersion,
		GoVersion:     runtime.Version(),
		Accelerators:  []Accelerator{},
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snap.TotalMemoryBytes = vm.Total
	}
	if counts, err := cpu.CountsWithContext(ctx, true); err == nil {
		snap.LogicalCores = counts
	}
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		snap.CPUModel = infos[0].ModelName
	}

	snap.Accelerators = discoverAccelerators(ctx)
	return snap, nil
}

// WriteFile persists the snapshot as indented JSON.
func (s *Snapshot) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal environment snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write environment snapshot: %w", err)
	}
	return nil
}

// discoverAccelerators looks for NVIDIA GPUs via nvidia-smi, falling back
// to the /proc driver tree. Absence of both means a CPU-only host, which
// is a valid audit environment.
func discoverAccelerators(ctx context.Context) []Accelerator {
	if accels := nvidiaSMI(ctx); len(accels) > 0 {
		return accels
	}
	return procDriverGPUs()
}

func nvidiaSMI(ctx context.Context) []Accelerator {
	path, err := exec.LookPath("nvidia-smi")
	if err != nil {
		return nil
	}

	out, err := exec.CommandContext(ctx, path,
		"--query-gpu=name,driver_version", "--format=csv,noheader").Output()
	if err != nil {
		return nil
	}

	var accels []Accelerator
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		parts := strings.SplitN(line, ",", 2)
		if len(parts) == 0 || strings.TrimSpace(parts[0]) == "" {
			continue
		}
		a := Accelerator{Model: strings.TrimSpace(parts[0])}
		if len(parts) == 2 {
			a.DriverVersion = strings.TrimSpace(parts[1])
		}
		accels = append(accels, a)
	}
	return accels
}

func procDriverGPUs() []Accelerator {
	entries, err := os.ReadDir("/proc/driver/nvidia/gpus")
	if err != nil {
		return nil
	}

	var accels []Accelerator
	for _, entry := range entries {
		info, err := os.ReadFile(filepath.Join("/proc/driver/nvidia/gpus", entry.Name(), "information"))
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(info), "\n") {
			if name, ok := strings.CutPrefix(line, "Model:"); ok {
				accels = append(accels, Accelerator{Model: strings.TrimSpace(name)})
				break
			}
		}
	}
	return accels
}
