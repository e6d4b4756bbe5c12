package sysinfo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// GopsutilSource reads statistics from the running system.
type GopsutilSource struct{}

// CPUTimes implements Source with the aggregate over all CPUs.
func (GopsutilSource) CPUTimes(ctx context.Context) (cpu.TimesStat, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return cpu.TimesStat{}, err
	}
	if len(times) == 0 {
		return cpu.TimesStat{}, errors.New("no cpu times")
	}
	return times[0], nil
}

// Memory implements Source.
func (GopsutilSource) Memory(ctx context.Context) (Memory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Memory{}, err
	}
	return Memory{Total: vm.Total, Used: vm.Used, Available: vm.Available, UsedPercent: vm.UsedPercent}, nil
}

// Load implements Source.
func (GopsutilSource) Load(ctx context.Context) (Load, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return Load{}, err
	}
	return Load{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}, nil
}

// Processes implements Source. Processes that exit or deny access while
// being read are skipped.
func (GopsutilSource) Processes(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		times, err := p.TimesWithContext(ctx)
		if err != nil {
			continue
		}
		var rss uint64
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			rss = mi.RSS
		}
		out = append(out, Process{
			PID:     p.Pid,
			Name:    name,
			CPUTime: times.User + times.System,
			RSS:     rss,
		})
	}
	return out, nil
}
