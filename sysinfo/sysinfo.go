// Package sysinfo samples CPU, memory, load and process statistics and
// publishes them through providers.
package sysinfo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/phanxgames/trellis"
)

// Sampling periods, as fast and slow tiers.
const (
	FastInterval = time.Second
	SlowInterval = 10 * time.Second
)

// DefaultTopN is the number of processes published by the slow tier.
const DefaultTopN = 10

// CPU is the share of CPU time spent in each state since the previous
// sample, in percent.
type CPU struct {
	User, System, Idle, Nice, IOWait, IRQ, SoftIRQ, Steal float64
}

// Busy returns the non-idle percentage.
func (c CPU) Busy() float64 { return 100 - c.Idle }

// Memory is the virtual memory usage.
type Memory struct {
	Total, Used, Available uint64
	UsedPercent            float64
}

// Load is the system load average.
type Load struct {
	Load1, Load5, Load15 float64
}

// Process is one entry of the process list.
type Process struct {
	PID        int32
	Name       string
	CPUTime    float64 // cumulative user+system seconds
	CPUPercent float64 // since the previous sample
	RSS        uint64
}

// Source reads raw statistics. The production source is gopsutil; tests
// substitute fixed values.
type Source interface {
	CPUTimes(ctx context.Context) (cpu.TimesStat, error)
	Memory(ctx context.Context) (Memory, error)
	Load(ctx context.Context) (Load, error)
	Processes(ctx context.Context) ([]Process, error)
}

// Sampler polls a Source and publishes the results. Sampling errors are
// logged and the previous values stay published.
type Sampler struct {
	CPU       *trellis.Provider[CPU]
	Memory    *trellis.Provider[Memory]
	Load      *trellis.Provider[Load]
	Processes *trellis.Provider[[]Process]

	// TopN limits the published process list.
	TopN int
	// Timeout bounds a single sample.
	Timeout time.Duration

	src    Source
	logger *slog.Logger
	now    func() time.Time

	prevCPU   *cpu.TimesStat
	prevProcs map[int32]float64
	prevAt    time.Time
}

// NewSampler creates a sampler over src. A nil src uses gopsutil.
func NewSampler(src Source, logger *slog.Logger) *Sampler {
	if src == nil {
		src = GopsutilSource{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{
		CPU:       trellis.NewProvider(CPU{Idle: 100}),
		Memory:    trellis.NewProvider(Memory{}),
		Load:      trellis.NewProvider(Load{}),
		Processes: trellis.NewProvider[[]Process](nil),
		TopN:      DefaultTopN,
		Timeout:   2 * time.Second,
		src:       src,
		logger:    logger.With("component", "sysinfo"),
		now:       time.Now,
	}
}

// Start schedules the fast tier (CPU, memory, load) every FastInterval and
// the process list every SlowInterval.
func (s *Sampler) Start(sched trellis.Scheduler) []trellis.TaskHandle {
	return []trellis.TaskHandle{
		sched.Schedule(FastInterval, func() { s.logErr("fast", s.SampleFast(context.Background())) }),
		sched.Schedule(SlowInterval, func() { s.logErr("processes", s.SampleProcesses(context.Background())) }),
	}
}

func (s *Sampler) logErr(tier string, err error) {
	if err != nil {
		s.logger.Warn("sampling failed, keeping last values", "tier", tier, "err", err)
	}
}

// SampleFast reads CPU times, memory and load and publishes what succeeded.
// The first call only primes the CPU baseline.
func (s *Sampler) SampleFast(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var errs []error
	if t, err := s.src.CPUTimes(ctx); err != nil {
		errs = append(errs, fmt.Errorf("cpu: %w", err))
	} else {
		if s.prevCPU != nil {
			s.CPU.Update(PercentBetween(*s.prevCPU, t))
		}
		s.prevCPU = &t
	}
	if m, err := s.src.Memory(ctx); err != nil {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	} else {
		s.Memory.Update(m)
	}
	if l, err := s.src.Load(ctx); err != nil {
		errs = append(errs, fmt.Errorf("load: %w", err))
	} else {
		s.Load.Update(l)
	}
	return errors.Join(errs...)
}

// SampleProcesses publishes the TopN processes by CPU usage since the
// previous call. On the first call processes are ranked by cumulative CPU
// time.
func (s *Sampler) SampleProcesses(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	procs, err := s.src.Processes(ctx)
	if err != nil {
		return fmt.Errorf("processes: %w", err)
	}
	now := s.now()
	elapsed := now.Sub(s.prevAt).Seconds()
	cur := make(map[int32]float64, len(procs))
	for i := range procs {
		p := &procs[i]
		cur[p.PID] = p.CPUTime
		if s.prevProcs == nil || elapsed <= 0 {
			continue
		}
		if prev, ok := s.prevProcs[p.PID]; ok && p.CPUTime >= prev {
			p.CPUPercent = (p.CPUTime - prev) / elapsed * 100
		}
	}
	first := s.prevProcs == nil
	s.prevProcs, s.prevAt = cur, now

	sort.SliceStable(procs, func(i, j int) bool {
		if first {
			return procs[i].CPUTime > procs[j].CPUTime
		}
		return procs[i].CPUPercent > procs[j].CPUPercent
	})
	if s.TopN > 0 && len(procs) > s.TopN {
		procs = procs[:s.TopN]
	}
	s.Processes.Update(procs)
	return nil
}

// PercentBetween converts two cumulative CPU time samples into per-state
// percentages of the elapsed total.
func PercentBetween(a, b cpu.TimesStat) CPU {
	total := totalTime(b) - totalTime(a)
	if total <= 0 {
		return CPU{Idle: 100}
	}
	pct := func(x, y float64) float64 { return max(y-x, 0) / total * 100 }
	return CPU{
		User:    pct(a.User, b.User),
		System:  pct(a.System, b.System),
		Idle:    pct(a.Idle, b.Idle),
		Nice:    pct(a.Nice, b.Nice),
		IOWait:  pct(a.Iowait, b.Iowait),
		IRQ:     pct(a.Irq, b.Irq),
		SoftIRQ: pct(a.Softirq, b.Softirq),
		Steal:   pct(a.Steal, b.Steal),
	}
}

func totalTime(t cpu.TimesStat) float64 {
	return t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
}

// FormatCPU renders the CPU line of the system screen.
func FormatCPU(c CPU) string {
	return fmt.Sprintf("IDL:%02.0f USR:%02.0f SYS:%02.0f IRQ:%02.0f", c.Idle, c.User, c.System, c.IRQ+c.SoftIRQ)
}

// FormatMemory renders "used / total (NN%)" with binary units.
func FormatMemory(m Memory) string {
	return fmt.Sprintf("%s / %s (%.0f%%)", humanize.IBytes(m.Used), humanize.IBytes(m.Total), m.UsedPercent)
}

// FormatLoad renders the three load averages.
func FormatLoad(l Load) string {
	return fmt.Sprintf("%.2f %.2f %.2f", l.Load1, l.Load5, l.Load15)
}

// FormatProcess renders one process list line.
func FormatProcess(p Process) string {
	return fmt.Sprintf("%5.1f%% %6s %s", p.CPUPercent, humanize.IBytes(p.RSS), p.Name)
}
