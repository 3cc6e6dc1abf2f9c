package observability

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"

	"downtime-tracker/realtime"
)

// Snapshot aggregates the metrics exposed to the debug inspector.
type Snapshot struct {
	Connections realtime.Stats `json:"connections"`
	CPUPercent  float64        `json:"cpu_percent"`
	RSSBytes    uint64         `json:"rss_bytes"`
	AllocMemMb  uint64         `json:"alloc_mem_mb"`
	NumGC       uint32         `json:"num_gc"`
	CollectedAt time.Time      `json:"collected_at"`
}

// Monitor periodically folds registry stats and process health into one
// snapshot. It runs as a supervised worker.
type Monitor struct {
	log      *slog.Logger
	registry *realtime.Registry
	interval time.Duration

	mu     sync.RWMutex
	latest Snapshot
}

func NewMonitor(log *slog.Logger, registry *realtime.Registry, interval time.Duration) *Monitor {
	return &Monitor{log: log, registry: registry, interval: interval}
}

func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			m.log.Debug("Context done, stopping monitoring")
			return nil
		case <-ticker.C:
			m.collect(proc)
		}
	}
}

func (m *Monitor) collect(proc *process.Process) {
	snapshot := Snapshot{
		Connections: m.registry.Stats(),
		CollectedAt: time.Now(),
	}

	if cpu, err := proc.CPUPercent(); err == nil {
		snapshot.CPUPercent = cpu
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		snapshot.RSSBytes = mem.RSS
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	snapshot.AllocMemMb = ms.Alloc / 1024 / 1024
	snapshot.NumGC = ms.NumGC

	m.mu.Lock()
	m.latest = snapshot
	m.mu.Unlock()
}

func (m *Monitor) Latest() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// StatsMap feeds the debug inspector's stats panel.
func (m *Monitor) StatsMap() map[string]any {
	snapshot := m.Latest()
	return map[string]any{
		"Users":        snapshot.Connections.Users,
		"Connections":  snapshot.Connections.Connections,
		"MachineRooms": snapshot.Connections.MachineRooms,
		"Roles":        snapshot.Connections.Roles,
		"CPUPercent":   snapshot.CPUPercent,
		"RSSBytes":     snapshot.RSSBytes,
		"AllocMemMb":   snapshot.AllocMemMb,
		"NumGC":        snapshot.NumGC,
		"CollectedAt":  snapshot.CollectedAt.Format(time.RFC822),
	}
}
