package memory

import (
	"context"
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/metrics"
)

// Config controls when the monitor pauses indexing.
type Config struct {
	// LimitBytes is the soft limit; 0 falls back to GOMEMLIMIT.
	LimitBytes int64
	// PauseRatio of the limit at which waiters block.
	PauseRatio float64
	// ResumeRatio of the limit below which waiters are released.
	ResumeRatio   float64
	CheckInterval time.Duration
}

// DefaultConfig returns the monitor defaults.
func DefaultConfig() Config {
	return Config{
		PauseRatio:    0.85,
		ResumeRatio:   0.7,
		CheckInterval: 5 * time.Second,
	}
}

// Monitor samples heap usage and holds back indexing while it is above
// the pause threshold.
type Monitor struct {
	config    Config
	limit     int64
	readAlloc func() uint64

	mu      sync.Mutex
	alloc   uint64
	paused  bool
	resumed chan struct{}

	stopOnce sync.Once
	stopChan chan struct{}
}

// NewMonitor creates a monitor. Without a limit it never pauses.
func NewMonitor(config Config) *Monitor {
	limit := config.LimitBytes
	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < math.MaxInt64 {
			limit = goMemLimit
			logging.Info("Memory monitor using GOMEMLIMIT: %s", formatBytes(limit))
		}
	}
	if limit == 0 {
		logging.Debug("Memory monitor: no memory limit configured, backpressure disabled")
	}

	return &Monitor{
		config:    config,
		limit:     limit,
		readAlloc: heapAlloc,
		resumed:   make(chan struct{}),
		stopChan:  make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start begins sampling. It is a no-op without a limit.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go m.loop()
}

// Stop ends sampling and releases any waiters.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.check()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) check() {
	if m.limit == 0 {
		return
	}

	alloc := m.readAlloc()
	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.alloc = alloc

	switch {
	case !m.paused && usage >= m.config.PauseRatio:
		logging.Warn("Memory critical (%.1f%% of limit), pausing indexing", usage*100)
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryGCPauses.Inc()
		go runtime.GC()
	case m.paused && usage < m.config.ResumeRatio:
		logging.Info("Memory recovered (%.1f%% of limit), resuming indexing", usage*100)
		m.paused = false
		metrics.MemoryPaused.Set(0)
		close(m.resumed)
		m.resumed = make(chan struct{})
	}
}

// Wait blocks while the monitor is paused. It returns ctx.Err() if ctx
// ends first and nil once memory recovers or the monitor stops. A nil
// monitor never blocks.
func (m *Monitor) Wait(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	if !m.paused {
		m.mu.Unlock()
		return nil
	}
	resumed := m.resumed
	m.mu.Unlock()

	select {
	case <-resumed:
		return nil
	case <-m.stopChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Paused reports whether waiters are currently held.
func (m *Monitor) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Usage returns the last sampled allocation, the limit and their ratio.
func (m *Monitor) Usage() (alloc uint64, limit int64, ratio float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.limit > 0 {
		ratio = float64(m.alloc) / float64(m.limit)
	}
	return m.alloc, m.limit, ratio
}
