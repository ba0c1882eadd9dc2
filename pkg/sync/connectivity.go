package sync

import (
	"context"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/stikie/stikie/pkg/core"
)

// Prober checks whether the remote store is reachable.
type Prober interface {
	Ping(ctx context.Context) error
}

// DefaultProbeInterval is how often the monitor probes the remote.
const DefaultProbeInterval = 30 * time.Second

// Monitor polls a Prober and reports online/offline transitions. It
// implements core.Connectivity.
type Monitor struct {
	mu      stdsync.Mutex
	online  bool
	prober  Prober
	logger  *slog.Logger
	every   time.Duration
	changes chan bool
}

var _ core.Connectivity = (*Monitor)(nil)

// NewMonitor returns a monitor that assumes it is online until the
// first probe says otherwise.
func NewMonitor(prober Prober, every time.Duration, logger *slog.Logger) *Monitor {
	if every <= 0 {
		every = DefaultProbeInterval
	}
	return &Monitor{
		online:  true,
		prober:  prober,
		logger:  logger,
		every:   every,
		changes: make(chan bool, 4),
	}
}

// Online reports the last observed state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Changes returns the transition channel. Only state changes are sent.
func (m *Monitor) Changes() <-chan bool {
	return m.changes
}

// Run probes until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.every)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := m.prober.Ping(probeCtx)
	online := err == nil

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	m.mu.Unlock()

	if !changed {
		return
	}
	if m.logger != nil {
		m.logger.Info("connectivity changed", "online", online)
	}
	select {
	case m.changes <- online:
	default:
		// A slow consumer misses intermediate flips, never the latest
		// state: Online() always reflects it.
	}
}
