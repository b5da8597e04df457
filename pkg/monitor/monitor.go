// Package monitor collects operational counters and a bounded in-memory
// event log for reconciliation runs.
package monitor

import (
	"fmt"
	"sync"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/reconhq/mailrecon/pkg/conflict"
	"github.com/reconhq/mailrecon/pkg/logging"
)

// DefaultLogCapacity bounds the in-memory event log. Once full, the
// oldest entries are evicted first.
const DefaultLogCapacity = 1024

// Metrics is a snapshot of the monitor's counters.
type Metrics struct {
	SyncCount     int64 `yaml:"sync_count" json:"sync_count"`
	ConflictCount int64 `yaml:"conflict_count" json:"conflict_count"`
	ErrorCount    int64 `yaml:"error_count" json:"error_count"`
}

// LogEntry is one recorded event.
type LogEntry struct {
	Timestamp utc.Time       `yaml:"timestamp" json:"timestamp"`
	Level     string         `yaml:"level" json:"level"`
	Event     string         `yaml:"event" json:"event"`
	Details   map[string]any `yaml:"details,omitempty" json:"details,omitempty"`
}

// Monitor tracks sync activity. Safe for concurrent use.
type Monitor struct {
	mu       sync.Mutex
	metrics  Metrics
	log      []LogEntry
	start    int
	capacity int
	logger   zerolog.Logger
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogCapacity overrides the event log capacity. Values below one
// are ignored.
func WithLogCapacity(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// WithLogger routes the monitor's own structured output.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Monitor) { m.logger = logger }
}

// New creates a Monitor with the default log capacity.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		capacity: DefaultLogCapacity,
		logger:   *logging.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TrackSync records a completed sync event.
func (m *Monitor) TrackSync(event string, details map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.SyncCount++
	m.append(LogEntry{
		Timestamp: utc.Now(),
		Level:     "info",
		Event:     event,
		Details:   details,
	})
	m.logger.Info().Str("event", event).Msg("sync tracked")
}

// TrackConflict records a detected conflict.
func (m *Monitor) TrackConflict(c conflict.Conflict) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.ConflictCount++
	m.append(LogEntry{
		Timestamp: utc.Now(),
		Level:     "warn",
		Event:     "conflict_detected",
		Details: map[string]any{
			"field": c.Change.Field,
			"type":  string(c.Type),
		},
	})
	m.logger.Warn().
		Str("field", c.Change.Field).
		Str("type", string(c.Type)).
		Msg("conflict tracked")
}

// TrackError records a failure.
func (m *Monitor) TrackError(err error) {
	if err == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.ErrorCount++
	m.append(LogEntry{
		Timestamp: utc.Now(),
		Level:     "error",
		Event:     "error",
		Details:   map[string]any{"error": err.Error()},
	})
	m.logger.Error().Err(err).Msg("error tracked")
}

// Metrics returns a snapshot of the counters.
func (m *Monitor) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}

// Logs returns the recorded entries, oldest first.
func (m *Monitor) Logs() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]LogEntry, 0, len(m.log))
	for i := 0; i < len(m.log); i++ {
		out = append(out, m.log[(m.start+i)%len(m.log)])
	}
	return out
}

// Summary renders a one-line report of the counters.
func (m *Monitor) Summary() string {
	metrics := m.Metrics()
	return fmt.Sprintf("syncs=%d conflicts=%d errors=%d",
		metrics.SyncCount, metrics.ConflictCount, metrics.ErrorCount)
}

// append adds an entry to the ring, evicting the oldest when full.
// Callers hold m.mu.
func (m *Monitor) append(entry LogEntry) {
	if len(m.log) < m.capacity {
		m.log = append(m.log, entry)
		return
	}
	m.log[m.start] = entry
	m.start = (m.start + 1) % m.capacity
}
