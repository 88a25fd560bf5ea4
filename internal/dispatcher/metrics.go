package dispatcher

import (
	"sort"
	"sync"
	"time"
)

// Metrics collects per-command request statistics.
type Metrics struct {
	mu sync.RWMutex

	commands map[Kind]*CommandMetrics

	totalRequests uint64
	totalErrors   uint64
	totalPanics   uint64
	totalDuration time.Duration
}

// CommandMetrics holds the counters for one command kind.
type CommandMetrics struct {
	Command       string        `json:"command"`
	Count         uint64        `json:"count"`
	Errors        uint64        `json:"errors"`
	TotalDuration time.Duration `json:"total_ns"`
	MinDuration   time.Duration `json:"min_ns"`
	MaxDuration   time.Duration `json:"max_ns"`
	LastError     string        `json:"last_error,omitempty"`
	LastRequest   time.Time     `json:"last_request"`
}

// AverageDuration returns the mean request duration.
func (cm *CommandMetrics) AverageDuration() time.Duration {
	if cm.Count == 0 {
		return 0
	}
	return cm.TotalDuration / time.Duration(cm.Count)
}

// ErrorRate returns the error rate as a percentage.
func (cm *CommandMetrics) ErrorRate() float64 {
	if cm.Count == 0 {
		return 0
	}
	return float64(cm.Errors) / float64(cm.Count) * 100
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{commands: make(map[Kind]*CommandMetrics)}
}

// Record adds one completed request. errKind is empty on success.
func (m *Metrics) Record(kind Kind, duration time.Duration, errKind string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalRequests++
	m.totalDuration += duration
	if errKind != "" {
		m.totalErrors++
	}

	cm := m.commands[kind]
	if cm == nil {
		cm = &CommandMetrics{
			Command:     kind.String(),
			MinDuration: duration,
			MaxDuration: duration,
		}
		m.commands[kind] = cm
	}

	cm.Count++
	cm.TotalDuration += duration
	cm.LastRequest = time.Now()
	if duration < cm.MinDuration {
		cm.MinDuration = duration
	}
	if duration > cm.MaxDuration {
		cm.MaxDuration = duration
	}
	if errKind != "" {
		cm.Errors++
		cm.LastError = errKind
	}
}

// RecordPanic counts a recovered handler panic.
func (m *Metrics) RecordPanic() {
	m.mu.Lock()
	m.totalPanics++
	m.mu.Unlock()
}

// Command returns a copy of the counters for kind, or nil if it was never seen.
func (m *Metrics) Command(kind Kind) *CommandMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cm := m.commands[kind]
	if cm == nil {
		return nil
	}
	c := *cm
	return &c
}

// TopCommands returns the n most requested commands.
func (m *Metrics) TopCommands(n int) []CommandMetrics {
	all := m.Snapshot().Commands
	sort.SliceStable(all, func(i, j int) bool { return all[i].Count > all[j].Count })
	if n < len(all) {
		all = all[:n]
	}
	return all
}

// Reset clears all counters.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commands = make(map[Kind]*CommandMetrics)
	m.totalRequests = 0
	m.totalErrors = 0
	m.totalPanics = 0
	m.totalDuration = 0
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Requests        uint64           `json:"requests"`
	Errors          uint64           `json:"errors"`
	Panics          uint64           `json:"panics"`
	AverageDuration time.Duration    `json:"avg_ns"`
	Commands        []CommandMetrics `json:"commands"`
}

// Snapshot returns the counters with commands ordered by kind.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := MetricsSnapshot{
		Requests: m.totalRequests,
		Errors:   m.totalErrors,
		Panics:   m.totalPanics,
		Commands: make([]CommandMetrics, 0, len(m.commands)),
	}
	if m.totalRequests > 0 {
		s.AverageDuration = m.totalDuration / time.Duration(m.totalRequests)
	}

	kinds := make([]Kind, 0, len(m.commands))
	for k := range m.commands {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		s.Commands = append(s.Commands, *m.commands[k])
	}
	return s
}
