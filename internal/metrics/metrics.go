// Package metrics provides write accounting for tallylog.
//
// The monitor counts successful writes and write errors per worker. The
// supervisor logs a summary through the diagnostic logger when the run
// ends. Counters here are observational only and never affect the lines
// appended to the shared log file.
package metrics

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Monitor collects per-worker write metrics
type Monitor struct {
	mu      sync.Mutex
	workers map[int]*WorkerMetrics
}

// WorkerMetrics tracks counters for one worker
type WorkerMetrics struct {
	ID        int       `json:"id"`
	Writes    int64     `json:"writes"`
	Errors    int64     `json:"errors"`
	LastWrite time.Time `json:"last_write"`
}

// NewMonitor creates an empty monitor
func NewMonitor() *Monitor {
	return &Monitor{
		workers: make(map[int]*WorkerMetrics),
	}
}

func (m *Monitor) worker(id int) *WorkerMetrics {
	wm, ok := m.workers[id]
	if !ok {
		wm = &WorkerMetrics{ID: id}
		m.workers[id] = wm
	}
	return wm
}

// RecordWrite counts one successful write for the worker
func (m *Monitor) RecordWrite(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wm := m.worker(id)
	wm.Writes++
	wm.LastWrite = time.Now()
}

// RecordError counts one failed write for the worker
func (m *Monitor) RecordError(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.worker(id).Errors++
}

// Worker returns a copy of the metrics for one worker
func (m *Monitor) Worker(id int) WorkerMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	if wm, ok := m.workers[id]; ok {
		return *wm
	}
	return WorkerMetrics{ID: id}
}

// Totals returns the write and error counts across all workers
func (m *Monitor) Totals() (writes, errors int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, wm := range m.workers {
		writes += wm.Writes
		errors += wm.Errors
	}
	return writes, errors
}

// Snapshot returns per-worker metrics ordered by worker id
func (m *Monitor) Snapshot() []WorkerMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]WorkerMetrics, 0, len(m.workers))
	for _, wm := range m.workers {
		out = append(out, *wm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LogSummary logs the end-of-run totals through the diagnostic logger
func (m *Monitor) LogSummary(logger *slog.Logger) {
	writes, errors := m.Totals()

	logger.Info("write summary",
		slog.Int64("total_writes", writes),
		slog.Int64("total_errors", errors),
		slog.Int("workers", len(m.Snapshot())),
	)

	for _, wm := range m.Snapshot() {
		logger.Debug("worker summary",
			slog.Int("worker_id", wm.ID),
			slog.Int64("writes", wm.Writes),
			slog.Int64("errors", wm.Errors),
		)
	}
}
