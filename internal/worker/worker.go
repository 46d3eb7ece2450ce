// Package worker implements the periodic log-writing worker.
//
// Each worker owns an integer id and a monotonic counter, borrows the
// shared sink, and loops: sleep, append one counter line, repeat. The
// loop runs while the shared run flag is true and finishes with a final
// shutdown line, so a worker always completes its in-flight write before
// terminating.
package worker

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/tallylog/tallylog/internal/logging"
	"github.com/tallylog/tallylog/internal/metrics"
	"github.com/tallylog/tallylog/internal/sink"
)

const (
	// timestampLayout is the wall-clock format of every counter line.
	timestampLayout = "2006-01-02 15:04:05"

	// sleepJitterMs is the half-width of the uniform jitter applied to
	// each sleep between writes.
	sleepJitterMs = 25

	// minSleep keeps a worker from busy-looping when the configured
	// interval is zero and the jitter draw is maximally negative.
	minSleep = 10 * time.Millisecond
)

// StartupJitter computes the one-time start delay for a worker: a random
// component up to one second plus a deterministic per-id offset.
func StartupJitter(rng *rand.Rand, id int) time.Duration {
	ms := rng.Intn(1001) + (id*37)%200
	return time.Duration(ms) * time.Millisecond
}

// Worker appends timestamped counter lines to the shared sink.
type Worker struct {
	id       int
	jitter   time.Duration
	interval time.Duration
	counter  int
	sink     *sink.Sink
	running  *atomic.Bool
	rng      *rand.Rand
	logger   *logging.Logger
	monitor  *metrics.Monitor
}

// New creates a worker. The sink and run flag are borrowed: the worker
// never closes the sink and never writes the flag.
func New(id int, jitter, interval time.Duration, s *sink.Sink, running *atomic.Bool, logger *logging.Logger, monitor *metrics.Monitor) *Worker {
	return &Worker{
		id:       id,
		jitter:   jitter,
		interval: interval,
		sink:     s,
		running:  running,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano() + int64(id))),
		logger:   logger,
		monitor:  monitor,
	}
}

// ID returns the worker's id.
func (w *Worker) ID() int {
	return w.id
}

// Counter returns the number of counter lines written so far.
func (w *Worker) Counter() int {
	return w.counter
}

// Run executes the worker loop until the run flag is observed false,
// then appends the shutdown line and returns. Intended to be spawned as
// a goroutine and joined by the supervisor.
//
// A failed write terminates this worker: the error is counted and logged
// to diagnostics, nothing is retried, and no other worker is affected.
func (w *Worker) Run() {
	// Stagger the first write across workers.
	time.Sleep(w.jitter)

	for w.running.Load() {
		ts := time.Now().Format(timestampLayout)
		line := fmt.Sprintf("Thread %d: [%s] Has counter %d", w.id, ts, w.counter)

		if err := w.sink.WriteLine(line); err != nil {
			w.monitor.RecordError(w.id)
			w.logger.LogError("write failed, stopping worker", err)
			return
		}
		w.counter++
		w.monitor.RecordWrite(w.id)

		time.Sleep(w.nextSleep())
	}

	if err := w.sink.WriteLine(fmt.Sprintf("Thread %d: Shutting down gracefully.", w.id)); err != nil {
		w.monitor.RecordError(w.id)
		w.logger.LogError("shutdown line write failed", err)
	}
}

// nextSleep returns the configured interval plus uniform jitter in
// [-25ms, +25ms], clamped to minSleep.
func (w *Worker) nextSleep() time.Duration {
	jitter := time.Duration(w.rng.Intn(2*sleepJitterMs+1)-sleepJitterMs) * time.Millisecond
	d := w.interval + jitter
	if d < minSleep {
		d = minSleep
	}
	return d
}
