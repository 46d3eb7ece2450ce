// Package supervisor owns the shared sink and run flag, spawns the
// workers, and coordinates graceful shutdown.
//
// The run flag is a single atomic boolean: it is stored false exactly
// once, either by the interrupt watcher when SIGINT/SIGTERM arrives or by
// Stop, and read by every worker plus the supervisor's poll loop. The
// watcher does nothing besides the store; all logging, joining, and file
// closing happens on the supervisor's own goroutine after it observes the
// flag.
package supervisor

import (
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/tallylog/tallylog/internal/config"
	"github.com/tallylog/tallylog/internal/logging"
	"github.com/tallylog/tallylog/internal/metrics"
	"github.com/tallylog/tallylog/internal/sink"
	"github.com/tallylog/tallylog/internal/worker"
)

// Supervisor creates the workers, waits for shutdown, joins them, and
// closes the sink exactly once.
type Supervisor struct {
	cfg     *config.Config
	sink    *sink.Sink
	logger  *logging.Logger
	monitor *metrics.Monitor
	rng     *rand.Rand

	running     atomic.Bool
	sigCh       chan os.Signal
	watcherStop chan struct{}
	stopOnce    sync.Once
}

// New validates the configuration, opens the shared sink, and registers
// the interrupt handler. Any failure is fatal: nothing is retried and no
// workers are started.
func New(cfg *config.Config, logger *logging.Logger) (*Supervisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, err := sink.Open(cfg.Writer.Path)
	if err != nil {
		return nil, err
	}

	sup := &Supervisor{
		cfg:         cfg,
		sink:        s,
		logger:      logger,
		monitor:     metrics.NewMonitor(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		sigCh:       make(chan os.Signal, 1),
		watcherStop: make(chan struct{}),
	}
	sup.running.Store(true)

	signal.Notify(sup.sigCh, os.Interrupt, syscall.SIGTERM)
	go sup.watchInterrupt()

	return sup, nil
}

// watchInterrupt clears the run flag when an interrupt arrives. The flag
// store is its only action; everything else happens on the goroutine
// running Run once it observes the flag.
func (s *Supervisor) watchInterrupt() {
	select {
	case <-s.sigCh:
		s.running.Store(false)
	case <-s.watcherStop:
	}
}

// Run starts the configured number of workers and blocks until the run
// flag clears, then joins every worker and closes the sink. Workers are
// always joined and the sink always closed, whichever way Run exits.
func (s *Supervisor) Run() error {
	defer s.teardown()

	s.logger.Info("starting workers",
		"count", s.cfg.Writer.Workers,
		"path", s.sink.Path(),
		"interval", s.cfg.Writer.Interval,
	)

	var wg sync.WaitGroup
	for id := 0; id < s.cfg.Writer.Workers; id++ {
		jitter := worker.StartupJitter(s.rng, id)
		w := worker.New(id, jitter, s.cfg.Writer.Interval, s.sink, &s.running, s.logger.WorkerLogger(id), s.monitor)

		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run()
		}()
		s.logger.Debug("worker started", "worker_id", id, "jitter", jitter)
	}

	// Join on every exit path so no worker goroutine is orphaned.
	defer func() {
		s.running.Store(false)
		wg.Wait()
	}()

	// Block until the run flag clears. Shutdown latency is bounded by
	// one poll interval plus the longest in-flight worker sleep.
	for s.running.Load() {
		time.Sleep(s.cfg.Writer.PollInterval)
	}

	s.logger.Info("shutdown requested, joining workers")
	wg.Wait()

	s.monitor.LogSummary(s.logger.Logger)
	s.logger.Info("all workers terminated")

	return s.sink.Close()
}

// Stop clears the run flag. Programmatic equivalent of an interrupt,
// used by tests and by callers embedding the supervisor.
func (s *Supervisor) Stop() {
	s.running.Store(false)
}

// Running reports whether the run flag is still set.
func (s *Supervisor) Running() bool {
	return s.running.Load()
}

// Monitor exposes the write metrics collected during the run.
func (s *Supervisor) Monitor() *metrics.Monitor {
	return s.monitor
}

// teardown unregisters the interrupt handler, stops the watcher, and
// closes the sink. Idempotent; runs on every Run exit path.
func (s *Supervisor) teardown() {
	s.stopOnce.Do(func() {
		signal.Stop(s.sigCh)
		close(s.watcherStop)
	})
	_ = s.sink.Close()
}
