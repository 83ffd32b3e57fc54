package lock

import (
	"log/slog"
	"time"
)

// Sweeper periodically reclaims expired leases. Correctness never depends on
// it running; lazy purge on access already hides dead leases.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	logger   *slog.Logger
	done     chan struct{}
	stopped  chan struct{}
}

// NewSweeper creates a sweeper over the given manager.
func NewSweeper(manager *Manager, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		manager:  manager,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start runs the sweep loop in a new goroutine.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("lock sweeper started", "interval", s.interval)
		for {
			select {
			case <-ticker.C:
				s.manager.Sweep()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.done)
	<-s.stopped
	s.logger.Info("lock sweeper stopped")
}
