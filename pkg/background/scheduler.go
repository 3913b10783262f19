package background

import (
	"sync"
	"time"
)

// Scheduler drives periodic background cycling. Start always stops any
// running ticker first, so at most one cycling loop exists regardless of
// how config changes interleave.
type Scheduler struct {
	mu       sync.Mutex
	stopChan chan struct{}
	interval time.Duration
	fire     func()
}

// NewScheduler creates a stopped scheduler that calls fire on every tick.
func NewScheduler(fire func()) *Scheduler {
	return &Scheduler{fire: fire}
}

// Start begins ticking at the given interval, replacing any running loop.
// Non-positive intervals stop the scheduler instead.
func (s *Scheduler) Start(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	if interval <= 0 {
		return
	}

	s.interval = interval
	stop := make(chan struct{})
	s.stopChan = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.fire()
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts cycling. Safe to call when already stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.stopChan != nil {
		close(s.stopChan)
		s.stopChan = nil
	}
	s.interval = 0
}

// Running reports whether a cycling loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopChan != nil
}

// Interval returns the active tick interval, or zero when stopped.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}
