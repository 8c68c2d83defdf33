package scan

import (
	"sync"
	"time"

	"trustline-monitor/internal/infra/log"

	"go.uber.org/zap"
)

// DefaultCooldown is the delay between a completed scan and the next
// live-update rescan.
const DefaultCooldown = 10 * time.Second

// Scheduler arms at most one pending rescan timer. It is re-evaluated by the
// controller whenever the enabled flag, the scanning state, or the holder
// count changes; any previously armed timer is cleared before the conditions
// are reconsidered.
type Scheduler struct {
	mu       sync.Mutex
	enabled  bool
	cooldown time.Duration
	timer    *time.Timer
	start    func()
}

func NewScheduler(cooldown time.Duration, start func()) *Scheduler {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Scheduler{cooldown: cooldown, start: start}
}

func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetEnabled flips the live-update flag and clears any pending timer when
// disabling. The caller re-evaluates afterwards.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
	if !enabled {
		s.clearTimerLocked()
	}
}

// Disable is the controller's kill switch on abort/error, so a failed scan
// never restarts itself.
func (s *Scheduler) Disable() {
	s.SetEnabled(false)
}

// Reevaluate reconsiders whether a rescan should be pending given the
// current scan state. Complete is checked before the no-data case so a scan
// that legitimately finished empty still waits out the cooldown instead of
// rescanning hot.
func (s *Scheduler) Reevaluate(scanning, complete bool, holderCount int) {
	s.mu.Lock()
	s.clearTimerLocked()

	if !s.enabled || scanning {
		s.mu.Unlock()
		return
	}

	if complete {
		log.LogDebug("arming live-update timer", zap.Duration("cooldown", s.cooldown))
		s.timer = time.AfterFunc(s.cooldown, s.fire)
		s.mu.Unlock()
		return
	}

	if holderCount == 0 {
		s.mu.Unlock()
		// No data yet: start immediately rather than waiting a cooldown.
		s.start()
		return
	}

	s.mu.Unlock()
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	s.timer = nil
	enabled := s.enabled
	s.mu.Unlock()
	if enabled {
		s.start()
	}
}

func (s *Scheduler) clearTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
