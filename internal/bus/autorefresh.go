package bus

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultMaxFailures bounds consecutive refresh failures before the poller
// stops itself instead of retrying forever.
const DefaultMaxFailures = 5

// RefreshFunc performs one refresh round (typically forcing a re-fetch of
// the collections an active role depends on).
type RefreshFunc func(ctx context.Context) error

// AutoRefresh is the polling fallback: it invokes a refresh callback on a
// fixed interval, counts consecutive failures, and auto-stops after
// MaxFailures. Pause suspends ticks (hidden view); Resume runs an immediate
// refresh and resumes the interval. Stop guarantees no further callback
// invocations after it returns.
type AutoRefresh struct {
	Interval    time.Duration
	MaxFailures int

	refresh RefreshFunc

	mu       sync.Mutex
	running  bool
	paused   bool
	failures int
	kick     chan struct{}
	stop     chan struct{}
	done     chan struct{}
}

// NewAutoRefresh builds a stopped poller. MaxFailures <= 0 uses
// DefaultMaxFailures.
func NewAutoRefresh(interval time.Duration, refresh RefreshFunc) *AutoRefresh {
	return &AutoRefresh{
		Interval:    interval,
		MaxFailures: DefaultMaxFailures,
		refresh:     refresh,
	}
}

// Start launches the polling loop. Starting a running poller is a no-op.
func (a *AutoRefresh) Start() {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.paused = false
	a.failures = 0
	a.kick = make(chan struct{}, 1)
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	stop, done, kick := a.stop, a.done, a.kick
	a.mu.Unlock()

	go a.loop(stop, done, kick)
}

// Stop halts the loop and waits until it has exited, so no callback
// invocation can happen after Stop returns. Stopping a stopped poller is a
// no-op.
func (a *AutoRefresh) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	stop, done := a.stop, a.done
	a.mu.Unlock()

	close(stop)
	<-done
}

// Restart is Stop followed by Start (resets the failure counter).
func (a *AutoRefresh) Restart() {
	a.Stop()
	a.Start()
}

// Pause suspends refreshes without stopping the loop.
func (a *AutoRefresh) Pause() {
	a.mu.Lock()
	a.paused = true
	a.mu.Unlock()
}

// Resume lifts a pause and triggers an immediate refresh so a view coming
// back into focus catches up without waiting a full interval.
func (a *AutoRefresh) Resume() {
	a.mu.Lock()
	wasPaused := a.paused
	a.paused = false
	running, kick := a.running, a.kick
	a.mu.Unlock()

	if running && wasPaused {
		select {
		case kick <- struct{}{}:
		default:
		}
	}
}

// Running reports whether the loop is active (false after auto-stop).
func (a *AutoRefresh) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

func (a *AutoRefresh) loop(stop, done chan struct{}, kick chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(a.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-kick:
			if a.runOnce() {
				return
			}
		case <-ticker.C:
			a.mu.Lock()
			paused := a.paused
			a.mu.Unlock()
			if paused {
				continue
			}
			if a.runOnce() {
				return
			}
		}
	}
}

// runOnce performs one refresh; returns true when the loop must exit
// (failure budget exhausted).
func (a *AutoRefresh) runOnce() bool {
	max := a.MaxFailures
	if max <= 0 {
		max = DefaultMaxFailures
	}

	err := a.refresh(context.Background())

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.failures++
		log.Warn().Err(err).Int("consecutive_failures", a.failures).Msg("auto refresh failed")
		if a.failures >= max {
			log.Error().Int("failures", a.failures).Msg("auto refresh giving up")
			a.running = false
			return true
		}
		return false
	}
	a.failures = 0
	return false
}
