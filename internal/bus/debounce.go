package bus

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// DefaultDebounceWindow coalesces bursty publishes of the same event.
const DefaultDebounceWindow = time.Second

// Debounced coalesces rapid repeated publishes of the same event name into a
// single trailing publish per window. The last payload of a burst wins.
// Coalescing is per (name, source); since one Bus carries one source tag the
// key here is the event name.
type Debounced struct {
	bus    *Bus
	window time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]json.RawMessage
}

// NewDebounced wraps bus with a coalescing window. window <= 0 uses
// DefaultDebounceWindow.
func NewDebounced(b *Bus, window time.Duration) *Debounced {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debounced{
		bus:     b,
		window:  window,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]json.RawMessage),
	}
}

// Publish schedules a trailing publish of the event. Repeated calls within
// the window replace the pending payload and restart the timer.
func (d *Debounced) Publish(name string, payload json.RawMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[name] = payload
	if t, ok := d.timers[name]; ok {
		t.Reset(d.window)
		return
	}
	d.timers[name] = time.AfterFunc(d.window, func() {
		d.fire(name)
	})
}

func (d *Debounced) fire(name string) {
	d.mu.Lock()
	payload := d.pending[name]
	delete(d.pending, name)
	delete(d.timers, name)
	d.mu.Unlock()

	d.bus.Publish(context.Background(), name, payload)
}

// Flush publishes any pending events immediately and clears all timers.
func (d *Debounced) Flush() {
	d.mu.Lock()
	names := make([]string, 0, len(d.timers))
	for name, t := range d.timers {
		t.Stop()
		names = append(names, name)
	}
	d.mu.Unlock()

	for _, name := range names {
		d.fire(name)
	}
}
