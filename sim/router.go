package sim

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"tinygo.org/x/linklayer"
)

var (
	ErrRouteMissing  = errors.New("sim: route not programmed")
	ErrRouteMismatch = errors.New("sim: route programmed differently")
	ErrRouteDisabled = errors.New("sim: route not enabled")
)

// Router implements linklayer.EventRouter in memory. Fire plays a hardware
// event through the enabled routes.
type Router struct {
	mu         sync.Mutex
	routes     map[linklayer.Channel]linklayer.Route
	enabled    map[linklayer.Channel]bool
	pins       map[uint8]bool
	toggles    map[uint8]int
	timeoutIRQ bool
}

var _ linklayer.EventRouter = (*Router)(nil)

// NewRouter returns a router with nothing programmed.
func NewRouter() *Router {
	return &Router{
		routes:  make(map[linklayer.Channel]linklayer.Route),
		enabled: make(map[linklayer.Channel]bool),
		pins:    make(map[uint8]bool),
		toggles: make(map[uint8]int),
	}
}

func (r *Router) Chain(ch linklayer.Channel, ev linklayer.Event, task linklayer.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[ch] = linklayer.Route{Channel: ch, Event: ev, Task: task}
}

func (r *Router) Enable(ch linklayer.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled[ch] = true
}

func (r *Router) Disable(ch linklayer.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled[ch] = false
}

func (r *Router) ConfigureTogglePin(pin uint8, initialHigh bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pins[pin] = initialHigh
}

func (r *Router) EnableTimeoutInterrupt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeoutIRQ = true
}

func (r *Router) DisableTimeoutInterrupt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeoutIRQ = false
}

// Route returns the route programmed on ch.
func (r *Router) Route(ch linklayer.Channel) (linklayer.Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[ch]
	return route, ok
}

// Enabled reports whether ch is enabled.
func (r *Router) Enabled(ch linklayer.Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled[ch]
}

// TimeoutInterrupt reports whether the timeout interrupt is enabled.
func (r *Router) TimeoutInterrupt() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timeoutIRQ
}

// PinLevel returns the current level of a debug pin.
func (r *Router) PinLevel(pin uint8) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pins[pin]
}

// Toggles returns how often a debug pin was toggled.
func (r *Router) Toggles(pin uint8) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.toggles[pin]
}

// Fire triggers ev and returns the tasks of all enabled routes listening
// for it, ordered by channel. Pin toggle tasks are applied to the pins.
func (r *Router) Fire(ev linklayer.Event) []linklayer.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	var channels []linklayer.Channel
	for ch, route := range r.routes {
		if r.enabled[ch] && route.Event == ev {
			channels = append(channels, ch)
		}
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })

	tasks := make([]linklayer.Task, 0, len(channels))
	for _, ch := range channels {
		task := r.routes[ch].Task
		if pin, ok := task.TogglePin(); ok {
			r.pins[pin] = !r.pins[pin]
			r.toggles[pin]++
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// Verify checks that every route in want is programmed and enabled.
func (r *Router) Verify(want []linklayer.Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, w := range want {
		got, ok := r.routes[w.Channel]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("channel %d: %w", w.Channel, ErrRouteMissing))
		case got != w:
			errs = append(errs, fmt.Errorf("channel %d: %s -> %s, want %s -> %s: %w",
				w.Channel, got.Event, got.Task, w.Event, w.Task, ErrRouteMismatch))
		case !r.enabled[w.Channel]:
			errs = append(errs, fmt.Errorf("channel %d: %w", w.Channel, ErrRouteDisabled))
		}
	}
	return errors.Join(errs...)
}
