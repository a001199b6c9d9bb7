package linklayer

import (
	"context"
	"errors"
)

// NotificationKind tells which scanner entry point a Notification is for.
type NotificationKind uint8

const (
	RadioComplete NotificationKind = iota
	TimerDeadline
)

// Notification is a hardware notification queued for the scanner.
type Notification struct {
	Kind     NotificationKind
	CRCValid bool
}

var ErrDispatcherClosed = errors.New("linklayer: dispatcher stopped")

type request struct {
	run  func(*Scanner) error
	done chan error
}

// Dispatcher serializes access to a Scanner. Notifications and commands from
// any goroutine are queued and handled one at a time by Run, so the scanner
// never sees two entry points at once.
type Dispatcher struct {
	scanner  *Scanner
	requests chan request
	stopped  chan struct{}
}

// NewDispatcher returns a dispatcher for s. Nothing is handled until Run is
// called.
func NewDispatcher(s *Scanner) *Dispatcher {
	return &Dispatcher{
		scanner:  s,
		requests: make(chan request),
		stopped:  make(chan struct{}),
	}
}

// Run handles queued requests until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.stopped)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-d.requests:
			req.done <- req.run(d.scanner)
		}
	}
}

// Do runs fn on the dispatcher and returns its result.
func (d *Dispatcher) Do(ctx context.Context, fn func(*Scanner) error) error {
	req := request{run: fn, done: make(chan error, 1)}
	select {
	case d.requests <- req:
	case <-d.stopped:
		return ErrDispatcherClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Deliver hands n to the scanner and waits until it has been handled.
func (d *Dispatcher) Deliver(ctx context.Context, n Notification) error {
	return d.Do(ctx, func(s *Scanner) error {
		switch n.Kind {
		case RadioComplete:
			s.OnRadioComplete(n.CRCValid)
		case TimerDeadline:
			s.OnTimerDeadline()
		}
		return nil
	})
}
