// Package sim provides software models of the radio and the event-routing
// fabric so the scanner can run hosted, in tests and in the llscan tool.
package sim

import (
	"context"
	"sync"

	"tinygo.org/x/linklayer"
)

// OpKind is the kind of a radio operation.
type OpKind uint8

const (
	OpReceive OpKind = iota
	OpTransmit
	OpAbort
)

func (k OpKind) String() string {
	switch k {
	case OpReceive:
		return "receive"
	case OpTransmit:
		return "transmit"
	case OpAbort:
		return "abort"
	}
	return "unknown"
}

// Op is a record of one call into the radio.
type Op struct {
	Kind    OpKind
	Channel uint8
	Restart bool
	// Data is a copy of the transmitted PDU.
	Data []byte
}

type operation struct {
	kind      OpKind
	buf       []byte
	restart   bool
	completed bool
}

// Radio implements linklayer.Radio. It records every call and holds the
// armed operation until a Session (or a test) completes it.
//
// A receive that completes while the scanner arms nothing new stays armed:
// the radio keeps listening. Abort cancels the armed operation unless it is
// a receive whose frame is being handled right now.
type Radio struct {
	router *Router

	mu      sync.Mutex
	channel uint8
	inits   int
	aborts  int
	armed   *operation
	ops     []Op
	armedCh chan struct{}
}

var _ linklayer.Radio = (*Radio)(nil)

// NewRadio returns an idle radio. When router is not nil, Transmit programs
// the chained start on it like a hardware driver does.
func NewRadio(router *Router) *Radio {
	return &Radio{
		router:  router,
		armedCh: make(chan struct{}, 1),
	}
}

func (r *Radio) Init(channel uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channel = channel
	r.inits++
}

func (r *Radio) Receive(buf []byte, restartOnCRCFail bool) {
	r.mu.Lock()
	r.arm(&operation{kind: OpReceive, buf: buf, restart: restartOnCRCFail})
	r.ops = append(r.ops, Op{Kind: OpReceive, Channel: r.channel, Restart: restartOnCRCFail})
	r.mu.Unlock()
}

func (r *Radio) Transmit(buf []byte) {
	if r.router != nil {
		r.router.Chain(linklayer.ChannelStart, linklayer.EventTimerCompare, linklayer.TaskRadioStart)
		r.router.Enable(linklayer.ChannelStart)
	}
	r.mu.Lock()
	r.arm(&operation{kind: OpTransmit, buf: buf})
	r.ops = append(r.ops, Op{Kind: OpTransmit, Channel: r.channel, Data: append([]byte(nil), buf...)})
	r.mu.Unlock()
}

func (r *Radio) Abort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aborts++
	r.ops = append(r.ops, Op{Kind: OpAbort, Channel: r.channel})
	if r.armed != nil && !r.armed.completed {
		r.armed = nil
	}
}

func (r *Radio) arm(op *operation) {
	r.armed = op
	select {
	case r.armedCh <- struct{}{}:
	default:
	}
}

// Ops returns the calls made so far, oldest first.
func (r *Radio) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// LastOp returns the most recent call, if any.
func (r *Radio) LastOp() (Op, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ops) == 0 {
		return Op{}, false
	}
	return r.ops[len(r.ops)-1], true
}

// Aborts returns how often Abort was called.
func (r *Radio) Aborts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aborts
}

// Channel returns the channel given to the last Init.
func (r *Radio) Channel() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channel
}

// Armed reports whether an operation is in flight, and its kind. A
// receive stays armed after its frame has been delivered.
func (r *Radio) Armed() (OpKind, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.armed == nil || (r.armed.completed && r.armed.kind == OpTransmit) {
		return 0, false
	}
	return r.armed.kind, true
}

// Inject delivers pdu into the buffer of the armed receive and marks the
// receive as ended, as the radio does when a frame arrives. A receive whose
// previous frame has already been handled is still listening. Inject reports
// false if no receive is armed.
func (r *Radio) Inject(pdu []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.armed == nil || r.armed.kind != OpReceive {
		return false
	}
	r.armed.fill(pdu)
	r.armed.completed = true
	return true
}

func (op *operation) fill(pdu []byte) {
	n := copy(op.buf, pdu)
	clear(op.buf[n:])
}

// wait blocks until an operation is in flight.
func (r *Radio) wait(ctx context.Context) (*operation, error) {
	for {
		r.mu.Lock()
		op := r.armed
		r.mu.Unlock()
		if op != nil && !op.completed {
			return op, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-r.armedCh:
		}
	}
}

// finish ends op, writing pdu first for a receive. It reports false if op
// was cancelled or replaced in the meantime.
func (r *Radio) finish(op *operation, pdu []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.armed != op {
		return false
	}
	if op.kind == OpReceive {
		op.fill(pdu)
	}
	op.completed = true
	return true
}

// settle keeps a completed receive listening if nothing else was armed
// while its completion was handled.
func (r *Radio) settle(op *operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.armed == op && op.kind == OpReceive {
		op.completed = false
	}
}
