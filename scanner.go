package linklayer

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Phase is the state of the scanner.
type Phase uint8

const (
	PhaseUninitialized Phase = iota
	PhaseInitialized
	PhaseIdle
	PhaseListeningForAdvertisement
	PhaseAwaitingScanResponseTransmit
	PhaseListeningForScanResponse
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitialized:
		return "initialized"
	case PhaseIdle:
		return "idle"
	case PhaseListeningForAdvertisement:
		return "listening-for-advertisement"
	case PhaseAwaitingScanResponseTransmit:
		return "awaiting-scan-response-transmit"
	case PhaseListeningForScanResponse:
		return "listening-for-scan-response"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// Active reports whether the radio is in use in this phase.
func (p Phase) Active() bool {
	switch p {
	case PhaseListeningForAdvertisement, PhaseAwaitingScanResponseTransmit, PhaseListeningForScanResponse:
		return true
	}
	return false
}

// DefaultChannel is the advertising channel the scanner listens on unless
// configured otherwise.
const DefaultChannel = 39

// Scanner is the scanner state machine.
//
// A Scanner is not safe for concurrent use. Commands and the two hardware
// notifications (OnRadioComplete, OnTimerDeadline) must come from a single
// thread of control and must not be reentered; the Dispatcher provides that
// when events originate on other goroutines.
type Scanner struct {
	radio  Radio
	timing *TimingCoordinator
	logger logrus.FieldLogger

	channel   uint8
	initiator MAC
	debugPins bool

	params ScanParameters
	phase  Phase

	rx [RxBufferSize]byte
	tx scanRequest

	reportHandler func(Report)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger. The default is a new logrus logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// WithChannel sets the advertising channel to listen on.
func WithChannel(channel uint8) Option {
	return func(s *Scanner) { s.channel = channel }
}

// WithInitiatorAddress sets the scanner address sent in scan requests.
func WithInitiatorAddress(addr MAC) Option {
	return func(s *Scanner) { s.initiator = addr }
}

// WithDebugPins enables the pin toggles on radio and timer events.
func WithDebugPins(enabled bool) Option {
	return func(s *Scanner) { s.debugPins = enabled }
}

// NewScanner returns an uninitialized scanner using the given radio and
// event router.
func NewScanner(radio Radio, router EventRouter, opts ...Option) *Scanner {
	s := &Scanner{
		radio:     radio,
		channel:   DefaultChannel,
		initiator: DefaultInitiatorAddress,
		phase:     PhaseUninitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logrus.New()
	}
	s.timing = NewTimingCoordinator(router, s.debugPins)
	s.tx = newScanRequest(s.initiator)
	return s
}

// SetReportHandler sets a function to be called for every advertising PDU
// and scan response received with a valid CRC. It runs in the context of
// OnRadioComplete and must return quickly.
func (s *Scanner) SetReportHandler(handler func(Report)) {
	s.reportHandler = handler
}

// Phase returns the current phase.
func (s *Scanner) Phase() Phase {
	return s.phase
}

// Parameters returns the stored scan parameters.
func (s *Scanner) Parameters() ScanParameters {
	return s.params
}

// Timing returns the coordinator that programs the routing fabric.
func (s *Scanner) Timing() *TimingCoordinator {
	return s.timing
}

func (s *Scanner) enter(next Phase) {
	if next != s.phase {
		s.logger.WithFields(logrus.Fields{
			"from": s.phase,
			"to":   next,
		}).Debug("scanner: phase change")
	}
	s.phase = next
}

// Initialize puts a new scanner in the initialized phase with empty
// parameters. It fails with StatusInvalidState once the scanner has left the
// uninitialized phase.
func (s *Scanner) Initialize() error {
	if s.phase != PhaseUninitialized {
		return makeError(StatusInvalidState)
	}
	s.params = ScanParameters{}
	s.enter(PhaseInitialized)
	return s.Reset()
}

// Reset succeeds only while the scanner is initialized or idle; scanning
// must be stopped first. Parameters are kept.
func (s *Scanner) Reset() error {
	if s.phase != PhaseIdle && s.phase != PhaseInitialized {
		return makeError(StatusCommandDisallowed)
	}
	return nil
}

// Configure is the combined enable/configure command. Called while
// initialized it only moves the scanner to idle and ignores its arguments;
// a second call, once idle, stores them. Both steps are also available
// separately as Enable and SetParameters.
func (s *Scanner) Configure(scanType ScanType, ownAddressType AddressType, filterPolicy FilterPolicy) error {
	switch s.phase {
	case PhaseInitialized:
		return s.Enable()
	case PhaseIdle:
		return s.SetParameters(ScanParameters{
			Type:           scanType,
			OwnAddressType: ownAddressType,
			FilterPolicy:   filterPolicy,
		})
	default:
		return makeError(StatusCommandDisallowed)
	}
}

// Enable moves an initialized scanner to idle. It is a no-op when idle.
func (s *Scanner) Enable() error {
	switch s.phase {
	case PhaseInitialized:
		s.enter(PhaseIdle)
		return nil
	case PhaseIdle:
		return nil
	default:
		return makeError(StatusCommandDisallowed)
	}
}

// SetParameters stores the scan parameters. The scanner must be idle.
func (s *Scanner) SetParameters(params ScanParameters) error {
	if s.phase != PhaseIdle {
		return makeError(StatusCommandDisallowed)
	}
	s.params = params
	s.logger.WithFields(logrus.Fields{
		"type":    params.Type,
		"address": params.OwnAddressType,
		"filter":  params.FilterPolicy,
	}).Debug("scanner: parameters set")
	return nil
}

// Start arms the timing routes and starts listening for advertisements.
//
// Start must only be called while idle. This is the caller's
// responsibility: the scanner does not refuse, but it logs a warning when
// started from any other phase.
func (s *Scanner) Start() error {
	if s.phase != PhaseIdle {
		s.logger.WithField("phase", s.phase).Warn("scanner: start outside idle phase")
	}

	s.timing.Arm()

	s.enter(PhaseListeningForAdvertisement)
	s.radio.Init(s.channel)
	s.radio.Receive(s.rx[:], true)

	s.logger.WithField("channel", s.channel).Debug("scanner: listening")
	return nil
}

// Stop aborts the radio operation in flight and releases the timing
// routes. The phase is left as it is.
func (s *Scanner) Stop() error {
	s.radio.Abort()
	s.timing.Release()
	s.logger.WithField("phase", s.phase).Debug("scanner: stopped")
	return nil
}

// OnRadioComplete must be called when the radio finishes the operation
// armed by the scanner. crcValid is only meaningful for receives.
func (s *Scanner) OnRadioComplete(crcValid bool) {
	switch s.phase {
	case PhaseListeningForAdvertisement:
		if !crcValid {
			// The radio keeps listening on its own.
			s.radio.Abort()
			s.logger.Debug("scanner: dropped PDU with bad CRC")
			return
		}

		typ := ClassifyHeader(s.rx[pduHeaderPos])
		if typ.Advertising() {
			s.report(typ)
		}

		if !typ.Solicitable() {
			// Directed, non-connectable or unknown: nothing to answer.
			s.radio.Abort()
			return
		}
		// TODO: only solicit when the parameters select active
		// scanning, once upper layers always configure before Start.
		s.tx.target(s.rx[:])
		s.radio.Transmit(s.tx[:])
		s.enter(PhaseAwaitingScanResponseTransmit)

	case PhaseAwaitingScanResponseTransmit:
		s.radio.Receive(s.rx[:], false)
		s.enter(PhaseListeningForScanResponse)

	case PhaseListeningForScanResponse:
		if crcValid && ClassifyHeader(s.rx[pduHeaderPos]) == PDUScanRsp {
			s.report(PDUScanRsp)
		}
		s.radio.Receive(s.rx[:], false)
		s.enter(PhaseListeningForAdvertisement)
	}
}

// OnTimerDeadline must be called when the operation timeout expires. It
// disables the chained radio start and the timeout interrupt and leaves the
// phase unchanged; a late call after the phase moved on is harmless.
func (s *Scanner) OnTimerDeadline() {
	if !s.phase.Active() {
		return
	}
	s.timing.Disarm()
	s.logger.WithField("phase", s.phase).Debug("scanner: operation timeout")
}

func (s *Scanner) report(typ PDUType) {
	if s.reportHandler == nil {
		return
	}
	pdu := PDU(s.rx[:])
	addr, _ := pdu.Address()
	payload := pdu.Payload()
	r := Report{
		Type:          typ,
		Address:       addr,
		RandomAddress: pdu.RandomAddress(),
		Channel:       s.channel,
		Payload:       append([]byte(nil), payload...),
	}
	s.reportHandler(r)
}
