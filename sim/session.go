package sim

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"tinygo.org/x/linklayer"
)

var ErrNoAdvertisers = errors.New("sim: no advertisers in range")

// Stats counts what happened on air during a session.
type Stats struct {
	Advertisements int
	Corrupted      int
	Requests       int
	Responses      int
	Timeouts       int
}

// Session plays the air against a scanner. It acts as the radio and timer
// hardware: it waits for the scanner to arm an operation, carries it out and
// reports completion through the dispatcher.
type Session struct {
	Dispatcher *linklayer.Dispatcher
	Radio      *Radio
	Router     *Router
	Air        *Air

	// CorruptEvery makes every n-th advertisement arrive with a bad CRC.
	// Zero disables corruption.
	CorruptEvery int

	Logger logrus.FieldLogger

	stats Stats
}

// Run plays until the scanner has heard the given number of advertisements
// or ctx is done. Zero means until ctx is done. The scanner must be started
// separately, through the dispatcher.
func (s *Session) Run(ctx context.Context, advertisements int) (Stats, error) {
	if s.Air == nil || s.Air.empty() {
		return s.stats, ErrNoAdvertisers
	}
	if s.Logger == nil {
		s.Logger = logrus.New()
	}

	var target *Advertiser
	expectResponse := false

	for advertisements == 0 || s.stats.Advertisements < advertisements {
		op, err := s.Radio.wait(ctx)
		if err != nil {
			return s.stats, err
		}
		s.fire(linklayer.EventRadioReady)

		crcValid := true
		var pdu []byte

		switch op.kind {
		case OpTransmit:
			s.fire(linklayer.EventTimerCompare)
			s.stats.Requests++
			target = s.Air.addressed(op.buf)
			s.Logger.WithField("target", describe(target)).Debug("sim: scan request on air")

		case OpReceive:
			if expectResponse {
				expectResponse = false
				if target != nil && len(target.ScanResponse) > 0 {
					pdu = target.ScanResponsePDU()
					s.stats.Responses++
				} else {
					// Nobody answers: the timeout fires, then the radio
					// ends the receive on noise.
					s.stats.Timeouts++
					s.fire(linklayer.EventTimerCompare)
					if err := s.Dispatcher.Deliver(ctx, linklayer.Notification{Kind: linklayer.TimerDeadline}); err != nil {
						return s.stats, err
					}
					crcValid = false
				}
				target = nil
				break
			}

			adv := s.Air.nextAdvertiser()
			pdu = adv.AdvertisingPDU()
			s.stats.Advertisements++
			if s.CorruptEvery > 0 && s.stats.Advertisements%s.CorruptEvery == 0 {
				crcValid = false
				s.stats.Corrupted++
			}
			s.Logger.WithFields(logrus.Fields{
				"address": adv.Address,
				"pdu":     adv.Type,
				"crc":     crcValid,
			}).Debug("sim: advertisement on air")
		}

		if !s.Radio.finish(op, pdu) {
			// Cancelled while on air.
			continue
		}
		s.fire(linklayer.EventRadioEnd)

		if err := s.Dispatcher.Deliver(ctx, linklayer.Notification{
			Kind:     linklayer.RadioComplete,
			CRCValid: crcValid,
		}); err != nil {
			return s.stats, err
		}
		if op.kind == OpTransmit {
			expectResponse = true
		}
		s.Radio.settle(op)
	}
	return s.stats, nil
}

func (s *Session) fire(ev linklayer.Event) {
	if s.Router != nil {
		s.Router.Fire(ev)
	}
}

func describe(a *Advertiser) string {
	if a == nil {
		return "nobody"
	}
	return a.Address.String()
}
