package linklayer

import "errors"

// Status is a link-layer status code, shared with the rest of the stack. The
// values follow the HCI error code table where one exists.
type Status uint8

const (
	StatusSuccess           Status = 0x00
	StatusUnknownCommand    Status = 0x01
	StatusHardwareFailure   Status = 0x03
	StatusCommandDisallowed Status = 0x0C
	StatusInvalidParameters Status = 0x12
	StatusControllerBusy    Status = 0x3A

	// StatusInvalidState has no HCI equivalent. It is returned when the
	// scanner is initialized a second time.
	StatusInvalidState Status = 0xFF
)

func (s Status) Error() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusUnknownCommand:
		return "unknown command"
	case StatusHardwareFailure:
		return "hardware failure"
	case StatusCommandDisallowed:
		return "command disallowed"
	case StatusInvalidParameters:
		return "invalid parameters"
	case StatusControllerBusy:
		return "controller busy"
	case StatusInvalidState:
		return "invalid state, operation disallowed in this state"
	default:
		return "other link-layer error"
	}
}

// StatusOf returns the status code carried by err. A nil error is
// StatusSuccess, an error that does not wrap a Status is
// StatusHardwareFailure.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return StatusHardwareFailure
}

// makeError returns the status as an error if it is not StatusSuccess,
// otherwise nil.
func makeError(s Status) error {
	if s != StatusSuccess {
		return s
	}
	return nil
}
