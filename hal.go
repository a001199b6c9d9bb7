package linklayer

import "fmt"

// Radio is the radio driver used by the scanner. All methods are called from
// the scanner's thread of control and must not block.
type Radio interface {
	// Init configures the radio for BLE on the given advertising channel.
	Init(channel uint8)

	// Receive arms a receive into buf. The driver may write buf until it
	// reports completion and must not keep it afterwards. With
	// restartOnCRCFail the radio restarts the receive on its own after a
	// frame with a bad CRC.
	Receive(buf []byte, restartOnCRCFail bool)

	// Transmit arms a transmit of buf. The radio starts it when the
	// chained timer compare fires.
	Transmit(buf []byte)

	// Abort cancels the operation in flight, if any.
	Abort()
}

// Event is a hardware event source.
type Event uint8

const (
	EventRadioReady Event = iota
	EventRadioEnd
	EventTimerCompare
)

func (e Event) String() string {
	switch e {
	case EventRadioReady:
		return "RADIO.READY"
	case EventRadioEnd:
		return "RADIO.END"
	case EventTimerCompare:
		return "TIMER.COMPARE[1]"
	default:
		return fmt.Sprintf("Event(%d)", uint8(e))
	}
}

// Task is a hardware task sink.
type Task uint8

const (
	TaskTimerCapture Task = iota
	TaskRadioStart

	taskTogglePin // first pin toggle task, see TogglePinTask
)

// TogglePinTask returns the task that toggles the given debug pin.
func TogglePinTask(pin uint8) Task {
	return taskTogglePin + Task(pin)
}

// TogglePin returns the pin toggled by t, if t is a pin toggle task.
func (t Task) TogglePin() (uint8, bool) {
	if t < taskTogglePin {
		return 0, false
	}
	return uint8(t - taskTogglePin), true
}

func (t Task) String() string {
	switch t {
	case TaskTimerCapture:
		return "TIMER.CAPTURE[1]"
	case TaskRadioStart:
		return "RADIO.START"
	}
	if pin, ok := t.TogglePin(); ok {
		return fmt.Sprintf("GPIOTE.OUT[%d]", pin)
	}
	return fmt.Sprintf("Task(%d)", uint8(t))
}

// Channel identifies one event-to-task route in the routing fabric.
type Channel uint8

// EventRouter is the hardware event-routing fabric together with the timeout
// timer. Routes fire without software involvement once enabled.
type EventRouter interface {
	Chain(ch Channel, ev Event, task Task)
	Enable(ch Channel)
	Disable(ch Channel)

	// ConfigureTogglePin prepares pin for use by TogglePinTask.
	ConfigureTogglePin(pin uint8, initialHigh bool)

	EnableTimeoutInterrupt()
	DisableTimeoutInterrupt()
}
