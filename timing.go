package linklayer

// Routing channels used by the scanner. ChannelStart is programmed by the
// radio driver when it arms a transmit (timer compare to radio start); the
// coordinator only ever disables it.
const (
	ChannelCapture Channel = 5
	ChannelStart   Channel = 4
)

// Debug pins, each on the routing channel with the same number.
const (
	DebugPinRadioEnd   uint8 = 0
	DebugPinRadioReady uint8 = 1
	DebugPinTimer      uint8 = 2
)

// Route is one event-to-task binding on a routing channel.
type Route struct {
	Channel Channel
	Event   Event
	Task    Task
}

type debugTap struct {
	pin         uint8
	event       Event
	initialHigh bool
}

var debugTaps = [...]debugTap{
	{DebugPinRadioEnd, EventRadioEnd, false},
	{DebugPinRadioReady, EventRadioReady, true},
	{DebugPinTimer, EventTimerCompare, false},
}

// TimingCoordinator programs the event-routing fabric so that the timer
// captures the end of every radio operation. The radio driver uses the
// capture to start the next operation one inter-frame space later, with no
// software in the path. The timer compare also raises the timeout interrupt
// that ends up in Scanner.OnTimerDeadline.
type TimingCoordinator struct {
	router    EventRouter
	debugPins bool
}

// NewTimingCoordinator returns a coordinator for router. With debugPins the
// radio READY and END events and the timer compare each toggle a pin.
func NewTimingCoordinator(router EventRouter, debugPins bool) *TimingCoordinator {
	return &TimingCoordinator{router: router, debugPins: debugPins}
}

// Routes returns the routes Arm programs, in order.
func (c *TimingCoordinator) Routes() []Route {
	routes := []Route{{ChannelCapture, EventRadioEnd, TaskTimerCapture}}
	if c.debugPins {
		for _, tap := range debugTaps {
			routes = append(routes, Route{Channel(tap.pin), tap.event, TogglePinTask(tap.pin)})
		}
	}
	return routes
}

// Arm programs and enables all routes for a listen window and enables the
// timeout interrupt.
func (c *TimingCoordinator) Arm() {
	c.router.Chain(ChannelCapture, EventRadioEnd, TaskTimerCapture)
	c.router.Enable(ChannelCapture)

	if c.debugPins {
		for _, tap := range debugTaps {
			c.router.ConfigureTogglePin(tap.pin, tap.initialHigh)
			c.router.Chain(Channel(tap.pin), tap.event, TogglePinTask(tap.pin))
			c.router.Enable(Channel(tap.pin))
		}
	}

	c.router.EnableTimeoutInterrupt()
}

// Disarm stops a pending chained start and masks the timeout interrupt. It
// is safe to call any number of times.
func (c *TimingCoordinator) Disarm() {
	c.router.Disable(ChannelStart)
	c.router.DisableTimeoutInterrupt()
}

// Release disables every route the coordinator uses.
func (c *TimingCoordinator) Release() {
	c.Disarm()
	c.router.Disable(ChannelCapture)
	if c.debugPins {
		for _, tap := range debugTaps {
			c.router.Disable(Channel(tap.pin))
		}
	}
}
