package linklayer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinygo.org/x/linklayer"
	"tinygo.org/x/linklayer/sim"
)

func TestTimingCoordinatorArm(t *testing.T) {
	router := sim.NewRouter()
	c := linklayer.NewTimingCoordinator(router, false)

	c.Arm()

	require.NoError(t, router.Verify(c.Routes()))
	assert.Equal(t, []linklayer.Route{
		{Channel: linklayer.ChannelCapture, Event: linklayer.EventRadioEnd, Task: linklayer.TaskTimerCapture},
	}, c.Routes())
	assert.True(t, router.TimeoutInterrupt())
	assert.Equal(t, []linklayer.Task{linklayer.TaskTimerCapture}, router.Fire(linklayer.EventRadioEnd))
	assert.Empty(t, router.Fire(linklayer.EventRadioReady))
}

func TestTimingCoordinatorDebugPins(t *testing.T) {
	router := sim.NewRouter()
	c := linklayer.NewTimingCoordinator(router, true)

	c.Arm()

	require.NoError(t, router.Verify(c.Routes()))
	assert.Len(t, c.Routes(), 4)
	assert.False(t, router.PinLevel(linklayer.DebugPinRadioEnd))
	assert.True(t, router.PinLevel(linklayer.DebugPinRadioReady), "READY pin starts high")
	assert.False(t, router.PinLevel(linklayer.DebugPinTimer))

	route, ok := router.Route(linklayer.Channel(linklayer.DebugPinTimer))
	require.True(t, ok)
	assert.Equal(t, linklayer.EventTimerCompare, route.Event)
	assert.Equal(t, "GPIOTE.OUT[2]", route.Task.String())

	router.Fire(linklayer.EventRadioReady)
	router.Fire(linklayer.EventRadioEnd)
	assert.False(t, router.PinLevel(linklayer.DebugPinRadioReady))
	assert.True(t, router.PinLevel(linklayer.DebugPinRadioEnd))
	assert.Equal(t, 1, router.Toggles(linklayer.DebugPinRadioEnd))
	assert.Equal(t, 0, router.Toggles(linklayer.DebugPinTimer))
}

func TestTimingCoordinatorDisarm(t *testing.T) {
	router := sim.NewRouter()
	c := linklayer.NewTimingCoordinator(router, false)
	c.Arm()
	router.Chain(linklayer.ChannelStart, linklayer.EventTimerCompare, linklayer.TaskRadioStart)
	router.Enable(linklayer.ChannelStart)

	c.Disarm()
	c.Disarm()

	assert.False(t, router.Enabled(linklayer.ChannelStart))
	assert.False(t, router.TimeoutInterrupt())
	assert.True(t, router.Enabled(linklayer.ChannelCapture))
	assert.Empty(t, router.Fire(linklayer.EventTimerCompare), "no radio start after the deadline")
}

func TestTimingCoordinatorRelease(t *testing.T) {
	router := sim.NewRouter()
	c := linklayer.NewTimingCoordinator(router, true)
	c.Arm()

	c.Release()

	for _, route := range c.Routes() {
		assert.False(t, router.Enabled(route.Channel), "channel %d", route.Channel)
	}
	assert.ErrorIs(t, router.Verify(c.Routes()), sim.ErrRouteDisabled)
	assert.False(t, router.TimeoutInterrupt())
}
