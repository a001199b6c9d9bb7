package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinygo.org/x/linklayer"
)

func TestRouterVerify(t *testing.T) {
	r := NewRouter()
	want := []linklayer.Route{
		{Channel: linklayer.ChannelCapture, Event: linklayer.EventRadioEnd, Task: linklayer.TaskTimerCapture},
	}

	assert.ErrorIs(t, r.Verify(want), ErrRouteMissing)

	r.Chain(linklayer.ChannelCapture, linklayer.EventRadioReady, linklayer.TaskTimerCapture)
	assert.ErrorIs(t, r.Verify(want), ErrRouteMismatch)

	r.Chain(linklayer.ChannelCapture, linklayer.EventRadioEnd, linklayer.TaskTimerCapture)
	assert.ErrorIs(t, r.Verify(want), ErrRouteDisabled)

	r.Enable(linklayer.ChannelCapture)
	assert.NoError(t, r.Verify(want))
}

func TestRouterFireOrder(t *testing.T) {
	r := NewRouter()
	r.Chain(5, linklayer.EventRadioEnd, linklayer.TaskTimerCapture)
	r.Chain(0, linklayer.EventRadioEnd, linklayer.TogglePinTask(0))
	r.Enable(5)
	r.Enable(0)

	tasks := r.Fire(linklayer.EventRadioEnd)

	assert.Equal(t, []linklayer.Task{linklayer.TogglePinTask(0), linklayer.TaskTimerCapture}, tasks)
	assert.True(t, r.PinLevel(0))
}

func TestRadioAbort(t *testing.T) {
	radio := NewRadio(nil)
	buf := make([]byte, linklayer.RxBufferSize)

	radio.Receive(buf, true)
	kind, armed := radio.Armed()
	require.True(t, armed)
	assert.Equal(t, OpReceive, kind)

	radio.Abort()
	_, armed = radio.Armed()
	assert.False(t, armed)
	assert.False(t, radio.Inject([]byte{0x00}), "nothing to receive into")
}

func TestRadioAbortKeepsDeliveredReceive(t *testing.T) {
	radio := NewRadio(nil)
	buf := make([]byte, linklayer.RxBufferSize)
	radio.Receive(buf, true)

	require.True(t, radio.Inject([]byte{0x02, 0x06, 0x00, 1, 2, 3, 4, 5, 6}))
	radio.Abort()

	kind, armed := radio.Armed()
	assert.True(t, armed, "the radio restarts the receive on its own")
	assert.Equal(t, OpReceive, kind)
	assert.Equal(t, byte(0x02), buf[0])
	assert.Equal(t, byte(0x00), buf[9])
}

func TestRadioTransmitProgramsStart(t *testing.T) {
	router := NewRouter()
	radio := NewRadio(router)

	radio.Transmit([]byte{0xC3, 0x0C})

	route, ok := router.Route(linklayer.ChannelStart)
	require.True(t, ok)
	assert.Equal(t, linklayer.TaskRadioStart, route.Task)
	assert.True(t, router.Enabled(linklayer.ChannelStart))

	op, ok := radio.LastOp()
	require.True(t, ok)
	assert.Equal(t, OpTransmit, op.Kind)
	assert.Equal(t, []byte{0xC3, 0x0C}, op.Data)
	assert.False(t, radio.Inject(nil), "a transmit takes no frame")
}
