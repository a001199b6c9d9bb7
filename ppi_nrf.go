//go:build nrf

package linklayer

import (
	"device/arm"
	"device/nrf"
	"runtime/volatile"
	"unsafe"
)

// PPI is the EventRouter of nRF5 chips: routes go through the programmable
// peripheral interconnect, the timeout is TIMER0 compare channel 1 and the
// debug pins are driven by GPIOTE tasks.
type PPI struct{}

func registerAddress(r *volatile.Register32) uint32 {
	return uint32(uintptr(unsafe.Pointer(r)))
}

func (PPI) eventAddress(ev Event) uint32 {
	switch ev {
	case EventRadioReady:
		return registerAddress(&nrf.RADIO.EVENTS_READY)
	case EventRadioEnd:
		return registerAddress(&nrf.RADIO.EVENTS_END)
	case EventTimerCompare:
		return registerAddress(&nrf.TIMER0.EVENTS_COMPARE[1])
	}
	return 0
}

func (PPI) taskAddress(task Task) uint32 {
	switch task {
	case TaskTimerCapture:
		return registerAddress(&nrf.TIMER0.TASKS_CAPTURE[1])
	case TaskRadioStart:
		return registerAddress(&nrf.RADIO.TASKS_START)
	}
	if pin, ok := task.TogglePin(); ok {
		return registerAddress(&nrf.GPIOTE.TASKS_OUT[pin])
	}
	return 0
}

// Chain routes ev to task on PPI channel ch.
func (p PPI) Chain(ch Channel, ev Event, task Task) {
	nrf.PPI.CH[ch].EEP.Set(p.eventAddress(ev))
	nrf.PPI.CH[ch].TEP.Set(p.taskAddress(task))
}

// Enable enables PPI channel ch.
func (PPI) Enable(ch Channel) {
	nrf.PPI.CHENSET.Set(1 << ch)
}

// Disable disables PPI channel ch.
func (PPI) Disable(ch Channel) {
	nrf.PPI.CHENCLR.Set(1 << ch)
}

// ConfigureTogglePin sets up the GPIOTE channel with the same number as the
// pin in task mode, toggling on every trigger.
func (PPI) ConfigureTogglePin(pin uint8, initialHigh bool) {
	outinit := uint32(nrf.GPIOTE_CONFIG_OUTINIT_Low)
	if initialHigh {
		outinit = nrf.GPIOTE_CONFIG_OUTINIT_High
	}
	nrf.GPIOTE.CONFIG[pin].Set(nrf.GPIOTE_CONFIG_MODE_Task<<nrf.GPIOTE_CONFIG_MODE_Pos |
		nrf.GPIOTE_CONFIG_POLARITY_Toggle<<nrf.GPIOTE_CONFIG_POLARITY_Pos |
		uint32(pin)<<nrf.GPIOTE_CONFIG_PSEL_Pos |
		outinit<<nrf.GPIOTE_CONFIG_OUTINIT_Pos)
}

// EnableTimeoutInterrupt unmasks the TIMER0 compare 1 interrupt.
func (PPI) EnableTimeoutInterrupt() {
	nrf.TIMER0.INTENSET.Set(nrf.TIMER_INTENSET_COMPARE1_Msk)
	arm.EnableIRQ(nrf.IRQ_TIMER0)
}

// DisableTimeoutInterrupt masks the TIMER0 compare 1 interrupt.
func (PPI) DisableTimeoutInterrupt() {
	nrf.TIMER0.INTENCLR.Set(nrf.TIMER_INTENCLR_COMPARE1_Msk)
}
