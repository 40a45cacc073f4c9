package i2cm

import (
	"i2cstack-go/errcode"
	"i2cstack-go/hal/gpio"
)

// BusPins names the controller's SCL and SDA lines and the alternate
// function that routes them to it.
type BusPins struct {
	SCL, SDA gpio.Line
	AltFunc  uint8
}

// RecoverBus frees a bus left BUSY by an interrupted transfer: with the
// controller disabled it bit-bangs a START followed by a STOP on the pins,
// hands them back to the controller and software-resets it. Timing registers
// are cleared by the reset, so Configure must run afterwards.
func (h *Handle) RecoverBus(g gpio.Controller, pins BusPins) error {
	if h.ctrl == nil || g == nil {
		return errcode.InvalidParams
	}
	if h.State() != Ready {
		return errcode.Busy
	}

	h.regs.Disable()

	od := gpio.Config{
		Mode:       gpio.ModeOutput,
		OutputType: gpio.OpenDrain,
		Pull:       gpio.PullUp,
		Speed:      gpio.SpeedHigh,
	}
	g.Configure(pins.SCL, od)
	g.Configure(pins.SDA, od)

	steps := [...]struct {
		line gpio.Line
		lv   gpio.Level
	}{
		{pins.SCL, gpio.High},
		{pins.SDA, gpio.High},
		{pins.SDA, gpio.Low}, // START
		{pins.SCL, gpio.Low},
		{pins.SCL, gpio.High},
		{pins.SDA, gpio.High}, // STOP
	}
	for _, s := range steps {
		g.Write(s.line, s.lv)
		if err := h.awaitLine(g, s.line, s.lv); err != nil {
			return err
		}
	}

	af := od
	af.Mode = gpio.ModeAltFunc
	af.AltFunc = pins.AltFunc
	g.Configure(pins.SCL, af)
	g.Configure(pins.SDA, af)

	h.regs.SoftwareReset()
	h.regs.Enable()
	return nil
}

func (h *Handle) awaitLine(g gpio.Controller, l gpio.Line, lv gpio.Level) error {
	for n := uint32(0); g.Read(l) != lv; n++ {
		if h.SpinLimit != 0 && n+1 >= h.SpinLimit {
			return errcode.Timeout
		}
	}
	return nil
}
