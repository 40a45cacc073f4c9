package i2cm

import (
	"i2cstack-go/errcode"
	"i2cstack-go/x/mathx"
)

// Mode selects one of the fixed bus speeds.
type Mode uint8

const (
	ModeStandard Mode = iota // 100 kHz
	ModeFast200              // 200 kHz
	ModeFast400              // 400 kHz
)

// Hz returns the nominal SCL rate, or 0 for an unknown mode.
func (m Mode) Hz() uint32 {
	switch m {
	case ModeStandard:
		return 100_000
	case ModeFast200:
		return 200_000
	case ModeFast400:
		return 400_000
	}
	return 0
}

func (m Mode) fast() bool { return m == ModeFast200 || m == ModeFast400 }

// Duty is the fast-mode Tlow/Thigh ratio. Standard mode ignores it.
type Duty uint8

const (
	DutyNormal Duty = iota // Tlow/Thigh = 2
	Duty16_9               // Tlow/Thigh = 16/9
)

const (
	minFreqMHz     = 2
	maxFreqMHz     = 50
	minFastFreqMHz = 4
	minCCRStandard = 4
	minCCRFast     = 1
	maxCCR         = 0xFFF
)

// Timing holds the register values for one mode at one input clock.
type Timing struct {
	FreqMHz uint8
	CCR     uint16
	Fast    bool
	Duty    bool // CCR.DUTY, 16/9
	Trise   uint8
	clockHz uint32
}

// SCLHz is the bus rate these values actually produce.
func (t Timing) SCLHz() uint32 {
	if t.CCR == 0 {
		return 0
	}
	div := uint32(2)
	if t.Fast {
		div = 3
		if t.Duty {
			div = 25
		}
	}
	return mathx.RoundDiv(t.clockHz, div*uint32(t.CCR))
}

// ComputeTiming derives FREQ, CCR and TRISE for mode at clockHz.
func ComputeTiming(clockHz uint32, mode Mode, duty Duty) (Timing, error) {
	scl := mode.Hz()
	if scl == 0 || duty > Duty16_9 {
		return Timing{}, errcode.ConfigUnsupported
	}
	freq := clockHz / 1_000_000
	if !mathx.Between(freq, minFreqMHz, maxFreqMHz) {
		return Timing{}, errcode.ConfigUnsupported
	}
	t := Timing{FreqMHz: uint8(freq), clockHz: clockHz}

	if !mode.fast() {
		ccr := clockHz / (2 * scl)
		if !mathx.Between(ccr, minCCRStandard, maxCCR) {
			return Timing{}, errcode.ConfigUnsupported
		}
		t.CCR = uint16(ccr)
		t.Trise = uint8(freq + 1) // 1000 ns max rise
		return t, nil
	}

	if freq < minFastFreqMHz {
		return Timing{}, errcode.ConfigUnsupported
	}
	var ccr uint32
	if duty == Duty16_9 {
		ccr = clockHz / (25 * scl)
		t.Duty = true
	} else {
		ccr = clockHz / (3 * scl)
	}
	if !mathx.Between(ccr, minCCRFast, maxCCR) {
		return Timing{}, errcode.ConfigUnsupported
	}
	t.CCR = uint16(ccr)
	t.Fast = true
	t.Trise = uint8(freq*300/1000 + 1) // 300 ns max rise
	return t, nil
}

// Configure programs the bus timing for mode and leaves the controller
// enabled with ACK on. The handle must be bound and Ready; nothing is
// written if the timing cannot be met.
func (h *Handle) Configure(mode Mode, duty Duty) error {
	if h.ctrl == nil {
		return errcode.InvalidParams
	}
	if h.State() != Ready {
		return errcode.Busy
	}
	t, err := ComputeTiming(h.ctrl.ClockHz, mode, duty)
	if err != nil {
		return err
	}
	h.regs.Disable()
	h.regs.SetFrequency(t.FreqMHz)
	h.regs.SetClockControl(t.CCR, t.Fast, t.Duty)
	h.regs.SetRiseTime(t.Trise)
	h.regs.Enable()
	h.regs.SetAck(true)
	return nil
}

// Timing reads back the values programmed in the bound controller.
func (h *Handle) Timing() Timing {
	if h.ctrl == nil {
		return Timing{}
	}
	ccr, fast, duty := h.regs.ClockControl()
	return Timing{
		FreqMHz: h.regs.Frequency(),
		CCR:     ccr,
		Fast:    fast,
		Duty:    duty,
		Trise:   h.regs.RiseTime(),
		clockHz: h.ctrl.ClockHz,
	}
}
