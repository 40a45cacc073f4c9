//go:build !tinygo

package i2cm

import (
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"i2cstack-go/errcode"
)

var _ i2c.Bus = (*Handle)(nil)

// SetSpeed reprograms the bus for one of the three supported rates.
func (h *Handle) SetSpeed(f physic.Frequency) error {
	var m Mode
	switch f {
	case 100 * physic.KiloHertz:
		m = ModeStandard
	case 200 * physic.KiloHertz:
		m = ModeFast200
	case 400 * physic.KiloHertz:
		m = ModeFast400
	default:
		return errcode.ConfigUnsupported
	}
	return h.Configure(m, DutyNormal)
}
