package i2cm

import (
	"tinygo.org/x/drivers"

	"i2cstack-go/errcode"
)

var _ drivers.I2C = (*Handle)(nil)

// Tx performs one blocking transaction in the shape device drivers expect:
// write w, then read r after a repeated START. Either slice may be empty; if
// both are, the address is probed.
func (h *Handle) Tx(addr uint16, w, r []byte) error {
	if addr == 0 || addr >= 0x80 {
		return errcode.InvalidParams
	}
	a := uint8(addr)
	switch {
	case len(r) == 0:
		return h.Send(w, a, false)
	case len(w) == 0:
		return h.Receive(r, a, false)
	}
	if err := h.Send(w, a, true); err != nil {
		return err
	}
	return h.Receive(r, a, false)
}

// String names the bound controller.
func (h *Handle) String() string {
	if h.ctrl == nil || h.ctrl.Name == "" {
		return "i2c"
	}
	return h.ctrl.Name
}
