package i2cm

import (
	"i2cstack-go/errcode"
	"i2cstack-go/hal/i2creg"
)

// Send writes buf to the 7-bit address addr and waits for the last byte to
// leave the shift register. With holdBus the bus is kept (no STOP) so the
// next transfer starts with a repeated START. An empty buf probes the address.
func (h *Handle) Send(buf []byte, addr uint8, holdBus bool) error {
	if !validAddr(addr) {
		return errcode.InvalidParams
	}
	if err := h.acquire(BusySending); err != nil {
		return err
	}
	defer h.release()
	return h.send(buf, addr, holdBus)
}

// Receive fills buf from addr. A failed receive leaves buf partially written.
func (h *Handle) Receive(buf []byte, addr uint8, holdBus bool) error {
	if !validAddr(addr) || len(buf) == 0 {
		return errcode.InvalidParams
	}
	if err := h.acquire(BusyReceiving); err != nil {
		return err
	}
	defer h.release()
	err := h.receive(buf, addr, holdBus)
	h.regs.SetAck(true)
	return err
}

func (h *Handle) send(buf []byte, addr uint8, holdBus bool) error {
	if err := h.address(addr << 1); err != nil {
		return err
	}
	h.regs.ClearAddr()
	for _, b := range buf {
		if err := h.await(i2creg.SR1_TXE); err != nil {
			return h.abort(err)
		}
		h.regs.WriteData(b)
	}
	if len(buf) > 0 {
		if err := h.await(i2creg.SR1_BTF); err != nil {
			return h.abort(err)
		}
	}
	if !holdBus {
		h.regs.Stop()
	}
	return nil
}

func (h *Handle) receive(buf []byte, addr uint8, holdBus bool) error {
	if err := h.address(addr<<1 | 1); err != nil {
		return err
	}

	n := len(buf)
	if n == 1 {
		// NACK must be armed before the byte starts, i.e. before ADDR clears.
		h.regs.SetAck(false)
		h.regs.ClearAddr()
		if err := h.await(i2creg.SR1_RXNE); err != nil {
			return h.abort(err)
		}
		if !holdBus {
			h.regs.Stop()
		}
		buf[0] = h.regs.ReadData()
		return nil
	}

	h.regs.ClearAddr()
	for i := n; i >= 1; i-- {
		if err := h.await(i2creg.SR1_RXNE); err != nil {
			return h.abort(err)
		}
		if i == 2 {
			h.regs.SetAck(false)
			if !holdBus {
				h.regs.Stop()
			}
		}
		buf[n-i] = h.regs.ReadData()
	}
	return nil
}

// address issues START and the address byte, then waits for ADDR.
func (h *Handle) address(b byte) error {
	h.regs.Start()
	if err := h.await(i2creg.SR1_SB); err != nil {
		return h.abort(err)
	}
	h.regs.WriteData(b)
	if err := h.await(i2creg.SR1_ADDR); err != nil {
		return h.abort(err)
	}
	return nil
}

// abort finishes the bus side of a failed transfer. A NACK still leaves the
// controller as master, so it is released with STOP.
func (h *Handle) abort(err error) error {
	if err == errcode.NoAcknowledge {
		h.regs.ClearFlags(i2creg.SR1_AF)
		h.regs.Stop()
	}
	return err
}

// await polls SR1 until flag is set. Bus and arbitration errors are cleared
// and reported; AF is reported and left for abort.
func (h *Handle) await(flag uint32) error {
	for n := uint32(0); ; n++ {
		s := h.regs.Status()
		switch {
		case s.Has(i2creg.SR1_BERR):
			h.regs.ClearFlags(i2creg.SR1_BERR)
			return errcode.BusError
		case s.Has(i2creg.SR1_ARLO):
			h.regs.ClearFlags(i2creg.SR1_ARLO)
			return errcode.ArbitrationLost
		case s.Has(i2creg.SR1_AF):
			return errcode.NoAcknowledge
		case s.Has(flag):
			return nil
		}
		if h.SpinLimit != 0 && n+1 >= h.SpinLimit {
			return errcode.Timeout
		}
	}
}
