package i2cm

import (
	"i2cstack-go/errcode"
	"i2cstack-go/hal/i2creg"
)

// Event reports how an interrupt-driven transfer ended.
type Event uint8

const (
	EventSendDone Event = iota
	EventReceiveDone
	EventNoAck
	EventBusError
	EventArbitrationLost
)

func (e Event) String() string {
	switch e {
	case EventSendDone:
		return "send_done"
	case EventReceiveDone:
		return "receive_done"
	case EventNoAck:
		return "nack"
	case EventBusError:
		return "bus_error"
	case EventArbitrationLost:
		return "arbitration_lost"
	}
	return "unknown"
}

// Err maps e to an error code, nil for the two success events.
func (e Event) Err() error {
	switch e {
	case EventSendDone, EventReceiveDone:
		return nil
	case EventNoAck:
		return errcode.NoAcknowledge
	case EventBusError:
		return errcode.BusError
	case EventArbitrationLost:
		return errcode.ArbitrationLost
	}
	return errcode.Error
}

// Callback runs in interrupt context once a transfer ends. The handle is
// already Ready, so the callback may start the next transfer. It must not
// block.
type Callback func(h *Handle, ev Event)

// StartSend begins an interrupt-driven write of buf to addr and returns at
// once. buf must stay untouched until cb runs.
func (h *Handle) StartSend(buf []byte, addr uint8, holdBus bool, cb Callback) error {
	if !validAddr(addr) {
		return errcode.InvalidParams
	}
	if err := h.acquire(BusySending); err != nil {
		return err
	}
	h.tx = buf
	h.remaining = len(buf)
	h.begin(addr, holdBus, cb)
	return nil
}

// StartReceive begins an interrupt-driven read of len(buf) bytes from addr.
func (h *Handle) StartReceive(buf []byte, addr uint8, holdBus bool, cb Callback) error {
	if !validAddr(addr) || len(buf) == 0 {
		return errcode.InvalidParams
	}
	if err := h.acquire(BusyReceiving); err != nil {
		return err
	}
	h.rx = buf
	h.remaining = len(buf)
	h.rxSize = len(buf)
	h.begin(addr, holdBus, cb)
	return nil
}

func (h *Handle) begin(addr uint8, holdBus bool, cb Callback) {
	h.pos = 0
	h.addr = addr
	h.holdBus = holdBus
	h.stopIssued = false
	h.started = false
	h.cb = cb
	// START first: after a held transfer TXE and BTF are still set, and
	// the START condition is what clears them.
	h.regs.Start()
	h.regs.EnableInterrupts(i2creg.CR2_ITEVTEN | i2creg.CR2_ITERREN)
}

// ServeEvent is the body of the controller's event interrupt handler.
func (h *Handle) ServeEvent() {
	st := h.State()
	s := h.regs.Status()
	if st == Ready {
		// Nothing in flight; mask so a stale flag cannot storm.
		h.regs.DisableInterrupts(i2creg.CR2_ITALL)
		return
	}
	if !h.started {
		// Flags seen before SB belong to the previous transfer.
		if s.Has(i2creg.SR1_SB) {
			h.started = true
			b := h.addr << 1
			if st == BusyReceiving {
				b |= 1
			}
			h.regs.EnableInterrupts(i2creg.CR2_ITBUFEN)
			h.regs.WriteData(b)
		}
		return
	}
	buffered := h.regs.Interrupts()&i2creg.CR2_ITBUFEN != 0

	switch {
	case s.Has(i2creg.SR1_ADDR):
		h.onAddress(st)

	case st == BusySending:
		switch {
		case h.remaining > 0 && buffered && s.Has(i2creg.SR1_TXE):
			h.regs.WriteData(h.tx[h.pos])
			h.pos++
			h.remaining--
			if h.remaining == 0 {
				h.regs.DisableInterrupts(i2creg.CR2_ITBUFEN)
			}
		case h.remaining == 0 && s.Has(i2creg.SR1_BTF):
			h.stop()
			h.finish(EventSendDone)
		case buffered:
			h.regs.DisableInterrupts(i2creg.CR2_ITBUFEN)
		}

	case h.rxSize == 2:
		if s.Has(i2creg.SR1_BTF) {
			h.stop()
			h.rx[0] = h.regs.ReadData()
			h.rx[1] = h.regs.ReadData()
			h.remaining = 0
			h.finish(EventReceiveDone)
		}

	case buffered && s.Has(i2creg.SR1_RXNE):
		h.onReceive()
	}
}

func (h *Handle) onAddress(st State) {
	if st == BusySending {
		h.regs.ClearAddr()
		if h.remaining == 0 {
			h.stop()
			h.finish(EventSendDone)
		}
		return
	}
	switch h.rxSize {
	case 1:
		h.regs.SetAck(false)
	case 2:
		// Both bytes are resolved together at BTF: NACK lands on the second.
		h.regs.SetAck(false)
		h.regs.SetPos(true)
		h.regs.DisableInterrupts(i2creg.CR2_ITBUFEN)
	}
	h.regs.ClearAddr()
}

func (h *Handle) onReceive() {
	if h.remaining == 2 && h.rxSize > 2 {
		// The byte behind this one is the last; it must be NACKed.
		h.regs.SetAck(false)
		h.stop()
	}
	h.rx[h.pos] = h.regs.ReadData()
	h.pos++
	h.remaining--
	if h.remaining == 0 {
		h.stop()
		h.finish(EventReceiveDone)
	}
}

// stop issues STOP once per transfer, unless the bus is held.
func (h *Handle) stop() {
	if h.holdBus || h.stopIssued {
		return
	}
	h.regs.Stop()
	h.stopIssued = true
}

// ServeError is the body of the controller's error interrupt handler.
func (h *Handle) ServeError() {
	s := h.regs.Status()
	if h.State() == Ready {
		// Nothing of ours on the bus: clear and mask, never STOP.
		h.regs.ClearFlags(i2creg.SR1_ERRORS)
		h.regs.DisableInterrupts(i2creg.CR2_ITALL)
		return
	}
	var ev Event
	switch {
	case s.Has(i2creg.SR1_AF):
		h.regs.ClearFlags(i2creg.SR1_AF)
		h.regs.Stop()
		ev = EventNoAck
	case s.Has(i2creg.SR1_BERR):
		h.regs.ClearFlags(i2creg.SR1_BERR)
		ev = EventBusError
	case s.Has(i2creg.SR1_ARLO):
		h.regs.ClearFlags(i2creg.SR1_ARLO)
		ev = EventArbitrationLost
	default:
		h.regs.ClearFlags(i2creg.SR1_ERRORS)
		return
	}
	h.finish(ev)
}

// finish closes the transfer and hands the outcome to the callback.
func (h *Handle) finish(ev Event) {
	h.regs.DisableInterrupts(i2creg.CR2_ITALL)
	h.regs.SetPos(false)
	h.regs.SetAck(true)
	cb := h.cb
	h.release()
	if cb != nil {
		cb(h, ev)
	}
}
