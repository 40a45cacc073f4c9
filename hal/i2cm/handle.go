// Package i2cm is the master transfer engine for STM32F4 I2C controllers.
//
// A Handle drives one Controller in one of two ways: the blocking engine
// (Send, Receive) polls status flags to completion, while the interrupt
// engine (StartSend, StartReceive) programs the transfer and returns, with
// ServeEvent and ServeError doing the work from the controller's ISRs. Both
// share the handle state, so only one transfer is ever in flight.
//
// Handles are caller-owned and nothing on the transfer path allocates. Every
// buffer passed in is borrowed until the transfer finishes.
package i2cm

import (
	"sync/atomic"

	"i2cstack-go/errcode"
	"i2cstack-go/hal/i2creg"
)

// State is the transfer state of a handle.
type State uint32

const (
	Ready State = iota
	BusySending
	BusyReceiving
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case BusySending:
		return "busy_sending"
	case BusyReceiving:
		return "busy_receiving"
	}
	return "unknown"
}

// Handle holds all state for transfers on one controller.
type Handle struct {
	// SpinLimit bounds every status poll. Zero waits forever; otherwise a
	// wait that sees no progress after SpinLimit polls returns errcode.Timeout.
	SpinLimit uint32

	ctrl  *Controller
	regs  i2creg.Bank
	state atomic.Uint32
	seq   atomic.Uint32

	tx         []byte
	rx         []byte
	remaining  int
	rxSize     int
	pos        int
	addr       uint8
	holdBus    bool
	stopIssued bool
	started    bool // SB serviced for the transfer in flight
	cb         Callback
}

// Init binds h to c and leaves it Ready. A controller accepts one handle.
func (h *Handle) Init(c *Controller) error {
	if c == nil || c.Regs == nil {
		return errcode.InvalidParams
	}
	if !c.bind() {
		return errcode.BusInUse
	}
	if c.EnableClock != nil {
		c.EnableClock()
	}
	h.ctrl = c
	h.regs = i2creg.NewBank(c.Regs)
	h.reset()
	h.state.Store(uint32(Ready))
	return nil
}

// Release unbinds h so another handle may take the controller.
func (h *Handle) Release() error {
	if h.ctrl == nil {
		return nil
	}
	if h.State() != Ready {
		return errcode.Busy
	}
	h.ctrl.unbind()
	h.ctrl = nil
	return nil
}

// State is safe to call from any context.
func (h *Handle) State() State { return State(h.state.Load()) }

// Seq counts transfers started on h. Inside a completion callback it
// identifies the transfer that just ended.
func (h *Handle) Seq() uint32 { return h.seq.Load() }

// Controller returns the bound controller, or nil.
func (h *Handle) Controller() *Controller { return h.ctrl }

// acquire moves Ready to s. It is the only way a transfer begins.
func (h *Handle) acquire(s State) error {
	if h.ctrl == nil {
		return errcode.InvalidParams
	}
	if !h.state.CompareAndSwap(uint32(Ready), uint32(s)) {
		return errcode.Busy
	}
	h.seq.Add(1)
	return nil
}

func (h *Handle) release() {
	h.reset()
	h.state.Store(uint32(Ready))
}

func (h *Handle) reset() {
	h.tx, h.rx = nil, nil
	h.remaining, h.rxSize, h.pos = 0, 0, 0
	h.holdBus, h.stopIssued, h.started = false, false, false
	h.cb = nil
}

func validAddr(addr uint8) bool { return addr > 0 && addr < 0x80 }
