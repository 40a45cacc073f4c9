package i2cm

import (
	"sync/atomic"

	"i2cstack-go/hal/i2creg"
)

// Controller describes one physical I2C instance.
type Controller struct {
	Name string
	Regs i2creg.Registers
	// ClockHz is the peripheral input clock (APB1 on STM32F4).
	ClockHz uint32
	// EnableClock, if set, gates the peripheral clock on at Init.
	EnableClock func()

	bound atomic.Bool
}

func (c *Controller) bind() bool { return c.bound.CompareAndSwap(false, true) }
func (c *Controller) unbind()    { c.bound.Store(false) }

// Bound reports whether a handle currently owns c.
func (c *Controller) Bound() bool { return c.bound.Load() }
