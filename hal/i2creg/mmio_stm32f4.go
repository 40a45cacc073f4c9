//go:build stm32f4

package i2creg

import (
	"device/stm32"
	"runtime/volatile"
)

// MMIO binds the memory-mapped controller from device/stm32.
type MMIO struct {
	p *stm32.I2C_Type
}

// I2C1..I2C3 are the controllers present on STM32F4 parts.
var (
	I2C1 = &MMIO{p: stm32.I2C1}
	I2C2 = &MMIO{p: stm32.I2C2}
	I2C3 = &MMIO{p: stm32.I2C3}
)

func (m *MMIO) reg(r Reg) *volatile.Register32 {
	switch r {
	case CR1:
		return &m.p.CR1
	case CR2:
		return &m.p.CR2
	case OAR1:
		return &m.p.OAR1
	case OAR2:
		return &m.p.OAR2
	case DR:
		return &m.p.DR
	case SR1:
		return &m.p.SR1
	case SR2:
		return &m.p.SR2
	case CCR:
		return &m.p.CCR
	case TRISE:
		return &m.p.TRISE
	default:
		return &m.p.FLTR
	}
}

func (m *MMIO) Get(r Reg) uint32    { return m.reg(r).Get() }
func (m *MMIO) Set(r Reg, v uint32) { m.reg(r).Set(v) }
