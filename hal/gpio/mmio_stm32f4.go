//go:build stm32f4

package gpio

import "device/stm32"

// MMIO drives STM32F4 GPIO ports through their registers.
type MMIO struct{}

var _ Controller = MMIO{}

func port(p Port) *stm32.GPIO_Type {
	switch p {
	case PortA:
		return stm32.GPIOA
	case PortB:
		return stm32.GPIOB
	case PortC:
		return stm32.GPIOC
	case PortD:
		return stm32.GPIOD
	case PortE:
		return stm32.GPIOE
	case PortF:
		return stm32.GPIOF
	case PortG:
		return stm32.GPIOG
	default:
		return stm32.GPIOH
	}
}

// EnableClock gates the AHB1 clock of a port on.
func EnableClock(p Port) {
	stm32.RCC.AHB1ENR.SetBits(1 << uint32(p))
}

func (MMIO) Configure(l Line, cfg Config) {
	g := port(l.Port)
	pos2 := uint32(l.Pin) * 2

	g.MODER.ReplaceBits(uint32(cfg.Mode), 0x3, uint8(pos2))
	g.OTYPER.ReplaceBits(uint32(cfg.OutputType), 0x1, l.Pin)
	g.OSPEEDR.ReplaceBits(uint32(cfg.Speed), 0x3, uint8(pos2))
	g.PUPDR.ReplaceBits(uint32(cfg.Pull), 0x3, uint8(pos2))

	if cfg.Mode == ModeAltFunc {
		if l.Pin < 8 {
			g.AFRL.ReplaceBits(uint32(cfg.AltFunc), 0xF, l.Pin*4)
		} else {
			g.AFRH.ReplaceBits(uint32(cfg.AltFunc), 0xF, (l.Pin-8)*4)
		}
	}
}

func (MMIO) Write(l Line, lv Level) {
	g := port(l.Port)
	if lv {
		g.BSRR.Set(1 << l.Pin)
	} else {
		g.BSRR.Set(1 << (uint32(l.Pin) + 16))
	}
}

func (MMIO) Read(l Line) Level {
	return port(l.Port).IDR.Get()&(1<<l.Pin) != 0
}
