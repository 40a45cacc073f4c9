//go:build stm32f4

package boards

import (
	"i2cstack-go/drivers/hd44780"
	"i2cstack-go/hal/gpio"
	"i2cstack-go/hal/i2cm"
)

// STM32F4DISCOVERY: I2C1 on PB6/PB7 (AF4), APB1 at 42 MHz, LCD on PD0..PD6.
var Selected = Descriptor{
	Name:    "stm32f4disco",
	I2C:     "I2C1",
	ClockHz: 42_000_000,
	Pins: i2cm.BusPins{
		SCL:     gpio.Line{Port: gpio.PortB, Pin: 6},
		SDA:     gpio.Line{Port: gpio.PortB, Pin: 7},
		AltFunc: 4,
	},
	Mode:      i2cm.ModeStandard,
	Duty:      i2cm.DutyNormal,
	SpinLimit: 200_000,
	RTCAddr:   0x68,
	LCD: hd44780.Pins{
		RS: gpio.Line{Port: gpio.PortD, Pin: 0},
		RW: gpio.Line{Port: gpio.PortD, Pin: 1},
		EN: gpio.Line{Port: gpio.PortD, Pin: 2},
		D: [4]gpio.Line{
			{Port: gpio.PortD, Pin: 3},
			{Port: gpio.PortD, Pin: 4},
			{Port: gpio.PortD, Pin: 5},
			{Port: gpio.PortD, Pin: 6},
		},
	},
}
