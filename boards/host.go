//go:build !stm32f4

package boards

import "i2cstack-go/hal/i2cm"

// Host builds talk to a Linux i2c-dev bus; only the bus parameters apply.
var Selected = Descriptor{
	Name:    "host",
	I2C:     "1",
	ClockHz: 16_000_000,
	Mode:    i2cm.ModeStandard,
	Duty:    i2cm.DutyNormal,
	RTCAddr: 0x68,
}
