// Package boards holds the compile-time wiring of the supported targets.
// Exactly one file defines Selected for a given build.
package boards

import (
	"i2cstack-go/drivers/hd44780"
	"i2cstack-go/hal/i2cm"
)

// Descriptor ties a controller to its pins, clock and bus parameters, and
// says where the clock display is wired.
type Descriptor struct {
	Name string

	I2C     string // controller name, e.g. "I2C1"
	ClockHz uint32 // APB1
	Pins    i2cm.BusPins
	Mode    i2cm.Mode
	Duty    i2cm.Duty
	// SpinLimit bounds status polls; zero waits forever.
	SpinLimit uint32

	RTCAddr uint16
	LCD     hd44780.Pins
}
