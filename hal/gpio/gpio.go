// Package gpio is the pin-level boundary the I2C recovery procedure and the
// LCD driver are written against. Implementations must apply every call
// immediately; nothing is buffered or batched.
package gpio

// Port identifies a GPIO port (A..H on STM32F4).
type Port uint8

const (
	PortA Port = iota
	PortB
	PortC
	PortD
	PortE
	PortF
	PortG
	PortH
)

func (p Port) String() string {
	if p <= PortH {
		return "P" + string(rune('A'+p))
	}
	return "P?"
}

// Line is one pin of one port.
type Line struct {
	Port Port
	Pin  uint8 // 0..15
}

func (l Line) String() string {
	s := l.Port.String()
	if l.Pin >= 10 {
		s += string(rune('0' + l.Pin/10))
	}
	return s + string(rune('0'+l.Pin%10))
}

// Mode values match the MODER encoding.
type Mode uint8

const (
	ModeInput Mode = iota
	ModeOutput
	ModeAltFunc
	ModeAnalog
)

type OutputType uint8

const (
	PushPull OutputType = iota
	OpenDrain
)

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type Speed uint8

const (
	SpeedLow Speed = iota
	SpeedMedium
	SpeedFast
	SpeedHigh
)

// Level is a logic level on a line.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// Config is the full per-pin configuration.
type Config struct {
	Mode       Mode
	OutputType OutputType
	Pull       Pull
	Speed      Speed
	AltFunc    uint8 // only meaningful with ModeAltFunc
}

// Controller configures, drives and samples lines.
type Controller interface {
	Configure(l Line, cfg Config)
	Write(l Line, lv Level)
	Read(l Line) Level
}
