// Package hd44780 drives an HD44780-compatible character LCD over a 4-bit
// parallel GPIO interface. RW is held low; the driver never reads the busy
// flag and waits out each instruction's execution time instead.
package hd44780

import (
	"time"

	"i2cstack-go/hal/gpio"
	"i2cstack-go/x/mathx"
)

// Instructions.
const (
	CmdClear        = 0x01
	CmdHome         = 0x02
	CmdEntryInc     = 0x06 // increment DDRAM address, no shift
	CmdDisplayOn    = 0x0C
	CmdCursorOn     = 0x0E // display on, cursor on
	CmdFunction4Bit = 0x28 // 4-bit bus, 2 lines, 5x8 dots
	CmdSetDDRAM     = 0x80

	row2Offset = 0x40
)

// Pins wires the LCD to GPIO lines. D holds D4..D7 in order.
type Pins struct {
	RS, RW, EN gpio.Line
	D          [4]gpio.Line
}

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Rows and Cols default to 2 and 16.
	Rows, Cols uint8
	// Delay waits at least d. Defaults to time.Sleep.
	Delay func(d time.Duration)
}

// Device is a character LCD.
type Device struct {
	io   gpio.Controller
	pins Pins
	cfg  Config
}

// New creates a Device. It does not touch the pins.
func New(io gpio.Controller, pins Pins) Device {
	return Device{io: io, pins: pins}
}

// Configure sets up the pins and runs the initialisation-by-instruction
// sequence for the 4-bit interface.
func (d *Device) Configure(cfgs ...Config) {
	var c Config
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if c.Rows == 0 {
		c.Rows = 2
	}
	if c.Cols == 0 {
		c.Cols = 16
	}
	if c.Delay == nil {
		c.Delay = time.Sleep
	}
	d.cfg = c

	out := gpio.Config{Mode: gpio.ModeOutput, OutputType: gpio.PushPull, Speed: gpio.SpeedFast}
	for _, l := range d.lines() {
		d.io.Configure(l, out)
		d.io.Write(l, gpio.Low)
	}

	d.cfg.Delay(40 * time.Millisecond)
	d.nibble(0x3)
	d.cfg.Delay(5 * time.Millisecond)
	d.nibble(0x3)
	d.cfg.Delay(150 * time.Microsecond)
	d.nibble(0x3)
	d.nibble(0x2)

	d.Command(CmdFunction4Bit)
	d.Command(CmdCursorOn)
	d.Clear()
	d.Command(CmdEntryInc)
}

func (d *Device) lines() []gpio.Line {
	return []gpio.Line{d.pins.RS, d.pins.RW, d.pins.EN, d.pins.D[0], d.pins.D[1], d.pins.D[2], d.pins.D[3]}
}

// Command sends an instruction byte.
func (d *Device) Command(cmd byte) {
	d.io.Write(d.pins.RS, gpio.Low)
	d.send(cmd)
}

// WriteByte sends one character to DDRAM at the cursor.
func (d *Device) WriteByte(c byte) error {
	d.io.Write(d.pins.RS, gpio.High)
	d.send(c)
	return nil
}

// Print writes s at the cursor.
func (d *Device) Print(s string) {
	for i := 0; i < len(s); i++ {
		d.WriteByte(s[i])
	}
}

// Write implements io.Writer for caller-formatted buffers.
func (d *Device) Write(b []byte) (int, error) {
	for _, c := range b {
		d.WriteByte(c)
	}
	return len(b), nil
}

// Clear blanks the display and homes the cursor.
func (d *Device) Clear() {
	d.Command(CmdClear)
	d.cfg.Delay(2 * time.Millisecond)
}

// Home returns the cursor to row 1, column 1.
func (d *Device) Home() {
	d.Command(CmdHome)
	d.cfg.Delay(2 * time.Millisecond)
}

// SetCursor moves to row and col, both counted from 1 and clamped to the
// panel size.
func (d *Device) SetCursor(row, col uint8) {
	row = mathx.Clamp(row, 1, d.cfg.Rows)
	col = mathx.Clamp(col, 1, d.cfg.Cols)
	addr := col - 1
	if row == 2 {
		addr += row2Offset
	}
	d.Command(CmdSetDDRAM | addr)
}

func (d *Device) send(b byte) {
	d.io.Write(d.pins.RW, gpio.Low)
	d.nibble(b >> 4)
	d.nibble(b & 0x0F)
}

func (d *Device) nibble(v byte) {
	for i, l := range d.pins.D {
		d.io.Write(l, gpio.Level(v>>i&1 != 0))
	}
	d.io.Write(d.pins.EN, gpio.High)
	d.cfg.Delay(10 * time.Microsecond)
	d.io.Write(d.pins.EN, gpio.Low)
	d.cfg.Delay(100 * time.Microsecond) // > 37 µs execution time
}
