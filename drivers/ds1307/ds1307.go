// Package ds1307 drives the Maxim DS1307 real-time clock.
//
// All registers are BCD. Time and date reads are single burst transfers, so
// they see one consistent snapshot of the counters.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided; the register pointer set by the write is what
// the read starts from.
package ds1307

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x68

// Register map.
const (
	regSeconds = 0x00
	regMinutes = 0x01
	regHours   = 0x02
	regDay     = 0x03
	regDate    = 0x04
	regMonth   = 0x05
	regYear    = 0x06
	regControl = 0x07
)

const (
	secondsCH = 1 << 7 // clock halt
	hours12h  = 1 << 6
	hoursPM   = 1 << 5
)

// TimeFormat selects the hours encoding.
type TimeFormat uint8

const (
	Format12hAM TimeFormat = iota
	Format12hPM
	Format24h
)

// Time of day. Hours are 0..23 with Format24h, 1..12 otherwise.
type Time struct {
	Seconds uint8
	Minutes uint8
	Hours   uint8
	Format  TimeFormat
}

// Date fields. Day is the day of the week, 1..7 with 1 = Sunday. Year is the
// offset from 2000.
type Date struct {
	Day   uint8
	Date  uint8
	Month uint8
	Year  uint8
}

// Errors returned by the driver.
var (
	ErrClockHalted = errors.New("ds1307: clock halted")
	ErrRange       = errors.New("ds1307: value out of range")
)

// Device wraps an I2C connection to a DS1307.
type Device struct {
	bus     drivers.I2C
	Address uint16

	buf [8]byte
}

// New creates a Device on an already configured bus. It does not touch the
// chip.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Configure starts the oscillator by clearing CH (resetting the seconds) and
// confirms it stayed clear.
func (d *Device) Configure() error {
	if err := d.writeReg(regSeconds, 0x00); err != nil {
		return err
	}
	v, err := d.readReg(regSeconds)
	if err != nil {
		return err
	}
	if v&secondsCH != 0 {
		return ErrClockHalted
	}
	return nil
}

// Halted reports the clock-halt bit.
func (d *Device) Halted() (bool, error) {
	v, err := d.readReg(regSeconds)
	return v&secondsCH != 0, err
}

// SetTime writes seconds, minutes and hours in one burst. CH is left clear.
func (d *Device) SetTime(t Time) error {
	h, err := encodeHours(t.Hours, t.Format)
	if err != nil {
		return err
	}
	if t.Seconds > 59 || t.Minutes > 59 {
		return ErrRange
	}
	d.buf[0] = regSeconds
	d.buf[1] = ToBCD(t.Seconds) &^ secondsCH
	d.buf[2] = ToBCD(t.Minutes)
	d.buf[3] = h
	return d.bus.Tx(d.Address, d.buf[:4], nil)
}

// ReadTime reads seconds, minutes and hours in one burst.
func (d *Device) ReadTime() (Time, error) {
	r := d.buf[1:4]
	if err := d.burst(regSeconds, r); err != nil {
		return Time{}, err
	}
	t := Time{
		Seconds: FromBCD(r[0] &^ secondsCH),
		Minutes: FromBCD(r[1]),
	}
	t.Hours, t.Format = decodeHours(r[2])
	return t, nil
}

// SetDate writes day of week, date, month and year in one burst.
func (d *Device) SetDate(dt Date) error {
	if dt.Day < 1 || dt.Day > 7 || dt.Date < 1 || dt.Date > 31 ||
		dt.Month < 1 || dt.Month > 12 || dt.Year > 99 {
		return ErrRange
	}
	d.buf[0] = regDay
	d.buf[1] = ToBCD(dt.Day)
	d.buf[2] = ToBCD(dt.Date)
	d.buf[3] = ToBCD(dt.Month)
	d.buf[4] = ToBCD(dt.Year)
	return d.bus.Tx(d.Address, d.buf[:5], nil)
}

// ReadDate reads day of week, date, month and year in one burst.
func (d *Device) ReadDate() (Date, error) {
	r := d.buf[1:5]
	if err := d.burst(regDay, r); err != nil {
		return Date{}, err
	}
	return Date{
		Day:   FromBCD(r[0]),
		Date:  FromBCD(r[1]),
		Month: FromBCD(r[2]),
		Year:  FromBCD(r[3]),
	}, nil
}

// Now reads all seven counters at once and returns them as a UTC time.
func (d *Device) Now() (time.Time, error) {
	r := d.buf[1:8]
	if err := d.burst(regSeconds, r); err != nil {
		return time.Time{}, err
	}
	h, f := decodeHours(r[2])
	h = to24(h, f)
	return time.Date(2000+int(FromBCD(r[6])), time.Month(FromBCD(r[5])), int(FromBCD(r[4])),
		int(h), int(FromBCD(r[1])), int(FromBCD(r[0]&^secondsCH)), 0, time.UTC), nil
}

// SetNow writes t (24-hour format) to the clock. Years outside 2000..2099
// are rejected.
func (d *Device) SetNow(t time.Time) error {
	y := t.Year() - 2000
	if y < 0 || y > 99 {
		return ErrRange
	}
	d.buf[0] = regSeconds
	d.buf[1] = ToBCD(uint8(t.Second()))
	d.buf[2] = ToBCD(uint8(t.Minute()))
	d.buf[3] = ToBCD(uint8(t.Hour()))
	d.buf[4] = uint8(t.Weekday()) + 1
	d.buf[5] = ToBCD(uint8(t.Day()))
	d.buf[6] = ToBCD(uint8(t.Month()))
	d.buf[7] = ToBCD(uint8(y))
	return d.bus.Tx(d.Address, d.buf[:8], nil)
}

// SetSquareWave writes the control register (OUT, SQWE, RS1:0) verbatim.
func (d *Device) SetSquareWave(ctrl uint8) error {
	return d.writeReg(regControl, ctrl)
}

func (d *Device) writeReg(reg, v uint8) error {
	d.buf[0] = reg
	d.buf[1] = v
	return d.bus.Tx(d.Address, d.buf[:2], nil)
}

func (d *Device) readReg(reg uint8) (uint8, error) {
	if err := d.burst(reg, d.buf[1:2]); err != nil {
		return 0, err
	}
	return d.buf[1], nil
}

func (d *Device) burst(reg uint8, r []byte) error {
	d.buf[0] = reg
	return d.bus.Tx(d.Address, d.buf[:1], r)
}

func encodeHours(h uint8, f TimeFormat) (uint8, error) {
	switch f {
	case Format24h:
		if h > 23 {
			return 0, ErrRange
		}
		return ToBCD(h), nil
	case Format12hAM, Format12hPM:
		if h < 1 || h > 12 {
			return 0, ErrRange
		}
		v := ToBCD(h) | hours12h
		if f == Format12hPM {
			v |= hoursPM
		}
		return v, nil
	}
	return 0, ErrRange
}

func decodeHours(v uint8) (uint8, TimeFormat) {
	if v&hours12h == 0 {
		return FromBCD(v & 0x3F), Format24h
	}
	f := Format12hAM
	if v&hoursPM != 0 {
		f = Format12hPM
	}
	return FromBCD(v & 0x1F), f
}

func to24(h uint8, f TimeFormat) uint8 {
	switch f {
	case Format12hAM:
		if h == 12 {
			return 0
		}
	case Format12hPM:
		if h != 12 {
			return h + 12
		}
	}
	return h
}

// ToBCD encodes 0..99 as packed BCD.
func ToBCD(v uint8) uint8 { return v/10<<4 | v%10 }

// FromBCD decodes packed BCD.
func FromBCD(b uint8) uint8 { return (b>>4)*10 + b&0x0F }
