//go:build !tinygo

// rtc-host reads, or with -set writes, a DS1307 on a Linux i2c-dev bus.
package main

import (
	"flag"
	"os"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"i2cstack-go/boards"
	"i2cstack-go/drivers/ds1307"
	"i2cstack-go/errcode"
)

func main() {
	busName := flag.String("bus", boards.Selected.I2C, "i2c bus name or number")
	addr := flag.Uint("addr", uint(boards.Selected.RTCAddr), "7-bit RTC address")
	set := flag.Bool("set", false, "write the host's UTC time to the RTC first")
	flag.Parse()

	if err := run(*busName, uint16(*addr), *set); err != nil {
		println("[rtc-host]", err.Error())
		os.Exit(1)
	}
}

func run(busName string, addr uint16, set bool) error {
	if addr == 0 || addr >= 0x80 {
		return &errcode.E{C: errcode.InvalidParams, Op: "rtc-host", Msg: "address out of range"}
	}
	if _, err := host.Init(); err != nil {
		return errcode.Wrap("host.init", err)
	}
	b, err := i2creg.Open(busName)
	if err != nil {
		return &errcode.E{C: errcode.UnknownBus, Op: "i2c.open", Err: err}
	}
	defer b.Close()
	if err := b.SetSpeed(physic.Frequency(boards.Selected.Mode.Hz()) * physic.Hertz); err != nil {
		println("[rtc-host] set speed:", err.Error())
	}

	rtc := ds1307.New(b)
	rtc.Address = addr

	if set {
		if err := rtc.SetNow(time.Now().UTC()); err != nil {
			return errcode.Wrap("ds1307.set", err)
		}
	}
	halted, err := rtc.Halted()
	if err != nil {
		return errcode.Wrap("ds1307.read", err)
	}
	if halted {
		println("[rtc-host] oscillator halted; run with -set")
	}
	now, err := rtc.Now()
	if err != nil {
		return errcode.Wrap("ds1307.read", err)
	}
	println("[rtc-host]", b.String(), now.Format(time.RFC3339))
	return nil
}
