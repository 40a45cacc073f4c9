//go:build stm32f4

// rtc-lcd shows the DS1307 time and date on a 16x2 LCD. The bus is
// recovered and configured at boot; the RTC is then read once a second
// through the interrupt-driven engine.
package main

import (
	"context"
	"device/stm32"
	"runtime/interrupt"
	"time"

	"i2cstack-go/boards"
	"i2cstack-go/drivers/ds1307"
	"i2cstack-go/drivers/hd44780"
	"i2cstack-go/errcode"
	"i2cstack-go/hal/gpio"
	"i2cstack-go/hal/i2cirq"
	"i2cstack-go/hal/i2cm"
	"i2cstack-go/hal/i2creg"
	"i2cstack-go/x/conv"
)

var (
	ctrl = i2cm.Controller{
		Name:    boards.Selected.I2C,
		Regs:    i2creg.I2C1,
		ClockHz: boards.Selected.ClockHz,
		EnableClock: func() {
			stm32.RCC.APB1ENR.SetBits(stm32.RCC_APB1ENR_I2C1EN)
		},
	}
	bus i2cm.Handle
)

func main() {
	// Allow USB/serial to come up before we print.
	time.Sleep(2 * time.Second)
	b := boards.Selected
	println("[boot]", b.Name)

	pins := gpio.MMIO{}
	gpio.EnableClock(b.Pins.SCL.Port)
	gpio.EnableClock(b.LCD.RS.Port)

	bus.SpinLimit = b.SpinLimit
	if err := bus.Init(&ctrl); err != nil {
		fatal("[i2c] init", err)
	}
	if err := bus.RecoverBus(pins, b.Pins); err != nil {
		println("[i2c] recover:", err.Error())
	}
	if err := bus.Configure(b.Mode, b.Duty); err != nil {
		fatal("[i2c] configure", err)
	}
	t := bus.Timing()
	println("[i2c]", bus.String(), "scl", t.SCLHz(), "ccr", t.CCR, "trise", t.Trise)

	ev := interrupt.New(stm32.IRQ_I2C1_EV, func(interrupt.Interrupt) { bus.ServeEvent() })
	er := interrupt.New(stm32.IRQ_I2C1_ER, func(interrupt.Interrupt) { bus.ServeError() })
	ev.Enable()
	er.Enable()

	ctx := context.Background()
	w := i2cirq.New(4, 4)
	w.Start(ctx)

	lcd := hd44780.New(pins, b.LCD)
	lcd.Configure()

	rtc := ds1307.New(i2cirq.Bus{W: w, H: &bus, Ctx: ctx})
	rtc.Address = b.RTCAddr
	if err := rtc.Configure(); err != nil {
		println("[rtc] configure:", err.Error())
		lcd.Print("RTC init failed")
	}

	var line [16]byte
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for range tick.C {
		tm, err := rtc.ReadTime()
		if err != nil {
			report("[rtc] time", err, w, pins)
			continue
		}
		dt, err := rtc.ReadDate()
		if err != nil {
			report("[rtc] date", err, w, pins)
			continue
		}

		s := conv.Clock(line[:0], int(tm.Hours), int(tm.Minutes), int(tm.Seconds))
		switch tm.Format {
		case ds1307.Format12hAM:
			s = append(s, " AM"...)
		case ds1307.Format12hPM:
			s = append(s, " PM"...)
		}
		lcd.SetCursor(1, 1)
		lcd.Write(s)

		s = conv.Date(line[:0], int(dt.Date), int(dt.Month), int(dt.Year))
		s = append(s, ' ')
		s = append(s, weekday(dt.Day)...)
		lcd.SetCursor(2, 1)
		lcd.Write(s)
	}
}

func weekday(d uint8) string {
	const names = "SunMonTueWedThuFriSat"
	if d < 1 || d > 7 {
		return "???"
	}
	i := int(d-1) * 3
	return names[i : i+3]
}

// report logs a failed read. Retryable codes wait for the next tick; the
// rest mean the bus may be wedged, so it is recovered and reprogrammed.
func report(what string, err error, w *i2cirq.Worker, pins gpio.Controller) {
	c := errcode.Of(err)
	println(what+":", err.Error(), "code", string(c), "drops", w.Drops(), "stale", w.Stale())
	if errcode.Retryable(c) || bus.State() != i2cm.Ready {
		return
	}
	b := boards.Selected
	if err := bus.RecoverBus(pins, b.Pins); err != nil {
		println("[i2c] recover:", err.Error())
	}
	if err := bus.Configure(b.Mode, b.Duty); err != nil {
		println("[i2c] configure:", err.Error())
	}
}

func fatal(what string, err error) {
	println(what+":", err.Error())
	for {
		time.Sleep(time.Hour)
	}
}
