package gpiosim

import (
	"testing"

	"i2cstack-go/hal/gpio"
)

var pin = gpio.Line{Port: gpio.PortB, Pin: 7}

func TestOpenDrainWiredAnd(t *testing.T) {
	b := New()
	b.Configure(pin, gpio.Config{Mode: gpio.ModeOutput, OutputType: gpio.OpenDrain})

	b.Write(pin, gpio.High)
	if b.Read(pin) != gpio.High {
		t.Fatal("released open-drain line should read high")
	}
	b.Hold(pin, true)
	if b.Read(pin) != gpio.Low {
		t.Fatal("held line should read low")
	}
	b.Hold(pin, false)
	b.Write(pin, gpio.Low)
	if b.Read(pin) != gpio.Low {
		t.Fatal("driven line should read low")
	}
}

func TestLagReturnsPreviousLevel(t *testing.T) {
	b := New()
	b.Configure(pin, gpio.Config{Mode: gpio.ModeOutput, OutputType: gpio.OpenDrain})
	b.Write(pin, gpio.Low)
	b.Lag(pin, 2)
	b.Write(pin, gpio.High)

	got := []gpio.Level{b.Read(pin), b.Read(pin), b.Read(pin)}
	want := []gpio.Level{gpio.Low, gpio.Low, gpio.High}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("read %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestWritesRecorded(t *testing.T) {
	b := New()
	b.Write(pin, gpio.Low)
	b.Write(pin, gpio.High)
	w := b.Writes()
	if len(w) != 2 || w[0].Level != gpio.Low || w[1].Level != gpio.High || w[0].Line != pin {
		t.Fatalf("unexpected writes: %+v", w)
	}
	b.Reset()
	if len(b.Writes()) != 0 || b.Reads() != 0 {
		t.Fatal("reset did not clear trace")
	}
}

func TestLineString(t *testing.T) {
	if s := (gpio.Line{Port: gpio.PortB, Pin: 11}).String(); s != "PB11" {
		t.Fatalf("got %q", s)
	}
	if s := pin.String(); s != "PB7" {
		t.Fatalf("got %q", s)
	}
}
