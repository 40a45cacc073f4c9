package ds1307

import (
	"testing"
	"time"

	"i2cstack-go/errcode"
	"i2cstack-go/hal/i2cm"
	"i2cstack-go/hal/i2csim"
)

func simDevice(t *testing.T) (Device, *i2csim.Peripheral, *i2csim.Memory) {
	t.Helper()
	sim := i2csim.New()
	mem := i2csim.NewMemory(64) // 8 clock registers plus 56 bytes of RAM
	sim.Attach(Address, mem)

	h := &i2cm.Handle{SpinLimit: 1000}
	if err := h.Init(&i2cm.Controller{Name: "I2C1", Regs: sim, ClockHz: 16_000_000}); err != nil {
		t.Fatal(err)
	}
	if err := h.Configure(i2cm.ModeStandard, i2cm.DutyNormal); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if v := sim.Violations(); len(v) != 0 {
			t.Errorf("violations: %v", v)
		}
	})
	return New(h), sim, mem
}

func TestOverSimulatedBus(t *testing.T) {
	d, sim, mem := simDevice(t)
	mem.Regs[regSeconds] = 0x80 | 0x33 // halted at power-up

	if err := d.Configure(); err != nil {
		t.Fatal(err)
	}
	if mem.Regs[regSeconds] != 0 {
		t.Fatalf("seconds = %#x", mem.Regs[regSeconds])
	}

	ts := time.Date(2025, time.December, 31, 22, 15, 7, 0, time.UTC)
	if err := d.SetNow(ts); err != nil {
		t.Fatal(err)
	}
	got, err := d.Now()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(ts) {
		t.Fatalf("got %v want %v", got, ts)
	}

	sim.ClearLog()
	if _, err := d.ReadTime(); err != nil {
		t.Fatal(err)
	}
	if want := "S AD0+ W00+ Sr AD1+ R07+ R15+ R22- P"; sim.Trace() != want {
		t.Fatalf("wire %s", sim.Trace())
	}
}

func TestAbsentChip(t *testing.T) {
	d, _, mem := simDevice(t)
	mem.Absent = true
	err := d.Configure()
	if errcode.Of(err) != errcode.NoAcknowledge {
		t.Fatalf("err = %v", err)
	}
}
