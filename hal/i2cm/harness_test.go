package i2cm

import (
	"testing"

	"i2cstack-go/hal/i2csim"
)

const rtcAddr = 0x68

type rig struct {
	h   *Handle
	sim *i2csim.Peripheral
	mem *i2csim.Memory
}

// newRig returns a configured 16 MHz standard-mode handle with a 64-byte
// register target at rtcAddr. Protocol violations fail the test.
func newRig(t *testing.T) *rig {
	t.Helper()
	sim := i2csim.New()
	mem := i2csim.NewMemory(64)
	sim.Attach(rtcAddr, mem)

	h := &Handle{}
	if err := h.Init(&Controller{Name: "I2C1", Regs: sim, ClockHz: 16_000_000}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := h.Configure(ModeStandard, DutyNormal); err != nil {
		t.Fatalf("configure: %v", err)
	}
	sim.OnEvent(h.ServeEvent)
	sim.OnError(h.ServeError)
	sim.ClearLog()

	t.Cleanup(func() {
		if v := sim.Violations(); len(v) != 0 {
			t.Errorf("protocol violations: %v", v)
		}
	})
	return &rig{h: h, sim: sim, mem: mem}
}

func (r *rig) expectTrace(t *testing.T, want string) {
	t.Helper()
	if got := r.sim.Trace(); got != want {
		t.Fatalf("wire:\n got  %s\n want %s", got, want)
	}
}

func (r *rig) expectReady(t *testing.T) {
	t.Helper()
	if s := r.h.State(); s != Ready {
		t.Fatalf("state = %v, want ready", s)
	}
}
