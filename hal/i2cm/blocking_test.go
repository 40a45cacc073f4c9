package i2cm

import (
	"testing"

	"i2cstack-go/errcode"
	"i2cstack-go/hal/i2creg"
	"i2cstack-go/hal/i2csim"
)

func TestSendWritesBytesInOrderThenStop(t *testing.T) {
	r := newRig(t)
	if err := r.h.Send([]byte{0x00, 0x11, 0x22}, rtcAddr, false); err != nil {
		t.Fatal(err)
	}
	r.expectTrace(t, "S AD0+ W00+ W11+ W22+ P")
	r.expectReady(t)
	if r.mem.Regs[0] != 0x11 || r.mem.Regs[1] != 0x22 {
		t.Fatalf("target regs = % x", r.mem.Regs[:2])
	}
	if r.sim.BusBusy() {
		t.Fatal("bus still busy after STOP")
	}
}

func TestSendHoldKeepsBusForRepeatedStart(t *testing.T) {
	r := newRig(t)
	r.mem.Regs[5] = 0x42

	if err := r.h.Send([]byte{0x05}, rtcAddr, true); err != nil {
		t.Fatal(err)
	}
	r.expectTrace(t, "S AD0+ W05+")
	if !r.sim.BusBusy() {
		t.Fatal("held send released the bus")
	}

	var b [1]byte
	if err := r.h.Receive(b[:], rtcAddr, false); err != nil {
		t.Fatal(err)
	}
	r.expectTrace(t, "S AD0+ W05+ Sr AD1+ R42- P")
	if b[0] != 0x42 {
		t.Fatalf("read %#x", b[0])
	}
}

func TestReceiveAckPattern(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{1, "S AD1+ R10- P"},
		{2, "S AD1+ R10+ R11- P"},
		{3, "S AD1+ R10+ R11+ R12- P"},
		{6, "S AD1+ R10+ R11+ R12+ R13+ R14+ R15- P"},
	}
	for _, tc := range cases {
		r := newRig(t)
		for i := range r.mem.Regs {
			r.mem.Regs[i] = byte(0x10 + i)
		}
		buf := make([]byte, tc.n)
		if err := r.h.Receive(buf, rtcAddr, false); err != nil {
			t.Fatalf("n=%d: %v", tc.n, err)
		}
		r.expectTrace(t, tc.want)
		for i, b := range buf {
			if b != byte(0x10+i) {
				t.Fatalf("n=%d: buf = % x", tc.n, buf)
			}
		}
		if !r.h.regs.AckEnabled() {
			t.Fatalf("n=%d: ACK left disabled", tc.n)
		}
		r.expectReady(t)
	}
}

func TestReceiveHoldDoesNotStop(t *testing.T) {
	r := newRig(t)
	buf := make([]byte, 3)
	if err := r.h.Receive(buf, rtcAddr, true); err != nil {
		t.Fatal(err)
	}
	r.expectTrace(t, "S AD1+ R00+ R00+ R00-")
	if r.sim.Count(i2csim.KindStop) != 0 {
		t.Fatal("STOP issued despite hold")
	}
}

func TestAddressNackStopsOnce(t *testing.T) {
	r := newRig(t)
	err := r.h.Send([]byte{1, 2}, 0x50, false)
	if err != errcode.NoAcknowledge {
		t.Fatalf("err = %v", err)
	}
	r.expectTrace(t, "S AA0- P")
	r.expectReady(t)
	if r.sim.Peek(i2creg.SR1)&i2creg.SR1_AF != 0 {
		t.Fatal("AF not cleared")
	}

	buf := make([]byte, 2)
	if err := r.h.Receive(buf, 0x50, false); err != errcode.NoAcknowledge {
		t.Fatalf("receive err = %v", err)
	}
	if r.sim.Count(i2csim.KindStop) != 2 {
		t.Fatalf("stops = %d", r.sim.Count(i2csim.KindStop))
	}
}

func TestDataNack(t *testing.T) {
	r := newRig(t)
	r.mem.NackByte = 2
	err := r.h.Send([]byte{0x00, 0x01, 0x02}, rtcAddr, false)
	if err != errcode.NoAcknowledge {
		t.Fatalf("err = %v", err)
	}
	r.expectTrace(t, "S AD0+ W00+ W01- P")
	r.expectReady(t)
}

func TestProbe(t *testing.T) {
	r := newRig(t)
	if err := r.h.Send(nil, rtcAddr, false); err != nil {
		t.Fatal(err)
	}
	r.expectTrace(t, "S AD0+ P")
}

func TestBusyHandleRejected(t *testing.T) {
	r := newRig(t)
	r.h.state.Store(uint32(BusyReceiving))
	if err := r.h.Send([]byte{1}, rtcAddr, false); err != errcode.Busy {
		t.Fatalf("send err = %v", err)
	}
	if err := r.h.Receive(make([]byte, 1), rtcAddr, false); err != errcode.Busy {
		t.Fatalf("receive err = %v", err)
	}
	if err := r.h.Configure(ModeFast400, DutyNormal); err != errcode.Busy {
		t.Fatalf("configure err = %v", err)
	}
	if len(r.sim.Ops()) != 0 {
		t.Fatalf("busy handle touched the bus: %s", r.sim.Trace())
	}
	if r.h.State() != BusyReceiving {
		t.Fatal("state changed by rejected call")
	}
}

func TestInvalidParams(t *testing.T) {
	r := newRig(t)
	for _, addr := range []uint8{0, 0x80, 0xFF} {
		if err := r.h.Send([]byte{1}, addr, false); err != errcode.InvalidParams {
			t.Fatalf("addr %#x: %v", addr, err)
		}
	}
	if err := r.h.Receive(nil, rtcAddr, false); err != errcode.InvalidParams {
		t.Fatalf("empty receive: %v", err)
	}
	if len(r.sim.Ops()) != 0 {
		t.Fatal("invalid call touched the bus")
	}
}

func TestBusErrorAndArbitrationLoss(t *testing.T) {
	cases := []struct {
		name string
		at   int
		flag uint32
		want error
	}{
		{"berr after address", 2, i2creg.SR1_BERR, errcode.BusError},
		{"arlo after first byte", 3, i2creg.SR1_ARLO, errcode.ArbitrationLost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t)
			r.sim.FailAt(tc.at, tc.flag)
			err := r.h.Send([]byte{0, 1, 2}, rtcAddr, false)
			if err != tc.want {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if r.sim.Peek(i2creg.SR1)&tc.flag != 0 {
				t.Fatal("error flag not cleared")
			}
			r.expectReady(t)
		})
	}
}

func TestArbitrationLossDuringReceive(t *testing.T) {
	r := newRig(t)
	r.sim.FailAt(3, i2creg.SR1_ARLO) // S, A, first R
	err := r.h.Receive(make([]byte, 4), rtcAddr, false)
	if errcode.Of(err) != errcode.ArbitrationLost {
		t.Fatalf("err = %v", err)
	}
	if r.sim.BusBusy() {
		t.Fatal("controller still master after ARLO")
	}
	if !r.h.regs.AckEnabled() {
		t.Fatal("ACK not restored")
	}
}

func TestSpinLimitTimesOut(t *testing.T) {
	sim := i2csim.New()
	h := &Handle{SpinLimit: 10}
	if err := h.Init(&Controller{Name: "I2C1", Regs: sim, ClockHz: 16_000_000}); err != nil {
		t.Fatal(err)
	}
	// Never configured: PE=0, so START is ignored and SB never rises.
	if err := h.Send([]byte{1}, rtcAddr, false); err != errcode.Timeout {
		t.Fatalf("err = %v", err)
	}
	if h.State() != Ready {
		t.Fatal("handle not released after timeout")
	}
	if len(sim.Violations()) == 0 {
		t.Fatal("expected START-while-disabled violation")
	}
}

func TestInitExclusive(t *testing.T) {
	c := &Controller{Name: "I2C1", Regs: i2csim.New(), ClockHz: 16_000_000}
	var a, b Handle
	if err := a.Init(c); err != nil {
		t.Fatal(err)
	}
	if err := b.Init(c); err != errcode.BusInUse {
		t.Fatalf("second init: %v", err)
	}
	if err := a.Release(); err != nil {
		t.Fatal(err)
	}
	if err := b.Init(c); err != nil {
		t.Fatalf("init after release: %v", err)
	}
	if !c.Bound() || b.Controller() != c {
		t.Fatal("binding not recorded")
	}
}

func TestInitRequiresRegisters(t *testing.T) {
	var h Handle
	if err := h.Init(&Controller{}); err != errcode.InvalidParams {
		t.Fatalf("err = %v", err)
	}
	if err := h.Send([]byte{1}, rtcAddr, false); err != errcode.InvalidParams {
		t.Fatalf("unbound send: %v", err)
	}
}
