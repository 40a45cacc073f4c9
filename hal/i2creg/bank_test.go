package i2creg

import "testing"

// file is a plain register array with a read log.
type file struct {
	v     [NumRegs]uint32
	reads []Reg
}

func (f *file) Get(r Reg) uint32 {
	f.reads = append(f.reads, r)
	return f.v[r]
}

func (f *file) Set(r Reg, v uint32) { f.v[r] = v }

func TestBankCR1Bits(t *testing.T) {
	f := &file{}
	b := NewBank(f)

	b.Enable()
	b.SetAck(true)
	b.SetPos(true)
	if f.v[CR1] != CR1_PE|CR1_ACK|CR1_POS {
		t.Fatalf("CR1=%#x", f.v[CR1])
	}
	if !b.Enabled() || !b.AckEnabled() {
		t.Fatal("readback mismatch")
	}
	b.SetPos(false)
	b.Disable()
	if f.v[CR1] != CR1_ACK {
		t.Fatalf("CR1=%#x", f.v[CR1])
	}
}

func TestBankFrequencyPreservesInterrupts(t *testing.T) {
	f := &file{}
	b := NewBank(f)
	b.EnableInterrupts(CR2_ITEVTEN | CR2_ITERREN)
	b.SetFrequency(16)
	if b.Frequency() != 16 {
		t.Fatalf("FREQ=%d", b.Frequency())
	}
	if b.Interrupts() != CR2_ITEVTEN|CR2_ITERREN {
		t.Fatalf("interrupts=%#x", b.Interrupts())
	}
	b.DisableInterrupts(CR2_ITALL)
	if b.Interrupts() != 0 || b.Frequency() != 16 {
		t.Fatalf("CR2=%#x", f.v[CR2])
	}
}

func TestBankClockControl(t *testing.T) {
	f := &file{}
	b := NewBank(f)
	b.SetClockControl(0x1234, true, true)
	ccr, fast, duty := b.ClockControl()
	if ccr != 0x234 || !fast || !duty {
		t.Fatalf("ccr=%#x fast=%v duty=%v", ccr, fast, duty)
	}
	b.SetRiseTime(0xFF)
	if b.RiseTime() != 0x3F {
		t.Fatalf("TRISE=%#x", b.RiseTime())
	}
}

func TestClearAddrReadOrder(t *testing.T) {
	f := &file{}
	NewBank(f).ClearAddr()
	if len(f.reads) != 2 || f.reads[0] != SR1 || f.reads[1] != SR2 {
		t.Fatalf("reads=%v", f.reads)
	}
}

func TestClearFlagsWritesZeroOnlyToMask(t *testing.T) {
	f := &file{}
	NewBank(f).ClearFlags(SR1_AF)
	if f.v[SR1]&SR1_AF != 0 {
		t.Fatal("AF not written as 0")
	}
	if f.v[SR1]&SR1_BERR == 0 || f.v[SR1]&SR1_ARLO == 0 {
		t.Fatal("other rc_w0 flags must be written as 1")
	}
}

func TestRegString(t *testing.T) {
	if CR1.String() != "CR1" || TRISE.String() != "TRISE" {
		t.Fatalf("got %s %s", CR1, TRISE)
	}
}
