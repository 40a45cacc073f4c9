package i2creg

// Status is an SR1 snapshot.
type Status uint32

// Has reports whether any of the given SR1 bits are set.
func (s Status) Has(mask uint32) bool { return uint32(s)&mask != 0 }

// Bank is the typed view used by the transfer engines.
type Bank struct {
	r Registers
}

// NewBank wraps a raw register block.
func NewBank(r Registers) Bank { return Bank{r: r} }

// Raw returns the underlying register block.
func (b Bank) Raw() Registers { return b.r }

func (b Bank) setBits(r Reg, mask uint32)   { b.r.Set(r, b.r.Get(r)|mask) }
func (b Bank) clearBits(r Reg, mask uint32) { b.r.Set(r, b.r.Get(r)&^mask) }

func (b Bank) setBit(r Reg, mask uint32, on bool) {
	if on {
		b.setBits(r, mask)
	} else {
		b.clearBits(r, mask)
	}
}

// ---- CR1 ----

func (b Bank) Enable()       { b.setBits(CR1, CR1_PE) }
func (b Bank) Disable()      { b.clearBits(CR1, CR1_PE) }
func (b Bank) Enabled() bool { return b.r.Get(CR1)&CR1_PE != 0 }

// SetAck controls acknowledge generation for received bytes. The hardware
// ignores ACK while PE is clear.
func (b Bank) SetAck(on bool) { b.setBit(CR1, CR1_ACK, on) }

// AckEnabled reports the current CR1.ACK bit.
func (b Bank) AckEnabled() bool { return b.r.Get(CR1)&CR1_ACK != 0 }

// SetPos makes ACK apply to the next byte rather than the current one.
func (b Bank) SetPos(on bool) { b.setBit(CR1, CR1_POS, on) }

// Start requests a START (or repeated START) condition.
func (b Bank) Start() { b.setBits(CR1, CR1_START) }

// Stop requests a STOP condition after the current byte.
func (b Bank) Stop() { b.setBits(CR1, CR1_STOP) }

// SoftwareReset pulses SWRST. All registers return to reset values.
func (b Bank) SoftwareReset() {
	b.setBits(CR1, CR1_SWRST)
	b.clearBits(CR1, CR1_SWRST)
}

// ---- CR2 ----

// SetFrequency programs the peripheral input clock in MHz.
func (b Bank) SetFrequency(mhz uint8) {
	v := b.r.Get(CR2) &^ CR2_FREQ
	b.r.Set(CR2, v|uint32(mhz)&CR2_FREQ)
}

func (b Bank) Frequency() uint8 { return uint8(b.r.Get(CR2) & CR2_FREQ) }

func (b Bank) EnableInterrupts(mask uint32)  { b.setBits(CR2, mask&CR2_ITALL) }
func (b Bank) DisableInterrupts(mask uint32) { b.clearBits(CR2, mask&CR2_ITALL) }

// Interrupts returns the enabled CR2 interrupt sources.
func (b Bank) Interrupts() uint32 { return b.r.Get(CR2) & CR2_ITALL }

// ---- CCR / TRISE ----

// SetClockControl writes the divisor plus the fast-mode and duty selectors.
func (b Bank) SetClockControl(ccr uint16, fast, duty bool) {
	v := uint32(ccr) & CCR_CCR
	if fast {
		v |= CCR_FS
	}
	if duty {
		v |= CCR_DUTY
	}
	b.r.Set(CCR, v)
}

// ClockControl reads back the divisor and selectors.
func (b Bank) ClockControl() (ccr uint16, fast, duty bool) {
	v := b.r.Get(CCR)
	return uint16(v & CCR_CCR), v&CCR_FS != 0, v&CCR_DUTY != 0
}

func (b Bank) SetRiseTime(trise uint8) { b.r.Set(TRISE, uint32(trise)&TRISE_TRISE) }
func (b Bank) RiseTime() uint8         { return uint8(b.r.Get(TRISE) & TRISE_TRISE) }

// ---- status / data ----

// Status reads SR1. Reading SR1 is the first half of the SB and ADDR
// clearing sequences.
func (b Bank) Status() Status { return Status(b.r.Get(SR1)) }

// Status2 reads SR2.
func (b Bank) Status2() uint32 { return b.r.Get(SR2) }

// ClearAddr clears ADDR by reading SR1 followed by SR2. On a receiver this
// releases the clock and the first data byte starts immediately.
func (b Bank) ClearAddr() {
	_ = b.r.Get(SR1)
	_ = b.r.Get(SR2)
}

// ClearFlags clears rc_w0 flags in SR1 by writing 0 to them and 1 elsewhere.
func (b Bank) ClearFlags(mask uint32) {
	b.r.Set(SR1, SR1_RCW0&^mask)
}

func (b Bank) WriteData(v byte) { b.r.Set(DR, uint32(v)) }
func (b Bank) ReadData() byte   { return byte(b.r.Get(DR)) }
