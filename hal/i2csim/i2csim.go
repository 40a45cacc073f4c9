// Package i2csim simulates an STM32F4 I2C controller in master mode together
// with the devices on its bus, for host-side tests of the transfer engines.
//
// The model follows the reference-manual behaviour the engines depend on:
//
//   - START sets SB; SB clears when DR is written after an SR1 read.
//   - The address byte yields ADDR (acknowledged) or AF (not acknowledged).
//   - ADDR clears on an SR1 read followed by an SR2 read.
//   - Transmit bytes shift out as soon as DR is written, leaving TXE and BTF set.
//   - Receive uses a two-stage pipeline (DR plus shift register). A byte's
//     ACK/NACK is resolved when it enters DR, from CR1.ACK, or (with POS) from
//     the ACK value in force when the previous byte was resolved.
//   - STOP waits for a byte still in the shift register.
//   - rc_w0 error flags clear on a 0 write; ACK reads 0 while PE is clear;
//     SWRST returns every register to reset.
//
// Interrupts are level-triggered and delivered from Service, which stands in
// for the NVIC: a test calls it where the hardware would preempt, or enables
// SetPreemptive to have every register access service pending lines.
//
// A Peripheral is not safe for concurrent use.
package i2csim

import (
	"fmt"
	"strings"

	"i2cstack-go/hal/i2creg"
)

// Kind classifies a bus operation in the wire log.
type Kind uint8

const (
	KindStart Kind = iota
	KindRestart
	KindAddress
	KindWrite
	KindRead
	KindStop
)

// Op is one bus operation. Ack is the acknowledge bit that followed the byte:
// driven by the target for Address and Write, by the master for Read.
type Op struct {
	Kind Kind
	Byte byte
	Ack  bool
}

func (o Op) String() string {
	ack := "-"
	if o.Ack {
		ack = "+"
	}
	switch o.Kind {
	case KindStart:
		return "S"
	case KindRestart:
		return "Sr"
	case KindAddress:
		return fmt.Sprintf("A%02X%s", o.Byte, ack)
	case KindWrite:
		return fmt.Sprintf("W%02X%s", o.Byte, ack)
	case KindRead:
		return fmt.Sprintf("R%02X%s", o.Byte, ack)
	case KindStop:
		return "P"
	}
	return "?"
}

type phase uint8

const (
	phaseIdle phase = iota
	phaseStart
	phaseAddr
	phaseTx
	phaseRx
	phaseStall // AF or BERR: master still owns the bus, nothing moves until START/STOP
)

const maxServiceRounds = 10000

// Peripheral implements i2creg.Registers.
type Peripheral struct {
	cr1, cr2, oar1, oar2, ccr, trise, fltr uint32
	sr1, sr2                               uint32
	dr                                     byte

	targets map[uint8]Target
	cur     Target
	phase   phase
	reading bool
	sr1Read bool

	rxDone      bool
	shift       byte
	shiftFull   bool
	posAck      bool
	stopPending bool

	faultAt   int
	faultFlag uint32

	ops        []Op
	violations []string

	onEvent, onError func()
	preempt          bool
	inService        bool
}

var _ i2creg.Registers = (*Peripheral)(nil)

// New returns a controller in its reset state with no devices attached.
func New() *Peripheral {
	return &Peripheral{targets: map[uint8]Target{}}
}

// Attach places a target at the 7-bit address addr.
func (p *Peripheral) Attach(addr uint8, t Target) { p.targets[addr&0x7F] = t }

// Detach removes the target at addr; the address will be NACKed.
func (p *Peripheral) Detach(addr uint8) { delete(p.targets, addr&0x7F) }

// OnEvent and OnError register the event and error interrupt handlers.
func (p *Peripheral) OnEvent(f func()) { p.onEvent = f }
func (p *Peripheral) OnError(f func()) { p.onError = f }

// SetPreemptive makes every register access that leaves an interrupt line
// asserted run Service immediately, as the NVIC would.
func (p *Peripheral) SetPreemptive(on bool) { p.preempt = on }

func (p *Peripheral) preemptNow() {
	if p.preempt && !p.inService {
		p.Service()
	}
}

// FailAt raises flag (SR1_BERR or SR1_ARLO) right after the n-th wire
// operation is logged (1-based). It fires once.
func (p *Peripheral) FailAt(n int, flag uint32) {
	p.faultAt = n
	p.faultFlag = flag
}

// Raise sets SR1 flags directly, as a glitch on the wire would, and
// services the result in preemptive mode.
func (p *Peripheral) Raise(flags uint32) {
	p.sr1 |= flags
	p.preemptNow()
}

// ---- Registers ----

func (p *Peripheral) Get(r i2creg.Reg) uint32 {
	switch r {
	case i2creg.CR1:
		return p.cr1
	case i2creg.CR2:
		return p.cr2
	case i2creg.OAR1:
		return p.oar1
	case i2creg.OAR2:
		return p.oar2
	case i2creg.SR1:
		p.sr1Read = true
		return p.sr1
	case i2creg.SR2:
		v := p.sr2
		if p.sr1Read && p.sr1&i2creg.SR1_ADDR != 0 {
			p.sr1 &^= i2creg.SR1_ADDR
			p.sr1Read = false
			p.afterAddr()
			p.preemptNow()
		}
		p.sr1Read = false
		return v
	case i2creg.DR:
		v := p.readDR()
		p.preemptNow()
		return uint32(v)
	case i2creg.CCR:
		return p.ccr
	case i2creg.TRISE:
		return p.trise
	case i2creg.FLTR:
		return p.fltr
	}
	return 0
}

func (p *Peripheral) Set(r i2creg.Reg, v uint32) {
	defer p.preemptNow()
	switch r {
	case i2creg.CR1:
		p.writeCR1(v)
	case i2creg.CR2:
		p.cr2 = v & (i2creg.CR2_FREQ | i2creg.CR2_ITALL | i2creg.CR2_DMAEN | i2creg.CR2_LAST)
	case i2creg.OAR1:
		p.oar1 = v
	case i2creg.OAR2:
		p.oar2 = v
	case i2creg.SR1:
		p.sr1 &= v | ^i2creg.SR1_RCW0
	case i2creg.SR2:
		// read-only
	case i2creg.DR:
		p.writeDR(byte(v))
	case i2creg.CCR:
		p.timingWrite("CCR")
		p.ccr = v & (i2creg.CCR_CCR | i2creg.CCR_DUTY | i2creg.CCR_FS)
	case i2creg.TRISE:
		p.timingWrite("TRISE")
		p.trise = v & i2creg.TRISE_TRISE
	case i2creg.FLTR:
		p.fltr = v & 0x1F
	}
}

// Peek returns a register without read side effects.
func (p *Peripheral) Peek(r i2creg.Reg) uint32 {
	switch r {
	case i2creg.SR1:
		return p.sr1
	case i2creg.SR2:
		return p.sr2
	case i2creg.DR:
		return uint32(p.dr)
	}
	return p.Get(r)
}

func (p *Peripheral) timingWrite(name string) {
	if p.cr1&i2creg.CR1_PE != 0 {
		p.violate(name + " written while PE=1")
	}
}

func (p *Peripheral) writeCR1(v uint32) {
	old := p.cr1
	if v&i2creg.CR1_SWRST != 0 {
		p.reset()
		p.cr1 = i2creg.CR1_SWRST
		return
	}
	if v&i2creg.CR1_PE == 0 {
		v &^= i2creg.CR1_ACK
		if old&i2creg.CR1_PE != 0 && p.phase != phaseIdle {
			p.violate("PE cleared during a transfer")
			p.release()
		}
	}
	p.cr1 = v &^ (i2creg.CR1_START | i2creg.CR1_STOP)
	if p.stopPending {
		p.cr1 |= i2creg.CR1_STOP
	}
	if v&i2creg.CR1_START != 0 {
		p.start()
	}
	if v&i2creg.CR1_STOP != 0 && !p.stopPending {
		p.stop()
	}
}

func (p *Peripheral) reset() {
	p.cr1, p.cr2, p.oar1, p.oar2, p.ccr, p.trise, p.fltr = 0, 0, 0, 0, 0, 0, 0
	p.sr1, p.sr2, p.dr = 0, 0, 0
	p.release()
}

// release drops bus ownership without a STOP on the wire.
func (p *Peripheral) release() {
	if p.cur != nil {
		p.cur.Stop()
	}
	p.cur = nil
	p.phase = phaseIdle
	p.sr2 = 0
	p.shiftFull = false
	p.stopPending = false
	p.rxDone = false
}

func (p *Peripheral) start() {
	if p.cr1&i2creg.CR1_PE == 0 {
		p.violate("START while PE=0")
		return
	}
	if p.sr1&i2creg.SR1_RXNE != 0 {
		p.violate("START with unread data in DR")
	}
	if p.sr2&i2creg.SR2_MSL != 0 {
		if p.cur != nil {
			p.cur.Stop()
		}
		p.log(Op{Kind: KindRestart})
	} else {
		p.log(Op{Kind: KindStart})
	}
	p.cur = nil
	p.sr1 = p.sr1&i2creg.SR1_RCW0 | i2creg.SR1_SB
	p.sr2 = i2creg.SR2_MSL | i2creg.SR2_BUSY
	p.phase = phaseStart
	p.sr1Read = false
	p.rxDone = false
	p.shiftFull = false
	p.stopPending = false
	p.fault()
}

func (p *Peripheral) stop() {
	if p.phase == phaseIdle {
		p.violate("STOP while bus idle")
		return
	}
	if p.phase == phaseRx && p.shiftFull {
		p.stopPending = true
		p.cr1 |= i2creg.CR1_STOP
		return
	}
	p.execStop()
}

func (p *Peripheral) execStop() {
	p.log(Op{Kind: KindStop})
	p.release()
	p.sr1 &^= i2creg.SR1_SB | i2creg.SR1_ADDR | i2creg.SR1_BTF | i2creg.SR1_TXE
	p.cr1 &^= i2creg.CR1_STOP
}

func (p *Peripheral) writeDR(b byte) {
	switch p.phase {
	case phaseStart:
		if p.sr1&i2creg.SR1_SB == 0 {
			p.violate("address written without SB")
		}
		if !p.sr1Read {
			p.violate("SB not preceded by an SR1 read")
		}
		p.sr1 &^= i2creg.SR1_SB
		p.sr1Read = false
		p.address(b)
	case phaseTx:
		if p.sr1&i2creg.SR1_TXE == 0 {
			p.violate("DR written while TXE=0")
		}
		p.sr1 &^= i2creg.SR1_TXE | i2creg.SR1_BTF
		ack := p.cur.Write(b)
		if ack {
			p.sr1 |= i2creg.SR1_TXE | i2creg.SR1_BTF
		} else {
			p.sr1 |= i2creg.SR1_AF
			p.phase = phaseStall
		}
		p.log(Op{Kind: KindWrite, Byte: b, Ack: ack})
	default:
		p.violate(fmt.Sprintf("DR written in phase %d", p.phase))
	}
}

func (p *Peripheral) address(b byte) {
	read := b&1 != 0
	t := p.targets[b>>1]
	ack := t != nil && t.Address(read)
	if ack {
		p.cur = t
		p.sr1 |= i2creg.SR1_ADDR
		if !read {
			p.sr2 |= i2creg.SR2_TRA
		}
		p.posAck = p.cr1&i2creg.CR1_ACK != 0
		p.reading = read
		p.phase = phaseAddr
	} else {
		p.sr1 |= i2creg.SR1_AF
		p.phase = phaseStall
	}
	p.log(Op{Kind: KindAddress, Byte: b, Ack: ack})
}

func (p *Peripheral) afterAddr() {
	if p.reading {
		p.phase = phaseRx
		p.deliver()
		return
	}
	p.phase = phaseTx
	p.sr1 |= i2creg.SR1_TXE
}

func (p *Peripheral) readDR() byte {
	v := p.dr
	if p.sr1&i2creg.SR1_RXNE == 0 {
		p.violate("DR read while RXNE=0")
		return v
	}
	p.sr1 &^= i2creg.SR1_RXNE | i2creg.SR1_BTF
	p.deliver()
	return v
}

// deliver moves the next byte into an empty DR and refills the shift register.
func (p *Peripheral) deliver() {
	if p.phase != phaseRx || p.sr1&i2creg.SR1_RXNE != 0 {
		return
	}
	switch {
	case p.shiftFull:
		p.shiftFull = false
		p.latch(p.shift)
	case !p.rxDone:
		p.latch(p.cur.Read())
	}
	if p.phase != phaseRx {
		return
	}
	if p.sr1&i2creg.SR1_RXNE != 0 && !p.rxDone && !p.stopPending && !p.shiftFull {
		p.shift = p.cur.Read()
		p.shiftFull = true
		p.sr1 |= i2creg.SR1_BTF
	}
	if p.stopPending && !p.shiftFull {
		p.execStop()
	}
}

func (p *Peripheral) latch(b byte) {
	ack := p.cr1&i2creg.CR1_ACK != 0
	if p.cr1&i2creg.CR1_POS != 0 {
		ack = p.posAck
	}
	p.posAck = p.cr1&i2creg.CR1_ACK != 0
	p.dr = b
	p.sr1 |= i2creg.SR1_RXNE
	if !ack {
		p.rxDone = true
	}
	p.log(Op{Kind: KindRead, Byte: b, Ack: ack})
}

func (p *Peripheral) log(o Op) {
	p.ops = append(p.ops, o)
	if o.Kind != KindStart && o.Kind != KindRestart {
		p.fault()
	}
}

func (p *Peripheral) fault() {
	if p.faultAt == 0 || len(p.ops) < p.faultAt {
		return
	}
	p.faultAt = 0
	p.sr1 &^= i2creg.SR1_SB | i2creg.SR1_ADDR | i2creg.SR1_BTF | i2creg.SR1_TXE | i2creg.SR1_RXNE
	p.sr1 |= p.faultFlag
	if p.faultFlag&i2creg.SR1_ARLO != 0 {
		p.release() // arbitration loss drops the controller to slave mode
		return
	}
	p.phase = phaseStall
	p.shiftFull = false
}

func (p *Peripheral) violate(msg string) { p.violations = append(p.violations, msg) }

// ---- interrupt delivery ----

func (p *Peripheral) eventPending() bool {
	if p.cr2&i2creg.CR2_ITEVTEN == 0 {
		return false
	}
	if p.sr1&(i2creg.SR1_SB|i2creg.SR1_ADDR|i2creg.SR1_BTF|i2creg.SR1_STOPF|i2creg.SR1_ADD10) != 0 {
		return true
	}
	return p.cr2&i2creg.CR2_ITBUFEN != 0 && p.sr1&(i2creg.SR1_TXE|i2creg.SR1_RXNE) != 0
}

func (p *Peripheral) errorPending() bool {
	return p.cr2&i2creg.CR2_ITERREN != 0 && p.sr1&i2creg.SR1_ERRORS != 0
}

// Pending reports whether an interrupt line is asserted.
func (p *Peripheral) Pending() bool { return p.eventPending() || p.errorPending() }

// Service runs the registered handlers while an interrupt line is asserted,
// error line first, and returns how many handler calls were made. It panics
// if the lines never settle, which means a handler failed to clear its cause.
func (p *Peripheral) Service() int {
	p.inService = true
	defer func() { p.inService = false }()
	n := 0
	for {
		switch {
		case p.errorPending() && p.onError != nil:
			p.onError()
		case p.eventPending() && p.onEvent != nil:
			p.onEvent()
		default:
			return n
		}
		n++
		if n > maxServiceRounds {
			panic("i2csim: interrupt storm, SR1=" + fmt.Sprintf("%#04x", p.sr1))
		}
	}
}

// ---- inspection ----

// Ops returns a copy of the wire log.
func (p *Peripheral) Ops() []Op { return append([]Op(nil), p.ops...) }

// Trace renders the wire log, e.g. "S AD0+ W00+ P".
func (p *Peripheral) Trace() string {
	parts := make([]string, len(p.ops))
	for i, o := range p.ops {
		parts[i] = o.String()
	}
	return strings.Join(parts, " ")
}

// Count returns how many operations of kind k were logged.
func (p *Peripheral) Count(k Kind) int {
	n := 0
	for _, o := range p.ops {
		if o.Kind == k {
			n++
		}
	}
	return n
}

// Violations returns protocol misuse observed so far.
func (p *Peripheral) Violations() []string { return append([]string(nil), p.violations...) }

// BusBusy reports whether the controller still owns the bus.
func (p *Peripheral) BusBusy() bool { return p.sr2&i2creg.SR2_BUSY != 0 }

// ClearLog forgets the wire log and violations.
func (p *Peripheral) ClearLog() {
	p.ops = nil
	p.violations = nil
}
