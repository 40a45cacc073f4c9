// Package i2creg is a typed view over one STM32F4-class I2C controller's
// register block (RM0090/RM0390 section "I2C registers").
//
// Registers gives raw 32-bit access so the same code runs against the
// memory-mapped peripheral on the MCU and against a simulator on the host.
// Bank layers read/modify/write helpers on top; it adds no behaviour of its
// own beyond what each bit documents.
package i2creg

// Reg identifies one register of the block.
type Reg uint8

const (
	CR1 Reg = iota
	CR2
	OAR1
	OAR2
	DR
	SR1
	SR2
	CCR
	TRISE
	FLTR

	NumRegs
)

var regNames = [NumRegs]string{"CR1", "CR2", "OAR1", "OAR2", "DR", "SR1", "SR2", "CCR", "TRISE", "FLTR"}

func (r Reg) String() string {
	if r < NumRegs {
		return regNames[r]
	}
	return "?"
}

// CR1 bits.
const (
	CR1_PE        uint32 = 1 << 0
	CR1_SMBUS     uint32 = 1 << 1
	CR1_ENGC      uint32 = 1 << 6
	CR1_NOSTRETCH uint32 = 1 << 7
	CR1_START     uint32 = 1 << 8
	CR1_STOP      uint32 = 1 << 9
	CR1_ACK       uint32 = 1 << 10
	CR1_POS       uint32 = 1 << 11
	CR1_PEC       uint32 = 1 << 12
	CR1_SWRST     uint32 = 1 << 15
)

// CR2 bits.
const (
	CR2_FREQ    uint32 = 0x3F
	CR2_ITERREN uint32 = 1 << 8
	CR2_ITEVTEN uint32 = 1 << 9
	CR2_ITBUFEN uint32 = 1 << 10
	CR2_DMAEN   uint32 = 1 << 11
	CR2_LAST    uint32 = 1 << 12

	CR2_ITALL = CR2_ITERREN | CR2_ITEVTEN | CR2_ITBUFEN
)

// SR1 bits.
const (
	SR1_SB       uint32 = 1 << 0
	SR1_ADDR     uint32 = 1 << 1
	SR1_BTF      uint32 = 1 << 2
	SR1_ADD10    uint32 = 1 << 3
	SR1_STOPF    uint32 = 1 << 4
	SR1_RXNE     uint32 = 1 << 6
	SR1_TXE      uint32 = 1 << 7
	SR1_BERR     uint32 = 1 << 8
	SR1_ARLO     uint32 = 1 << 9
	SR1_AF       uint32 = 1 << 10
	SR1_OVR      uint32 = 1 << 11
	SR1_PECERR   uint32 = 1 << 12
	SR1_TIMEOUT  uint32 = 1 << 14
	SR1_SMBALERT uint32 = 1 << 15

	// SR1_RCW0 are the flags cleared by writing 0 (writing 1 has no effect).
	SR1_RCW0 = SR1_BERR | SR1_ARLO | SR1_AF | SR1_OVR | SR1_PECERR | SR1_TIMEOUT | SR1_SMBALERT
	// SR1_ERRORS are the flags routed to the error interrupt.
	SR1_ERRORS = SR1_RCW0
)

// SR2 bits.
const (
	SR2_MSL  uint32 = 1 << 0
	SR2_BUSY uint32 = 1 << 1
	SR2_TRA  uint32 = 1 << 2
)

// CCR and TRISE fields.
const (
	CCR_CCR  uint32 = 0xFFF
	CCR_DUTY uint32 = 1 << 14
	CCR_FS   uint32 = 1 << 15

	TRISE_TRISE uint32 = 0x3F
)

// Registers is raw access to one controller's register block. Reads and
// writes must reach the hardware immediately; several bits have read side
// effects (SR1 then SR2 clears ADDR, DR read clears RXNE).
type Registers interface {
	Get(r Reg) uint32
	Set(r Reg, v uint32)
}
