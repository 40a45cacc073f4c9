package i2csim

// Target is a device on the simulated bus.
type Target interface {
	// Address is called when the master sends this target's address.
	// Returning false NACKs it.
	Address(read bool) bool
	// Write receives one byte from the master; false NACKs it.
	Write(b byte) bool
	// Read supplies the next byte the master clocks in.
	Read() byte
	// Stop marks the end of the transaction (STOP or repeated START).
	Stop()
}

// Memory is a register-pointer device in the style of most I2C RTCs and
// EEPROMs: the first byte written after the address sets the pointer, later
// bytes are stored and advance it, and reads start at the pointer.
type Memory struct {
	Regs []byte

	// NackByte, when non-zero, makes the target NACK the n-th byte written
	// in a transaction (1-based, pointer byte included).
	NackByte int
	// Absent makes the target NACK its address.
	Absent bool

	ptr     int
	written int
}

var _ Target = (*Memory)(nil)

func NewMemory(size int) *Memory {
	return &Memory{Regs: make([]byte, size)}
}

func (m *Memory) Address(read bool) bool {
	if m.Absent {
		return false
	}
	if !read {
		m.written = 0
	}
	return true
}

func (m *Memory) Write(b byte) bool {
	m.written++
	if m.NackByte != 0 && m.written == m.NackByte {
		return false
	}
	if m.written == 1 {
		m.ptr = int(b) % len(m.Regs)
		return true
	}
	m.Regs[m.ptr] = b
	m.ptr = (m.ptr + 1) % len(m.Regs)
	return true
}

func (m *Memory) Read() byte {
	b := m.Regs[m.ptr]
	m.ptr = (m.ptr + 1) % len(m.Regs)
	return b
}

func (m *Memory) Stop() {}

// Pointer returns the current register pointer.
func (m *Memory) Pointer() int { return m.ptr }
