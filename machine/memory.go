package machine

// Memory is the Kenbak-1's flat 256-byte address space.
//
// Addresses 0-3 alias the A, B, X and P registers; address 128 is the
// output lamp latch; 129-131 hold the overflow/carry flags for A, B, X;
// 255 is the input button latch. No address is special to Memory itself —
// every alias and latch behavior is implemented by the state machine that
// reads and writes through Read/Write, exactly as the hardware has no
// memory-side knowledge of what a given address "means".
type Memory struct {
	b [256]byte
}

// Addresses of the registers and I/O latches aliased into memory.
const (
	AddrA      byte = 0
	AddrB      byte = 1
	AddrX      byte = 2
	AddrP      byte = 3
	AddrOutput byte = 128
	AddrOCBase byte = 129 // AddrOCBase+R holds the overflow/carry byte for register R.
	AddrInput  byte = 255
)

// AddrOCFor returns the overflow/carry latch address for register r (one
// of AddrA, AddrB, AddrX).
func AddrOCFor(r byte) byte { return AddrOCBase + r }

// Read returns the byte at addr.
func (m *Memory) Read(addr byte) byte { return m.b[addr] }

// Write stores v at addr.
func (m *Memory) Write(addr byte, v byte) { m.b[addr] = v }

// Zero clears every byte of memory.
func (m *Memory) Zero() { m.b = [256]byte{} }

// Randomize fills memory with bytes drawn from src, used only at
// power-on when Machine.randomizeMemory is set.
func (m *Memory) Randomize(src func() byte) {
	for i := range m.b {
		m.b[i] = src()
	}
}

// Bytes returns the full memory image, for loaders (the debugger, the
// assembler) that need to place a program before the machine runs.
func (m *Memory) Bytes() *[256]byte { return &m.b }
