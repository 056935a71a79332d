package machine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// enc builds an instruction byte from its three octal digits.
func enc(high, mid, low byte) byte { return (high << 6) | (mid << 3) | low }

func newRunning(pStart byte) *Machine {
	m := CreateWithRand(false, rand.New(rand.NewSource(1)))
	m.Input.SwitchPowerOn = true
	m.Mem.Write(AddrP, pStart)
	m.State = StateSA
	m.SigInc = 0 // as if the preceding QC idle cycle had already zeroed it
	return m
}

func runUntilQC(t *testing.T, m *Machine, maxSteps int) {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		if m.State == StateQC {
			return
		}
		cost := m.Step()
		require.GreaterOrEqual(t, cost, int32(0), "invariant violation at step %d", i)
	}
	t.Fatalf("did not reach QC within %d steps", maxSteps)
}

func TestLoadImmediateAndHalt(t *testing.T) {
	m := newRunning(4)
	m.Mem.Write(4, enc(0, 2, 3)) // LOAD-A constant
	m.Mem.Write(5, 0xAA)
	m.Mem.Write(6, 0x00) // HALT

	runUntilQC(t, m, 100)

	assert.Equal(t, byte(0xAA), m.Mem.Read(AddrA))
	assert.Equal(t, byte(7), m.Mem.Read(AddrP))
	assert.Equal(t, StateQC, m.State)
}

func TestRotateLoopWithCountdown(t *testing.T) {
	m := newRunning(4)
	m.Mem.Write(4, enc(2, 2, 3)) // LOAD-X constant
	m.Mem.Write(5, 0o40)         // 32 decimal
	m.Mem.Write(6, enc(0, 2, 4)) // loop: LOAD-A memory 0x80
	m.Mem.Write(7, 0x80)
	m.Mem.Write(8, enc(3, 0b001, 1)) // ROL-A-1 (one byte)
	m.Mem.Write(9, enc(0, 3, 4))     // STORE-A memory 0x80
	m.Mem.Write(10, 0x80)
	m.Mem.Write(11, enc(2, 1, 3)) // SUB-X constant
	m.Mem.Write(12, 1)
	m.Mem.Write(13, enc(2, 4, 3)) // JPD-X!=0 -> 6 (direct, even mid means constant addressing)
	m.Mem.Write(14, 6)
	m.Mem.Write(15, 0x00) // HALT

	m.Mem.Write(0x80, 0x80)

	runUntilQC(t, m, 2000)

	assert.Equal(t, byte(0x80), m.Mem.Read(0x80), "32 single-bit rotations return to the original byte")
	assert.Equal(t, byte(0), m.Mem.Read(AddrX))
}

func TestSkipOnBitOne(t *testing.T) {
	m := newRunning(4)
	m.Mem.Write(AddrA, 0xAA) // 1010_1010, bit 1 is set

	m.Mem.Write(4, enc(3, 1, 2)) // BSKP bit 1, skip-if-set, addressing mem
	m.Mem.Write(5, AddrA)
	m.Mem.Write(6, enc(0, 2, 3)) // a 2-byte instruction that must be skipped
	m.Mem.Write(7, 0xFF)
	m.Mem.Write(8, 0x00) // HALT

	runUntilQC(t, m, 100)

	assert.Equal(t, byte(9), m.Mem.Read(AddrP), "P must land past the skipped 2-byte instruction onto HALT's successor")
}

func TestOverflowAndCarry(t *testing.T) {
	m := newRunning(4)
	m.Mem.Write(AddrA, 0x7F)
	m.Mem.Write(4, enc(0, 0, 3)) // ADD-A constant
	m.Mem.Write(5, 1)
	m.Mem.Write(6, 0x00) // HALT

	runUntilQC(t, m, 100)

	assert.Equal(t, byte(0x80), m.Mem.Read(AddrA))
	flags := m.Mem.Read(AddrOCFor(AddrA))
	assert.Equal(t, byte(0b01), flags, "overflow bit set, carry bit clear")
}

func TestIndirectIndexedLoad(t *testing.T) {
	m := newRunning(4)
	m.Mem.Write(AddrX, 2)
	m.Mem.Write(10, 0x20)
	m.Mem.Write(0x22, 0x55)

	m.Mem.Write(4, enc(0, 2, 7)) // LOAD-A indirect-indexed
	m.Mem.Write(5, 10)
	m.Mem.Write(6, 0x00) // HALT

	runUntilQC(t, m, 100)

	assert.Equal(t, byte(0x55), m.Mem.Read(AddrA))
}

func TestFrontPanelMemoryRead(t *testing.T) {
	m := Create(false)
	m.Input.SwitchPowerOn = true
	m.Mem.Write(0x40, 0x99)

	require.GreaterOrEqual(t, m.Step(), int32(0)) // power-on bootstrap into QC

	// Press address-set with data buttons = 0x40.
	m.Input.ButAddressSet = true
	m.Input.ButtonsData[6] = true // bit 6 -> 0x40
	require.GreaterOrEqual(t, m.Step(), int32(0))
	assert.Equal(t, byte(0x40), m.RegW)

	// Release, then press memory-read.
	m.Input.ButAddressSet = false
	m.Input.ButtonsData[6] = false
	require.GreaterOrEqual(t, m.Step(), int32(0))

	m.Input.ButMemoryRead = true
	require.GreaterOrEqual(t, m.Step(), int32(0))
	assert.True(t, m.Output.LedMemoryStore, "lamp lit while the read button is held")
	assert.Equal(t, StateQD, m.State)

	require.GreaterOrEqual(t, m.Step(), int32(0)) // QD -> QE
	require.GreaterOrEqual(t, m.Step(), int32(0)) // QE -> QF
	assert.Equal(t, byte(0x99), m.RegK)
	assert.Equal(t, byte(0x41), m.RegW)

	m.Input.ButMemoryRead = false
	require.GreaterOrEqual(t, m.Step(), int32(0)) // QF -> QC
	assert.Equal(t, StateQC, m.State)
}
