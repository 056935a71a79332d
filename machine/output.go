package machine

import kbits "github.com/rhinodevel/kenbak/bits"

// Output is the set of front-panel lamps the machine drives every step.
// It is a pure projection of Machine state: nothing in Output feeds
// back into Step.
type Output struct {
	LedBit          [8]bool // data lamps, index 0 = LSB of RegK
	LedInputClear   bool
	LedAddressSet   bool
	LedMemoryStore  bool
	LedRunStop      bool
}

// projectOutput recomputes Output from the machine's current state and
// signals. Called unconditionally at the end of every defined-state step,
// after refreshK.
func (m *Machine) projectOutput() {
	m.Output.LedAddressSet = m.Sig.X == X1
	m.Output.LedMemoryStore = m.Sig.X == X2
	m.Output.LedInputClear = m.Sig.X == X4
	m.Output.LedRunStop = m.State != StateQC

	for i := 0; i < 8; i++ {
		m.Output.LedBit[i] = kbits.IsSet(m.RegK, kbits.Pos(i))
	}
}
