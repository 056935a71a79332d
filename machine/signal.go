package machine

// XMode is the derived "X signal": which of the four front-panel
// display/input modes the machine is currently presenting.
type XMode int

const (
	XNone XMode = iota
	X1          // address display
	X2          // memory display
	X3          // run mode
	X4          // input mode
)

// Signals are the eight control lines the front panel drives plus the
// derived X mode, refreshed together at the top of SA/QB/QC/QF from the
// Input the driver last set.
type Signals struct {
	BU bool // any data button held
	CL bool // input-clear button held
	DA bool // address-display button held
	DD bool // memory-read button held
	EA bool // address-set button held
	ED bool // run-stop button held, latched until consumed by SB
	EN bool // memory-store button held
	GO bool // run-start button held
	X  XMode
}

// refreshSignals recomputes Sig and the addr-255 input latch from the
// current Input, and reports whether the result is consistent. It
// returns false on a signal contradiction (more than one of
// address-display, memory-read and "currently in SA" asserted at once),
// which the caller treats as a fatal invariant violation.
func (m *Machine) refreshSignals() bool {
	in := &m.Input

	bu := false
	for _, pressed := range in.ButtonsData {
		if pressed {
			bu = true
			break
		}
	}
	m.Sig.BU = bu
	m.Sig.CL = in.ButInputClear
	m.Sig.DA = in.ButAddressDisplay
	m.Sig.DD = in.ButMemoryRead
	m.Sig.EA = in.ButAddressSet
	m.Sig.ED = m.Sig.ED || in.ButRunStop
	m.Sig.EN = in.ButMemoryStore
	m.Sig.GO = in.ButRunStart

	m.refreshInputByte()

	exclusive := 0
	if m.Sig.DA {
		exclusive++
	}
	if m.Sig.DD {
		exclusive++
	}
	if m.State == StateSA {
		exclusive++
	}
	if exclusive > 1 {
		return false
	}

	switch {
	case m.Sig.DA:
		m.Sig.X = X1
	case m.Sig.DD:
		m.Sig.X = X2
	case m.State == StateSA:
		m.Sig.X = X3
	case m.Sig.BU || m.Sig.CL:
		m.Sig.X = X4
	}
	return true
}

// refreshInputByte updates the addr-255 input latch: CL zeroes it,
// otherwise each held data button ORs its bit in (the latch only ever
// accumulates until CL clears it).
func (m *Machine) refreshInputByte() {
	if m.Sig.CL {
		m.Mem.Write(AddrInput, 0)
		return
	}
	var mask byte
	for i, pressed := range m.Input.ButtonsData {
		if pressed {
			mask |= 1 << uint(i)
		}
	}
	m.Mem.Write(AddrInput, m.Mem.Read(AddrInput)|mask)
}

// refreshK updates RegK, the front-panel display register, from whatever
// the current X mode says it should mirror. X1/X2 leave K alone (the
// address/memory-display operations load K in QE, not here).
func (m *Machine) refreshK() {
	switch m.Sig.X {
	case X3:
		m.RegK = m.Mem.Read(AddrOutput)
	case X4:
		m.RegK = m.Mem.Read(AddrInput)
	}
}
