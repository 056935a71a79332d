package machine

import (
	mathbits "math/bits"

	kbits "github.com/rhinodevel/kenbak/bits"
)

// State is one of the 26 states the defined-state dispatcher switches on,
// plus the power-off and unknown bootstrap markers.
type State int

const (
	StatePowerOff State = iota
	StateUnknown

	StateSA
	StateSB
	StateSC
	StateSD
	StateSE
	StateSF
	StateSG
	StateSH
	StateSJ
	StateSK
	StateSL
	StateSM
	StateSN
	StateSP
	StateSQ
	StateSR
	StateSS
	StateST
	StateSU
	StateSV
	StateSW
	StateSX
	StateSY
	StateSZ

	StateQB
	StateQC
	StateQD
	StateQE
	StateQF
)

func (s State) String() string {
	names := map[State]string{
		StatePowerOff: "power-off", StateUnknown: "unknown",
		StateSA: "SA", StateSB: "SB", StateSC: "SC", StateSD: "SD",
		StateSE: "SE", StateSF: "SF", StateSG: "SG", StateSH: "SH",
		StateSJ: "SJ", StateSK: "SK", StateSL: "SL", StateSM: "SM",
		StateSN: "SN", StateSP: "SP", StateSQ: "SQ", StateSR: "SR",
		StateSS: "SS", StateST: "ST", StateSU: "SU", StateSV: "SV",
		StateSW: "SW", StateSX: "SX", StateSY: "SY", StateSZ: "SZ",
		StateQB: "QB", StateQC: "QC", StateQD: "QD", StateQE: "QE",
		StateQF: "QF",
	}
	if n, ok := names[s]; ok {
		return n
	}
	return "invalid-state"
}

// stepDefined dispatches on the current state, refreshing signals first
// for the four states that consult them (SA, QB, QC, QF), then runs the
// unconditional register-K and output projection and returns the body's
// cost. A negative body result (invariant violation) short-circuits both.
func (m *Machine) stepDefined() int32 {
	var cost int32

	switch m.State {
	case StateSA:
		if !m.refreshSignals() {
			return -1
		}
		cost = m.doSA()
	case StateQB:
		if !m.refreshSignals() {
			return -1
		}
		cost = m.doQB()
	case StateQC:
		if !m.refreshSignals() {
			return -1
		}
		cost = m.doQC()
	case StateQF:
		if !m.refreshSignals() {
			return -1
		}
		cost = m.doQF()

	case StateSB:
		cost = m.doSB()
	case StateSC:
		cost = m.doSC()
	case StateSD:
		cost = m.doSD()
	case StateSE:
		cost = m.doSE()
	case StateSF:
		cost = m.doSF()
	case StateSG:
		cost = m.doSG()
	case StateSH:
		cost = m.doSH()
	case StateSJ:
		cost = m.doSJ()
	case StateSK:
		cost = m.doSK()
	case StateSL:
		cost = m.doSL()
	case StateSM:
		cost = m.doSM()
	case StateSN:
		cost = m.doSN()
	case StateSP:
		cost = m.doSP()
	case StateSQ:
		cost = m.doSQ()
	case StateSR:
		cost = m.doSR()
	case StateSS:
		cost = m.doSS()
	case StateST:
		cost = m.doST()
	case StateSU:
		cost = m.doSU()
	case StateSV:
		cost = m.doSV()
	case StateSW:
		cost = m.doSW()
	case StateSX:
		cost = m.doSX()
	case StateSY:
		cost = m.doSY()
	case StateSZ:
		cost = m.doSZ()
	case StateQD:
		cost = m.doQD()
	case StateQE:
		cost = m.doQE()

	default:
		return -1
	}

	if cost < 0 {
		return cost
	}
	m.refreshK()
	m.projectOutput()
	return cost
}

// doSA — R := addr(P); advance to the instruction-fetch-increment state.
func (m *Machine) doSA() int32 {
	m.SigR = AddrP
	m.State = StateSB
	return 1
}

// doSB — mem[P] := mem[P] + INC (advance the program counter by however
// much the previous instruction staged), latch the result in W, then
// either honor a pending run-stop (to the front panel) or continue to
// instruction fetch.
func (m *Machine) doSB() int32 {
	val := m.Mem.Read(AddrP) + m.SigInc
	m.SigInc = sigIncUnset
	m.Mem.Write(AddrP, val)
	m.RegW = val

	if m.Sig.ED {
		m.Sig.ED = false
		m.State = StateQC
		return 1
	}
	m.State = StateSC
	return 1
}

// doSC — R := W (the just-advanced P value is the instruction address).
func (m *Machine) doSC() int32 {
	m.SigR = m.RegW
	m.State = StateSD
	return 1
}

// doSD — fetch the instruction byte; one-byte instructions go straight
// to execution, two-byte ones continue to operand fetch.
func (m *Machine) doSD() int32 {
	m.RegI = m.Mem.Read(m.SigR)
	if IsTwoByte(m.RegI) {
		m.State = StateSE
	} else {
		m.SigInc = 1
		m.State = StateSU
	}
	return 1
}

// doSE — fetch the operand byte (or, for STORE-constant, the operand's
// own address) and route to the addressing-mode handling it needs.
func (m *Machine) doSE() int32 {
	addrMode := AddrModeOf(m.RegI)
	typ := TypeOf(m.RegI)

	if addrMode == AddrModeConstant && typ == TypeStore {
		m.RegW = m.SigR + 1
	} else {
		m.RegW = m.Mem.Read(m.SigR + 1)
	}

	switch {
	case addrMode == AddrModeIndirect || addrMode == AddrModeIndirectIndexed:
		m.State = StateSF
	case addrMode == AddrModeIndexed:
		m.State = StateSH
	case addrMode == AddrModeConstant || (typ == TypeStore && addrMode == AddrModeMemory):
		m.State = StateSM
	default:
		m.State = StateSK
	}
	return 1
}

// doSF — R := W (chase the first level of indirection).
func (m *Machine) doSF() int32 {
	m.SigR = m.RegW
	m.State = StateSG
	return 1
}

// doSG — read the pointed-to byte; indirect-indexed needs one more hop
// through the X register, plain indirect is done (to store/jump
// execution, or to further operand combination).
func (m *Machine) doSG() int32 {
	m.RegW = m.Mem.Read(m.SigR)
	switch AddrModeOf(m.RegI) {
	case AddrModeIndirectIndexed:
		m.State = StateSH
	case AddrModeIndirect:
		typ := TypeOf(m.RegI)
		if typ == TypeJump || typ == TypeStore {
			m.State = StateSM
		} else {
			m.State = StateSK
		}
	default:
		return -1
	}
	return 1
}

// doSH — R := addr(X), to add the index register's content next.
func (m *Machine) doSH() int32 {
	m.SigR = AddrX
	m.State = StateSJ
	return 1
}

// doSJ — W += mem[X] (apply the index offset); STORE instructions are
// done (the effective address is W), everything else still needs to
// fetch the operand from that address.
func (m *Machine) doSJ() int32 {
	m.RegW = m.RegW + m.Mem.Read(m.SigR)
	if TypeOf(m.RegI) == TypeStore {
		m.State = StateSM
	} else {
		m.State = StateSK
	}
	return 1
}

// doSK — R := W, then fetch the operand from the now-resolved address.
func (m *Machine) doSK() int32 {
	m.SigR = m.RegW
	m.State = StateSL
	return 1
}

// doSL — read the operand. Non-bit instructions continue to execution;
// bit instructions run their set/clear/skip logic directly here and
// return to instruction fetch.
func (m *Machine) doSL() int32 {
	m.RegW = m.Mem.Read(m.SigR)
	if TypeOf(m.RegI) != TypeBit {
		m.State = StateSM
		return 1
	}

	m.State = StateSA
	pos := kbits.Pos((m.RegI >> 3) & 0b111)
	mask := kbits.Mask(pos)

	if kbits.IsSet(m.RegI, 7) {
		// Skip family: bit 6 chooses skip-if-set vs skip-if-clear.
		bitSet := m.RegW&mask != 0
		m.SigInc = 2
		skip := bitSet == kbits.IsSet(m.RegI, 6)
		if skip {
			m.SigInc += 2
		}
		return 1
	}

	// Set/clear family: bit 6 chooses set vs clear.
	if kbits.IsSet(m.RegI, 6) {
		m.RegW |= mask
	} else {
		m.RegW &^= mask
	}
	m.Mem.Write(m.SigR, m.RegW)
	m.SigInc = 2
	return 1
}

// doSM — R := the register the two-byte form selects, then route by
// instruction family to the execution state that knows how to combine W
// with that register.
func (m *Machine) doSM() int32 {
	m.SigR = TwoByteSelector(m.RegI)
	switch TypeOf(m.RegI) {
	case TypeJump:
		m.State = StateSZ
	case TypeStore:
		m.State = StateSP
	default:
		m.State = StateSN
	}
	return 1
}

func signBit(b byte) bool { return b&0x80 != 0 }

// doSN — arithmetic/logic execution: combine W with mem[R] (add, sub,
// load, or, and, lneg) or complete a jump (write the destination into
// P), then write the result back and return to instruction fetch.
func (m *Machine) doSN() int32 {
	typ := TypeOf(m.RegI)
	regContent := m.Mem.Read(m.SigR)
	var result byte

	switch typ {
	case TypeAdd, TypeSub:
		operand := m.RegW
		if typ == TypeSub {
			operand = byte(-int(operand))
		}
		sum := uint16(operand) + uint16(regContent)
		result = byte(sum)

		var oc byte
		if sum > 0xFF {
			oc = kbits.Set(oc, 1) // carry
		}
		if signBit(operand) == signBit(regContent) && signBit(operand) != signBit(result) {
			oc = kbits.Set(oc, 0) // signed overflow
		}
		m.Mem.Write(AddrOCFor(m.SigR), oc)
		m.SigInc = 2
	case TypeLoad:
		result = m.RegW
		m.SigInc = 2
	case TypeAnd:
		result = m.RegW & regContent
		m.SigInc = 2
	case TypeOr:
		result = m.RegW | regContent
		m.SigInc = 2
	case TypeLNeg:
		result = byte(-int(m.RegW))
		m.SigInc = 2
	case TypeJump:
		result = m.RegW // SigInc was already set by SZ (0 for taken, 2 for not-taken)
	default:
		return -1
	}

	m.Mem.Write(m.SigR, result)
	m.State = StateSA
	return 1
}

// doSP — fetch the byte being stored (R already holds the selected source
// register; the destination address stays in W until SR).
func (m *Machine) doSP() int32 {
	m.RegI = m.Mem.Read(m.SigR)
	m.State = StateSR
	return 1
}

// doSQ — jump-and-mark: write the return address (P+2) to the mark
// address the operand designated, then fall through to SN so the branch
// itself still completes (see DESIGN.md for why this state has to be
// reconstructed rather than copied).
func (m *Machine) doSQ() int32 {
	p := m.Mem.Read(AddrP)
	m.Mem.Write(m.RegW, p+2)
	m.State = StateSN
	return 1
}

// doSR — R := W (the store destination).
func (m *Machine) doSR() int32 {
	m.SigR = m.RegW
	m.State = StateSS
	return 1
}

// doSS — write the stored byte, advance P by two, return to fetch.
func (m *Machine) doSS() int32 {
	m.Mem.Write(m.SigR, m.RegI)
	m.SigInc = 2
	m.State = StateSA
	return 1
}

// doST — R := addr(P); route to the mark bookkeeping or straight to the
// branch, depending on whether this jump instruction's mark bit is set.
func (m *Machine) doST() int32 {
	m.SigR = AddrP
	if kbits.IsSet(m.RegI, 4) {
		m.State = StateSQ
	} else {
		m.State = StateSN
	}
	return 1
}

// doSU — R := the one-byte form's register selector.
func (m *Machine) doSU() int32 {
	m.SigR = OneByteSelector(m.RegI)
	m.State = StateSV
	return 1
}

// doSV — read the selected register. HALT and other misc instructions
// execute here directly; shift/rotate continues to SW.
func (m *Machine) doSV() int32 {
	m.RegW = m.Mem.Read(m.SigR)
	if TypeOf(m.RegI) == TypeMisc {
		if IsHalt(m.RegI) {
			m.Sig.ED = true
		}
		m.State = StateSA
		return 1
	}
	m.State = StateSW
	return 1
}

// doSW — apply the shift or rotate the opcode's top two bits select
// (0 logical-right, 1 rotate-right, 2 logical-left, 3 rotate-left) by the place
// count its next two bits select (0 means 4).
func (m *Machine) doSW() int32 {
	kind := kbits.HighOctal(m.RegI)
	places := int((m.RegI >> 3) & 0b11)
	if places == 0 {
		places = 4
	}

	switch kind {
	case 0:
		m.RegW = m.RegW >> uint(places)
	case 1:
		m.RegW = mathbits.RotateLeft8(m.RegW, -places)
	case 2:
		m.RegW = m.RegW << uint(places)
	case 3:
		m.RegW = mathbits.RotateLeft8(m.RegW, places)
	}
	m.State = StateSX
	return 1
}

// doSX — R := the one-byte form's register selector, to write the
// shifted/rotated result back.
func (m *Machine) doSX() int32 {
	m.SigR = OneByteSelector(m.RegI)
	m.State = StateSY
	return 1
}

// doSY — write the shift/rotate result back, return to fetch.
func (m *Machine) doSY() int32 {
	m.Mem.Write(m.SigR, m.RegW)
	m.State = StateSA
	return 1
}

// doSZ — evaluate a jump's condition against the selected register
// (the jump instructions' unconditional form is encoded as the top
// octal digit 3, with no register test at all).
func (m *Machine) doSZ() int32 {
	sel := kbits.HighOctal(m.RegI)
	if sel == 3 {
		m.SigInc = 0
		m.State = StateST
		return 1
	}
	if sel != m.SigR {
		return -1
	}

	v := m.Mem.Read(m.SigR)
	var taken bool
	switch kbits.LowOctal(m.RegI) {
	case 3:
		taken = v != 0
	case 4:
		taken = v == 0
	case 5:
		taken = signBit(v)
	case 6:
		taken = !signBit(v)
	case 7:
		taken = !signBit(v) && v&0x7F != 0
	default:
		return -1
	}

	if taken {
		m.SigInc = 0
		m.State = StateST
	} else {
		m.SigInc = 2
		m.State = StateSA
	}
	return 1
}

// doQB — manual/front-panel run-wait: stay here while the run-start
// button is held, otherwise proceed into the automatic cycle.
func (m *Machine) doQB() int32 {
	if m.Sig.GO {
		return 1
	}
	m.State = StateSA
	return 1
}

// doQC — front-panel idle: latch the input byte, and react to whichever
// front-panel button combination (if any) is currently asserted.
func (m *Machine) doQC() int32 {
	m.SigInc = 0
	m.RegI = m.Mem.Read(AddrInput)

	if m.Sig.EN || m.Sig.DA || m.Sig.DD {
		m.State = StateQD
		return 1
	}
	if m.Sig.GO {
		m.State = StateQB
		return 1
	}
	if m.Sig.EA {
		m.RegW = m.RegI
	}
	return 1
}

// doQD — R := W (the address the front panel is pointed at).
func (m *Machine) doQD() int32 {
	m.SigR = m.RegW
	m.State = StateQE
	return 1
}

// doQE — perform the front-panel memory-store, address-display or
// memory-display operation the asserted button selected.
func (m *Machine) doQE() int32 {
	m.State = StateQF
	switch {
	case m.Sig.EN:
		m.Mem.Write(m.SigR, m.RegI)
		m.RegW++
	case m.Sig.DA:
		m.RegK = m.SigR
	case m.Sig.DD:
		m.RegK = m.Mem.Read(m.SigR)
		m.RegW++
	default:
		return -1
	}
	return 1
}

// doQF — wait for the front-panel button to be released before
// returning to idle.
func (m *Machine) doQF() int32 {
	if !m.Sig.EN && !m.Sig.DA && !m.Sig.DD {
		m.State = StateQC
	}
	return 1
}
