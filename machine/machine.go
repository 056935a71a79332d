// Package machine implements the Kenbak-1's cycle-accurate state machine:
// flat memory, instruction decoder, signal layer, the 26-state dispatch
// loop, and the front-panel output projection.
package machine

import "math/rand"

// Input mirrors the front-panel controls a driver asserts before calling
// Step. The zero value is "nothing pressed, switch off".
type Input struct {
	ButtonsData       [8]bool // the eight data-entry buttons, index 0 = LSB
	ButInputClear     bool
	ButAddressDisplay bool
	ButAddressSet     bool
	ButMemoryRead     bool
	ButMemoryStore    bool
	ButRunStart       bool
	ButRunStop        bool
	SwitchPowerOn     bool
}

// Machine is a single Kenbak-1: memory, registers, signals, state, and
// the Input/Output the front panel exchanges with it.
type Machine struct {
	Mem   Memory
	State State

	RegI byte // instruction register
	RegK byte // front-panel display register
	RegW byte // working register
	SigR byte // selected memory address for the current micro-op
	// SigInc is the pending P-advance amount. 255 is the "unset" sentinel:
	// every instruction must set it to a real value (0, 1, 2 or 4) before SB
	// next reads it, matching the original's use of an out-of-range
	// placeholder to catch a state body that forgot to set it.
	SigInc byte

	Sig Signals

	Input  Input
	Output Output

	randomizeMemory bool
	rng             *rand.Rand
}

const sigIncUnset byte = 255

// Create returns a powered-off Machine. When randomizeMemory is true,
// memory is seeded with bytes from a deterministic RNG (rand.NewSource(1))
// rather than wall-clock time, so tests stay reproducible; pass a
// different source via CreateWithRand for anything that needs a distinct
// stream.
func Create(randomizeMemory bool) *Machine {
	return CreateWithRand(randomizeMemory, rand.New(rand.NewSource(1)))
}

// CreateWithRand is Create with an explicit random source.
func CreateWithRand(randomizeMemory bool, rng *rand.Rand) *Machine {
	m := &Machine{randomizeMemory: randomizeMemory, rng: rng}
	m.powerOffReset()
	return m
}

// Delete exists for API parity with the original create/delete pair; Go's
// garbage collector owns Machine's lifetime, so there is nothing to do.
func Delete(m *Machine) {}

// InitInput resets Input to all-buttons-released. When keepPowerSwitch is
// true the power switch's current position is preserved; otherwise it is
// also cleared (power off).
func (m *Machine) InitInput(keepPowerSwitch bool) {
	wasOn := m.Input.SwitchPowerOn
	m.Input = Input{}
	if keepPowerSwitch {
		m.Input.SwitchPowerOn = wasOn
	}
}

func (m *Machine) powerOffReset() {
	m.Mem.Zero()
	if m.randomizeMemory {
		m.Mem.Randomize(func() byte { return byte(m.rng.Intn(256)) })
	}
	m.State = StatePowerOff
	m.RegI = 0
	m.RegK = 0
	m.RegW = 0
	m.SigR = 0
	m.SigInc = sigIncUnset
	m.Sig = Signals{}
	m.Output = Output{}
}

// Step advances the machine by one micro-cycle. It returns the abstract
// byte-time cost of the cycle just processed (always 0 or 1 — the
// original hardware's variable delay-line timing collapses to a uniform
// step count here), or a negative value if an invariant
// the core depends on was violated. The core never panics and never
// returns a Go error: a negative result is the only failure signal,
// matching the original's assert-and-abort semantics without pulling
// down the whole process.
func (m *Machine) Step() int32 {
	if m.State == StatePowerOff {
		if !m.Input.SwitchPowerOn {
			return 0
		}
		m.State = StateUnknown
	} else if !m.Input.SwitchPowerOn {
		m.powerOffReset()
		return 0
	}

	if m.State == StateUnknown {
		m.State = StateQC
	}

	return m.stepDefined()
}
