// Command kenbak-debug is a front-panel-style interactive debugger: it
// loads a program into memory, then drives the machine one micro-cycle
// at a time from the keyboard, mirroring what the original console
// driver (original_source/RhinoKen/main.c) did with a terminal menu.
package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"

	"github.com/rhinodevel/kenbak/machine"
)

type model struct {
	m       *machine.Machine
	program []byte
	offset  byte
	err     error
}

func (mo model) Init() tea.Cmd {
	for i, b := range mo.program {
		mo.m.Mem.Write(mo.offset+byte(i), b)
	}
	mo.m.Mem.Write(machine.AddrP, mo.offset)
	mo.m.Input.SwitchPowerOn = true
	return nil
}

func (mo model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return mo, nil
	}

	switch keyMsg.String() {
	case "q":
		return mo, tea.Quit
	case " ", "j":
		cost := mo.m.Step()
		if cost < 0 {
			mo.err = fmt.Errorf("invariant violation, core returned %d", cost)
			return mo, tea.Quit
		}
	case "p":
		mo.m.Input.SwitchPowerOn = !mo.m.Input.SwitchPowerOn
	case "a":
		mo.m.Input.ButAddressSet = !mo.m.Input.ButAddressSet
	case "d":
		mo.m.Input.ButAddressDisplay = !mo.m.Input.ButAddressDisplay
	case "r":
		mo.m.Input.ButMemoryRead = !mo.m.Input.ButMemoryRead
	case "w":
		mo.m.Input.ButMemoryStore = !mo.m.Input.ButMemoryStore
	case "s":
		mo.m.Input.ButRunStart = !mo.m.Input.ButRunStart
	case "t":
		mo.m.Input.ButRunStop = !mo.m.Input.ButRunStop
	case "c":
		mo.m.Input.ButInputClear = !mo.m.Input.ButInputClear
	case "0", "1", "2", "3", "4", "5", "6", "7":
		idx := keyMsg.String()[0] - '0'
		mo.m.Input.ButtonsData[idx] = !mo.m.Input.ButtonsData[idx]
	}
	return mo, nil
}

func (mo model) renderPage(start byte) string {
	s := fmt.Sprintf("%02x | ", start)
	for i := 0; i < 16; i++ {
		addr := start + byte(i)
		b := mo.m.Mem.Read(addr)
		if addr == mo.m.Mem.Read(machine.AddrP) {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (mo model) memoryTable() string {
	header := "page | "
	for b := 0; b < 16; b++ {
		header += fmt.Sprintf("  %01x  ", b)
	}
	lines := []string{header}
	for p := 0; p < 256; p += 16 {
		lines = append(lines, mo.renderPage(byte(p)))
	}
	return strings.Join(lines, "\n")
}

func (mo model) status() string {
	lamp := func(on bool) string {
		if on {
			return "* "
		}
		return "  "
	}
	var bits string
	for _, on := range mo.m.Output.LedBit {
		bits += lamp(on)
	}
	return fmt.Sprintf(`
state: %s
  I: %#o  K: %#o  W: %#o  R: %d  INC: %d
lamps: data[%s] set=%s store=%s clear=%s run-stop=%s
power: %v
`,
		mo.m.State,
		mo.m.RegI, mo.m.RegK, mo.m.RegW, mo.m.SigR, mo.m.SigInc,
		bits,
		lamp(mo.m.Output.LedAddressSet),
		lamp(mo.m.Output.LedMemoryStore),
		lamp(mo.m.Output.LedInputClear),
		lamp(mo.m.Output.LedRunStop),
		mo.m.Input.SwitchPowerOn,
	)
}

func (mo model) View() string {
	top := lipgloss.JoinHorizontal(lipgloss.Top, mo.memoryTable(), mo.status())
	decoded := spew.Sdump(struct {
		Type     machine.InstrType
		AddrMode machine.AddrMode
	}{
		machine.TypeOf(mo.m.RegI),
		machine.AddrModeOf(mo.m.RegI),
	})
	help := "space/j: step  0-7: data buttons  a: addr-set  d: addr-display  " +
		"r: mem-read  w: mem-store  s: run-start  t: run-stop  c: input-clear  p: power  q: quit"
	return lipgloss.JoinVertical(lipgloss.Left, top, "", decoded, help)
}

// Debug loads program at offset into m and starts an interactive TUI.
func Debug(m *machine.Machine, program []byte, offset byte) error {
	final, err := tea.NewProgram(model{m: m, program: program, offset: offset}).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

func main() {
	offset := pflag.Uint8P("offset", "o", 4, "address to load the program at")
	randomize := pflag.BoolP("randomize", "r", false, "seed memory with pseudo-random bytes at power-on")
	pflag.Parse()

	args := pflag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: kenbak-debug [flags] <program-file>")
		os.Exit(2)
	}

	program, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	m := machine.Create(*randomize)
	if err := Debug(m, program, *offset); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
