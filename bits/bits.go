// Package bits provides the small bit-field operations the Kenbak-1
// decoder and state machine need: splitting an opcode byte into its octal
// digits, and testing/setting a single bit by position.
//
// Bit positions passed to this package are 0-indexed from the least
// significant bit, matching the PRM's Kn/In/Wn register-bit numbering
// (bit 0 is the least significant).
package bits

import "fmt"

// Pos is a bit position, 0 (LSB) through 7 (MSB).
type Pos byte

func checkPos(p Pos) {
	if p > 7 {
		panic(fmt.Sprintf("bits: position out of range [0,7]: %d", p))
	}
}

// IsSet reports whether the bit at pos is 1.
func IsSet(b byte, pos Pos) bool {
	checkPos(pos)
	return b&(1<<pos) != 0
}

// Set returns b with the bit at pos forced to 1.
func Set(b byte, pos Pos) byte {
	checkPos(pos)
	return b | (1 << pos)
}

// Mask returns the single-bit mask for pos (i.e. 1<<pos).
func Mask(pos Pos) byte {
	checkPos(pos)
	return 1 << pos
}

// HighOctal, MidOctal and LowOctal split an instruction byte into the
// three octal digits the PRM's encoding tables are built from: two high
// bits, three middle bits, three low bits (high,mid,low = "hmm lll").

// HighOctal returns the top two bits of b, as a value 0..3.
func HighOctal(b byte) byte { return (b >> 6) & 0b11 }

// MidOctal returns the middle three bits of b, as a value 0..7.
func MidOctal(b byte) byte { return (b >> 3) & 0b111 }

// LowOctal returns the low three bits of b, as a value 0..7.
func LowOctal(b byte) byte { return b & 0b111 }
