package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTwoByte(t *testing.T) {
	cases := []struct {
		name string
		b    byte
		want bool
	}{
		{"add-A-constant", 0o003, true},
		{"one-byte-shift", 0o001, false},
		{"noop-0310-low0", 0o310, false},
		{"noop-0313-family-low3", 0o313, false},
		{"bit-instruction-low2", 0o002, true},
		{"bit-under-noop-prefix-still-two-byte", 0o312, true},
		{"or-memory", 0o304, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, IsTwoByte(c.b))
		})
	}
}

func TestIsBit(t *testing.T) {
	assert.True(t, IsBit(0o002))
	assert.True(t, IsBit(0o372))
	assert.False(t, IsBit(0o003))
}

func TestIsHalt(t *testing.T) {
	assert.True(t, IsHalt(0o000))
	assert.False(t, IsHalt(0o300))
	assert.False(t, IsHalt(0o007))
}

func TestAddrModeOf(t *testing.T) {
	assert.Equal(t, AddrModeNone, AddrModeOf(0o000))
	assert.Equal(t, AddrModeMemory, AddrModeOf(0o002))
	assert.Equal(t, AddrModeConstant, AddrModeOf(0o003))
	assert.Equal(t, AddrModeIndirect, AddrModeOf(0o005))
	assert.Equal(t, AddrModeIndexed, AddrModeOf(0o006))
	assert.Equal(t, AddrModeIndirectIndexed, AddrModeOf(0o007))
}

func TestAddrModeOfJump(t *testing.T) {
	// Jump family: mid octal > 3. mid bit0==0 -> constant(direct), else memory(indirect).
	direct := byte(0b00_100_011)  // high=0 mid=4 low=3
	indirect := byte(0b00_101_011) // high=0 mid=5 low=3
	assert.Equal(t, AddrModeConstant, AddrModeOf(direct))
	assert.Equal(t, AddrModeMemory, AddrModeOf(indirect))
}

func TestTypeOfNeverInvalid(t *testing.T) {
	for i := 0; i < 256; i++ {
		assert.NotEqual(t, TypeInvalid, TypeOf(byte(i)), "byte %#o decoded as invalid", i)
	}
}

func TestTypeOfFamilies(t *testing.T) {
	assert.Equal(t, TypeAdd, TypeOf(0o003))
	assert.Equal(t, TypeSub, TypeOf(0o013))
	assert.Equal(t, TypeLoad, TypeOf(0o023))
	assert.Equal(t, TypeStore, TypeOf(0o033))
	assert.Equal(t, TypeOr, TypeOf(0o303))
	assert.Equal(t, TypeMisc, TypeOf(0o313))
	assert.Equal(t, TypeAnd, TypeOf(0o323))
	assert.Equal(t, TypeLNeg, TypeOf(0o333))
	assert.Equal(t, TypeJump, TypeOf(0o043))
	assert.Equal(t, TypeBit, TypeOf(0o002))
	assert.Equal(t, TypeShiftRot, TypeOf(0o001))
	assert.Equal(t, TypeMisc, TypeOf(0o000))
}

func TestTwoByteSelector(t *testing.T) {
	assert.EqualValues(t, 0, TwoByteSelector(0o003)) // high=0 -> A
	assert.EqualValues(t, 1, TwoByteSelector(0o103)) // high=1 -> B
	assert.EqualValues(t, 2, TwoByteSelector(0o203)) // high=2 -> X
	assert.EqualValues(t, 0, TwoByteSelector(0o303)) // high=3 -> A (or/and/lneg family)
}

func TestOneByteSelector(t *testing.T) {
	assert.EqualValues(t, 0, OneByteSelector(0o000))
	assert.EqualValues(t, 1, OneByteSelector(0b0010_0000))
}
