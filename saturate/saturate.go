// Package saturate provides fixed-point clamping used by every numeric path
// of the audio graph that can overflow.
//
// Two implementations are compiled in: Clamp is the portable
// compare-and-clamp form and SSAT mirrors the semantics of the signed
// saturate instruction found on DSP-capable cores. Signed dispatches to one
// of them depending on the hwsat build tag. Both must return the same value
// for every input.
package saturate

import "fmt"

const (
	// MinBits is the narrowest supported target width.
	MinBits = 1
	// MaxBits is the widest supported target width.
	MaxBits = 32
)

// Clamp limits v to [-2^(bits-1), 2^(bits-1)-1] with plain comparisons.
func Clamp(v int32, bits uint) int32 {
	checkBits(bits)
	if bits == MaxBits {
		return v
	}
	max := int32(1)<<(bits-1) - 1
	min := -max - 1
	if v > max {
		return max
	}
	if v < min {
		return min
	}
	return v
}

// SSAT limits v to [-2^(bits-1), 2^(bits-1)-1] the way the signed saturate
// instruction does: a value fits when all bits above bits-1 equal the sign
// bit, otherwise the result is the bound with the sign of v.
func SSAT(v int32, bits uint) int32 {
	checkBits(bits)
	sign := v >> 31
	if v>>(bits-1) == sign {
		return v
	}
	max := int32(uint32(1)<<(bits-1) - 1)
	return max ^ sign
}

// Signed saturates v to bits using the implementation selected at build
// time.
func Signed(v int32, bits uint) int32 {
	return signed(v, bits)
}

// Int16 saturates v to the sample range.
func Int16(v int32) int16 {
	return int16(signed(v, 16))
}

// Add16 adds two samples without wrapping.
func Add16(a, b int16) int16 {
	return int16(signed(int32(a)+int32(b), 16))
}

// UnityGain is 1.0 in the Q16.16 format used by Mul16.
const UnityGain = 1 << 16

// Mul16 scales a sample by a Q16.16 gain and saturates the result.
func Mul16(s int16, gain int32) int16 {
	// |s| <= 2^15 and |gain| <= 2^31, so the shifted product fits int32.
	v := (int64(s) * int64(gain)) >> 16
	return int16(signed(int32(v), 16))
}

func checkBits(bits uint) {
	if bits < MinBits || bits > MaxBits {
		panic(fmt.Sprintf("saturate: bit width %d out of range [%d, %d]", bits, MinBits, MaxBits))
	}
}
