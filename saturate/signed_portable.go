//go:build !hwsat

package saturate

// Hardware reports whether Signed uses the instruction form.
const Hardware = false

func signed(v int32, bits uint) int32 {
	return Clamp(v, bits)
}
