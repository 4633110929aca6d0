package bits

import "golang.org/x/exp/constraints"

// AlignUp rounds v up to the next multiple of alignment. Alignments of 0 and 1 leave v as is.
func AlignUp[T constraints.Unsigned](v T, alignment T) T {
	if alignment <= 1 {
		return v
	}
	if rem := v % alignment; rem != 0 {
		return v + alignment - rem
	}
	return v
}

func IsAligned[T constraints.Unsigned](v T, alignment T) bool {
	return alignment <= 1 || v%alignment == 0
}
