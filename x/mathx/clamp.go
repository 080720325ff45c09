package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	return Max(lo, Min(v, hi))
}

// InRange reports lo <= v < hi (half-open, index style).
func InRange[T constraints.Integer](v, lo, hi T) bool {
	return v >= lo && v < hi
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Default returns v, or d when v is the zero value.
func Default[T comparable](v, d T) T {
	var zero T
	if v == zero {
		return d
	}
	return v
}
