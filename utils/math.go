package utils

import "golang.org/x/exp/constraints"

// Min returns the smaller value between two numbers.
func Min[T constraints.Ordered](x, y T) T {
	if x < y {
		return x
	}
	return y
}

// Max returns the bigger value between two numbers.
func Max[T constraints.Ordered](x, y T) T {
	if x > y {
		return x
	}
	return y
}

// Abs returns the absolut value of x.
func Abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp limits x to the closed interval [lo, hi].
// When the interval is empty (hi < lo) lo wins.
func Clamp[T constraints.Ordered](x, lo, hi T) T {
	if x > hi {
		x = hi
	}
	if x < lo {
		x = lo
	}
	return x
}
