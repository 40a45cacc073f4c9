package mathx

import "golang.org/x/exp/constraints"

// Between reports lo <= v <= hi.
func Between[T constraints.Ordered](v, lo, hi T) bool {
	return v >= lo && v <= hi
}

// Clamp limits v to [lo, hi]; lo must not exceed hi.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
