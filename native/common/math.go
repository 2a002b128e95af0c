package common

import (
	"errors"
	"math"
)

// ErrArithmeticOverflow reports a 64-bit counter or amount that would leave
// its range. Amounts never wrap.
var ErrArithmeticOverflow = errors.New("arithmetic overflow")

// CheckedAdd returns a+b or ErrArithmeticOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrArithmeticOverflow
	}
	return a + b, nil
}

// CheckedSub returns a-b or ErrArithmeticOverflow when b > a.
func CheckedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrArithmeticOverflow
	}
	return a - b, nil
}

// SaturatingSub floors at zero instead of failing.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
