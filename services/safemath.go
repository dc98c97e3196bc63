// services/safemath.go
package services

import (
	"math/bits"

	"season-pool-system/models"
)

// Checked integer arithmetic for pool accounting. Amounts are non-negative
// int64 base units; any overflow, underflow, or negative operand aborts the
// whole operation via ErrArithmeticOverflow so no partial state commits.

func safeAdd(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, models.ErrArithmeticOverflow
	}
	sum := a + b
	if sum < a {
		return 0, models.ErrArithmeticOverflow
	}
	return sum, nil
}

func safeSub(a, b int64) (int64, error) {
	if a < 0 || b < 0 || b > a {
		return 0, models.ErrArithmeticOverflow
	}
	return a - b, nil
}

// safeMulDiv computes floor(a * num / den) with a 128-bit intermediate so
// pool * bps never wraps before the divide.
func safeMulDiv(a, num, den int64) (int64, error) {
	if a < 0 || num < 0 || den <= 0 {
		return 0, models.ErrArithmeticOverflow
	}
	hi, lo := bits.Mul64(uint64(a), uint64(num))
	if hi >= uint64(den) {
		return 0, models.ErrArithmeticOverflow
	}
	quo, _ := bits.Div64(hi, lo, uint64(den))
	if quo > uint64(1<<63-1) {
		return 0, models.ErrArithmeticOverflow
	}
	return int64(quo), nil
}
