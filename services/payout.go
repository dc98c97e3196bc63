// services/payout.go
package services

import (
	"season-pool-system/models"
)

// Prize distribution in basis points, selected by actual winner count:
//
//	1 winner : 100%
//	2 winners: 60 / 40
//	3 winners: 50 / 30 / 20
//
// Shares floor-divide, so up to winnerCount-1 units of truncation remainder
// stay in the vault until the close sweep.
var prizeShareBps = map[int][]int64{
	1: {10000},
	2: {6000, 4000},
	3: {5000, 3000, 2000},
}

// PrizeShare returns the exact payable amount for the given rank out of a
// post-fee pool. Pure; no state is read or written.
func PrizeShare(poolBalance int64, winnerCount, rank int) (int64, error) {
	if poolBalance < 0 {
		return 0, models.ErrInvalidParameter
	}
	shares, ok := prizeShareBps[winnerCount]
	if !ok {
		return 0, models.ErrInvalidWinnerCount
	}
	if rank < 1 || rank > winnerCount {
		return 0, models.ErrInvalidPlacement
	}
	return safeMulDiv(poolBalance, shares[rank-1], models.BpsDenominator)
}

// PlatformFee returns the upfront treasury cut of a pre-fee pool.
func PlatformFee(poolBalance int64) (int64, error) {
	return safeMulDiv(poolBalance, models.PlatformFeeBps, models.BpsDenominator)
}
