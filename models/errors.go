// models/errors.go
package models

import "errors"

// Sentinel errors shared by all season engine operations. Every failed
// operation rolls back its transaction, so callers may resubmit after any
// of these without cleanup.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAlreadyInitialized = errors.New("config already initialized")
	ErrNotInitialized     = errors.New("config not initialized")

	ErrDuplicateSeason       = errors.New("season number already exists")
	ErrSeasonNotFound        = errors.New("season not found")
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrStateConflict         = errors.New("operation not allowed in current season state")
	ErrRegistrationClosed    = errors.New("registration window is closed")
	ErrRegistrationNotEnded  = errors.New("registration period has not ended")
	ErrSeasonNotEnded        = errors.New("season has not ended yet")
	ErrSeasonStillActive     = errors.New("season is still active")
	ErrCapacityExceeded      = errors.New("maximum participants reached")
	ErrDuplicateRegistration = errors.New("participant already registered")
	ErrNotRegistered         = errors.New("participant not registered")

	ErrArithmeticOverflow     = errors.New("arithmetic overflow")
	ErrInsufficientFunds      = errors.New("insufficient wallet funds")
	ErrInsufficientVaultFunds = errors.New("insufficient vault funds")
	ErrNoPrizePool            = errors.New("no prize pool to collect fee from")

	ErrInvalidWinnerCount  = errors.New("invalid number of winners")
	ErrInvalidPlacement    = errors.New("invalid winner placement")
	ErrWinnersAlreadySet   = errors.New("winners already set")
	ErrWinnersNotSet       = errors.New("winners not set yet")
	ErrNotAWinner          = errors.New("not a winner")
	ErrPrizeAlreadyClaimed = errors.New("prize already claimed")
	ErrFeeAlreadyCollected = errors.New("platform fee already collected")

	ErrEmergencyNotActive     = errors.New("emergency mode not active")
	ErrEmergencyAlreadyActive = errors.New("emergency mode already active")
	ErrAlreadyWithdrawn       = errors.New("entry fee already withdrawn")

	ErrNotEligible = errors.New("caller not eligible for registration")
)
