// services/http.go
package services

import (
	"errors"
	"log"

	"season-pool-system/models"

	"github.com/gofiber/fiber/v2"
)

// callerID pulls the authenticated wallet address set by the user-context
// middleware.
func callerID(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}

var errStatus = map[error]int{
	models.ErrUnauthorized:       fiber.StatusForbidden,
	models.ErrNotEligible:        fiber.StatusForbidden,
	models.ErrAlreadyInitialized: fiber.StatusConflict,
	models.ErrNotInitialized:     fiber.StatusConflict,

	models.ErrDuplicateSeason:       fiber.StatusConflict,
	models.ErrSeasonNotFound:        fiber.StatusNotFound,
	models.ErrInvalidParameter:      fiber.StatusBadRequest,
	models.ErrStateConflict:         fiber.StatusConflict,
	models.ErrRegistrationClosed:    fiber.StatusConflict,
	models.ErrRegistrationNotEnded:  fiber.StatusConflict,
	models.ErrSeasonNotEnded:        fiber.StatusConflict,
	models.ErrSeasonStillActive:     fiber.StatusConflict,
	models.ErrCapacityExceeded:      fiber.StatusForbidden,
	models.ErrDuplicateRegistration: fiber.StatusConflict,
	models.ErrNotRegistered:         fiber.StatusNotFound,

	models.ErrArithmeticOverflow:     fiber.StatusUnprocessableEntity,
	models.ErrInsufficientFunds:      fiber.StatusPaymentRequired,
	models.ErrInsufficientVaultFunds: fiber.StatusUnprocessableEntity,
	models.ErrNoPrizePool:            fiber.StatusConflict,

	models.ErrInvalidWinnerCount:  fiber.StatusBadRequest,
	models.ErrInvalidPlacement:    fiber.StatusBadRequest,
	models.ErrWinnersAlreadySet:   fiber.StatusConflict,
	models.ErrWinnersNotSet:       fiber.StatusConflict,
	models.ErrNotAWinner:          fiber.StatusForbidden,
	models.ErrPrizeAlreadyClaimed: fiber.StatusConflict,
	models.ErrFeeAlreadyCollected: fiber.StatusConflict,

	models.ErrEmergencyNotActive:     fiber.StatusConflict,
	models.ErrEmergencyAlreadyActive: fiber.StatusConflict,
	models.ErrAlreadyWithdrawn:       fiber.StatusConflict,
}

// respondError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is a 500 and gets logged; taxonomy errors are the caller's
// problem and are returned verbatim.
func respondError(c *fiber.Ctx, err error) error {
	for sentinel, status := range errStatus {
		if errors.Is(err, sentinel) {
			return c.Status(status).JSON(fiber.Map{"error": sentinel.Error()})
		}
	}
	log.Printf("ERROR %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(500).JSON(fiber.Map{"error": "internal error"})
}
