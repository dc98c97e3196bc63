package handlers

import (
	"season-pool-system/middleware"
	"season-pool-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSeasonRoutes(app *fiber.App, seasons *services.SeasonService, registrations *services.RegistrationService, prizes *services.PrizeService) {
	// Public read surface
	app.Get("/seasons", seasons.GetAllSeasonsMini)
	app.Get("/seasons/:number", seasons.GetSeasonByNumber)

	// Authenticated routes — caller identity from gateway context
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Admin
	secured.Post("/seasons", seasons.CreateSeasonHandler)

	// Authority-side lifecycle
	secured.Patch("/seasons/:number/timings", seasons.UpdateTimingsHandler)
	secured.Post("/seasons/:number/emergency-stop", seasons.EmergencyStopHandler)
	secured.Post("/seasons/:number/close", seasons.CloseSeasonHandler)
	secured.Post("/seasons/:number/fee", prizes.CollectFeeHandler)
	secured.Post("/seasons/:number/winners", prizes.SetWinnersHandler)

	// Participant-side
	secured.Post("/seasons/:number/register", registrations.RegisterHandler)
	secured.Get("/seasons/:number/me", registrations.GetMyParticipant)
	secured.Post("/seasons/:number/claim", prizes.ClaimPrizeHandler)
	secured.Post("/seasons/:number/emergency-withdraw", registrations.EmergencyWithdrawHandler)
}
