package handlers

import (
	"season-pool-system/middleware"
	"season-pool-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupConfigRoutes(app *fiber.App, config *services.ConfigService, wallets *services.WalletService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// First caller wins; everyone after gets AlreadyInitialized.
	secured.Post("/config/bootstrap", config.BootstrapConfig)
	secured.Get("/config", config.GetConfig)
	secured.Patch("/config/admin", config.TransferAdminHandler)

	// Wallet on-ramp (admin) and balance reads
	secured.Post("/wallets/credit", wallets.CreditWallet(config))
	secured.Get("/wallets/me", wallets.GetBalance)
	secured.Get("/wallets/:address", wallets.GetBalance)
}
