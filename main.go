package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"season-pool-system/handlers"
	"season-pool-system/middleware"
	"season-pool-system/models"
	"season-pool-system/services"
	"season-pool-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New()

	// Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.ProgramConfig{},
		&models.Season{},
		&models.Participant{},
		&models.Vault{},
		&models.WalletAccount{},
		&models.TransferRecord{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	clock := services.SystemClock()

	var eligibility services.EligibilityVerifier = services.AllowAllVerifier{}
	if base := os.Getenv("ELIGIBILITY_SERVICE_URL"); base != "" {
		eligibility = services.NewBackendVerifier(base, os.Getenv("SEASON_SERVICE_TOKEN"))
		log.Println("Registration gated by eligibility service:", base)
	}

	walletService := services.NewWalletService(db)
	vaultService := services.NewVaultService(walletService)
	configService := services.NewConfigService(db)
	seasonService := services.NewSeasonService(db, clock, configService, vaultService)
	registrationService := services.NewRegistrationService(db, clock, vaultService, eligibility)
	prizeService := services.NewPrizeService(db, clock, vaultService)

	seasonService.StartStatusScheduler()

	handlers.SetupConfigRoutes(app, configService, walletService)
	handlers.SetupSeasonRoutes(app, seasonService, registrationService, prizeService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Season pool service running on http://localhost:%s", port)
	log.Println("Season status scheduler running (every 1m)")
	log.Println("GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
