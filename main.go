package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"matchday-bets/config"
	"matchday-bets/handlers"
	"matchday-bets/middleware"
	"matchday-bets/models"
	"matchday-bets/services"
	"matchday-bets/utils"
	"matchday-bets/workers"

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

	settings, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	app := fiber.New(fiber.Config{
		AppName: "matchday-bets",
	})

	// Only gateway requests allowed, no exceptions.
	app.Use(middleware.GatewayAuth(settings.ServiceToken))

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	db, err := gorm.Open(postgres.Open(settings.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Phase{},
		&models.Group{},
		&models.Team{},
		&models.MatchReference{},
		&models.Match{},
		&models.ScoreBet{},
		&models.BinaryBet{},
		&models.GroupPosition{},
	); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	flagStorage, err := utils.InitR2()
	if err != nil {
		log.Fatal("failed to initialize R2 client: ", err)
	}
	if !flagStorage {
		log.Println("flag storage credentials not set, flag uploads disabled")
	}

	if err := utils.LoadCatalog(db, settings.DataFolder); err != nil {
		log.Fatal("failed to load competition catalog: ", err)
	}

	authService := services.NewAuthService(db, settings)
	betService := services.NewBetService(db, settings)
	catalogService := services.NewCatalogService(db, settings)
	ruleService := services.NewRuleService(db, settings)
	resultService := services.NewResultService(db, settings)

	handlers.SetupAuthRoutes(app, db, authService)
	handlers.SetupBetRoutes(app, db, betService)
	handlers.SetupCatalogRoutes(app, db, catalogService)
	handlers.SetupRuleRoutes(app, db, ruleService)
	handlers.SetupResultRoutes(app, db, resultService)

	standingsWorker := workers.NewStandingsWorker(db)
	if err := standingsWorker.Start(); err != nil {
		log.Fatal("failed to start standings worker: ", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server running on http://localhost:%s", port)
	log.Printf("Competition: %s, lock datetime: %s", settings.Competition, settings.LockDatetime)

	<-ctx.Done()
	log.Println("Shutting down server...")
	standingsWorker.Stop()
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
