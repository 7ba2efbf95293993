package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tribex-platform/forms"
	"tribex-platform/handlers"
	"tribex-platform/models"
	"tribex-platform/services"
	"tribex-platform/utils"
	"tribex-platform/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // registration uploads are screenshots and documents
	})

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	originList := strings.Split(allowedOrigins, ",")
	for i, origin := range originList {
		originList[i] = strings.TrimSpace(origin)
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(originList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
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
	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Tournament{},
		&models.Registration{},
		&models.UserProfile{},
		&models.BlogPost{},
		&models.LeaderboardEntry{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	authServiceURL := os.Getenv("AUTH_SERVICE_URL")
	if authServiceURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable not set")
	}
	authServiceToken := os.Getenv("AUTH_SERVICE_TOKEN")
	if authServiceToken == "" {
		log.Fatal("AUTH_SERVICE_TOKEN environment variable not set")
	}
	authClient := services.NewAuthServiceClient(authServiceURL, authServiceToken)

	schemas := forms.NewSchemaCache()
	tournamentService := services.NewTournamentService(db, schemas)
	registrationService := services.NewRegistrationService(db, schemas)
	userService := services.NewUserService(db, authClient)
	blogService := services.NewBlogService(db)
	leaderboardService := services.NewLeaderboardService(db)
	uploadService := services.NewUploadService()
	chatService := services.NewChatService(os.Getenv("AI_SERVICE_URL"), os.Getenv("AI_SERVICE_TOKEN"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker := workers.NewUserSyncWorker(db, authClient)
	syncWorker.Start(ctx)
	go workers.PollOrphanFiles(ctx, db, 10*time.Minute, time.Hour)

	tournamentService.StartPublishScheduler()

	handlers.SetupTournamentRoutes(app, tournamentService, registrationService)
	handlers.SetupUserRoutes(app, userService)
	handlers.SetupContentRoutes(app, blogService, leaderboardService, uploadService, chatService)

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "5100"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server running on http://localhost:%s", port)
	log.Println("User sync worker running")
	log.Println("Orphan upload sweep running (every 10m)")
	log.Printf("CORS configured for origins: %s", strings.Join(originList, ","))

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
