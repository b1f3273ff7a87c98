package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Afsalkalladi/mess-management/internal/adapters/http/middleware"
	"github.com/Afsalkalladi/mess-management/internal/adapters/http/routes"
	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/repositories"
	"github.com/Afsalkalladi/mess-management/internal/adapters/telegram"
	"github.com/Afsalkalladi/mess-management/internal/config"
	"github.com/Afsalkalladi/mess-management/internal/core/services"
)

// notifyInterval is how often the outbox worker drains pending notifications
const notifyInterval = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed settings row and default admin
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Meal schedule in the facility timezone
	schedule, err := cfg.MealSchedule()
	if err != nil {
		log.Fatalf("❌ Failed to build meal schedule: %v", err)
	}

	// Telegram notifier (nil when no bot token is configured)
	notifier, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.AdminTgIDs)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Telegram bot: %v", err)
	}

	// Background workers share the outbox table with the HTTP layer
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	notifRepo := repositories.NewNotificationRepository(db)
	notifyService := services.NewNotifyService(notifRepo, notifier)
	notifyService.StartWorker(workerCtx, notifyInterval)

	// Cron jobs: daily report, payment expiry warnings, weekly cleanup
	scanRepo := repositories.NewScanEventRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	reportService := services.NewReportService(
		scanRepo,
		repositories.NewMessCutRepository(db),
		paymentRepo,
		repositories.NewStudentRepository(db),
		schedule,
	)
	cronService := services.NewCronService(
		reportService,
		notifyService,
		paymentRepo,
		scanRepo,
		repositories.NewRefreshTokenRepository(db),
		notifRepo,
		schedule,
	)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron scheduler: %v", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Mess Management API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, schedule)

	// Graceful shutdown
	go gracefulShutdown(app, stopWorkers)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, stopWorkers context.CancelFunc) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	stopWorkers()
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
