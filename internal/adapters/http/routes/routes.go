package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/http/handlers"
	"github.com/Afsalkalladi/mess-management/internal/adapters/http/middleware"
	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/repositories"
	"github.com/Afsalkalladi/mess-management/internal/config"
	"github.com/Afsalkalladi/mess-management/internal/core/services"
	"github.com/Afsalkalladi/mess-management/internal/pkg/mealtime"
)

// Setup configures all routes for the application. Notifications created by
// request handlers land in the shared outbox table; the worker started from
// main drains them.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, schedule *mealtime.Schedule) {
	// Initialize repositories
	studentRepo := repositories.NewStudentRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	cutRepo := repositories.NewMessCutRepository(db)
	closureRepo := repositories.NewMessClosureRepository(db)
	scanRepo := repositories.NewScanEventRepository(db)
	staffRepo := repositories.NewStaffTokenRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)
	notifRepo := repositories.NewNotificationRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	adminRepo := repositories.NewAdminUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// Initialize services
	notifyService := services.NewNotifyService(notifRepo, nil)
	authService := services.NewAuthService(adminRepo, refreshTokenRepo, cfg)
	studentService := services.NewStudentService(studentRepo, settingsRepo, auditRepo, notifyService, cfg.Mess.QRSecret)
	paymentService := services.NewPaymentService(paymentRepo, studentRepo, auditRepo, notifyService)
	cutService := services.NewMessCutService(cutRepo, studentRepo, auditRepo, notifyService, schedule)
	closureService := services.NewClosureService(closureRepo, studentRepo, auditRepo, notifyService)
	staffService := services.NewStaffService(staffRepo, auditRepo)
	scanService := services.NewScanService(studentRepo, paymentRepo, cutRepo, closureRepo, scanRepo, staffRepo, notifyService, schedule, cfg.Mess.QRSecret)
	reportService := services.NewReportService(scanRepo, cutRepo, paymentRepo, studentRepo, schedule)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	scannerHandler := handlers.NewScannerHandler(scanService)
	studentHandler := handlers.NewStudentHandler(studentService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	cutHandler := handlers.NewMessCutHandler(cutService)
	closureHandler := handlers.NewClosureHandler(closureService)
	staffHandler := handlers.NewStaffHandler(staffService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (stricter rate limit)
	auth := apiV1.Group("/auth")
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	// Scanner routes (staff token auth)
	scanner := apiV1.Group("/scanner", middleware.StaffTokenMiddleware(staffService))
	scanner.Post("/scan", middleware.ScanRateLimiter(), scannerHandler.Scan)

	// Public student routes
	apiV1.Post("/students/register", studentHandler.Register)
	apiV1.Post("/mess-cuts", cutHandler.Apply)
	apiV1.Post("/payments/upload", paymentHandler.Upload)

	// Admin routes (JWT auth)
	admin := apiV1.Group("/admin", middleware.AuthMiddleware(cfg), middleware.AdminOnly())

	admin.Get("/students", studentHandler.List)
	admin.Get("/students/:id", studentHandler.Get)
	admin.Post("/students/:id/approve", studentHandler.Approve)
	admin.Post("/students/:id/deny", studentHandler.Deny)
	admin.Get("/students/:id/qr", studentHandler.GetQR)
	admin.Post("/students/:id/qr/rotate", studentHandler.RotateQR)
	admin.Post("/students/qr/rotate-all", studentHandler.BulkRotateQR)
	admin.Get("/students/:id/payments", paymentHandler.ListByStudent)
	admin.Get("/students/:id/mess-cuts", cutHandler.ListByStudent)
	admin.Get("/students/:id/scans", reportHandler.ListStudentScans)

	admin.Get("/payments/pending", paymentHandler.ListPending)
	admin.Post("/payments/offline", paymentHandler.RecordOffline)
	admin.Post("/payments/:id/verify", paymentHandler.Verify)
	admin.Post("/payments/:id/deny", paymentHandler.Deny)

	admin.Post("/mess-cuts", cutHandler.AdminApply)

	admin.Get("/closures", closureHandler.List)
	admin.Post("/closures", closureHandler.Create)

	admin.Get("/staff-tokens", staffHandler.List)
	admin.Post("/staff-tokens", staffHandler.Issue)
	admin.Post("/staff-tokens/:id/revoke", staffHandler.Revoke)

	admin.Get("/reports/daily", reportHandler.Daily)
	admin.Get("/reports/payments", reportHandler.Payments)
	admin.Get("/reports/mess-cuts", reportHandler.ListCuts)
	admin.Get("/scans", reportHandler.ListScans)
}
