package routes

import (
	"wiseman-bank/internal/adapters/http/handlers"
	"wiseman-bank/internal/adapters/http/middleware"
	"wiseman-bank/internal/adapters/persistence/repositories"
	"wiseman-bank/internal/config"
	"wiseman-bank/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	bankRepo := repositories.NewBankRepository(db)

	// Initialize services
	authService := services.NewAuthService(accountRepo, refreshTokenRepo, bankRepo, cfg)
	userService := services.NewUserService(accountRepo, bankRepo)
	loanService := services.NewLoanService(accountRepo, bankRepo)
	bankService := services.NewBankService(bankRepo)
	rolloverService := services.NewRolloverService(accountRepo)
	summaryService := services.NewSummaryService()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	dashboardHandler := handlers.NewDashboardHandler(rolloverService, summaryService, bankService)
	loanHandler := handlers.NewLoanHandler(loanService, rolloverService)
	adminHandler := handlers.NewAdminHandler(userService, loanService, bankService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, dashboardHandler, loanHandler, adminHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	loanHandler *handlers.LoanHandler,
	adminHandler *handlers.AdminHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Dashboard routes (authenticated)
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDashboardRoutes(dashboardRoutes, dashboardHandler)

	// Loan routes (authenticated)
	loanRoutes := router.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	setupLoanRoutes(loanRoutes, loanHandler)

	// Admin routes (Admin only)
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, adminHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (rate limited against brute force)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
	router.Post("/change-password", middleware.AuthMiddleware(cfg), middleware.StrictRateLimiter(), handler.ChangePassword)
}

// setupDashboardRoutes configures dashboard routes
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	router.Get("/", handler.GetMyDashboard)
	router.Get("/admin", middleware.AdminOnly(), handler.GetAdminDashboard)
}

// setupLoanRoutes configures customer loan routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler) {
	router.Get("/", handler.GetMyLoans)
	router.Get("/:loanId/payoff", handler.GetPayoffQuote)
}

// setupAdminRoutes configures admin routes
func setupAdminRoutes(router fiber.Router, handler *handlers.AdminHandler) {
	// User management
	router.Get("/users", handler.ListUsers)
	router.Post("/users", handler.AddUser)
	router.Get("/users/:accountId", handler.GetUser)
	router.Delete("/users/:accountId", middleware.StrictRateLimiter(), handler.RemoveUser)

	// Loan management
	router.Post("/users/:accountId/loans", handler.AddLoan)
	router.Post("/users/:accountId/loans/:loanId/extend", handler.ExtendLoan)
	router.Post("/users/:accountId/loans/:loanId/payments/:index/approve", handler.ApprovePayment)

	// Bank settings
	router.Get("/bank", handler.GetBankSettings)
	router.Patch("/bank", handler.UpdateBankSettings)
}
