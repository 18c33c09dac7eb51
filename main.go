// main.go
package main

import (
	"log"
	"os"
	"time"

	"skaila/database"
	"skaila/handlers"
	"skaila/handlers/admin"
	applog "skaila/logger"
	"skaila/middleware"
	"skaila/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	applog.Init(getEnv("APP_ENV", "development"))
	defer applog.Sync()

	// Initialize database and optional Redis. InitDB runs the
	// migrations itself.
	database.InitDB()
	database.InitRedis()
	defer database.CloseDB()
	defer database.CloseRedis()

	// Background jobs: session sweeps, cache eviction, XP resets
	services.InitCleanupService()
	if cleanup := services.GetCleanupService(); cleanup != nil {
		cleanup.Start()
		defer cleanup.Stop()
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.RateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/register", handlers.Register)

	// User routes
	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthMiddleware)
	userGroup.Get("/me", handlers.Me)
	userGroup.Put("/me", handlers.UpdateProfile)

	// Telemetry ingestion
	telemetryGroup := api.Group("/telemetry")
	telemetryGroup.Use(middleware.AuthMiddleware)
	telemetryGroup.Use(middleware.TelemetryRateLimitMiddleware())
	telemetryGroup.Post("/event", handlers.TrackEvent)
	telemetryGroup.Post("/events/batch", handlers.TrackBatch)
	telemetryGroup.Post("/session/end", handlers.EndSession)
	telemetryGroup.Get("/sessions", handlers.MySessions)

	// XP and progression
	xpGroup := api.Group("/xp")
	xpGroup.Use(middleware.AuthMiddleware)
	xpGroup.Get("/state", handlers.GetProgressionState)
	xpGroup.Get("/ledger", handlers.GetLedger)
	xpGroup.Get("/ranks", handlers.GetRanks)
	xpGroup.Get("/badges", handlers.GetBadges)
	xpGroup.Post("/message", handlers.AwardMessageXP)
	xpGroup.Post("/chatbot", handlers.AwardChatbotXP)
	xpGroup.Post("/help", handlers.AwardHelpXP)
	xpGroup.Post("/reaction", handlers.AwardReactionXP)
	xpGroup.Post("/award", middleware.RequireRole("admin"), handlers.AdminAwardXP)

	// Challenges
	challengeGroup := api.Group("/challenges")
	challengeGroup.Use(middleware.AuthMiddleware)
	challengeGroup.Get("/", handlers.MyChallenges)
	challengeGroup.Post("/daily/assign", handlers.AssignDailyChallenge)
	challengeGroup.Post("/weekly/assign", handlers.AssignWeeklyChallenges)
	challengeGroup.Get("/class", handlers.ClassChallengeStatus)
	challengeGroup.Get("/templates", middleware.RequireRole("teacher"), handlers.ListChallengeTemplates)
	challengeGroup.Post("/class/assign", middleware.RequireRole("admin"), handlers.AssignClassChallenge)

	// Alerts: teachers manage, students may view their own
	alertGroup := api.Group("/alerts")
	alertGroup.Use(middleware.AuthMiddleware)
	alertGroup.Get("/", middleware.RequireRole("teacher"), handlers.ListAlerts)
	alertGroup.Get("/mine", handlers.MyAlerts)
	alertGroup.Post("/:id/acknowledge", middleware.RequireRole("teacher"), handlers.AcknowledgeAlert)
	alertGroup.Post("/:id/resolve", middleware.RequireRole("teacher"), handlers.ResolveAlert)

	// Recovery paths: students work through their own plans
	recoveryGroup := api.Group("/recovery")
	recoveryGroup.Use(middleware.AuthMiddleware)
	recoveryGroup.Get("/", handlers.MyRecoveryPaths)
	recoveryGroup.Post("/:id/advance", handlers.AdvanceRecoveryPath)

	// Leaderboard
	leaderboardGroup := api.Group("/leaderboard")
	leaderboardGroup.Use(middleware.AuthMiddleware)
	leaderboardGroup.Get("/", handlers.GetLeaderboard)
	leaderboardGroup.Get("/me", handlers.GetMyPosition)

	// Power-up shop
	powerupGroup := api.Group("/powerups")
	powerupGroup.Use(middleware.AuthMiddleware)
	powerupGroup.Get("/shop", handlers.PowerUpShop)
	powerupGroup.Post("/buy", handlers.BuyPowerUp)
	powerupGroup.Get("/active", handlers.MyPowerUps)

	// Opportunities and applications
	opportunityGroup := api.Group("/opportunities")
	opportunityGroup.Use(middleware.AuthMiddleware)
	opportunityGroup.Get("/", handlers.ListOpportunities)
	opportunityGroup.Get("/matched", handlers.MatchedOpportunities)
	api.Post("/applications", middleware.AuthMiddleware, handlers.SubmitApplication)
	api.Get("/applications", middleware.AuthMiddleware, handlers.MyApplications)

	// Portfolio and candidate card
	portfolioGroup := api.Group("/portfolio")
	portfolioGroup.Use(middleware.AuthMiddleware)
	portfolioGroup.Get("/candidate_card", handlers.CandidateCard)
	portfolioGroup.Get("/candidate_card/:id", middleware.RequireRole("teacher"), handlers.PublicCandidateCard)
	portfolioGroup.Put("/", handlers.UpsertPortfolio)
	portfolioGroup.Post("/skills", handlers.AddSkill)
	portfolioGroup.Post("/projects", handlers.AddProject)
	portfolioGroup.Post("/grades", middleware.RequireRole("teacher"), handlers.AddGrade)

	// AI tutor
	tutorGroup := api.Group("/tutor")
	tutorGroup.Use(middleware.AuthMiddleware)
	tutorGroup.Post("/ask", handlers.AskTutor)
	tutorGroup.Get("/usage", handlers.TutorUsage)

	// Notifications
	notificationGroup := api.Group("/notifications")
	notificationGroup.Use(middleware.AuthMiddleware)
	notificationGroup.Get("/", handlers.ListNotifications)
	notificationGroup.Post("/read", handlers.MarkNotificationsRead)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AdminAuthMiddleware)
	adminGroup.Get("/users", admin.ListUsers)
	adminGroup.Put("/users/:id/role", admin.SetUserRole)
	adminGroup.Post("/users/:id/ban", admin.BanUser)
	adminGroup.Put("/users/:id/cost-limits", admin.SetCostLimits)
	adminGroup.Get("/companies", admin.ListCompanies)
	adminGroup.Post("/companies", admin.CreateCompany)
	adminGroup.Post("/opportunities", admin.CreateOpportunity)
	adminGroup.Put("/opportunities/:id", admin.UpdateOpportunity)
	adminGroup.Get("/opportunities/:id/applications", admin.ListApplications)
	adminGroup.Put("/applications/:id/status", admin.SetApplicationStatus)
	adminGroup.Post("/maintenance/evict-cache", admin.EvictCache)
	adminGroup.Post("/maintenance/close-sessions", admin.CloseStaleSessions)
	adminGroup.Post("/maintenance/reset-daily", admin.ResetDailyXP)
	adminGroup.Post("/maintenance/reset-weekly", admin.ResetWeeklyXP)

	// WebSocket notifications
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return middleware.WebSocketAuthMiddleware(c)
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/notifications", handlers.NotificationSocket())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
