package routes

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"lumina/backend/ai"
	"lumina/backend/cache"
	"lumina/backend/config"
	"lumina/backend/controllers"
	"lumina/backend/middleware"
	"lumina/backend/repository"
	"lumina/backend/utils"
)

// Services are the collaborators shared by every controller. Cache may be nil.
type Services struct {
	DB     *gorm.DB
	Cfg    *config.Config
	AI     ai.Generator
	Cache  *cache.LeaderboardCache
	Logger *log.Logger
}

// NewApp builds the Fiber application with the global middleware and all routes.
func NewApp(s Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Lumina",
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	origins := strings.Join(s.Cfg.Origins(), ",")
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
	}))
	if s.Logger != nil {
		app.Use(middleware.LoggingMiddleware(s.Logger, s.Cfg.LogColors))
	}

	SetupRoutes(app, s)
	return app
}

// errorHandler renders unhandled errors (unknown routes, panics) in the common error shape.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	if status == fiber.StatusInternalServerError {
		return utils.InternalServerError(c, "Internal server error")
	}
	return utils.Error(c, status, err)
}

func SetupRoutes(app *fiber.App, s Services) {
	repo := repository.New(s.DB)
	validator := utils.MustNewValidator()

	app.Get("/health", controllers.Health)

	api := app.Group("/api")

	// Auth routes
	authController := controllers.NewAuthController(repo, s.Cfg, validator, s.Cache, s.Logger)
	api.Post("/register", authController.Register)
	api.Post("/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(s.Cfg, repo)

	// User routes
	userController := controllers.NewUserController(repo, validator, s.Cache, s.Logger)
	api.Get("/me", authMiddleware, userController.GetProfile)
	api.Put("/me", authMiddleware, userController.UpdateProfile)

	// Study log routes
	sessionController := controllers.NewSessionController(repo, s.Cfg, validator, s.Cache, s.Logger)
	api.Post("/logs", authMiddleware, sessionController.CreateLog)
	api.Get("/logs", authMiddleware, sessionController.ListLogs)

	dashboardController := controllers.NewDashboardController(repo, s.Cfg)
	api.Get("/dashboard/stats", authMiddleware, dashboardController.GetStats)

	// Progress routes
	progressController := controllers.NewProgressController(repo, s.Cfg)
	api.Get("/progress", authMiddleware, progressController.GetProgress)
	api.Get("/progress/topics", authMiddleware, progressController.GetTopics)

	// AI routes
	assessmentController := controllers.NewAssessmentController(repo, s.AI, validator, s.Cache, s.Logger)
	api.Post("/assessment/generate", authMiddleware, assessmentController.Generate)

	tutorController := controllers.NewTutorController(repo, s.AI, validator, s.Cache, s.Logger)
	api.Post("/tutor/ask", authMiddleware, tutorController.Ask)
	api.Get("/tutor/history", authMiddleware, tutorController.History)

	// Study group routes
	groupController := controllers.NewGroupController(repo, validator)
	groups := api.Group("/study-groups", authMiddleware)
	groups.Post("/", groupController.Create)
	groups.Get("/", groupController.List)
	groups.Get("/:id", groupController.Get)
	groups.Post("/:id/join", groupController.Join)
	groups.Post("/:id/leave", groupController.Leave)

	// Leaderboard routes
	leaderboardController := controllers.NewLeaderboardController(repo, s.Cfg, s.Cache, s.Logger)
	boards := api.Group("/leaderboard", authMiddleware)
	boards.Get("/global", leaderboardController.Global)
	boards.Get("/group/:id", leaderboardController.Group)
}
