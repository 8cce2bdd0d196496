package FiberConfig

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"Compass/Apis"
	"Compass/Controllers"
	"Compass/Models"
	"Compass/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	statusController := Controllers.NewProjectStatusController(db)
	evaluationController := Controllers.NewEvaluationController(db)
	reportHandler := Apis.NewReportHandler(db)

	// Auth
	app.Post("/api/Login", Controllers.Login)
	app.Get("/api/validate-token", Controllers.ValidateToken)
	app.Use("/api/Logout", Controllers.Logout)
	app.Post("/api/RegisterUser", middleware.Verify(4), Controllers.RegisterUser)

	// Admin staff report
	admin := app.Group("/api/admin", middleware.Verify(4))
	admin.Get("/staff/report", reportHandler.GetStaffReport)
	admin.Get("/staff/report/export", reportHandler.ExportStaffReport)

	// Project lifecycle - transitions drive snapshot bookkeeping
	projects := app.Group("/api/projects", middleware.Verify(1))
	projects.Post("/:id/complete", middleware.Verify(3), statusController.CompleteProject)
	projects.Post("/:id/cancel", middleware.Verify(3), statusController.CancelProject)
	projects.Post("/:id/reopen", middleware.Verify(3), statusController.ReopenProject)

	// Evaluations (live path)
	projects.Post("/:id/evaluations", evaluationController.CreateEvaluation)
	projects.Get("/:id/evaluations", evaluationController.GetProjectEvaluations)
}

func FiberConfig() {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true, // Important for cookies
		MaxAge:           300,
	}))

	SetupRoutes(app, Models.DB)

	app.Listen(":3001")
}
