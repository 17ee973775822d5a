package learningPathRoutes

import (
	courseController "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupLearningPathRoutes(app *fiber.App) {
	pathGroup := app.Group("/learning-path")

	pathGroup.Get("/", courseController.ListLearningPaths)
	pathGroup.Get("/:id/progress", middleware.JWTMiddleware, courseController.GetPathProgress)
	pathGroup.Post("/complete-course", courseValidator.MarkCourseCompleted(), middleware.JWTMiddleware, courseController.MarkCourseCompleted)

	// Admin routes
	pathGroup.Post("/", courseValidator.CreateLearningPath(), middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), courseController.CreateLearningPath)
	pathGroup.Patch("/:id/publish", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), courseController.PublishLearningPath)
}
