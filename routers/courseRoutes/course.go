package courseRoutes

import (
	courseController "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Instructor routes
	courseGroup.Post("/", courseValidator.CreateCourse(), middleware.JWTMiddleware, middleware.RequireRole(models.RoleInstructor), courseController.CreateCourse)
	courseGroup.Patch("/:id/publish", middleware.JWTMiddleware, middleware.RequireRole(models.RoleInstructor), courseController.PublishCourse)
	courseGroup.Post("/chapter", courseValidator.AddChapter(), middleware.JWTMiddleware, middleware.RequireRole(models.RoleInstructor), courseController.AddChapter)
	courseGroup.Post("/quiz", courseValidator.AddQuiz(), middleware.JWTMiddleware, middleware.RequireRole(models.RoleInstructor), courseController.AddQuiz)

	// Offers
	offerGroup := courseGroup.Group("/offer")
	offerGroup.Post("/", courseValidator.CreateOffer(), middleware.JWTMiddleware, middleware.RequireRole(models.RoleInstructor), courseController.CreateOffer)
	offerGroup.Get("/", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), courseController.ListOffers)
	offerGroup.Patch("/:id/review", courseValidator.ReviewOffer(), middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), courseController.ReviewOffer)

	// Catalog; the :id wildcard goes last so it cannot shadow /offer
	courseGroup.Get("/", courseController.ListCourses)
	courseGroup.Get("/:id", courseController.GetCourse)

	// Student progress
	progressGroup := app.Group("/progress")
	progressGroup.Post("/chapter", courseValidator.CompleteChapter(), middleware.JWTMiddleware, courseController.CompleteChapter)
	progressGroup.Post("/quiz", courseValidator.SubmitQuiz(), middleware.JWTMiddleware, courseController.SubmitQuiz)
	progressGroup.Get("/enrollments", middleware.JWTMiddleware, courseController.GetMyEnrollments)
	progressGroup.Get("/certificates", middleware.JWTMiddleware, courseController.GetMyCertificates)
}
