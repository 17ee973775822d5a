package mentorshipRoutes

import (
	mentorshipController "lms/controllers/mentorship"
	"lms/middleware"
	"lms/models"
	mentorshipValidator "lms/validators/mentorship"

	"github.com/gofiber/fiber/v2"
)

func SetupMentorshipRoutes(app *fiber.App) {
	mentorshipGroup := app.Group("/mentorship")

	mentorshipGroup.Post("/slot", mentorshipValidator.CreateSlot(), middleware.JWTMiddleware, middleware.RequireRole(models.RoleInstructor), mentorshipController.CreateSlot)
	mentorshipGroup.Get("/slots", middleware.JWTMiddleware, mentorshipController.ListSlots)
	mentorshipGroup.Post("/slot/:id/book", middleware.JWTMiddleware, mentorshipController.BookSlot)
	mentorshipGroup.Get("/bookings", middleware.JWTMiddleware, mentorshipController.GetMyBookings)
}
