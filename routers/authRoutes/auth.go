package authRoutes

import (
	authController "lms/controllers/auth"
	"lms/middleware"
	authValidator "lms/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", authValidator.Register(), authController.Register)
	authGroup.Post("/login", authValidator.Login(), authController.Login)
	authGroup.Put("/change/password", authValidator.ChangePassword(), middleware.JWTMiddleware, authController.ChangePassword)
}
