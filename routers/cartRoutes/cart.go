package cartRoutes

import (
	cartController "lms/controllers/cart"
	"lms/middleware"
	cartValidator "lms/validators/cart"

	"github.com/gofiber/fiber/v2"
)

func SetupCartRoutes(app *fiber.App) {
	cartGroup := app.Group("/cart")

	cartGroup.Post("/", cartValidator.AddToCart(), middleware.JWTMiddleware, cartController.AddToCart)
	cartGroup.Delete("/:id", middleware.JWTMiddleware, cartController.RemoveFromCart)
	cartGroup.Get("/", middleware.JWTMiddleware, cartController.GetCart)
}
