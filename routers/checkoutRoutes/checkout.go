package checkoutRoutes

import (
	checkoutController "lms/controllers/checkout"
	"lms/middleware"
	checkoutValidator "lms/validators/checkout"

	"github.com/gofiber/fiber/v2"
)

func SetupCheckoutRoutes(app *fiber.App) {
	checkoutGroup := app.Group("/checkout")

	checkoutGroup.Post("/", checkoutValidator.Checkout(), middleware.JWTMiddleware, checkoutController.Checkout)
	checkoutGroup.Post("/verify", checkoutValidator.VerifyPayment(), middleware.JWTMiddleware, checkoutController.VerifyPayment)
	checkoutGroup.Get("/orders", middleware.JWTMiddleware, checkoutController.GetMyOrders)
}
