package couponRoutes

import (
	couponController "lms/controllers/coupon"
	"lms/middleware"
	"lms/models"
	couponValidator "lms/validators/coupon"

	"github.com/gofiber/fiber/v2"
)

func SetupCouponRoutes(app *fiber.App) {
	couponGroup := app.Group("/coupon")

	couponGroup.Get("/code/:code", middleware.JWTMiddleware, couponController.GetCouponByCode)

	// Admin routes
	couponGroup.Post("/", couponValidator.CreateCoupon(), middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), couponController.CreateCoupon)
	couponGroup.Get("/", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), couponController.ListCoupons)
	couponGroup.Patch("/:id/deactivate", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), couponController.DeactivateCoupon)
}
