package walletRoutes

import (
	walletController "lms/controllers/wallet"
	"lms/middleware"
	"lms/models"
	walletValidator "lms/validators/wallet"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App) {
	walletGroup := app.Group("/wallet")

	// User routes
	walletGroup.Get("/balance", middleware.JWTMiddleware, walletController.CheckBalance)
	walletGroup.Post("/deposit", walletValidator.Deposit(), middleware.JWTMiddleware, walletController.Deposit)
	walletGroup.Get("/history", middleware.JWTMiddleware, walletController.TransactionHistory)

	// Admin routes
	adminGroup := walletGroup.Group("/admin")
	adminGroup.Post("/credit", walletValidator.AdminCredit(), middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), walletController.AdminCredit)
}
