package walletValidator

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// Deposit validator middleware
func Deposit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Amount         float64 `json:"amount" validate:"required,gt=0"`
			GatewayOrderID string  `json:"gatewayOrderId" validate:"required"`
			PaymentID      string  `json:"paymentId" validate:"required"`
			Signature      string  `json:"signature" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDeposit", reqData)
		return c.Next()
	}
}

// AdminCredit validator middleware
func AdminCredit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID uint    `json:"userId" validate:"required"`
			Amount float64 `json:"amount" validate:"required,gt=0"`
			Memo   string  `json:"memo" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAdminCredit", reqData)
		return c.Next()
	}
}
