package checkoutValidator

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// Checkout validator middleware. The order must contain at least one course
// or learning path.
func Checkout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseIDs       []uint  `json:"courseIds"`
			LearningPathIDs []uint  `json:"learningPathIds"`
			Total           float64 `json:"total"`
			PaymentMethod   string  `json:"paymentMethod" validate:"required,oneof=WALLET GATEWAY"`
			CouponID        *uint   `json:"couponId"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := middleware.ValidateStruct(reqData)
		if len(reqData.CourseIDs) == 0 && len(reqData.LearningPathIDs) == 0 {
			if errors == nil {
				errors = make(map[string]string)
			}
			errors["content"] = "At least one course or learning path is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCheckout", reqData)
		return c.Next()
	}
}

// VerifyPayment validator middleware
func VerifyPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			OrderID        uint    `json:"orderId" validate:"required"`
			GatewayOrderID string  `json:"gatewayOrderId" validate:"required"`
			PaymentID      string  `json:"paymentId" validate:"required"`
			Signature      string  `json:"signature" validate:"required"`
			Amount         float64 `json:"amount" validate:"required"`
			Method         string  `json:"method"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedVerifyPayment", reqData)
		return c.Next()
	}
}
