package couponValidator

import (
	"time"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateCoupon validator middleware
func CreateCoupon() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Code        string    `json:"code" validate:"required,min=3"`
			DiscountPct float64   `json:"discountPct" validate:"required,gt=0,lte=100"`
			MaxDiscount float64   `json:"maxDiscount" validate:"required,gt=0"`
			MinPurchase float64   `json:"minPurchase" validate:"gte=0"`
			ExpiresAt   time.Time `json:"expiresAt" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := middleware.ValidateStruct(reqData)
		if reqData.ExpiresAt.Before(time.Now()) {
			if errors == nil {
				errors = make(map[string]string)
			}
			errors["expiresAt"] = "Expiry must be in the future!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateCoupon", reqData)
		return c.Next()
	}
}
