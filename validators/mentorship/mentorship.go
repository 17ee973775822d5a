package mentorshipValidator

import (
	"time"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateSlot validator middleware
func CreateSlot() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			StartTime time.Time `json:"startTime" validate:"required"`
			EndTime   time.Time `json:"endTime" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateSlot", reqData)
		return c.Next()
	}
}
