package cartValidator

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// AddToCart validator middleware. Exactly one of courseId or learningPathId
// must be set.
func AddToCart() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID       *uint `json:"courseId"`
			LearningPathID *uint `json:"learningPathId"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.CourseID == nil && reqData.LearningPathID == nil {
			errors["content"] = "Either courseId or learningPathId is required!"
		}
		if reqData.CourseID != nil && reqData.LearningPathID != nil {
			errors["content"] = "Provide only one of courseId or learningPathId!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAddToCart", reqData)
		return c.Next()
	}
}
