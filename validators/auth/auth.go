package authValidator

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// Register validator middleware
func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name     string `json:"name" validate:"required,min=2"`
			Email    string `json:"email" validate:"required,email"`
			Mobile   string `json:"mobile"`
			Password string `json:"password" validate:"required,min=8"`
			Role     string `json:"role" validate:"omitempty,oneof=STUDENT INSTRUCTOR"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRegister", reqData)
		return c.Next()
	}
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Email    string `json:"email" validate:"required,email"`
			Password string `json:"password" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}

// ChangePassword validator middleware
func ChangePassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CurrentPassword string `json:"currentPassword" validate:"required"`
			NewPassword     string `json:"newPassword" validate:"required,min=8"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedChangePassword", reqData)
		return c.Next()
	}
}
