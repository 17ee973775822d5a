package middleware

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs tag validation and returns field errors keyed by the
// lower-cased field name, ready for ValidationErrorResponse
func ValidateStruct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["body"] = "Invalid request body!"
		return errors
	}

	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Field()[:1]) + fieldErr.Field()[1:]
		switch fieldErr.Tag() {
		case "required":
			errors[field] = fmt.Sprintf("%s is required!", fieldErr.Field())
		case "email":
			errors[field] = "Invalid email!"
		case "min":
			errors[field] = fmt.Sprintf("%s must be at least %s characters long!", fieldErr.Field(), fieldErr.Param())
		case "oneof":
			errors[field] = fmt.Sprintf("%s must be one of: %s!", fieldErr.Field(), fieldErr.Param())
		case "gt", "gte":
			errors[field] = fmt.Sprintf("%s is too small!", fieldErr.Field())
		case "lte":
			errors[field] = fmt.Sprintf("%s is too large!", fieldErr.Field())
		default:
			errors[field] = fmt.Sprintf("%s is invalid!", fieldErr.Field())
		}
	}
	return errors
}
