package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"notable-be/internal/pkg/apperror"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation on a request DTO and converts
// the first failure into a ValidationError.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		return apperror.Validation("invalid request body")
	}

	fe := validationErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperror.Validation(fmt.Sprintf("%s is required", field))
	case "email":
		return apperror.Validation(fmt.Sprintf("%s must be a valid email address", field))
	case "min":
		return apperror.Validation(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return apperror.Validation(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		return apperror.Validation(fmt.Sprintf("%s is invalid", field))
	}
}
