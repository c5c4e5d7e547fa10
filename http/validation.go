package http

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var requestValidator = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// validateRequest checks the declarative constraints on req.
func validateRequest(req *Request) error {
	if req == nil {
		return NewValidationError("request cannot be nil", "request")
	}

	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return wrapValidationError(describeFieldError(fe), fe.Field(), err)
	}
	return wrapValidationError("invalid request", "request", err)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.StructField() {
	case "Timeout":
		return "timeout must be at least 1ms"
	case "Expect":
		if fe.Tag() == "min" {
			return "at least one expected status code is required"
		}
	}
	if fe.Param() != "" {
		return fmt.Sprintf("failed '%s=%s' validation", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed '%s' validation", fe.Tag())
}
