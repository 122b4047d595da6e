// Package service wires the engine's stores into the host-facing operations:
// engagement recording, session tracking, and mix generation.
package service

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/tunemixapp/tunemix-engine/internal/store"
)

// validate is a shared validator instance for request validation.
var validate = func() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for field names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove any options (like omitempty, -)
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})
	return v
}()

// formatValidationError converts validator errors to domain errors.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		// Return first validation error as a domain error
		for _, e := range validationErrs {
			field := e.Field()
			switch e.Tag() {
			case "required":
				return store.ErrInvalidInput.WithMessage(fmt.Sprintf("%s is required", field))
			case "gte":
				return store.ErrInvalidInput.WithMessage(fmt.Sprintf("%s must be at least %s", field, e.Param()))
			case "lte":
				return store.ErrInvalidInput.WithMessage(fmt.Sprintf("%s exceeds maximum of %s", field, e.Param()))
			default:
				return store.ErrInvalidInput.WithMessage(fmt.Sprintf("%s is invalid", field))
			}
		}
	}
	return err
}
