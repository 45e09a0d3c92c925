package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports JSON field names and checks
// decimal prices without converting them to floats.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterStructValidation(validateProductRequest, ProductRequest{})
	return v
}

func validateProductRequest(sl validator.StructLevel) {
	req := sl.Current().Interface().(ProductRequest)
	if req.Price.Valid && req.Price.Decimal.IsNegative() {
		sl.ReportError(req.Price.Decimal.String(), "price", "Price", "nonnegative", "")
	}
}

// FieldErrors turns validator errors into a field -> message map. It returns
// nil when err is not a validation failure.
func FieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	out := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		out[e.Field()] = fieldMessage(e)
	}
	return out
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "must not be blank"
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "nonnegative":
		return "must not be negative"
	case "url":
		return "must be a valid URL"
	}
	return fmt.Sprintf("failed on the '%s' tag", e.Tag())
}
