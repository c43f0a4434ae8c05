// Package validation wraps go-playground/validator so request bodies and
// configuration structs are checked with struct tags and reported as
// validation AppErrors.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"webhook-proxy/internal/common/errors"
)

// CentralizedValidator provides unified validation using go-playground/validator
type CentralizedValidator struct {
	validator *validator.Validate
}

// ValidationError represents a single validation error with context
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// NewCentralizedValidator creates a new centralized validator instance
func NewCentralizedValidator() *CentralizedValidator {
	v := validator.New()

	// Report JSON names, falling back to the env tag for config structs
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "env"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	return &CentralizedValidator{validator: v}
}

// ValidateStruct validates a struct using struct tags. The returned error is a
// validation AppError whose context lists the failing fields.
func (cv *CentralizedValidator) ValidateStruct(s interface{}) error {
	if err := cv.validator.Struct(s); err != nil {
		return cv.formatValidationErrors(err)
	}
	return nil
}

// FieldErrors returns the per-field details of an error produced by this
// package, or nil for any other error.
func FieldErrors(err error) []ValidationError {
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Context == nil {
		return nil
	}
	fields, _ := appErr.Context["fields"].([]ValidationError)
	return fields
}

func (cv *CentralizedValidator) formatValidationErrors(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ValidationError(err.Error())
	}

	fields := make([]ValidationError, 0, len(validationErrs))
	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		ve := ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: messageFor(fe),
		}
		fields = append(fields, ve)
		messages = append(messages, ve.Message)
	}

	return errors.ValidationError(strings.Join(messages, "; ")).WithContext("fields", fields)
}

func messageFor(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		name = "value"
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", name)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", name)
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}
