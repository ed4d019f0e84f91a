// Package validation wraps go-playground/validator for service-level inputs.
// Request bodies are validated by gin binding tags; this package covers
// payloads that are validated after decoding, such as batch entries.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return instance
}

// ValidateStruct validates s and converts the first failure into an
// apperrors.ValidationError. The prefix, if any, is prepended to the field
// name (e.g. "added[2]").
func ValidateStruct(prefix string, s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.ValidationError{Field: prefix, Reason: err.Error()}
	}
	fe := verrs[0]
	field := fe.Field()
	if prefix != "" {
		field = prefix + "." + field
	}
	return apperrors.ValidationError{Field: field, Reason: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url", "http_url":
		return "must be a valid URL"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}
