// Package validation holds the input rules shared by the HTTP handlers and
// the API client, so both sides reject the same payloads with the same
// field/message pairs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"github.com/go-playground/validator/v10"
)

// FieldError is the first rule a value violated.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

var (
	validate   = newValidator()
	indexToken = regexp.MustCompile(`\[(\d+)\]`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("property_type", func(fl validator.FieldLevel) bool {
		return models.PropertyType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("tenant_preference", func(fl validator.FieldLevel) bool {
		return models.TenantPreference(fl.Field().String()).Valid()
	})
	return v
}

// Struct validates s and returns the first violation, or nil.
func Struct(s interface{}) *FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &FieldError{Message: err.Error()}
	}
	fe := verrs[0]
	field := fieldPath(fe.Namespace())
	return &FieldError{Field: field, Message: message(field, fe)}
}

// fieldPath turns "CreateListingRequest.imageUrls[0]" into "imageUrls.0".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexToken.ReplaceAllString(namespace, ".$1")
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must not be empty"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "property_type":
		return field + " must be one of: " + joinEnum(models.PropertyTypes)
	case "tenant_preference":
		return field + " must be one of: " + joinEnum(models.TenantPreferences)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
