// Package validate adapts go-playground/validator to echo and to the
// apperr field-error shape.
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/panacea/panacea/internal/platform/apperr"
)

// Messager lets a request type override the generated message for a
// "field.tag" pair, e.g. "email.email".
type Messager interface {
	ValidationMessages() map[string]string
}

// Validator implements echo.Validator.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Validator{v: v}
}

// Validate returns nil or an *apperr.Error of kind Validation.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Wrap(err, apperr.KindBadRequest, "Invalid request body")
	}

	var overrides map[string]string
	if m, ok := i.(Messager); ok {
		overrides = m.ValidationMessages()
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := overrides[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = message(fe)
		}
		fields = append(fields, apperr.FieldError{Field: fe.Field(), Message: msg})
	}
	return apperr.Validation(fields)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt", "gte":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "dive":
		return fmt.Sprintf("%s contains an invalid entry", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Bind decodes the request into dst and runs the echo validator on it.
// Normalizer implementations are applied between the two steps.
func Bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Wrap(err, apperr.KindBadRequest, "Invalid request body")
	}
	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}
	return c.Validate(dst)
}

// Normalizer trims or canonicalises input before validation.
type Normalizer interface {
	Normalize()
}

var fieldValidator = validator.New()

// Email reports whether s is a syntactically valid address.
func Email(s string) bool {
	return fieldValidator.Var(s, "email") == nil
}
