package validation

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Money fields are decimal.Decimal. Exposing them to the validator
	// as float64 lets the numeric tags (gt, gte, lt) apply. The float
	// value is used for the comparison only, never stored.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// Struct runs the shared validator against any tagged request type.
func Struct(s interface{}) error {
	return validate.Struct(s)
}

// FormatValidationError flattens validator errors into per-field
// messages suitable for an API response body.
func FormatValidationError(err error) []string {
	var errs []string

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			tag := e.Tag()

			switch tag {
			case "required":
				errs = append(errs, fmt.Sprintf("%s is required", field))
			case "gt":
				errs = append(errs, fmt.Sprintf("%s must be greater than %s", field, e.Param()))
			case "gte":
				errs = append(errs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
			case "min":
				errs = append(errs, fmt.Sprintf("%s must have minimum length %s", field, e.Param()))
			case "max":
				errs = append(errs, fmt.Sprintf("%s must have maximum length %s", field, e.Param()))
			case "oneof":
				errs = append(errs, fmt.Sprintf("%s must be one of [%s]", field, e.Param()))
			default:
				errs = append(errs, fmt.Sprintf("%s is invalid (%s)", field, tag))
			}
		}
	}
	return errs
}
