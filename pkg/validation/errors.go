package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError maps request fields to what is wrong with them
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Errors))
	for field := range v.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, fmt.Sprintf("%s: %s", field, v.Errors[field]))
	}
	return strings.Join(messages, "; ")
}

// NewValidationError collects one message per failing field
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{Errors: make(map[string]string, len(errs))}
	for _, err := range errs {
		out.Errors[err.Field()] = fieldMessage(err)
	}
	return out
}

// AddError records message for field
func (v *ValidationError) AddError(field, message string) {
	if v.Errors == nil {
		v.Errors = make(map[string]string)
	}
	v.Errors[field] = message
}

// HasErrors reports whether any field failed
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// GetFieldError returns the message recorded for field
func (v *ValidationError) GetFieldError(field string) (string, bool) {
	msg, ok := v.Errors[field]
	return msg, ok
}

func fieldMessage(err validator.FieldError) string {
	field, param := err.Field(), err.Param()

	switch err.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min", "max", "len":
		return sizeMessage(field, err.Tag(), param, err.Kind())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "latitude", "longitude":
		return fmt.Sprintf("%s must be a valid %s", field, err.Tag())
	case "uuid":
		return field + " must be a valid UUID"
	case "car_year":
		return fmt.Sprintf("%s must be a model year between %d and next year", field, MinCarYear)
	case "fuel_type":
		return field + " must be one of gasoline, diesel, hybrid, electric, lpg"
	case "transmission":
		return field + " must be one of manual, automatic, cvt, dct"
	case "user_role":
		return field + " must be buyer, seller or dealer"
	case "ph_phone":
		return field + " must be a Philippine mobile number (09XXXXXXXXX or +639XXXXXXXXX)"
	case "vin":
		return field + " must be a 17 character VIN without I, O or Q"
	default:
		return field + " is invalid"
	}
}

// sizeMessage words min/max/len by kind: characters for strings, items for
// collections, plain values for numbers
func sizeMessage(field, tag, param string, kind reflect.Kind) string {
	bound := map[string]string{"min": "at least", "max": "at most", "len": "exactly"}[tag]
	switch kind {
	case reflect.String:
		return fmt.Sprintf("%s must be %s %s characters long", field, bound, param)
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("%s must contain %s %s items", field, bound, param)
	default:
		return fmt.Sprintf("%s must be %s %s", field, bound, param)
	}
}
