// Package forms validates submitted HTML forms and turns validation failures
// into per-field messages for re-rendering.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validator implements echo.Validator
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their form name so messages line up with inputs
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	// Review comments must say something: not blank and not just a number
	validate.RegisterValidation("words", func(fl validator.FieldLevel) bool {
		value := strings.TrimSpace(fl.Field().String())
		if value == "" {
			return false
		}
		for _, r := range value {
			if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
				return true
			}
		}
		return false
	})

	// Personal names: letters and spaces
	validate.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if !unicode.IsLetter(r) && r != ' ' && r != '.' {
				return false
			}
		}
		return true
	})

	return &Validator{validate: validate}
}

func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}

// Messages maps "field" or "field.tag" to the text shown under an input
type Messages map[string]string

// Errors turns a validation error into one message per form field. Errors
// that are not validation failures are returned under the empty key.
func Errors(err error, messages Messages) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out[""] = err.Error()
		return out
	}

	for _, fe := range verrs {
		// list elements report as name[i]; errors belong to the list input
		field, _, _ := strings.Cut(fe.Field(), "[")
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = messages.lookup(field, fe)
	}
	return out
}

func (m Messages) lookup(field string, fe validator.FieldError) string {
	if msg, ok := m[field+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := m[field]; ok {
		return msg
	}

	label := strings.ReplaceAll(field, "_", " ")
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please enter a valid email"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	default:
		return "Invalid " + strings.ToLower(label)
	}
}
