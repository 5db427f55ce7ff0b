package request

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is implemented by payloads with rules that struct tags cannot
// express, typically cross-field constraints.
type Validator interface {
	Validate() error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "schema"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// Validate runs the semantic axis on an already decoded payload: struct tag
// rules first, then the payload's own Validate method. All violations found
// by the tags are reported together.
func Validate(payload any) error {
	if isStruct(payload) {
		if err := validate.Struct(payload); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				return fmt.Errorf("validate payload: %w", err)
			}
			return &ValidationError{Violations: toViolations(fieldErrs)}
		}
	}

	v, ok := payload.(Validator)
	if !ok {
		return nil
	}
	err := v.Validate()
	if err == nil {
		return nil
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return &ValidationError{Violations: []Violation{{Rule: "custom", Message: err.Error()}}}
}

func toViolations(fieldErrs validator.ValidationErrors) []Violation {
	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		violations = append(violations, Violation{
			Field:   fe.Field(),
			Rule:    rule,
			Message: describe(fe),
		})
	}
	return violations
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gtefield":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct
}
