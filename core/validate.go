package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

const passwordSpecials = "@$!%*?&"

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report errors under the wire field name, not the Go field name.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		// Password complexity: one upper, one lower, one digit, one special.
		validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			var upper, lower, digit, special bool
			for _, c := range value {
				switch {
				case c >= 'A' && c <= 'Z':
					upper = true
				case c >= 'a' && c <= 'z':
					lower = true
				case c >= '0' && c <= '9':
					digit = true
				case strings.ContainsRune(passwordSpecials, c):
					special = true
				}
			}
			return upper && lower && digit && special
		})
	})
	return validate
}

// FieldErrors maps a request field to its validation messages, matching the
// 422 response envelope.
type FieldErrors map[string][]string

func (fe FieldErrors) Error() string {
	var parts []string
	for field, msgs := range fe {
		parts = append(parts, field+": "+strings.Join(msgs, ", "))
	}
	return strings.Join(parts, "; ")
}

// ValidateStruct validates a request struct and translates failures to
// per-field messages. Returns nil when valid.
func ValidateStruct(req interface{}) FieldErrors {
	err := validatorInstance().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"request": {"invalid request"}}
	}

	out := FieldErrors{}
	for _, fe := range verrs {
		field := fe.Field()
		out[field] = append(out[field], fieldMessage(field, fe))
	}
	return out
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "password":
		return "Password must include upper and lower case letters, a number and a special character"
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
