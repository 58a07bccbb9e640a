package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// Validator validates request structs before they leave the client.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// CPF: 11 digits after stripping formatting. Shape only, no check-digit math;
	// the backend owns real CPF validation.
	v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		digits := nonDigits.ReplaceAllString(fl.Field().String(), "")
		return len(digits) == 11
	})

	return &Validator{v: v}
}

// Validate checks obj's `validate` tags and returns a message suitable
// for direct display next to the offending form field.
func (v *Validator) Validate(obj interface{}) error {
	err := v.v.Struct(obj)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "cpf":
		return fmt.Sprintf("%s must be a valid CPF", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// NormalizeCPF strips everything that is not a digit.
func NormalizeCPF(cpf string) string {
	return nonDigits.ReplaceAllString(cpf, "")
}
