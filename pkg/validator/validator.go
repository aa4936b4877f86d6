// ==============================================================================
// VALIDATOR PACKAGE - pkg/validator/validator.go
// ==============================================================================
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var decimalPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{
		validate: validator.New(),
	}
	v.registerCustomValidations()
	return v
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		// Format validation errors
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMessages []string
			for _, e := range validationErrors {
				errMessages = append(errMessages, fmt.Sprintf(
					"Field '%s' failed validation '%s'",
					e.Field(),
					e.Tag(),
				))
			}
			return fmt.Errorf("validation failed: %v", errMessages)
		}
		return err
	}
	return nil
}

// Problems returns one message per failed field, or nil when i is valid.
func (v *Validator) Problems(i interface{}) []string {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, fmt.Sprintf("%s: failed '%s'", e.Field(), e.Tag()))
	}
	return out
}

func (v *Validator) registerCustomValidations() {
	// decimal_string: a plain signed decimal literal as the ledger exports it
	_ = v.validate.RegisterValidation("decimal_string", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if !decimalPattern.MatchString(s) {
			return false
		}
		_, err := decimal.NewFromString(s)
		return err == nil
	})
}
