package dto

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and returns the first failure in a short,
// client-facing form.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	e := verrs[0]
	field := e.Field()
	switch e.Tag() {
	case "required", "required_if":
		return fmt.Errorf("%s is required", field)
	case "gt":
		return fmt.Errorf("%s must be greater than %s", field, e.Param())
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}
