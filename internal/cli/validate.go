package cli

import (
	"reflect"

	"github.com/go-playground/validator/v10"

	"trading-journal/internal/errors"
)

var validate = newValidator()

// newValidator reports fields by their flag name so errors point at what
// the user typed.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("flag"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// validateInput checks v's validate tags and converts the first failure
// into a ValidationError.
func validateInput(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		return errors.NewValidationError("--"+fe.Field(), fe.Value(), "must satisfy "+rule)
	}
	return err
}
